package names

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownTable(t *testing.T) {
	tbl := Known()
	require.NotZero(t, tbl.Len())

	name, ok := tbl.Name(EnabledMods)
	require.True(t, ok)
	assert.Equal(t, "EnabledMods", name)

	id, ok := tbl.ID("CurrentTurn")
	require.True(t, ok)
	assert.Equal(t, CurrentTurn, id)

	_, ok = tbl.Name(0xDEADBEEF)
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	tbl := Known()
	assert.Equal(t, "SaveTime", tbl.Label(SaveTime))
	assert.Equal(t, "0xdeadbeef", tbl.Label(0xDEADBEEF))
}

func TestAddReplaces(t *testing.T) {
	tbl := Known()
	tbl.Add(SaveTime, "Renamed")

	name, ok := tbl.Name(SaveTime)
	require.True(t, ok)
	assert.Equal(t, "Renamed", name)

	// The old reverse mapping must be gone.
	_, ok = tbl.ID("SaveTime")
	assert.False(t, ok)

	id, ok := tbl.ID("Renamed")
	require.True(t, ok)
	assert.Equal(t, SaveTime, id)
}

func TestParseTOML(t *testing.T) {
	tbl := Known()
	before := tbl.Len()

	err := tbl.ParseTOML([]byte(`
[names]
"0x12345678" = "SomeNewField"
"0x88305ebb" = "EnabledModsOverride"
`))
	require.NoError(t, err)

	assert.Equal(t, before+1, tbl.Len())
	assert.Equal(t, "SomeNewField", tbl.Label(0x12345678))
	assert.Equal(t, "EnabledModsOverride", tbl.Label(EnabledMods))
}

func TestParseTOMLBadIdentifier(t *testing.T) {
	for _, key := range []string{"88305ebb", "0xZZ", "0x188305ebb"} {
		err := Known().ParseTOML([]byte(`[names]` + "\n" + `"` + key + `" = "X"`))
		assert.Error(t, err, "key %q", key)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[names]
"0x0000ffff" = "FromFile"
`), 0o644))

	tbl := Known()
	require.NoError(t, tbl.LoadTOML(path))
	assert.Equal(t, "FromFile", tbl.Label(0xFFFF))

	assert.Error(t, tbl.LoadTOML(filepath.Join(t.TempDir(), "missing.toml")))
}
