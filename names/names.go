// Package names maps the opaque 32-bit identifier hashes found in save-file
// entries to their known field names.
//
// Identifiers are presumed hashes of internal field names; the hash function
// is unknown, so the mapping is a curated table recovered by observation.
// The table is deliberately incomplete: unknown identifiers simply have no
// name. Custom tables can extend the built-in one, including from TOML files.
package names

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Identifiers confirmed by observation. Values are the little-endian reading
// of the 4 identifier bytes as they appear on the wire.
const (
	EnabledMods              uint32 = 0x88305EBB
	RequiredMods             uint32 = 0x8427AE5C
	SavedByVersion           uint32 = 0x3A0545DA
	DisplayName              uint32 = 0x1E4C13B0
	SaveTime                 uint32 = 0x0EFE6D64
	HostCivilization         uint32 = 0xAF9AE4BB
	HostCivilizationName     uint32 = 0x760A632A
	HostLeader               uint32 = 0x6BB7B2A1
	HostLeaderName           uint32 = 0x9DBCDA95
	HostForegroundColorValue uint32 = 0x85988715
	HostBackgroundColorValue uint32 = 0x7C546F81
	HostDifficulty           uint32 = 0x7FB416A8
	HostDifficultyName       uint32 = 0x0F32E71D
	HostEra                  uint32 = 0xE7170E55
	HostEraName              uint32 = 0x12F52FF3
	CurrentTurn              uint32 = 0xBDE62C9D
	GameSpeed                uint32 = 0x05D9B099
	GameSpeedName            uint32 = 0xFAD3D4C3
	MapSize                  uint32 = 0x0B835C40
	MapSizeName              uint32 = 0xA69B93CD
	MapScript                uint32 = 0x63D8875A
	MapScriptName            uint32 = 0x584C6027
	Ruleset                  uint32 = 0xC45925DE
	RulesetName              uint32 = 0xD028A431

	// Fields of mod description objects.
	ModID             uint32 = 0x04C45F54
	ModName           uint32 = 0x3034E172
	ModSubscriptionID uint32 = 0x6DB0F592

	// Section identifiers whose official names are unknown.
	Platform  uint32 = 0x306F37F9
	ModBlock2 uint32 = 0x1B8CD1C8
	ModBlock3 uint32 = 0xFED47F44
)

var known = map[uint32]string{
	EnabledMods:              "EnabledMods",
	RequiredMods:             "RequiredMods",
	SavedByVersion:           "SavedByVersion",
	DisplayName:              "DisplayName",
	SaveTime:                 "SaveTime",
	HostCivilization:         "HostCivilization",
	HostCivilizationName:     "HostCivilizationName",
	HostLeader:               "HostLeader",
	HostLeaderName:           "HostLeaderName",
	HostForegroundColorValue: "HostForegroundColorValue",
	HostBackgroundColorValue: "HostBackgroundColorValue",
	HostDifficulty:           "HostDifficulty",
	HostDifficultyName:       "HostDifficultyName",
	HostEra:                  "HostEra",
	HostEraName:              "HostEraName",
	CurrentTurn:              "CurrentTurn",
	GameSpeed:                "GameSpeed",
	GameSpeedName:            "GameSpeedName",
	MapSize:                  "MapSize",
	MapSizeName:              "MapSizeName",
	MapScript:                "MapScript",
	MapScriptName:            "MapScriptName",
	Ruleset:                  "Ruleset",
	RulesetName:              "RulesetName",
	ModID:                    "Id",
	ModName:                  "Name",
	ModSubscriptionID:        "SubscriptionId",
	Platform:                 "PLATFORM",
	ModBlock2:                "MOD_BLOCK_2",
	ModBlock3:                "MOD_BLOCK_3",
}

// Table maps identifier hashes to field names in both directions.
type Table struct {
	byID   map[uint32]string
	byName map[string]uint32
}

// Known returns a table holding every built-in mapping.
func Known() *Table {
	t := &Table{
		byID:   make(map[uint32]string, len(known)),
		byName: make(map[string]uint32, len(known)),
	}
	for id, name := range known {
		t.Add(id, name)
	}
	return t
}

// Add registers one mapping, replacing any previous entry for id.
func (t *Table) Add(id uint32, name string) {
	if prev, ok := t.byID[id]; ok {
		delete(t.byName, prev)
	}
	t.byID[id] = name
	t.byName[name] = id
}

// Name returns the field name for id, if known.
func (t *Table) Name(id uint32) (string, bool) {
	name, ok := t.byID[id]
	return name, ok
}

// ID returns the identifier hash registered for name, if any.
func (t *Table) ID(name string) (uint32, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Len returns the number of mappings.
func (t *Table) Len() int { return len(t.byID) }

// Label formats id as its known name, or as a hex literal when unknown.
func (t *Table) Label(id uint32) string {
	if name, ok := t.byID[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", id)
}

type tomlNames struct {
	Names map[string]string `toml:"names"`
}

// LoadTOML merges mappings from a TOML file into the table. The file holds a
// single [names] section keyed by hex identifier:
//
//	[names]
//	"0x88305ebb" = "EnabledMods"
func (t *Table) LoadTOML(path string) error {
	var raw tomlNames
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("names: load %s: %w", path, err)
	}
	return t.merge(raw.Names)
}

// ParseTOML merges mappings from TOML data into the table.
func (t *Table) ParseTOML(data []byte) error {
	var raw tomlNames
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("names: parse: %w", err)
	}
	return t.merge(raw.Names)
}

func (t *Table) merge(raw map[string]string) error {
	for key, name := range raw {
		hex, ok := strings.CutPrefix(key, "0x")
		if !ok {
			return fmt.Errorf("names: identifier %q is not a hex literal", key)
		}
		id, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return fmt.Errorf("names: identifier %q is not a hex literal", key)
		}
		t.Add(uint32(id), name)
	}
	return nil
}
