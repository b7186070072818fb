// Package batch decodes many save files efficiently: summary extraction via
// the known-identifier table, a worker pool for independent files, and a
// cache so unchanged files are not decoded twice.
//
// A single file decodes strictly sequentially (every section's offset
// depends on the previous one), but separate files share no state, so the
// scanner spreads them across goroutines.
package batch

import (
	"time"

	civ6save "github.com/SztoDwa/civ-vi-save-repackaging"
	"github.com/SztoDwa/civ-vi-save-repackaging/names"
)

// Mod identifies one mod referenced by a save.
type Mod struct {
	ID   string
	Name string
}

// Summary holds the save metadata recoverable from known identifiers.
// Fields stay zero when the save does not carry the entry.
type Summary struct {
	DisplayName    string
	SavedByVersion string
	CurrentTurn    uint32
	SaveTime       time.Time
	Civilization   string
	Leader         string
	Difficulty     string
	Era            string
	GameSpeed      string
	MapScript      string
	MapSize        string
	Ruleset        string
	EnabledMods    []Mod
	Warnings       []string
}

// Summarize extracts a Summary from a decoded document. Identifiers absent
// from the document leave their fields zero; nothing here fails, since a
// structurally valid save may simply omit entries.
func Summarize(doc *civ6save.Document) Summary {
	s := Summary{
		DisplayName:    stringAt(doc, names.DisplayName),
		SavedByVersion: stringAt(doc, names.SavedByVersion),
		CurrentTurn:    intAt(doc, names.CurrentTurn),
		Civilization:   stringAt(doc, names.HostCivilizationName),
		Leader:         stringAt(doc, names.HostLeaderName),
		Difficulty:     stringAt(doc, names.HostDifficultyName),
		Era:            stringAt(doc, names.HostEraName),
		GameSpeed:      stringAt(doc, names.GameSpeedName),
		MapScript:      stringAt(doc, names.MapScriptName),
		MapSize:        stringAt(doc, names.MapSizeName),
		Ruleset:        stringAt(doc, names.RulesetName),
		EnabledMods:    modsAt(doc, names.EnabledMods),
		Warnings:       doc.Warnings,
	}
	if e, ok := doc.Find(names.SaveTime); ok {
		if v, ok := e.Value.(civ6save.TimeValue); ok {
			s.SaveTime = v.Time()
		}
	}
	return s
}

func stringAt(doc *civ6save.Document, id uint32) string {
	if e, ok := doc.Find(id); ok {
		if v, ok := e.Value.(civ6save.StringValue); ok {
			return string(v)
		}
	}
	return ""
}

func intAt(doc *civ6save.Document, id uint32) uint32 {
	if e, ok := doc.Find(id); ok {
		if v, ok := e.Value.(civ6save.IntValue); ok {
			return uint32(v)
		}
	}
	return 0
}

// modsAt flattens a mod list entry: an array of objects, each holding Id and
// Name string fields.
func modsAt(doc *civ6save.Document, id uint32) []Mod {
	e, ok := doc.Find(id)
	if !ok {
		return nil
	}
	arr, ok := e.Value.(civ6save.ArrayValue)
	if !ok {
		return nil
	}
	var mods []Mod
	for _, el := range arr {
		obj, ok := el.Value.(civ6save.ObjectValue)
		if !ok {
			continue
		}
		var m Mod
		for _, child := range obj {
			v, ok := child.Value.(civ6save.StringValue)
			if !ok {
				continue
			}
			switch child.ID {
			case names.ModID:
				m.ID = string(v)
			case names.ModName:
				m.Name = string(v)
			}
		}
		mods = append(mods, m)
	}
	return mods
}
