// Package arena держит определения арен и управляет их жизненным циклом
// в игровых мирах.
package arena

import (
	"strings"

	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/world"
)

// spawnTolerance is the максимальное расстояние между сохранённой точкой
// спавна и кандидатом на удаление.
const spawnTolerance = 0.5

// Arena описывает одну арену: файл схематики, совместимые режимы и
// точки спавна. Сами блоки живут в region.Store, сюда попадают только
// метаданные.
type Arena struct {
	Name            string           `json:"name"`
	SchematicFile   string           `json:"schematicFile"`
	Enabled         bool             `json:"enabled"`
	CompatibleModes []model.Gamemode `json:"compatibleGameModes"`

	RedSpawns        []model.Location `json:"redSpawns"`
	BlueSpawns       []model.Location `json:"blueSpawns"`
	FreeForAllSpawns []model.Location `json:"freeForAllSpawns"`
	RedFlagSpawns    []model.Location `json:"redFlagSpawns"`
	BlueFlagSpawns   []model.Location `json:"blueFlagSpawns"`

	MinBoundary *model.Location `json:"minBoundary,omitempty"`
	MaxBoundary *model.Location `json:"maxBoundary,omitempty"`
}

// New создаёт выключенную арену без точек спавна.
func New(name string) *Arena {
	return &Arena{
		Name:          name,
		SchematicFile: name + ".schem",
		Enabled:       false,
	}
}

// IsCompatible reports whether the arena explicitly supports the mode.
func (a *Arena) IsCompatible(gm model.Gamemode) bool {
	for _, m := range a.CompatibleModes {
		if m == gm {
			return true
		}
	}
	return false
}

// AddMode включает режим в список совместимых. Повторное добавление
// ничего не меняет.
func (a *Arena) AddMode(gm model.Gamemode) {
	if a.IsCompatible(gm) {
		return
	}
	a.CompatibleModes = append(a.CompatibleModes, gm)
}

// RemoveMode исключает режим из списка совместимых.
func (a *Arena) RemoveMode(gm model.Gamemode) {
	for i, m := range a.CompatibleModes {
		if m == gm {
			a.CompatibleModes = append(a.CompatibleModes[:i], a.CompatibleModes[i+1:]...)
			return
		}
	}
}

// IsValid reports whether the arena configuration is complete: name and
// schematic reference present, at least one compatible mode, and every
// declared compatible mode's spawn thresholds met. The enabled flag is a
// separate switch checked by SupportsMode.
func (a *Arena) IsValid() bool {
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.SchematicFile) == "" {
		return false
	}
	if len(a.CompatibleModes) == 0 {
		return false
	}
	for _, gm := range a.CompatibleModes {
		if !a.hasRequiredSpawns(gm) {
			return false
		}
	}
	return true
}

// SupportsMode reports whether the arena is playable in the mode right
// now: enabled, compatible and with enough spawns.
func (a *Arena) SupportsMode(gm model.Gamemode) bool {
	return a.Enabled && a.IsCompatible(gm) && a.hasRequiredSpawns(gm)
}

func (a *Arena) hasRequiredSpawns(gm model.Gamemode) bool {
	if gm.HasTeams() {
		if len(a.RedSpawns) < 2 || len(a.BlueSpawns) < 2 {
			return false
		}
		if gm.RequiresFlagSpawns() {
			return len(a.RedFlagSpawns) >= 1 && len(a.BlueFlagSpawns) >= 1
		}
		return true
	}
	return len(a.FreeForAllSpawns) >= gm.MinPlayers()
}

// Spawns returns the spawn list for the type. The returned slice is the
// arena's own backing array.
func (a *Arena) Spawns(st model.SpawnType) []model.Location {
	switch st {
	case model.SpawnRed:
		return a.RedSpawns
	case model.SpawnBlue:
		return a.BlueSpawns
	case model.SpawnFreeForAll:
		return a.FreeForAllSpawns
	case model.SpawnRedFlag:
		return a.RedFlagSpawns
	case model.SpawnBlueFlag:
		return a.BlueFlagSpawns
	}
	return nil
}

// AddSpawn записывает точку спавна указанного типа.
func (a *Arena) AddSpawn(st model.SpawnType, loc model.Location) {
	switch st {
	case model.SpawnRed:
		a.RedSpawns = append(a.RedSpawns, loc)
	case model.SpawnBlue:
		a.BlueSpawns = append(a.BlueSpawns, loc)
	case model.SpawnFreeForAll:
		a.FreeForAllSpawns = append(a.FreeForAllSpawns, loc)
	case model.SpawnRedFlag:
		a.RedFlagSpawns = append(a.RedFlagSpawns, loc)
	case model.SpawnBlueFlag:
		a.BlueFlagSpawns = append(a.BlueFlagSpawns, loc)
	}
}

// RemoveSpawn удаляет ближайшую к loc точку данного типа в пределах
// допуска. Reports whether a spawn was removed.
func (a *Arena) RemoveSpawn(st model.SpawnType, loc model.Location) bool {
	list := a.Spawns(st)
	for i, s := range list {
		if s.CloseTo(loc, spawnTolerance) {
			removed := append(list[:i], list[i+1:]...)
			a.setSpawns(st, removed)
			return true
		}
	}
	return false
}

// ClearSpawns drops every spawn of the type.
func (a *Arena) ClearSpawns(st model.SpawnType) {
	a.setSpawns(st, nil)
}

// ClearAllSpawns drops every spawn of every type.
func (a *Arena) ClearAllSpawns() {
	a.RedSpawns = nil
	a.BlueSpawns = nil
	a.FreeForAllSpawns = nil
	a.RedFlagSpawns = nil
	a.BlueFlagSpawns = nil
}

func (a *Arena) setSpawns(st model.SpawnType, list []model.Location) {
	switch st {
	case model.SpawnRed:
		a.RedSpawns = list
	case model.SpawnBlue:
		a.BlueSpawns = list
	case model.SpawnFreeForAll:
		a.FreeForAllSpawns = list
	case model.SpawnRedFlag:
		a.RedFlagSpawns = list
	case model.SpawnBlueFlag:
		a.BlueFlagSpawns = list
	}
}

// SpawnCount returns the total number of spawns across all types.
func (a *Arena) SpawnCount() int {
	return len(a.RedSpawns) + len(a.BlueSpawns) + len(a.FreeForAllSpawns) +
		len(a.RedFlagSpawns) + len(a.BlueFlagSpawns)
}

// WithinBounds reports whether loc lies inside the arena's recorded
// boundary box. Arenas without a boundary accept everything.
func (a *Arena) WithinBounds(loc model.Location) bool {
	if a.MinBoundary == nil || a.MaxBoundary == nil {
		return true
	}
	return loc.X >= a.MinBoundary.X && loc.X <= a.MaxBoundary.X &&
		loc.Y >= a.MinBoundary.Y && loc.Y <= a.MaxBoundary.Y &&
		loc.Z >= a.MinBoundary.Z && loc.Z <= a.MaxBoundary.Z
}

// SetBounds записывает границы арены из кубоида региона.
func (a *Arena) SetBounds(region world.Cuboid) {
	min := model.NewLocation(float64(region.Min.X), float64(region.Min.Y), float64(region.Min.Z), 0)
	max := model.NewLocation(float64(region.Max.X), float64(region.Max.Y), float64(region.Max.Z), 0)
	a.MinBoundary = &min
	a.MaxBoundary = &max
}

// Key returns the case-insensitive registry key for the name.
func Key(name string) string {
	return strings.ToLower(name)
}
