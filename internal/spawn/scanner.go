// Package spawn works with spawn markers: invisible tagged entities that
// travel inside arena schematics and mark where players, flags and
// free-for-all participants appear.
//
// Маркеры — единственный носитель точек спавна внутри схематики: после
// вставки арены сканер собирает их в списки и убирает из мира.
package spawn

import (
	"log/slog"

	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/world"
)

// TagSpawnType is the entity tag carrying the marker's spawn type name.
const TagSpawnType = "spawn_type"

// Scanner находит, ставит и убирает маркеры спавнов в мире.
type Scanner struct{}

// NewScanner creates a marker scanner.
func NewScanner() *Scanner { return &Scanner{} }

// Place spawns a marker entity of the given type at loc.
func (s *Scanner) Place(w *world.World, st model.SpawnType, loc model.Location) *world.Entity {
	return w.SpawnEntity(world.EntityMarker, loc, map[string]string{
		TagSpawnType: st.String(),
	})
}

// Remove deletes the marker entity closest to loc within tol. Reports
// whether a marker was removed.
func (s *Scanner) Remove(w *world.World, loc model.Location, tol float64) bool {
	var best *world.Entity
	bestDist := tol * tol
	for _, e := range w.EntitiesByKind(world.EntityMarker) {
		if e.Tag(TagSpawnType) == "" {
			continue
		}
		if d := e.Loc.DistanceSquared(loc); d <= bestDist {
			best = e
			bestDist = d
		}
	}
	if best == nil {
		return false
	}
	w.RemoveEntity(best.ID)
	return true
}

// Scan collects every marker in the world grouped by spawn type. Markers
// with an unknown type tag are logged and skipped.
func (s *Scanner) Scan(w *world.World) map[model.SpawnType][]model.Location {
	found := make(map[model.SpawnType][]model.Location)
	for _, e := range w.EntitiesByKind(world.EntityMarker) {
		raw := e.Tag(TagSpawnType)
		if raw == "" {
			continue
		}
		st, ok := model.ParseSpawnType(raw)
		if !ok {
			slog.Warn("skipping marker with unknown spawn type",
				"world", w.Name(),
				"tag", raw)
			continue
		}
		found[st] = append(found[st], e.Loc)
	}
	return found
}

// ScanRegion collects markers inside the region only.
func (s *Scanner) ScanRegion(w *world.World, region world.Cuboid) map[model.SpawnType][]model.Location {
	found := make(map[model.SpawnType][]model.Location)
	for _, e := range w.EntitiesByKind(world.EntityMarker) {
		if !region.ContainsLoc(e.Loc) {
			continue
		}
		raw := e.Tag(TagSpawnType)
		if raw == "" {
			continue
		}
		st, ok := model.ParseSpawnType(raw)
		if !ok {
			continue
		}
		found[st] = append(found[st], e.Loc)
	}
	return found
}

// ClearAll removes every spawn marker from the world and returns the
// number removed. Matches despawn markers right after scanning so
// players never see them.
func (s *Scanner) ClearAll(w *world.World) int {
	removed := 0
	for _, e := range w.EntitiesByKind(world.EntityMarker) {
		if e.Tag(TagSpawnType) == "" {
			continue
		}
		w.RemoveEntity(e.ID)
		removed++
	}
	if removed > 0 {
		slog.Debug("spawn markers cleared", "world", w.Name(), "count", removed)
	}
	return removed
}
