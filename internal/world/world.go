// Package world models the host's world slots as the rest of the module
// sees them: sparse voxel storage plus an entity registry per named
// world. The real host owns chunk persistence and rendering; this
// package is the boundary the arena and match code is written against.
package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/paintgo/internal/model"
)

// BlockPos is an integer block position.
type BlockPos struct {
	X int32
	Y int32
	Z int32
}

// Add returns the position offset by other.
func (p BlockPos) Add(other BlockPos) BlockPos {
	return BlockPos{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// Sub returns the position minus other.
func (p BlockPos) Sub(other BlockPos) BlockPos {
	return BlockPos{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Cuboid is an inclusive axis-aligned block region.
type Cuboid struct {
	Min BlockPos
	Max BlockPos
}

// Contains reports whether pos lies inside the cuboid.
func (c Cuboid) Contains(pos BlockPos) bool {
	return pos.X >= c.Min.X && pos.X <= c.Max.X &&
		pos.Y >= c.Min.Y && pos.Y <= c.Max.Y &&
		pos.Z >= c.Min.Z && pos.Z <= c.Max.Z
}

// ContainsLoc reports whether a continuous location lies inside the cuboid.
func (c Cuboid) ContainsLoc(loc model.Location) bool {
	return c.Contains(BlockPos{X: int32(loc.X), Y: int32(loc.Y), Z: int32(loc.Z)})
}

// Block is a voxel type id. BlockAir (zero value) blocks are not stored.
type Block uint16

// BlockAir is the absent block.
const BlockAir Block = 0

// EntityKind classifies the entities this module cares about.
type EntityKind int32

const (
	EntityMarker EntityKind = iota // spawn-point marker (armor-stand analog)
	EntityFlag                     // placed flag stand
	EntityOther
)

// Entity is a host entity as visible to this module: an object id, a
// kind, a position and a small tag map (the host's persistent data
// container).
type Entity struct {
	ID   uint32
	Kind EntityKind
	Loc  model.Location
	Tags map[string]string
}

// Tag returns the value for key, empty string when absent.
func (e *Entity) Tag(key string) string {
	return e.Tags[key]
}

// World is one named world slot. Thread-safe; all gameplay mutation is
// expected to arrive from the simulation tick, but scans and background
// capture may read concurrently.
type World struct {
	mu sync.RWMutex

	name     string
	blocks   map[BlockPos]Block
	entities map[uint32]*Entity
	spawnLoc model.Location

	nextEntityID atomic.Uint32
}

// New creates an empty void world with the given name.
func New(name string) *World {
	w := &World{
		name:     name,
		blocks:   make(map[BlockPos]Block, 1024),
		entities: make(map[uint32]*Entity, 32),
	}
	// Entity ids start above the range the host hands out to players.
	w.nextEntityID.Store(100000)
	return w
}

// Name returns the world slot name.
func (w *World) Name() string { return w.name }

// SpawnLocation returns the default spawn point.
func (w *World) SpawnLocation() model.Location {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.spawnLoc
}

// SetSpawnLocation sets the default spawn point.
func (w *World) SetSpawnLocation(loc model.Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spawnLoc = loc
}

// SetBlock places a block; setting BlockAir removes the entry.
func (w *World) SetBlock(pos BlockPos, b Block) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b == BlockAir {
		delete(w.blocks, pos)
		return
	}
	w.blocks[pos] = b
}

// BlockAt returns the block at pos, BlockAir when unset.
func (w *World) BlockAt(pos BlockPos) Block {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.blocks[pos]
}

// BlockCount returns the number of non-air blocks.
func (w *World) BlockCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}

// BlocksIn returns a copy of all non-air blocks inside the region.
func (w *World) BlocksIn(region Cuboid) map[BlockPos]Block {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[BlockPos]Block)
	for pos, b := range w.blocks {
		if region.Contains(pos) {
			out[pos] = b
		}
	}
	return out
}

// ClearRegion removes every block and entity inside the region.
// Returns how many blocks were cleared.
func (w *World) ClearRegion(region Cuboid) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cleared := 0
	for pos := range w.blocks {
		if region.Contains(pos) {
			delete(w.blocks, pos)
			cleared++
		}
	}
	for id, e := range w.entities {
		if region.ContainsLoc(e.Loc) {
			delete(w.entities, id)
		}
	}
	return cleared
}

// SpawnEntity creates an entity and returns it.
func (w *World) SpawnEntity(kind EntityKind, loc model.Location, tags map[string]string) *Entity {
	e := &Entity{
		ID:   w.nextEntityID.Add(1),
		Kind: kind,
		Loc:  loc,
		Tags: tags,
	}
	w.mu.Lock()
	w.entities[e.ID] = e
	w.mu.Unlock()
	return e
}

// RemoveEntity deletes an entity by id. Returns false if absent.
func (w *World) RemoveEntity(id uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	return true
}

// Entity returns the entity with the given id, or nil.
func (w *World) Entity(id uint32) *Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities[id]
}

// EntitiesByKind returns a copy of all entities of the given kind.
func (w *World) EntitiesByKind(kind EntityKind) []*Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// EntityCount returns the number of entities in the world.
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}
