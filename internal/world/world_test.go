package world

import (
	"testing"

	"github.com/udisondev/paintgo/internal/model"
)

func TestWorld_Blocks(t *testing.T) {
	w := New("test")

	pos := BlockPos{X: 1, Y: 100, Z: -3}
	w.SetBlock(pos, Block(5))

	if got := w.BlockAt(pos); got != Block(5) {
		t.Errorf("BlockAt() = %d; want 5", got)
	}
	if got := w.BlockAt(BlockPos{X: 9, Y: 9, Z: 9}); got != BlockAir {
		t.Errorf("BlockAt(empty) = %d; want air", got)
	}

	w.SetBlock(pos, BlockAir)
	if w.BlockCount() != 0 {
		t.Errorf("BlockCount() = %d after clearing; want 0", w.BlockCount())
	}
}

func TestWorld_BlocksIn(t *testing.T) {
	w := New("test")
	w.SetBlock(BlockPos{X: 0, Y: 100, Z: 0}, 1)
	w.SetBlock(BlockPos{X: 5, Y: 100, Z: 5}, 2)
	w.SetBlock(BlockPos{X: 50, Y: 100, Z: 50}, 3)

	region := Cuboid{Min: BlockPos{X: -10, Y: 90, Z: -10}, Max: BlockPos{X: 10, Y: 110, Z: 10}}
	got := w.BlocksIn(region)
	if len(got) != 2 {
		t.Errorf("BlocksIn() returned %d blocks; want 2", len(got))
	}
}

func TestWorld_ClearRegion(t *testing.T) {
	w := New("test")
	w.SetBlock(BlockPos{X: 0, Y: 100, Z: 0}, 1)
	w.SetBlock(BlockPos{X: 500, Y: 100, Z: 0}, 1)
	w.SpawnEntity(EntityMarker, model.NewLocation(1, 100, 1, 0), nil)
	outside := w.SpawnEntity(EntityMarker, model.NewLocation(500, 100, 0, 0), nil)

	region := Cuboid{Min: BlockPos{X: -10, Y: 90, Z: -10}, Max: BlockPos{X: 10, Y: 110, Z: 10}}
	if cleared := w.ClearRegion(region); cleared != 1 {
		t.Errorf("ClearRegion() = %d blocks; want 1", cleared)
	}
	if w.BlockCount() != 1 {
		t.Errorf("BlockCount() = %d; want 1", w.BlockCount())
	}
	if w.EntityCount() != 1 {
		t.Errorf("EntityCount() = %d; want 1 (entity outside region survives)", w.EntityCount())
	}
	if w.Entity(outside.ID) == nil {
		t.Error("entity outside the region was removed")
	}
}

func TestWorld_Entities(t *testing.T) {
	w := New("test")

	e := w.SpawnEntity(EntityMarker, model.NewLocation(1, 2, 3, 90), map[string]string{"spawn_type": "RED_SPAWN"})
	if e.ID == 0 {
		t.Fatal("SpawnEntity() returned zero id")
	}
	if got := e.Tag("spawn_type"); got != "RED_SPAWN" {
		t.Errorf("Tag() = %q; want RED_SPAWN", got)
	}

	markers := w.EntitiesByKind(EntityMarker)
	if len(markers) != 1 {
		t.Fatalf("EntitiesByKind() = %d entities; want 1", len(markers))
	}

	if !w.RemoveEntity(e.ID) {
		t.Error("RemoveEntity() = false; want true")
	}
	if w.RemoveEntity(e.ID) {
		t.Error("RemoveEntity() second call = true; want false")
	}
}

func TestManager_Slots(t *testing.T) {
	m := NewManager()

	if m.Lobby().Name() != LobbyWorldName {
		t.Errorf("Lobby().Name() = %q", m.Lobby().Name())
	}
	if m.Arena() == m.Editor() {
		t.Error("arena and editor must be distinct world slots")
	}
	if m.Lobby().SpawnLocation().Y != 64 {
		t.Errorf("lobby spawn Y = %v; want 64", m.Lobby().SpawnLocation().Y)
	}
}
