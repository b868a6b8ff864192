package region

import (
	"errors"
	"testing"

	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/world"
)

var testOrigin = world.BlockPos{X: 0, Y: 100, Z: 0}

func testRegion() world.Cuboid {
	return world.Cuboid{
		Min: world.BlockPos{X: -20, Y: 90, Z: -20},
		Max: world.BlockPos{X: 20, Y: 110, Z: 20},
	}
}

func buildSourceWorld() *world.World {
	w := world.New("build")
	w.SetBlock(world.BlockPos{X: 0, Y: 100, Z: 0}, 1)
	w.SetBlock(world.BlockPos{X: 3, Y: 101, Z: -2}, 2)
	w.SetBlock(world.BlockPos{X: -5, Y: 99, Z: 5}, 3)
	// Block outside the capture region must not travel.
	w.SetBlock(world.BlockPos{X: 100, Y: 100, Z: 100}, 9)

	w.SpawnEntity(world.EntityMarker, model.NewLocation(2, 100, 2, 90),
		map[string]string{"spawn_type": "RED_SPAWN"})
	w.SpawnEntity(world.EntityMarker, model.NewLocation(-2, 100, -2, 270),
		map[string]string{"spawn_type": "BLUE_SPAWN"})
	return w
}

func TestFileStore_CaptureRestoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := buildSourceWorld()
	if err := store.Capture(src, testRegion(), testOrigin, true, "warehouse.schem"); err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	dst := world.New("play")
	pasteAt := world.BlockPos{X: 0, Y: 100, Z: 0}
	if err := store.Restore("warehouse.schem", dst, pasteAt, true); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if got := dst.BlockAt(world.BlockPos{X: 0, Y: 100, Z: 0}); got != 1 {
		t.Errorf("block at origin = %d; want 1", got)
	}
	if got := dst.BlockAt(world.BlockPos{X: 3, Y: 101, Z: -2}); got != 2 {
		t.Errorf("offset block = %d; want 2", got)
	}
	if got := dst.BlockAt(world.BlockPos{X: 100, Y: 100, Z: 100}); got != world.BlockAir {
		t.Error("block outside capture region leaked into the schematic")
	}

	markers := dst.EntitiesByKind(world.EntityMarker)
	if len(markers) != 2 {
		t.Fatalf("restored %d markers; want 2", len(markers))
	}
	types := map[string]bool{}
	for _, m := range markers {
		types[m.Tag("spawn_type")] = true
	}
	if !types["RED_SPAWN"] || !types["BLUE_SPAWN"] {
		t.Errorf("marker tags did not round-trip: %v", types)
	}
}

func TestFileStore_RestoreIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := buildSourceWorld()
	if err := store.Capture(src, testRegion(), testOrigin, false, "a.schem"); err != nil {
		t.Fatal(err)
	}

	dst := world.New("play")
	for i := 0; i < 2; i++ {
		if err := store.Restore("a.schem", dst, testOrigin, false); err != nil {
			t.Fatalf("Restore() #%d error = %v", i+1, err)
		}
	}
	if got := dst.BlockCount(); got != 3 {
		t.Errorf("BlockCount() after double paste = %d; want 3", got)
	}
}

func TestFileStore_RestoreAtDifferentOrigin(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := buildSourceWorld()
	if err := store.Capture(src, testRegion(), testOrigin, true, "a.schem"); err != nil {
		t.Fatal(err)
	}

	dst := world.New("editor")
	shifted := world.BlockPos{X: 1000, Y: 100, Z: 0}
	if err := store.Restore("a.schem", dst, shifted, true); err != nil {
		t.Fatal(err)
	}

	if got := dst.BlockAt(world.BlockPos{X: 1000, Y: 100, Z: 0}); got != 1 {
		t.Errorf("translated block = %d; want 1", got)
	}
	markers := dst.EntitiesByKind(world.EntityMarker)
	if len(markers) != 2 {
		t.Fatalf("restored %d markers; want 2", len(markers))
	}
	for _, m := range markers {
		if m.Loc.X < 900 {
			t.Errorf("marker not translated: %v", m.Loc)
		}
	}
}

func TestFileStore_ClearUsesBlobBounds(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := buildSourceWorld()
	if err := store.Capture(src, testRegion(), testOrigin, true, "a.schem"); err != nil {
		t.Fatal(err)
	}

	dst := world.New("play")
	if err := store.Restore("a.schem", dst, testOrigin, true); err != nil {
		t.Fatal(err)
	}
	// A block far outside the schematic bounds must survive the clear.
	dst.SetBlock(world.BlockPos{X: 400, Y: 100, Z: 400}, 7)

	if err := store.Clear("a.schem", dst, testOrigin); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := dst.BlockCount(); got != 1 {
		t.Errorf("BlockCount() after clear = %d; want 1 (outside block)", got)
	}
	if got := dst.EntityCount(); got != 0 {
		t.Errorf("EntityCount() after clear = %d; want 0", got)
	}
}

func TestFileStore_MissingRegion(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dst := world.New("play")
	err = store.Restore("ghost.schem", dst, testOrigin, true)
	if !errors.Is(err, ErrMissingRegion) {
		t.Errorf("Restore(missing) error = %v; want ErrMissingRegion", err)
	}
	if _, err := store.Bounds("ghost.schem", testOrigin); !errors.Is(err, ErrMissingRegion) {
		t.Errorf("Bounds(missing) error = %v; want ErrMissingRegion", err)
	}
	if store.Exists("ghost.schem") {
		t.Error("Exists(missing) = true")
	}
}

func TestFileStore_RemoveAbsentIsNoError(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Remove("ghost.schem"); err != nil {
		t.Errorf("Remove(absent) error = %v; want nil", err)
	}
}
