package spawn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/arena"
	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/region"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/world"
)

var editorBounds = world.Cuboid{
	Min: world.BlockPos{X: -50, Y: 90, Z: -50},
	Max: world.BlockPos{X: 50, Y: 120, Z: 50},
}

func newEditorFixture(t *testing.T) (*Editor, *arena.Registry, *world.Manager, region.Store) {
	t.Helper()

	store, err := region.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	registry, err := arena.NewRegistry(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	worlds := world.NewManager()
	pool := sched.NewPool(context.Background(), 2)
	lc := arena.NewLifecycle(store, worlds, pool, world.BlockPos{X: 0, Y: 100, Z: 0})

	ed := NewEditor(registry, lc, NewScanner(), worlds, editorBounds)
	return ed, registry, worlds, store
}

func awaitFuture(t *testing.T, fut *sched.Future) (bool, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ok, err := fut.Await(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("future never resolved")
	}
	return ok, err
}

func TestEditor_SaveRoundTrip(t *testing.T) {
	ed, registry, worlds, store := newEditorFixture(t)
	builder := uuid.New()

	if _, err := registry.Create("warehouse"); err != nil {
		t.Fatal(err)
	}
	if ok, err := awaitFuture(t, ed.Enter(builder, "warehouse")); !ok || err != nil {
		t.Fatalf("Enter() = %v, %v", ok, err)
	}

	// Build a bit of floor and place spawns for team play.
	worlds.Editor().SetBlock(world.BlockPos{X: 0, Y: 99, Z: 0}, 1)
	if err := ed.Place(builder, model.NewLocation(10, 100, 10, 0)); err != nil {
		t.Fatal(err)
	}
	if err := ed.Place(builder, model.NewLocation(12, 100, 10, 0)); err != nil {
		t.Fatal(err)
	}
	if err := ed.SetMode(builder, model.SpawnBlue); err != nil {
		t.Fatal(err)
	}
	if err := ed.Place(builder, model.NewLocation(-10, 100, -10, 180)); err != nil {
		t.Fatal(err)
	}
	if err := ed.Place(builder, model.NewLocation(-12, 100, -10, 180)); err != nil {
		t.Fatal(err)
	}

	if ok, err := awaitFuture(t, ed.Exit(builder, true)); !ok || err != nil {
		t.Fatalf("Exit(save) = %v, %v", ok, err)
	}

	a, _ := registry.Get("warehouse")
	if len(a.RedSpawns) != 2 || len(a.BlueSpawns) != 2 {
		t.Errorf("spawn lists = %d red, %d blue; want 2, 2", len(a.RedSpawns), len(a.BlueSpawns))
	}
	if !store.Exists(a.SchematicFile) {
		t.Error("schematic blob missing after save")
	}
	if got := worlds.Editor().BlockCount(); got != 0 {
		t.Errorf("editor world holds %d blocks after exit; want 0", got)
	}

	// The saved blob carries the markers back in.
	probe := world.New("probe")
	if err := store.Restore(a.SchematicFile, probe, world.BlockPos{X: 0, Y: 100, Z: 0}, true); err != nil {
		t.Fatal(err)
	}
	if got := len(probe.EntitiesByKind(world.EntityMarker)); got != 4 {
		t.Errorf("restored blob carries %d markers; want 4", got)
	}
}

func TestEditor_DiscardKeepsDefinition(t *testing.T) {
	ed, registry, _, _ := newEditorFixture(t)
	builder := uuid.New()

	if _, err := registry.Create("warehouse"); err != nil {
		t.Fatal(err)
	}
	if ok, err := awaitFuture(t, ed.Enter(builder, "warehouse")); !ok || err != nil {
		t.Fatalf("Enter() = %v, %v", ok, err)
	}
	if err := ed.Place(builder, model.NewLocation(10, 100, 10, 0)); err != nil {
		t.Fatal(err)
	}
	if ok, err := awaitFuture(t, ed.Exit(builder, false)); !ok || err != nil {
		t.Fatalf("Exit(discard) = %v, %v", ok, err)
	}

	a, _ := registry.Get("warehouse")
	if len(a.RedSpawns) != 0 {
		t.Errorf("discarded edit leaked %d spawns into the definition", len(a.RedSpawns))
	}
}

func TestEditor_SingleSession(t *testing.T) {
	ed, registry, _, _ := newEditorFixture(t)
	first, second := uuid.New(), uuid.New()

	if _, err := registry.Create("warehouse"); err != nil {
		t.Fatal(err)
	}
	if _, err := registry.Create("bunker"); err != nil {
		t.Fatal(err)
	}
	if ok, err := awaitFuture(t, ed.Enter(first, "warehouse")); !ok || err != nil {
		t.Fatalf("Enter() = %v, %v", ok, err)
	}

	ok, err := awaitFuture(t, ed.Enter(second, "bunker"))
	if ok || !errors.Is(err, ErrEditorBusy) {
		t.Errorf("second Enter() = %v, %v; want false, ErrEditorBusy", ok, err)
	}

	if err := ed.Place(second, model.NewLocation(0, 100, 0, 0)); !errors.Is(err, ErrNoSession) {
		t.Errorf("Place() without session error = %v; want ErrNoSession", err)
	}
}

func TestEditor_EnterUnknownArena(t *testing.T) {
	ed, _, _, _ := newEditorFixture(t)
	ok, err := awaitFuture(t, ed.Enter(uuid.New(), "ghost"))
	if ok || !errors.Is(err, arena.ErrArenaNotFound) {
		t.Errorf("Enter(ghost) = %v, %v; want false, ErrArenaNotFound", ok, err)
	}
}

func TestEditor_EnterRestoresDefinitionMarkers(t *testing.T) {
	ed, registry, worlds, _ := newEditorFixture(t)
	builder := uuid.New()

	a, err := registry.Create("warehouse")
	if err != nil {
		t.Fatal(err)
	}
	a.AddSpawn(model.SpawnRed, model.NewLocation(10, 100, 10, 0))
	a.AddSpawn(model.SpawnFreeForAll, model.NewLocation(0, 100, 0, 90))

	if ok, err := awaitFuture(t, ed.Enter(builder, "warehouse")); !ok || err != nil {
		t.Fatalf("Enter() = %v, %v", ok, err)
	}
	found := NewScanner().Scan(worlds.Editor())
	if len(found[model.SpawnRed]) != 1 || len(found[model.SpawnFreeForAll]) != 1 {
		t.Errorf("definition markers not rebuilt: %v", found)
	}
}

func TestEditor_PlaceOutsideBounds(t *testing.T) {
	ed, registry, _, _ := newEditorFixture(t)
	builder := uuid.New()

	a, err := registry.Create("warehouse")
	if err != nil {
		t.Fatal(err)
	}
	min := model.NewLocation(-20, 90, -20, 0)
	max := model.NewLocation(20, 120, 20, 0)
	a.MinBoundary = &min
	a.MaxBoundary = &max

	if ok, err := awaitFuture(t, ed.Enter(builder, "warehouse")); !ok || err != nil {
		t.Fatalf("Enter() = %v, %v", ok, err)
	}
	err = ed.Place(builder, model.NewLocation(500, 100, 0, 0))
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Place(outside) error = %v; want ErrOutOfBounds", err)
	}
}
