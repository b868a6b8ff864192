package command

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/arena"
	"github.com/udisondev/paintgo/internal/game/match"
	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/rank"
	"github.com/udisondev/paintgo/internal/region"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/spawn"
	"github.com/udisondev/paintgo/internal/world"
)

type fixture struct {
	handler  *Handler
	registry *arena.Registry
	store    region.Store
	ranks    *rank.StaticService
	admin    Invoker
	guest    Invoker
}

func newFixture(t *testing.T, deleteRegionFiles bool) *fixture {
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
	lifecycle := arena.NewLifecycle(store, worlds, pool, world.BlockPos{X: 0, Y: 100, Z: 0})

	loop := sched.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	scanner := spawn.NewScanner()
	coord := match.NewCoordinator(loop, worlds, lifecycle, scanner, nil, match.Config{})
	editorBounds := world.Cuboid{
		Min: world.BlockPos{X: -50, Y: 90, Z: -50},
		Max: world.BlockPos{X: 50, Y: 120, Z: 50},
	}
	editor := spawn.NewEditor(registry, lifecycle, scanner, worlds, editorBounds)

	ranks := rank.NewStaticService()
	admin := Invoker{ID: uuid.New(), Name: "op", Location: model.NewLocation(5, 100, 5, 90)}
	ranks.Grant(admin.ID)

	return &fixture{
		handler:  NewHandler(registry, lifecycle, editor, coord, ranks, store, deleteRegionFiles),
		registry: registry,
		store:    store,
		ranks:    ranks,
		admin:    admin,
		guest:    Invoker{ID: uuid.New(), Name: "guest"},
	}
}

func TestHandler_RequiresPermission(t *testing.T) {
	f := newFixture(t, false)
	out := f.handler.Execute(f.guest, []string{"create", "warehouse"})
	if !strings.Contains(out, "permission") {
		t.Errorf("Execute() without permission = %q; want a permission refusal", out)
	}
	if _, ok := f.registry.Get("warehouse"); ok {
		t.Error("unprivileged invocation mutated the registry")
	}
}

func TestHandler_CreateInfoList(t *testing.T) {
	f := newFixture(t, false)

	out := f.handler.Execute(f.admin, []string{"create", "warehouse"})
	if !strings.Contains(out, "warehouse") {
		t.Errorf("create output = %q", out)
	}

	out = f.handler.Execute(f.admin, []string{"create", "WAREHOUSE"})
	if !strings.Contains(out, "Could not create") {
		t.Errorf("duplicate create output = %q; want failure", out)
	}

	out = f.handler.Execute(f.admin, []string{"list"})
	if !strings.Contains(out, "warehouse") || !strings.Contains(out, "disabled") {
		t.Errorf("list output = %q", out)
	}

	out = f.handler.Execute(f.admin, []string{"info", "warehouse"})
	if !strings.Contains(out, "Enabled: false") {
		t.Errorf("info output = %q", out)
	}
}

func TestHandler_EditFlow(t *testing.T) {
	f := newFixture(t, false)
	f.handler.Execute(f.admin, []string{"create", "warehouse"})

	out := f.handler.Execute(f.admin, []string{"edit", "warehouse", "enable"})
	if !strings.Contains(out, "not valid") {
		t.Errorf("enabling an unconfigured arena = %q; want refusal", out)
	}

	f.handler.Execute(f.admin, []string{"edit", "warehouse", "addmode", "team_deathmatch"})

	// Two red and two blue spawns from the operator's position.
	f.handler.Execute(f.admin, []string{"edit", "warehouse", "addspawn", "RED_SPAWN"})
	f.admin.Location = model.NewLocation(8, 100, 5, 90)
	f.handler.Execute(f.admin, []string{"edit", "warehouse", "addspawn", "RED_SPAWN"})
	f.admin.Location = model.NewLocation(-5, 100, -5, 270)
	f.handler.Execute(f.admin, []string{"edit", "warehouse", "addspawn", "BLUE_SPAWN"})
	f.admin.Location = model.NewLocation(-8, 100, -5, 270)
	f.handler.Execute(f.admin, []string{"edit", "warehouse", "addspawn", "BLUE_SPAWN"})

	out = f.handler.Execute(f.admin, []string{"edit", "warehouse", "enable"})
	if !strings.Contains(out, "updated") {
		t.Errorf("enable output = %q", out)
	}

	a, _ := f.registry.Get("warehouse")
	if !a.Enabled || !a.SupportsMode(model.TeamDeathmatch) {
		t.Errorf("arena not playable after edit flow: %+v", a)
	}

	out = f.handler.Execute(f.admin, []string{"edit", "warehouse", "addmode", "paint_the_moon"})
	if !strings.Contains(out, "Unknown gamemode") {
		t.Errorf("bad gamemode output = %q", out)
	}
}

func TestHandler_DeletePolicy(t *testing.T) {
	for _, deleteFiles := range []bool{false, true} {
		f := newFixture(t, deleteFiles)
		f.handler.Execute(f.admin, []string{"create", "warehouse"})

		// Give the arena a region blob.
		scratch := world.New("scratch")
		scratch.SetBlock(world.BlockPos{X: 0, Y: 100, Z: 0}, 1)
		bounds := world.Cuboid{
			Min: world.BlockPos{X: -2, Y: 98, Z: -2},
			Max: world.BlockPos{X: 2, Y: 102, Z: 2},
		}
		if err := f.store.Capture(scratch, bounds, world.BlockPos{X: 0, Y: 100, Z: 0}, false, "warehouse.schem"); err != nil {
			t.Fatal(err)
		}

		out := f.handler.Execute(f.admin, []string{"delete", "warehouse"})
		if !strings.Contains(out, "deleted") {
			t.Errorf("delete output = %q", out)
		}
		if _, ok := f.registry.Get("warehouse"); ok {
			t.Error("arena survived deletion")
		}
		if got := f.store.Exists("warehouse.schem"); got == deleteFiles {
			t.Errorf("region file exists = %v with deleteRegionFiles = %v", got, deleteFiles)
		}
	}
}

func TestHandler_PreloadAndStatus(t *testing.T) {
	f := newFixture(t, false)
	f.handler.Execute(f.admin, []string{"create", "warehouse"})

	scratch := world.New("scratch")
	scratch.SetBlock(world.BlockPos{X: 0, Y: 100, Z: 0}, 1)
	bounds := world.Cuboid{
		Min: world.BlockPos{X: -2, Y: 98, Z: -2},
		Max: world.BlockPos{X: 2, Y: 102, Z: 2},
	}
	if err := f.store.Capture(scratch, bounds, world.BlockPos{X: 0, Y: 100, Z: 0}, false, "warehouse.schem"); err != nil {
		t.Fatal(err)
	}

	out := f.handler.Execute(f.admin, []string{"preload", "warehouse"})
	if !strings.Contains(out, "preloaded") {
		t.Errorf("preload output = %q", out)
	}

	out = f.handler.Execute(f.admin, []string{"status"})
	if !strings.Contains(out, "WAITING") || !strings.Contains(out, "Preloaded arena: warehouse") {
		t.Errorf("status output = %q", out)
	}

	out = f.handler.Execute(f.admin, []string{"unload", "warehouse"})
	if !strings.Contains(out, "unloaded") {
		t.Errorf("unload output = %q", out)
	}
}

func TestHandler_ForceUnknownArena(t *testing.T) {
	f := newFixture(t, false)
	out := f.handler.Execute(f.admin, []string{"force", "team_deathmatch", "ghost"})
	if !strings.Contains(out, "does not exist") {
		t.Errorf("force output = %q", out)
	}
	out = f.handler.Execute(f.admin, []string{"force", "free_for_all"})
	if !strings.Contains(out, "No playable arenas") {
		t.Errorf("force without arenas output = %q", out)
	}
}

func TestHandler_EditorFlow(t *testing.T) {
	f := newFixture(t, false)
	f.handler.Execute(f.admin, []string{"create", "warehouse"})

	out := f.handler.Execute(f.admin, []string{"editor", "enter", "warehouse"})
	if !strings.Contains(out, "Editing arena warehouse") {
		t.Fatalf("editor enter output = %q", out)
	}

	other := Invoker{ID: uuid.New(), Name: "op2"}
	f.ranks.Grant(other.ID)
	out = f.handler.Execute(other, []string{"editor", "enter", "warehouse"})
	if !strings.Contains(out, "Could not open the editor") {
		t.Errorf("second session output = %q; want busy refusal", out)
	}

	for _, mode := range []string{"RED_SPAWN", "BLUE_SPAWN"} {
		out = f.handler.Execute(f.admin, []string{"editor", "mode", mode})
		if !strings.Contains(out, mode) {
			t.Fatalf("editor mode output = %q", out)
		}
		for i := 0; i < 2; i++ {
			f.admin.Location = model.NewLocation(float64(i*4), 100, 10, 0)
			out = f.handler.Execute(f.admin, []string{"editor", "place"})
			if out != "Marker placed." {
				t.Fatalf("editor place output = %q", out)
			}
		}
	}

	out = f.handler.Execute(f.admin, []string{"editor", "save"})
	if out != "Arena saved." {
		t.Fatalf("editor save output = %q", out)
	}

	a, ok := f.registry.Get("warehouse")
	if !ok {
		t.Fatal("arena vanished after editor save")
	}
	if len(a.RedSpawns) != 2 || len(a.BlueSpawns) != 2 {
		t.Errorf("spawns after save = %d red, %d blue; want 2 and 2",
			len(a.RedSpawns), len(a.BlueSpawns))
	}
	if !f.store.Exists(a.SchematicFile) {
		t.Error("editor save did not capture a region file")
	}
}
