// Package command implements the operator command surface: arena
// management, preloading and match control. The host parses chat input
// into argument vectors; this package owns dispatch and responses.
package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/arena"
	"github.com/udisondev/paintgo/internal/game/match"
	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/rank"
	"github.com/udisondev/paintgo/internal/region"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/spawn"
)

// awaitTimeout bounds how long a command waits for an async arena
// operation before reporting.
const awaitTimeout = 30 * time.Second

// Invoker identifies who runs a command and where they stand. The
// location feeds spawn-editing subcommands.
type Invoker struct {
	ID       uuid.UUID
	Name     string
	Location model.Location
}

// Handler диспетчеризует подкоманды /paintball. Все мутации требуют
// права администратора.
type Handler struct {
	registry  *arena.Registry
	lifecycle *arena.Lifecycle
	editor    *spawn.Editor
	coord     *match.Coordinator
	ranks     rank.Service
	store     region.Store

	// deleteRegionFiles controls whether arena deletion also removes the
	// schematic blob.
	deleteRegionFiles bool
}

// NewHandler wires the command handler.
func NewHandler(registry *arena.Registry, lifecycle *arena.Lifecycle, editor *spawn.Editor, coord *match.Coordinator, ranks rank.Service, store region.Store, deleteRegionFiles bool) *Handler {
	return &Handler{
		registry:          registry,
		lifecycle:         lifecycle,
		editor:            editor,
		coord:             coord,
		ranks:             ranks,
		store:             store,
		deleteRegionFiles: deleteRegionFiles,
	}
}

// Execute runs one command invocation and returns the user-facing
// response.
func (h *Handler) Execute(inv Invoker, args []string) string {
	if len(args) == 0 {
		return h.usage()
	}
	if !h.ranks.HasPermission(inv.ID, rank.PermAdmin) {
		return "You do not have permission to manage paintball arenas."
	}

	sub, rest := strings.ToLower(args[0]), args[1:]
	switch sub {
	case "create":
		return h.create(rest)
	case "delete":
		return h.delete(rest)
	case "list":
		return h.list()
	case "info":
		return h.info(rest)
	case "edit":
		return h.edit(inv, rest)
	case "editor":
		return h.editorOp(inv, rest)
	case "preload":
		return h.preload(rest)
	case "unload":
		return h.unload(rest)
	case "reload":
		return h.reload()
	case "force":
		return h.force(rest)
	case "random":
		return h.random()
	case "status":
		return h.status()
	default:
		return h.usage()
	}
}

func (h *Handler) usage() string {
	return "Usage: /paintball <create|delete|list|info|edit|editor|preload|unload|reload|force|random|status>"
}

func (h *Handler) create(args []string) string {
	if len(args) != 1 {
		return "Usage: /paintball create <name>"
	}
	a, err := h.registry.Create(args[0])
	if err != nil {
		return fmt.Sprintf("Could not create arena: %v", err)
	}
	return fmt.Sprintf("Arena %s created (disabled). Configure modes and spawns, then enable it.", a.Name)
}

func (h *Handler) delete(args []string) string {
	if len(args) != 1 {
		return "Usage: /paintball delete <name>"
	}
	a, err := h.registry.Delete(args[0])
	if err != nil {
		return fmt.Sprintf("Could not delete arena: %v", err)
	}
	if h.deleteRegionFiles {
		if err := h.store.Remove(a.SchematicFile); err != nil {
			return fmt.Sprintf("Arena %s deleted, but its region file could not be removed: %v", a.Name, err)
		}
		return fmt.Sprintf("Arena %s and its region file deleted.", a.Name)
	}
	return fmt.Sprintf("Arena %s deleted. Region file %s kept on disk.", a.Name, a.SchematicFile)
}

func (h *Handler) list() string {
	arenas := h.registry.List()
	if len(arenas) == 0 {
		return "No arenas are registered."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Arenas (%d):", len(arenas))
	for _, a := range arenas {
		state := "disabled"
		if a.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(&b, "\n  %s [%s] modes=%d spawns=%d", a.Name, state, len(a.CompatibleModes), a.SpawnCount())
	}
	return b.String()
}

func (h *Handler) info(args []string) string {
	if len(args) != 1 {
		return "Usage: /paintball info <name>"
	}
	a, ok := h.registry.Get(args[0])
	if !ok {
		return fmt.Sprintf("Arena %s does not exist.", args[0])
	}

	modes := make([]string, 0, len(a.CompatibleModes))
	for _, gm := range a.CompatibleModes {
		modes = append(modes, gm.DisplayName())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Arena %s", a.Name)
	fmt.Fprintf(&b, "\n  Enabled: %v  Valid: %v", a.Enabled, a.IsValid())
	fmt.Fprintf(&b, "\n  Region file: %s (present: %v)", a.SchematicFile, h.store.Exists(a.SchematicFile))
	fmt.Fprintf(&b, "\n  Modes: %s", strings.Join(modes, ", "))
	fmt.Fprintf(&b, "\n  Spawns: %d red, %d blue, %d ffa, %d red flag, %d blue flag",
		len(a.RedSpawns), len(a.BlueSpawns), len(a.FreeForAllSpawns),
		len(a.RedFlagSpawns), len(a.BlueFlagSpawns))
	return b.String()
}

func (h *Handler) edit(inv Invoker, args []string) string {
	if len(args) < 2 {
		return "Usage: /paintball edit <name> <enable|disable|addmode|removemode|addspawn|removespawn|clearspawns> ..."
	}
	a, ok := h.registry.Get(args[0])
	if !ok {
		return fmt.Sprintf("Arena %s does not exist.", args[0])
	}

	op, rest := strings.ToLower(args[1]), args[2:]
	switch op {
	case "enable":
		if !a.IsValid() {
			return fmt.Sprintf("Arena %s is not valid yet: check modes and spawn counts.", a.Name)
		}
		a.Enabled = true
	case "disable":
		a.Enabled = false
	case "addmode":
		if len(rest) != 1 {
			return "Usage: /paintball edit <name> addmode <gamemode>"
		}
		gm, ok := model.ParseGamemode(rest[0])
		if !ok {
			return fmt.Sprintf("Unknown gamemode %q.", rest[0])
		}
		a.AddMode(gm)
	case "removemode":
		if len(rest) != 1 {
			return "Usage: /paintball edit <name> removemode <gamemode>"
		}
		gm, ok := model.ParseGamemode(rest[0])
		if !ok {
			return fmt.Sprintf("Unknown gamemode %q.", rest[0])
		}
		a.RemoveMode(gm)
	case "addspawn":
		if len(rest) != 1 {
			return "Usage: /paintball edit <name> addspawn <spawntype>"
		}
		st, ok := model.ParseSpawnType(rest[0])
		if !ok {
			return fmt.Sprintf("Unknown spawn type %q.", rest[0])
		}
		a.AddSpawn(st, inv.Location)
	case "removespawn":
		if len(rest) != 1 {
			return "Usage: /paintball edit <name> removespawn <spawntype>"
		}
		st, ok := model.ParseSpawnType(rest[0])
		if !ok {
			return fmt.Sprintf("Unknown spawn type %q.", rest[0])
		}
		if !a.RemoveSpawn(st, inv.Location) {
			return "No spawn of that type near you."
		}
	case "clearspawns":
		if len(rest) == 1 {
			st, ok := model.ParseSpawnType(rest[0])
			if !ok {
				return fmt.Sprintf("Unknown spawn type %q.", rest[0])
			}
			a.ClearSpawns(st)
		} else {
			a.ClearAllSpawns()
		}
	default:
		return fmt.Sprintf("Unknown edit operation %q.", op)
	}

	if err := h.registry.Save(); err != nil {
		return fmt.Sprintf("Edit applied but saving the registry failed: %v", err)
	}
	return fmt.Sprintf("Arena %s updated.", a.Name)
}

// editorOp drives the in-world marker editor: the invoker walks the
// arena placing and removing spawn markers, then saves or discards.
func (h *Handler) editorOp(inv Invoker, args []string) string {
	if len(args) < 1 {
		return "Usage: /paintball editor <enter|mode|place|remove|save|discard>"
	}

	op, rest := strings.ToLower(args[0]), args[1:]
	switch op {
	case "enter":
		if len(rest) != 1 {
			return "Usage: /paintball editor enter <name>"
		}
		if ok, err := h.await(h.editor.Enter(inv.ID, rest[0])); !ok {
			return fmt.Sprintf("Could not open the editor: %v", err)
		}
		sess, _ := h.editor.Session(inv.ID)
		return fmt.Sprintf("Editing arena %s. Marker mode: %s.", sess.ArenaName, sess.Mode)
	case "mode":
		if len(rest) != 1 {
			return "Usage: /paintball editor mode <spawntype>"
		}
		st, ok := model.ParseSpawnType(rest[0])
		if !ok {
			return fmt.Sprintf("Unknown spawn type %q.", rest[0])
		}
		if err := h.editor.SetMode(inv.ID, st); err != nil {
			return fmt.Sprintf("Could not switch marker mode: %v", err)
		}
		return fmt.Sprintf("Marker mode set to %s.", st)
	case "place":
		if err := h.editor.Place(inv.ID, inv.Location); err != nil {
			return fmt.Sprintf("Could not place marker: %v", err)
		}
		return "Marker placed."
	case "remove":
		if err := h.editor.Remove(inv.ID, inv.Location); err != nil {
			return fmt.Sprintf("Could not remove marker: %v", err)
		}
		return "Marker removed."
	case "save":
		if ok, err := h.await(h.editor.Exit(inv.ID, true)); !ok {
			return fmt.Sprintf("Saving the arena failed: %v", err)
		}
		return "Arena saved."
	case "discard":
		if ok, err := h.await(h.editor.Exit(inv.ID, false)); !ok {
			return fmt.Sprintf("Closing the editor failed: %v", err)
		}
		return "Editor closed, changes discarded."
	default:
		return fmt.Sprintf("Unknown editor operation %q.", op)
	}
}

func (h *Handler) preload(args []string) string {
	if len(args) != 1 {
		return "Usage: /paintball preload <name>"
	}
	a, ok := h.registry.Get(args[0])
	if !ok {
		return fmt.Sprintf("Arena %s does not exist.", args[0])
	}
	if ok, err := h.await(h.lifecycle.Preload(a)); !ok {
		return fmt.Sprintf("Preloading %s failed: %v", a.Name, err)
	}
	return fmt.Sprintf("Arena %s preloaded.", a.Name)
}

func (h *Handler) unload(args []string) string {
	if len(args) != 1 {
		return "Usage: /paintball unload <name>"
	}
	a, ok := h.registry.Get(args[0])
	if !ok {
		return fmt.Sprintf("Arena %s does not exist.", args[0])
	}
	if h.lifecycle.IsPreloaded(a.Name) {
		if ok, err := h.await(h.lifecycle.ClearPreloaded()); !ok {
			return fmt.Sprintf("Unloading %s failed: %v", a.Name, err)
		}
		return fmt.Sprintf("Arena %s unloaded.", a.Name)
	}
	if ok, err := h.await(h.lifecycle.Unload(a)); !ok {
		return fmt.Sprintf("Unloading %s failed: %v", a.Name, err)
	}
	return fmt.Sprintf("Arena %s unloaded.", a.Name)
}

func (h *Handler) reload() string {
	if err := h.registry.Reload(); err != nil {
		return fmt.Sprintf("Registry reload failed: %v", err)
	}
	return fmt.Sprintf("Registry reloaded: %d arenas.", len(h.registry.List()))
}

// force preloads the named arena (or a random playable one) for the
// given gamemode, so the next match starts without paste latency.
func (h *Handler) force(args []string) string {
	if len(args) < 1 {
		return "Usage: /paintball force <gamemode> [arena]"
	}
	gm, ok := model.ParseGamemode(args[0])
	if !ok {
		return fmt.Sprintf("Unknown gamemode %q.", args[0])
	}

	var a *arena.Arena
	if len(args) >= 2 {
		a, ok = h.registry.Get(args[1])
		if !ok {
			return fmt.Sprintf("Arena %s does not exist.", args[1])
		}
		if !a.SupportsMode(gm) {
			return fmt.Sprintf("Arena %s does not support %s.", a.Name, gm.DisplayName())
		}
	} else {
		a, ok = h.registry.Random(gm)
		if !ok {
			return fmt.Sprintf("No playable arenas for %s.", gm.DisplayName())
		}
	}

	if ok, err := h.await(h.lifecycle.Preload(a)); !ok {
		return fmt.Sprintf("Preloading %s failed: %v", a.Name, err)
	}
	return fmt.Sprintf("Next match: %s on %s (preloaded).", gm.DisplayName(), a.Name)
}

// random picks a random gamemode with at least one playable arena and
// preloads a random arena for it.
func (h *Handler) random() string {
	modes := model.Gamemodes()
	for _, gm := range append([]model.Gamemode{model.RandomGamemode()}, modes...) {
		if a, ok := h.registry.Random(gm); ok {
			if ok, err := h.await(h.lifecycle.Preload(a)); !ok {
				return fmt.Sprintf("Preloading %s failed: %v", a.Name, err)
			}
			return fmt.Sprintf("Next match: %s on %s (preloaded).", gm.DisplayName(), a.Name)
		}
	}
	return "No playable arenas for any gamemode."
}

func (h *Handler) status() string {
	snap := h.coord.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s", snap.State)
	if snap.State != match.StateWaiting {
		fmt.Fprintf(&b, " — %s on %s, %s left, %d players",
			snap.Gamemode.DisplayName(), snap.Arena, snap.Remaining, snap.Players)
	}
	if name, ok := h.lifecycle.ActiveName(); ok {
		fmt.Fprintf(&b, "\nActive arena: %s", name)
	}
	if name, ok := h.lifecycle.PreloadedName(); ok {
		fmt.Fprintf(&b, "\nPreloaded arena: %s", name)
	}
	return b.String()
}

func (h *Handler) await(fut *sched.Future) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awaitTimeout)
	defer cancel()
	return fut.Await(ctx)
}
