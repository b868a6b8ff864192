package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/arena"
	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/world"
)

var (
	// ErrNoSession is returned when the player has no open editor session.
	ErrNoSession = errors.New("no editor session")
	// ErrEditorBusy is returned when another player holds the editor world.
	ErrEditorBusy = errors.New("editor is busy")
	// ErrOutOfBounds is returned when a marker is placed outside the
	// arena's recorded boundary.
	ErrOutOfBounds = errors.New("location is outside the arena")
)

// removeTolerance is how close a player must stand to a marker to
// remove it.
const removeTolerance = 1.5

// Session is one player's open arena editing session.
type Session struct {
	PlayerID  uuid.UUID
	ArenaName string
	Mode      model.SpawnType
}

// Editor владеет миром редактора: загружает туда арену, расставляет
// маркеры из её определения и при сохранении собирает их обратно в
// списки спавнов и новую схематику.
//
// В редакторе одновременно работает один игрок.
type Editor struct {
	registry  *arena.Registry
	lifecycle *arena.Lifecycle
	scanner   *Scanner
	worlds    *world.Manager
	bounds    world.Cuboid

	mu      sync.Mutex
	session *Session
}

// NewEditor creates the editor. bounds is the capture cuboid in the
// editor world, shared with the play world paste region.
func NewEditor(registry *arena.Registry, lifecycle *arena.Lifecycle, scanner *Scanner, worlds *world.Manager, bounds world.Cuboid) *Editor {
	return &Editor{
		registry:  registry,
		lifecycle: lifecycle,
		scanner:   scanner,
		worlds:    worlds,
		bounds:    bounds,
	}
}

// Session returns the player's open session.
func (e *Editor) Session(playerID uuid.UUID) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.session.PlayerID != playerID {
		return nil, false
	}
	return e.session, true
}

// Enter opens an editing session: loads the arena into the editor world
// and rebuilds its markers from the registry definition, which is the
// source of truth for spawn lists.
func (e *Editor) Enter(playerID uuid.UUID, arenaName string) *sched.Future {
	a, ok := e.registry.Get(arenaName)
	if !ok {
		return sched.Completed(false, fmt.Errorf("entering editor: %w", arena.ErrArenaNotFound))
	}

	e.mu.Lock()
	if e.session != nil {
		holder := e.session.PlayerID
		e.mu.Unlock()
		return sched.Completed(false, fmt.Errorf("entering editor for %s: held by %s: %w", arenaName, holder, ErrEditorBusy))
	}
	e.session = &Session{
		PlayerID:  playerID,
		ArenaName: a.Name,
		Mode:      model.SpawnRed,
	}
	e.mu.Unlock()

	out := sched.NewFuture()
	load := e.lifecycle.LoadEditor(a)
	go func() {
		ok, err := load.Await(context.Background())
		if !ok {
			e.mu.Lock()
			e.session = nil
			e.mu.Unlock()
			out.Complete(false, err)
			return
		}
		// The pasted schematic may carry stale markers; the definition wins.
		e.scanner.ClearAll(e.worlds.Editor())
		placed := 0
		for _, st := range model.SpawnTypes() {
			for _, loc := range a.Spawns(st) {
				e.scanner.Place(e.worlds.Editor(), st, loc)
				placed++
			}
		}
		slog.Info("editor session opened",
			"player", playerID,
			"arena", a.Name,
			"markers", placed)
		out.Complete(true, nil)
	}()
	return out
}

// SetMode switches which spawn type the player is placing.
func (e *Editor) SetMode(playerID uuid.UUID, st model.SpawnType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.session.PlayerID != playerID {
		return ErrNoSession
	}
	e.session.Mode = st
	return nil
}

// Place drops a marker of the session's current mode at loc.
func (e *Editor) Place(playerID uuid.UUID, loc model.Location) error {
	e.mu.Lock()
	if e.session == nil || e.session.PlayerID != playerID {
		e.mu.Unlock()
		return ErrNoSession
	}
	name := e.session.ArenaName
	mode := e.session.Mode
	e.mu.Unlock()

	a, ok := e.registry.Get(name)
	if !ok {
		return fmt.Errorf("placing marker: %w", arena.ErrArenaNotFound)
	}
	if !a.WithinBounds(loc) {
		return fmt.Errorf("placing %s marker: %w", mode, ErrOutOfBounds)
	}
	e.scanner.Place(e.worlds.Editor(), mode, loc)
	return nil
}

// Remove deletes the marker nearest to loc.
func (e *Editor) Remove(playerID uuid.UUID, loc model.Location) error {
	e.mu.Lock()
	if e.session == nil || e.session.PlayerID != playerID {
		e.mu.Unlock()
		return ErrNoSession
	}
	e.mu.Unlock()

	if !e.scanner.Remove(e.worlds.Editor(), loc, removeTolerance) {
		return errors.New("no marker near that location")
	}
	return nil
}

// Exit closes the session. With save, the editor world's markers replace
// the arena's spawn lists, the region is recaptured with the markers
// embedded and the registry is persisted; otherwise all edits are
// dropped. Either way the editor world is cleared.
func (e *Editor) Exit(playerID uuid.UUID, save bool) *sched.Future {
	e.mu.Lock()
	if e.session == nil || e.session.PlayerID != playerID {
		e.mu.Unlock()
		return sched.Completed(false, ErrNoSession)
	}
	name := e.session.ArenaName
	e.session = nil
	e.mu.Unlock()

	if !save {
		e.scanner.ClearAll(e.worlds.Editor())
		slog.Info("editor session discarded", "player", playerID, "arena", name)
		return e.lifecycle.UnloadEditor()
	}

	a, ok := e.registry.Get(name)
	if !ok {
		return sched.Completed(false, fmt.Errorf("saving arena %s: %w", name, arena.ErrArenaNotFound))
	}

	found := e.scanner.Scan(e.worlds.Editor())
	a.ClearAllSpawns()
	for st, locs := range found {
		for _, loc := range locs {
			a.AddSpawn(st, loc)
		}
	}
	a.SetBounds(e.bounds)

	out := sched.NewFuture()
	capture := e.lifecycle.CaptureEditor(a, e.bounds)
	go func() {
		ok, err := capture.Await(context.Background())
		if !ok {
			out.Complete(false, err)
			return
		}
		if err := e.registry.Save(); err != nil {
			out.Complete(false, fmt.Errorf("saving arena %s: %w", name, err))
			return
		}
		unload := e.lifecycle.UnloadEditor()
		ok, err = unload.Await(context.Background())
		slog.Info("editor session saved",
			"player", playerID,
			"arena", name,
			"spawns", a.SpawnCount())
		out.Complete(ok, err)
	}()
	return out
}
