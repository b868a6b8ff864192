package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/paintgo/internal/region"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/world"
)

var (
	// ErrArenaOccupied is returned when a load targets a world slot that
	// already holds an arena. The caller must unload or preload instead.
	ErrArenaOccupied = errors.New("arena world is occupied")
	// ErrNothingLoaded is returned by Unload when no arena is active.
	ErrNothingLoaded = errors.New("no arena is loaded")
)

// Lifecycle ставит арены в игровой и редакторский миры и убирает их
// обратно. Тяжёлая вставка блоков идёт в пуле воркеров, учётные поля
// защищены мьютексом.
//
// В игровом мире одновременно живёт не больше одной арены. Preload
// позволяет вставить следующую арену заранее, пока матч не идёт —
// тогда Load на неё срабатывает мгновенно.
type Lifecycle struct {
	store  region.Store
	worlds *world.Manager
	pool   *sched.Pool
	origin world.BlockPos

	mu            sync.Mutex
	active        string
	activeFile    string
	preloaded     string
	preloadedFile string
	editorArena   string
	editorFile    string
	busy          bool
}

// NewLifecycle creates the lifecycle manager pasting at origin.
func NewLifecycle(store region.Store, worlds *world.Manager, pool *sched.Pool, origin world.BlockPos) *Lifecycle {
	return &Lifecycle{
		store:  store,
		worlds: worlds,
		pool:   pool,
		origin: origin,
	}
}

// ActiveName returns the arena currently pasted in the play world.
func (lc *Lifecycle) ActiveName() (string, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.active, lc.active != ""
}

// IsPreloaded reports whether the named arena is pasted and waiting.
func (lc *Lifecycle) IsPreloaded(name string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.preloaded != "" && Key(lc.preloaded) == Key(name)
}

// PreloadedName returns the preloaded arena, if any.
func (lc *Lifecycle) PreloadedName() (string, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.preloaded, lc.preloaded != ""
}

// EditorArena returns the arena currently open in the editor world.
func (lc *Lifecycle) EditorArena() (string, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.editorArena, lc.editorArena != ""
}

// Load ставит арену в игровой мир. Если арена была предзагружена, слот
// переключается мгновенно. Занятый другим именем мир — ошибка: Load
// никогда молча не стирает чужие блоки.
func (lc *Lifecycle) Load(a *Arena) *sched.Future {
	lc.mu.Lock()
	if lc.busy {
		lc.mu.Unlock()
		return sched.Completed(false, fmt.Errorf("loading arena %s: lifecycle is busy", a.Name))
	}
	if lc.preloaded != "" && Key(lc.preloaded) == Key(a.Name) {
		lc.active = lc.preloaded
		lc.activeFile = lc.preloadedFile
		lc.preloaded = ""
		lc.preloadedFile = ""
		lc.mu.Unlock()
		slog.Info("arena promoted from preload", "arena", a.Name)
		return sched.Completed(true, nil)
	}
	if lc.active != "" || lc.preloaded != "" {
		occupant := lc.active
		if occupant == "" {
			occupant = lc.preloaded
		}
		lc.mu.Unlock()
		return sched.Completed(false,
			fmt.Errorf("loading arena %s: world holds %s: %w", a.Name, occupant, ErrArenaOccupied))
	}
	lc.busy = true
	lc.mu.Unlock()

	name := a.Name
	file := a.SchematicFile
	return lc.pool.Async("arena load "+name, func(_ context.Context) (bool, error) {
		err := lc.store.Restore(file, lc.worlds.Arena(), lc.origin, true)

		lc.mu.Lock()
		lc.busy = false
		if err == nil {
			lc.active = name
			lc.activeFile = file
		}
		lc.mu.Unlock()

		if err != nil {
			return false, fmt.Errorf("loading arena %s: %w", name, err)
		}
		slog.Info("arena loaded", "arena", name)
		return true, nil
	})
}

// Unload убирает активную арену из игрового мира.
func (lc *Lifecycle) Unload(a *Arena) *sched.Future {
	lc.mu.Lock()
	if lc.busy {
		lc.mu.Unlock()
		return sched.Completed(false, fmt.Errorf("unloading arena %s: lifecycle is busy", a.Name))
	}
	if lc.active == "" || Key(lc.active) != Key(a.Name) {
		lc.mu.Unlock()
		return sched.Completed(false, fmt.Errorf("unloading arena %s: %w", a.Name, ErrNothingLoaded))
	}
	name := lc.active
	file := lc.activeFile
	lc.busy = true
	lc.mu.Unlock()

	return lc.pool.Async("arena unload "+name, func(_ context.Context) (bool, error) {
		err := lc.store.Clear(file, lc.worlds.Arena(), lc.origin)

		lc.mu.Lock()
		lc.busy = false
		if err == nil {
			lc.active = ""
			lc.activeFile = ""
		}
		lc.mu.Unlock()

		if err != nil {
			return false, fmt.Errorf("unloading arena %s: %w", name, err)
		}
		slog.Info("arena unloaded", "arena", name)
		return true, nil
	})
}

// Preload готовит следующую арену: выгружает предыдущую предзагруженную,
// ставит новую и помечает её как предзагруженную. Последующий Load на
// это имя срабатывает без вставки блоков. Пока идёт матч (есть активная
// арена), Preload отказывает — стирать блоки под игроками нельзя.
func (lc *Lifecycle) Preload(a *Arena) *sched.Future {
	lc.mu.Lock()
	if lc.busy {
		lc.mu.Unlock()
		return sched.Completed(false, fmt.Errorf("preloading arena %s: lifecycle is busy", a.Name))
	}
	if lc.preloaded != "" && Key(lc.preloaded) == Key(a.Name) {
		lc.mu.Unlock()
		return sched.Completed(true, nil)
	}
	if lc.active != "" {
		occupant := lc.active
		lc.mu.Unlock()
		return sched.Completed(false,
			fmt.Errorf("preloading arena %s: arena %s is active: %w", a.Name, occupant, ErrArenaOccupied))
	}
	evictFile := lc.preloadedFile
	lc.busy = true
	lc.mu.Unlock()

	name := a.Name
	file := a.SchematicFile
	return lc.pool.Async("arena preload "+name, func(_ context.Context) (bool, error) {
		if evictFile != "" {
			if err := lc.store.Clear(evictFile, lc.worlds.Arena(), lc.origin); err != nil {
				lc.mu.Lock()
				lc.busy = false
				lc.mu.Unlock()
				return false, fmt.Errorf("preloading arena %s: evicting previous: %w", name, err)
			}
		}
		err := lc.store.Restore(file, lc.worlds.Arena(), lc.origin, true)

		lc.mu.Lock()
		lc.busy = false
		if err == nil {
			lc.preloaded = name
			lc.preloadedFile = file
		} else {
			lc.preloaded = ""
			lc.preloadedFile = ""
		}
		lc.mu.Unlock()

		if err != nil {
			return false, fmt.Errorf("preloading arena %s: %w", name, err)
		}
		slog.Info("arena preloaded", "arena", name)
		return true, nil
	})
}

// ClearPreloaded выгружает предзагруженную арену, если она есть.
func (lc *Lifecycle) ClearPreloaded() *sched.Future {
	lc.mu.Lock()
	if lc.busy || lc.preloaded == "" {
		lc.mu.Unlock()
		return sched.Completed(true, nil)
	}
	name := lc.preloaded
	file := lc.preloadedFile
	lc.busy = true
	lc.mu.Unlock()

	return lc.pool.Async("arena clear preload "+name, func(_ context.Context) (bool, error) {
		err := lc.store.Clear(file, lc.worlds.Arena(), lc.origin)

		lc.mu.Lock()
		lc.busy = false
		if err == nil {
			lc.preloaded = ""
			lc.preloadedFile = ""
		}
		lc.mu.Unlock()

		if err != nil {
			return false, fmt.Errorf("clearing preloaded arena %s: %w", name, err)
		}
		return true, nil
	})
}

// LoadEditor ставит арену в мир редактора вместе с маркерами спавнов.
func (lc *Lifecycle) LoadEditor(a *Arena) *sched.Future {
	lc.mu.Lock()
	if lc.editorArena != "" {
		occupant := lc.editorArena
		lc.mu.Unlock()
		return sched.Completed(false,
			fmt.Errorf("loading arena %s into editor: world holds %s: %w", a.Name, occupant, ErrArenaOccupied))
	}
	lc.editorArena = a.Name
	lc.editorFile = a.SchematicFile
	lc.mu.Unlock()

	name := a.Name
	file := a.SchematicFile
	return lc.pool.Async("editor load "+name, func(_ context.Context) (bool, error) {
		if !lc.store.Exists(file) {
			// A freshly created arena has no blob yet; the editor starts
			// from an empty canvas.
			slog.Info("editor opened empty arena", "arena", name)
			return true, nil
		}
		if err := lc.store.Restore(file, lc.worlds.Editor(), lc.origin, true); err != nil {
			lc.mu.Lock()
			lc.editorArena = ""
			lc.editorFile = ""
			lc.mu.Unlock()
			return false, fmt.Errorf("loading arena %s into editor: %w", name, err)
		}
		slog.Info("arena loaded into editor", "arena", name)
		return true, nil
	})
}

// UnloadEditor очищает мир редактора без сохранения.
func (lc *Lifecycle) UnloadEditor() *sched.Future {
	lc.mu.Lock()
	if lc.editorArena == "" {
		lc.mu.Unlock()
		return sched.Completed(true, nil)
	}
	name := lc.editorArena
	file := lc.editorFile
	lc.editorArena = ""
	lc.editorFile = ""
	lc.mu.Unlock()

	return lc.pool.Async("editor unload "+name, func(_ context.Context) (bool, error) {
		if !lc.store.Exists(file) {
			return true, nil
		}
		if err := lc.store.Clear(file, lc.worlds.Editor(), lc.origin); err != nil {
			return false, fmt.Errorf("unloading editor arena %s: %w", name, err)
		}
		return true, nil
	})
}

// CaptureEditor captures the editor world contents into the arena's
// schematic blob, markers included.
func (lc *Lifecycle) CaptureEditor(a *Arena, bounds world.Cuboid) *sched.Future {
	name := a.Name
	file := a.SchematicFile
	return lc.pool.Async("editor capture "+name, func(_ context.Context) (bool, error) {
		if err := lc.store.Capture(lc.worlds.Editor(), bounds, lc.origin, true, file); err != nil {
			return false, fmt.Errorf("capturing arena %s: %w", name, err)
		}
		slog.Info("arena captured", "arena", name, "file", file)
		return true, nil
	})
}

// Origin returns the paste origin in the play and editor worlds.
func (lc *Lifecycle) Origin() world.BlockPos { return lc.origin }
