package arena

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/udisondev/paintgo/internal/model"
)

var (
	// ErrArenaExists is returned by Create when the name is already taken.
	ErrArenaExists = errors.New("arena already exists")
	// ErrArenaNotFound is returned when no arena has the requested name.
	ErrArenaNotFound = errors.New("arena not found")
)

const registryFile = "arenas.json"

// Registry хранит определения арен и синхронизирует их с JSON файлом на
// диске. Имена сравниваются без учёта регистра.
type Registry struct {
	mu     sync.RWMutex
	dir    string
	arenas map[string]*Arena
}

// NewRegistry loads the registry from dir, creating the directory when
// missing. A malformed file is logged and treated as empty.
func NewRegistry(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating arena dir %s: %w", dir, err)
	}
	r := &Registry{
		dir:    dir,
		arenas: make(map[string]*Arena),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return filepath.Join(r.dir, registryFile)
}

// Reload replaces the in-memory set with the on-disk contents. Missing
// file means an empty registry, a broken file is logged and skipped so a
// bad edit cannot take the whole server down.
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			r.mu.Lock()
			r.arenas = make(map[string]*Arena)
			r.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading arena registry: %w", err)
	}

	var list []*Arena
	if err := json.Unmarshal(data, &list); err != nil {
		slog.Error("arena registry is malformed, keeping empty set",
			"path", r.Path(),
			"error", err)
		r.mu.Lock()
		r.arenas = make(map[string]*Arena)
		r.mu.Unlock()
		return nil
	}

	next := make(map[string]*Arena, len(list))
	for _, a := range list {
		if a == nil || a.Name == "" {
			continue
		}
		next[Key(a.Name)] = a
	}

	r.mu.Lock()
	r.arenas = next
	r.mu.Unlock()

	slog.Info("arena registry loaded", "path", r.Path(), "arenas", len(next))
	return nil
}

// Save пишет весь реестр на диск атомарно, через временный файл.
func (r *Registry) Save() error {
	r.mu.RLock()
	list := make([]*Arena, 0, len(r.arenas))
	for _, a := range r.arenas {
		list = append(list, a)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return Key(list[i].Name) < Key(list[j].Name)
	})

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding arena registry: %w", err)
	}

	tmp := r.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing arena registry: %w", err)
	}
	if err := os.Rename(tmp, r.Path()); err != nil {
		return fmt.Errorf("replacing arena registry: %w", err)
	}
	return nil
}

// Create registers a new disabled arena and persists the registry.
func (r *Registry) Create(name string) (*Arena, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("arena name is empty")
	}

	r.mu.Lock()
	if _, ok := r.arenas[Key(name)]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("creating arena %s: %w", name, ErrArenaExists)
	}
	a := New(name)
	r.arenas[Key(name)] = a
	r.mu.Unlock()

	if err := r.Save(); err != nil {
		// Roll back: the caller is told creation failed, so the name must
		// stay free for a retry.
		r.mu.Lock()
		delete(r.arenas, Key(name))
		r.mu.Unlock()
		return nil, err
	}
	slog.Info("arena created", "name", name)
	return a, nil
}

// Delete removes the arena from the registry and persists the change.
// The schematic blob is the caller's concern.
func (r *Registry) Delete(name string) (*Arena, error) {
	r.mu.Lock()
	a, ok := r.arenas[Key(name)]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("deleting arena %s: %w", name, ErrArenaNotFound)
	}
	delete(r.arenas, Key(name))
	r.mu.Unlock()

	if err := r.Save(); err != nil {
		// Roll back: a deletion the caller was told failed must leave the
		// arena in place.
		r.mu.Lock()
		r.arenas[Key(name)] = a
		r.mu.Unlock()
		return nil, err
	}
	slog.Info("arena deleted", "name", name)
	return a, nil
}

// Get returns the arena by case-insensitive name.
func (r *Registry) Get(name string) (*Arena, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.arenas[Key(name)]
	return a, ok
}

// List returns all arenas sorted by name.
func (r *Registry) List() []*Arena {
	r.mu.RLock()
	list := make([]*Arena, 0, len(r.arenas))
	for _, a := range r.arenas {
		list = append(list, a)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return Key(list[i].Name) < Key(list[j].Name)
	})
	return list
}

// Playable returns enabled arenas with enough spawns for the mode.
func (r *Registry) Playable(gm model.Gamemode) []*Arena {
	var out []*Arena
	for _, a := range r.List() {
		if a.SupportsMode(gm) {
			out = append(out, a)
		}
	}
	return out
}

// Random picks a random playable arena for the mode.
func (r *Registry) Random(gm model.Gamemode) (*Arena, bool) {
	candidates := r.Playable(gm)
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// Watch следит за файлом реестра через fsnotify и перечитывает его при
// изменении. Блокируется до отмены контекста.
func (r *Registry) Watch(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating registry watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: atomic renames replace the inode.
	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watching %s: %w", r.dir, err)
	}

	slog.Info("watching arena registry", "dir", r.dir)
	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != registryFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.Reload(); err != nil {
				slog.Error("reloading arena registry", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("arena registry watcher", "error", err)
		}
	}
}
