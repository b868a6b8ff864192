package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/sched"
)

// Manager кэширует профили онлайн-игроков. Загрузка идёт при входе,
// сохранение — асинхронно через пул воркеров, чтобы матч не ждал диска
// или базы.
type Manager struct {
	store ProfileStore
	pool  *sched.Pool

	mu       sync.RWMutex
	profiles map[uuid.UUID]*model.Profile
}

// NewManager creates the profile manager over the given backend.
func NewManager(store ProfileStore, pool *sched.Pool) *Manager {
	return &Manager{
		store:    store,
		pool:     pool,
		profiles: make(map[uuid.UUID]*model.Profile),
	}
}

// Profile returns the cached profile, if loaded.
func (m *Manager) Profile(id uuid.UUID) (*model.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	return p, ok
}

// LoadProfile returns the player's profile, reading it from the backend
// on first access and creating a fresh one for new players.
func (m *Manager) LoadProfile(ctx context.Context, id uuid.UUID, name string) (*model.Profile, error) {
	m.mu.RLock()
	if p, ok := m.profiles[id]; ok {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	p, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", name, err)
	}
	if p == nil {
		p = model.NewProfile(id, name)
		slog.Info("created new profile", "player", name, "id", id)
	} else if name != "" && p.PlayerName != name {
		// Player renamed since last visit.
		p.PlayerName = name
	}
	p.Touch()

	m.mu.Lock()
	// Another goroutine may have won the load race.
	if cached, ok := m.profiles[id]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.profiles[id] = p
	m.mu.Unlock()
	return p, nil
}

// SaveProfile writes the profile to the backend on a worker. Failures
// are logged; the cached copy stays so the next save can retry.
func (m *Manager) SaveProfile(p *model.Profile) {
	m.pool.Submit("profile save "+p.PlayerID.String(), func(ctx context.Context) error {
		return m.store.Save(ctx, p)
	})
}

// Unload drops the cached profile after a final synchronous save.
func (m *Manager) Unload(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	p, ok := m.profiles[id]
	delete(m.profiles, id)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	if err := m.store.Save(ctx, p); err != nil {
		return fmt.Errorf("saving profile on unload: %w", err)
	}
	return nil
}

// SaveAll synchronously writes every cached profile, for shutdown.
func (m *Manager) SaveAll(ctx context.Context) {
	m.mu.RLock()
	profiles := make([]*model.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		profiles = append(profiles, p)
	}
	m.mu.RUnlock()

	for _, p := range profiles {
		if err := m.store.Save(ctx, p); err != nil {
			slog.Error("saving profile on shutdown", "player", p.PlayerName, "error", err)
		}
	}
	if len(profiles) > 0 {
		slog.Info("profiles saved", "count", len(profiles))
	}
}
