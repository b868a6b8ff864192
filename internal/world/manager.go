package world

import (
	"log/slog"

	"github.com/udisondev/paintgo/internal/model"
)

// Reserved world slot names.
const (
	LobbyWorldName  = "lobby"
	ArenaWorldName  = "arena"
	EditorWorldName = "arena_editor"
)

// Manager owns the three world slots the plugin operates: the lobby,
// the play world arenas are pasted into, and a separate editor world so
// editing never disturbs a live or preloaded match region.
type Manager struct {
	lobby  *World
	arena  *World
	editor *World
}

// NewManager creates the three void world slots.
func NewManager() *Manager {
	m := &Manager{
		lobby:  New(LobbyWorldName),
		arena:  New(ArenaWorldName),
		editor: New(EditorWorldName),
	}
	// Lobby spawns at ground level, arena slots at the paste height so a
	// fallback teleport never drops a player into the void.
	m.lobby.SetSpawnLocation(model.NewLocation(0, 64, 0, 0))
	m.arena.SetSpawnLocation(model.NewLocation(0, 100, 0, 0))
	m.editor.SetSpawnLocation(model.NewLocation(0, 105, 0, 0))

	slog.Info("world slots ready",
		"lobby", m.lobby.Name(),
		"arena", m.arena.Name(),
		"editor", m.editor.Name())
	return m
}

// Lobby returns the lobby world slot.
func (m *Manager) Lobby() *World { return m.lobby }

// Arena returns the play world slot.
func (m *Manager) Arena() *World { return m.arena }

// Editor returns the editing world slot.
func (m *Manager) Editor() *World { return m.editor }
