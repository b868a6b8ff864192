// Package match drives a single paintball round through its state
// machine: roster assignment, arena load, placement, the countdown and
// teardown back to the lobby.
package match

import (
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/arena"
	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/world"
)

// State is the match lifecycle phase.
type State int32

const (
	StateWaiting State = iota
	StateActive
	StateEnding
)

var stateNames = [...]string{
	StateWaiting: "WAITING",
	StateActive:  "ACTIVE",
	StateEnding:  "ENDING",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Player is the slice of the connected player the coordinator needs.
// Реализация живёт на стороне хоста; координатору важны только
// телепорт, инвентарь и сообщения.
type Player interface {
	ID() uuid.UUID
	Name() string
	Teleport(w *world.World, loc model.Location) error
	SendMessage(msg string)
	ClearInventory()
	Equip(team model.Team) error
}

// ArenaLoader pastes arenas into and out of the play world.
// *arena.Lifecycle satisfies it.
type ArenaLoader interface {
	Load(a *arena.Arena) *sched.Future
	Unload(a *arena.Arena) *sched.Future
}

// MarkerScanner turns pasted spawn marker entities back into typed
// coordinate lists. *spawn.Scanner satisfies it.
type MarkerScanner interface {
	Scan(w *world.World) map[model.SpawnType][]model.Location
	ClearAll(w *world.World) int
}

// StatsSink consumes the final match snapshot. *stats.Engine satisfies
// it. Called only for matches whose arena loaded successfully.
type StatsSink interface {
	MatchEnded(res Result)
}

// Participant is one player's per-match record.
type Participant struct {
	Player Player
	Team   model.Team
	Lives  int32 // model.UnlimitedLives when the mode has no limit
	Stats  *model.MatchStats
}

// Alive reports whether the participant still has lives left.
func (p *Participant) Alive() bool {
	return p.Lives == model.UnlimitedLives || p.Lives > 0
}

// Result is the end-of-match snapshot handed to the statistics engine.
// All maps are copies; the engine may keep them past the teardown.
type Result struct {
	Gamemode model.Gamemode
	Arena    string
	Duration time.Duration

	Teams map[uuid.UUID]model.Team
	Lives map[uuid.UUID]int32
	Stats map[uuid.UUID]*model.MatchStats
	Names map[uuid.UUID]string
}

// Snapshot is the externally visible match status.
type Snapshot struct {
	State     State
	Gamemode  model.Gamemode
	Arena     string
	Remaining time.Duration
	Players   int
}
