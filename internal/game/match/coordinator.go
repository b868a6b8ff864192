package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/arena"
	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/world"
)

var (
	// ErrMatchRunning is returned by Start when a match is not WAITING.
	ErrMatchRunning = errors.New("a match is already running")
	// ErrNotEnoughPlayers is returned when the roster is below the
	// gamemode minimum.
	ErrNotEnoughPlayers = errors.New("not enough players")
	// ErrArenaNotPlayable is returned when the arena does not support
	// the requested gamemode.
	ErrArenaNotPlayable = errors.New("arena does not support this gamemode")
)

// Config tunes the coordinator.
type Config struct {
	// ResultDelay is how long the result screen is shown before players
	// return to the lobby.
	ResultDelay time.Duration
	// FallbackSpawn is used when an arena carries no markers for a role.
	FallbackSpawn model.Location
}

// Coordinator гоняет матч по циклу WAITING → ACTIVE → ENDING → WAITING.
// Все мутации ростера идут через мьютекс, переходы состояния — через
// atomic CAS, так что повторный старт или двойное завершение
// отбрасываются без гонок.
type Coordinator struct {
	loop    *sched.Loop
	worlds  *world.Manager
	loader  ArenaLoader
	markers MarkerScanner
	sink    StatsSink
	cfg     Config

	state atomic.Int32

	mu        sync.RWMutex
	gamemode  model.Gamemode
	arena     *arena.Arena
	parts     map[uuid.UUID]*Participant
	startedAt time.Time
	remaining int32 // seconds
	loadedOK  bool
	countdown *sched.Task
	// generation grows on every Start; async continuations carry the
	// value they were started with and bail out on a stale match.
	generation uint64
}

// NewCoordinator wires the match coordinator. sink may be nil in tests.
func NewCoordinator(loop *sched.Loop, worlds *world.Manager, loader ArenaLoader, markers MarkerScanner, sink StatsSink, cfg Config) *Coordinator {
	return &Coordinator{
		loop:    loop,
		worlds:  worlds,
		loader:  loader,
		markers: markers,
		sink:    sink,
		cfg:     cfg,
		parts:   make(map[uuid.UUID]*Participant),
	}
}

// State returns the current lifecycle phase.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Snapshot returns the externally visible match status.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{
		State:     c.State(),
		Gamemode:  c.gamemode,
		Remaining: time.Duration(c.remaining) * time.Second,
		Players:   len(c.parts),
	}
	if c.arena != nil {
		snap.Arena = c.arena.Name
	}
	return snap
}

// Participant returns the per-match record for the player.
func (c *Coordinator) Participant(id uuid.UUID) (*Participant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.parts[id]
	return p, ok
}

// Start принимает ростер и арену и запускает матч. Отказывает сразу,
// если матч уже идёт, игроков мало или арена не тянет режим. Загрузка
// арены идёт асинхронно; при её провале матч сворачивается и статистика
// не записывается.
func (c *Coordinator) Start(players []Player, gm model.Gamemode, a *arena.Arena) *sched.Future {
	if len(players) < gm.MinPlayers() {
		return sched.Completed(false,
			fmt.Errorf("starting %s with %d players (minimum %d): %w",
				gm, len(players), gm.MinPlayers(), ErrNotEnoughPlayers))
	}
	if !a.SupportsMode(gm) {
		return sched.Completed(false,
			fmt.Errorf("starting %s on %s: %w", gm, a.Name, ErrArenaNotPlayable))
	}
	if !c.state.CompareAndSwap(int32(StateWaiting), int32(StateActive)) {
		return sched.Completed(false,
			fmt.Errorf("starting %s: state is %s: %w", gm, c.State(), ErrMatchRunning))
	}

	c.mu.Lock()
	c.gamemode = gm
	c.arena = a
	c.parts = c.assignTeams(players, gm)
	c.startedAt = time.Now()
	c.remaining = int32(gm.Duration() / time.Second)
	c.loadedOK = false
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	slog.Info("match starting",
		"gamemode", gm,
		"arena", a.Name,
		"players", len(players))

	out := sched.NewFuture()
	load := c.loader.Load(a)
	go func() {
		ok, err := load.Await(context.Background())
		c.loop.Invoke(func() {
			// The match may have been ended (or even restarted) while the
			// paste was in flight; a stale continuation must not touch it.
			if !c.currentMatch(gen) {
				slog.Warn("arena load finished after the match ended", "arena", a.Name)
				out.Complete(false,
					fmt.Errorf("starting on %s: match ended before the arena loaded", a.Name))
				return
			}
			if !ok {
				slog.Error("arena load failed, aborting match",
					"arena", a.Name,
					"error", err)
				c.abort()
				out.Complete(false, err)
				return
			}
			c.beginPlay()
			out.Complete(true, nil)
		})
	}()
	return out
}

// currentMatch reports whether the match started with the given
// generation is still the active one.
func (c *Coordinator) currentMatch(gen uint64) bool {
	if c.State() != StateActive {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation == gen
}

// assignTeams builds the roster per gamemode rule. Team modes alternate
// red/blue by join order; free-for-all puts everyone on the free
// pseudo-team; juggernaut promotes a fraction of a shuffled roster with
// a single life against three for the hunters.
func (c *Coordinator) assignTeams(players []Player, gm model.Gamemode) map[uuid.UUID]*Participant {
	parts := make(map[uuid.UUID]*Participant, len(players))

	switch {
	case gm == model.Juggernaut:
		shuffled := make([]Player, len(players))
		copy(shuffled, players)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		count := max(1, int(float64(len(shuffled))*gm.JuggernautFraction()))
		for i, p := range shuffled {
			if i < count {
				parts[p.ID()] = &Participant{
					Player: p,
					Team:   model.TeamJuggernaut,
					Lives:  1,
					Stats:  model.NewMatchStats(p.ID()),
				}
			} else {
				parts[p.ID()] = &Participant{
					Player: p,
					Team:   model.TeamPlayers,
					Lives:  gm.Lives(),
					Stats:  model.NewMatchStats(p.ID()),
				}
			}
		}
	case gm.HasTeams():
		for i, p := range players {
			team := model.TeamRed
			if i%2 == 1 {
				team = model.TeamBlue
			}
			parts[p.ID()] = &Participant{
				Player: p,
				Team:   team,
				Lives:  gm.Lives(),
				Stats:  model.NewMatchStats(p.ID()),
			}
		}
	default:
		for _, p := range players {
			parts[p.ID()] = &Participant{
				Player: p,
				Team:   model.TeamFree,
				Lives:  gm.Lives(),
				Stats:  model.NewMatchStats(p.ID()),
			}
		}
	}
	return parts
}

// beginPlay places the roster onto the pasted arena. Runs on the loop.
func (c *Coordinator) beginPlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	spawns := c.markers.Scan(c.worlds.Arena())

	for _, p := range c.parts {
		st := model.SpawnTypeForTeam(p.Team)
		loc := c.cfg.FallbackSpawn
		if list := spawns[st]; len(list) > 0 {
			loc = list[rand.IntN(len(list))]
		} else {
			slog.Warn("no spawn markers for role, using fallback",
				"arena", c.arena.Name,
				"role", st)
		}
		p.Player.ClearInventory()
		if err := p.Player.Equip(p.Team); err != nil {
			slog.Error("equipping player", "player", p.Player.Name(), "error", err)
		}
		if err := p.Player.Teleport(c.worlds.Arena(), loc); err != nil {
			slog.Error("teleporting player", "player", p.Player.Name(), "error", err)
		}
	}

	// Markers are consumed; players must not see them.
	c.markers.ClearAll(c.worlds.Arena())

	c.loadedOK = true
	c.countdown = c.loop.Repeat(time.Second, c.tick)

	msg := fmt.Sprintf("Game started! %s on %s", c.gamemode.DisplayName(), c.arena.Name)
	for _, p := range c.parts {
		p.Player.SendMessage(msg)
	}
	slog.Info("match active", "gamemode", c.gamemode, "arena", c.arena.Name)
}

// tick runs once per second on the loop while the match is ACTIVE.
func (c *Coordinator) tick() {
	if c.State() != StateActive {
		return
	}

	c.mu.Lock()
	c.remaining--
	remaining := c.remaining
	c.mu.Unlock()

	if remaining <= 0 {
		c.End()
		return
	}
	if remaining%60 == 0 || remaining <= 10 {
		c.broadcast(fmt.Sprintf("Time remaining: %ds", remaining))
	}
}

// End завершает матч: гасит таймер, отдаёт снапшот движку статистики
// (только если арена загрузилась) и после паузы возвращает всех в лобби.
// Вызов вне ACTIVE — no-op.
func (c *Coordinator) End() {
	if !c.state.CompareAndSwap(int32(StateActive), int32(StateEnding)) {
		return
	}

	c.mu.Lock()
	if c.countdown != nil {
		c.countdown.Cancel()
		c.countdown = nil
	}
	res := c.snapshotResultLocked()
	loadedOK := c.loadedOK
	c.mu.Unlock()

	if loadedOK && c.sink != nil {
		c.sink.MatchEnded(res)
	} else {
		slog.Warn("match did not load successfully, skipping stats", "arena", res.Arena)
	}
	c.broadcast("Match over!")

	c.loop.InvokeLater(c.cfg.ResultDelay, c.teardown)
}

// abort tears the match down without recording anything. Runs on the
// loop, only before the countdown started.
func (c *Coordinator) abort() {
	c.state.Store(int32(StateEnding))
	c.broadcast("Match cancelled: arena failed to load")
	c.teardown()
}

// teardown returns everyone to the lobby and resets per-match state.
// Runs on the loop.
func (c *Coordinator) teardown() {
	c.mu.Lock()
	parts := c.parts
	a := c.arena
	c.parts = make(map[uuid.UUID]*Participant)
	c.arena = nil
	c.loadedOK = false
	c.mu.Unlock()

	lobby := c.worlds.Lobby()
	for _, p := range parts {
		p.Player.ClearInventory()
		if err := p.Player.Teleport(lobby, lobby.SpawnLocation()); err != nil {
			slog.Error("returning player to lobby", "player", p.Player.Name(), "error", err)
		}
	}
	if a != nil {
		c.loader.Unload(a)
	}

	c.state.Store(int32(StateWaiting))
	slog.Info("match finished, waiting for the next one")
}

// snapshotResultLocked builds the stats snapshot. Surviving juggernauts
// get the full match duration as survival time.
func (c *Coordinator) snapshotResultLocked() Result {
	res := Result{
		Gamemode: c.gamemode,
		Duration: time.Since(c.startedAt),
		Teams:    make(map[uuid.UUID]model.Team, len(c.parts)),
		Lives:    make(map[uuid.UUID]int32, len(c.parts)),
		Stats:    make(map[uuid.UUID]*model.MatchStats, len(c.parts)),
		Names:    make(map[uuid.UUID]string, len(c.parts)),
	}
	if c.arena != nil {
		res.Arena = c.arena.Name
	}
	for id, p := range c.parts {
		if c.gamemode == model.Juggernaut && p.Team == model.TeamJuggernaut && p.Alive() {
			p.Stats.JuggernautSurvival = res.Duration
		}
		res.Teams[id] = p.Team
		res.Lives[id] = p.Lives
		res.Stats[id] = p.Stats.Clone()
		res.Names[id] = p.Player.Name()
	}
	return res
}

func (c *Coordinator) broadcast(msg string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.parts {
		p.Player.SendMessage(msg)
	}
}

// RecordShot counts a fired paintball for the player.
func (c *Coordinator) RecordShot(id uuid.UUID) {
	if c.State() != StateActive {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.parts[id]; ok {
		p.Stats.AddShot()
	}
}

// RecordKill counts a kill and the victim's death, decrements the
// victim's lives and ends the match early when a side is wiped out.
func (c *Coordinator) RecordKill(killerID, victimID uuid.UUID) {
	if c.State() != StateActive {
		return
	}

	c.mu.Lock()
	killer, okK := c.parts[killerID]
	victim, okV := c.parts[victimID]
	if !okK || !okV {
		c.mu.Unlock()
		return
	}

	killer.Stats.AddKill()
	victim.Stats.AddDeath()

	if c.gamemode == model.Juggernaut {
		if killer.Team == model.TeamJuggernaut {
			killer.Stats.JuggernautKills++
		} else {
			killer.Stats.PlayerKills++
			if victim.Team == model.TeamJuggernaut {
				killer.Stats.JuggernautKillsAgainst++
			}
		}
		if victim.Team == model.TeamJuggernaut {
			victim.Stats.JuggernautDeaths++
		} else {
			victim.Stats.PlayerDeaths++
		}
	}

	eliminated := false
	if victim.Lives != model.UnlimitedLives && victim.Lives > 0 {
		victim.Lives--
		eliminated = victim.Lives == 0
	}
	victimName := victim.Player.Name()
	over := eliminated && c.sideWipedLocked()
	c.mu.Unlock()

	if eliminated {
		c.broadcast(fmt.Sprintf("%s is out of the game!", victimName))
	}
	if over {
		c.End()
	}
}

// RecordFlagCapture counts a flag capture.
func (c *Coordinator) RecordFlagCapture(id uuid.UUID) {
	if c.State() != StateActive {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.parts[id]; ok {
		p.Stats.AddFlagCapture()
	}
}

// RecordFlagReturn counts a flag return.
func (c *Coordinator) RecordFlagReturn(id uuid.UUID) {
	if c.State() != StateActive {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.parts[id]; ok {
		p.Stats.AddFlagReturn()
	}
}

// RecordFlagKill counts a kill made while carrying the flag.
func (c *Coordinator) RecordFlagKill(id uuid.UUID) {
	if c.State() != StateActive {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.parts[id]; ok {
		p.Stats.FlagKills++
	}
}

// RecordFlagCarrierKill counts a kill of an enemy flag carrier.
func (c *Coordinator) RecordFlagCarrierKill(id uuid.UUID) {
	if c.State() != StateActive {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.parts[id]; ok {
		p.Stats.FlagCarrierKills++
	}
}

// sideWipedLocked reports whether eliminations leave the match decided:
// one team standing, one free-for-all survivor, or all juggernauts or
// hunters gone. Modes with unlimited lives never trip it.
func (c *Coordinator) sideWipedLocked() bool {
	alive := make(map[model.Team]int)
	for _, p := range c.parts {
		if p.Alive() {
			alive[p.Team]++
		}
	}
	switch c.gamemode {
	case model.FreeForAll:
		return alive[model.TeamFree] <= 1
	case model.Juggernaut:
		return alive[model.TeamJuggernaut] == 0 || alive[model.TeamPlayers] == 0
	case model.TeamDeathmatch:
		return alive[model.TeamRed] == 0 || alive[model.TeamBlue] == 0
	}
	return false
}
