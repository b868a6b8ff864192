package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxLevel is the level cap; past it progression goes through prestige.
	MaxLevel int32 = 1000
	// MaxPrestige is the prestige cap.
	MaxPrestige int32 = 10

	basePaintballCount    int32 = 40
	paintballsPerLevel    int32 = 5
	baseReloadSeconds           = 5.0
	reloadSpeedupPerLevel       = 0.5
)

// Profile is the durable per-player record: lifetime statistics, the
// per-gamemode breakdown and progression state. The stats engine is the
// sole writer of match deltas; the backing store is external.
type Profile struct {
	PlayerID   uuid.UUID `json:"playerId"`
	PlayerName string    `json:"playerName"`

	FirstJoined   time.Time     `json:"firstJoined"`
	LastPlayed    time.Time     `json:"lastPlayed"`
	TotalPlayTime time.Duration `json:"totalPlayTime"`

	Level      int32 `json:"level"`
	Prestige   int32 `json:"prestige"`
	Experience int64 `json:"experience"`
	Coins      int64 `json:"coins"`

	TotalKills       int32 `json:"totalKills"`
	TotalDeaths      int32 `json:"totalDeaths"`
	TotalShots       int32 `json:"totalShots"`
	TotalGamesPlayed int32 `json:"totalGamesPlayed"`
	TotalWins        int32 `json:"totalWins"`
	TotalLosses      int32 `json:"totalLosses"`

	Gamemodes map[Gamemode]*GamemodeStats `json:"gameModeStats"`

	// Upgrade levels bought with coins.
	PaintballCountLevel int32 `json:"paintballCountLevel"`
	ReloadSpeedLevel    int32 `json:"reloadSpeedLevel"`

	Premium bool `json:"premium"`
}

// GamemodeStats is the per-gamemode slice of a profile.
type GamemodeStats struct {
	Kills       int32         `json:"kills"`
	Deaths      int32         `json:"deaths"`
	Shots       int32         `json:"shots"`
	Wins        int32         `json:"wins"`
	Losses      int32         `json:"losses"`
	GamesPlayed int32         `json:"gamesPlayed"`
	PlayTime    time.Duration `json:"totalPlayTime"`

	// Flag Rush
	FlagCaptures     int32 `json:"flagCaptures"`
	FlagReturns      int32 `json:"flagReturns"`
	FlagKills        int32 `json:"flagKills"`
	FlagCarrierKills int32 `json:"flagCarrierKills"`

	// Juggernaut
	JuggernautKills        int32         `json:"juggernautKills"`
	JuggernautDeaths       int32         `json:"juggernautDeaths"`
	JuggernautKillsAgainst int32         `json:"juggernautKillsAgainst"`
	PlayerKills            int32         `json:"playerKills"`
	PlayerDeaths           int32         `json:"playerDeaths"`
	JuggernautSurvival     time.Duration `json:"juggernautSurvivalTime"`
	JuggernautGamesWon     int32         `json:"juggernautGamesWon"`
	PlayerGamesWon         int32         `json:"playerGamesWon"`
}

// NewProfile creates a fresh profile with level 1 and empty statistics.
func NewProfile(playerID uuid.UUID, playerName string) *Profile {
	now := time.Now()
	p := &Profile{
		PlayerID:    playerID,
		PlayerName:  playerName,
		FirstJoined: now,
		LastPlayed:  now,
		Level:       1,
		Gamemodes:   make(map[Gamemode]*GamemodeStats, len(gamemodes)),
	}
	for _, gm := range Gamemodes() {
		p.Gamemodes[gm] = &GamemodeStats{}
	}
	return p
}

// GamemodeStats returns the stats slice for a gamemode, creating it on
// demand (profiles written by older versions may miss entries).
func (p *Profile) GamemodeStats(gm Gamemode) *GamemodeStats {
	if p.Gamemodes == nil {
		p.Gamemodes = make(map[Gamemode]*GamemodeStats, len(gamemodes))
	}
	gs, ok := p.Gamemodes[gm]
	if !ok {
		gs = &GamemodeStats{}
		p.Gamemodes[gm] = gs
	}
	return gs
}

// RequiredExperience returns the experience needed to reach the next level.
func (p *Profile) RequiredExperience() int64 {
	return int64(1000 * math.Pow(1.1, float64(p.Level-1)))
}

// AddExperience adds experience and consumes it into level-ups.
// Returns true if at least one level was gained.
func (p *Profile) AddExperience(amount int64) bool {
	p.Experience += amount
	leveled := false
	for p.Level < MaxLevel {
		required := p.RequiredExperience()
		if p.Experience < required {
			break
		}
		p.Experience -= required
		p.Level++
		leveled = true
	}
	return leveled
}

// AddCoins credits coins to the profile.
func (p *Profile) AddCoins(amount int64) { p.Coins += amount }

// RemoveCoins debits coins; returns false without mutation if the balance
// is insufficient.
func (p *Profile) RemoveCoins(amount int64) bool {
	if p.Coins < amount {
		return false
	}
	p.Coins -= amount
	return true
}

// CanPrestige reports whether the profile is at the level cap with
// prestige headroom left.
func (p *Profile) CanPrestige() bool {
	return p.Level >= MaxLevel && p.Prestige < MaxPrestige
}

// DoPrestige resets level and experience in exchange for a prestige rank.
func (p *Profile) DoPrestige() bool {
	if !p.CanPrestige() {
		return false
	}
	p.Prestige++
	p.Level = 1
	p.Experience = 0
	return true
}

// KDRatio returns the lifetime kills/deaths ratio.
func (p *Profile) KDRatio() float64 {
	if p.TotalDeaths == 0 {
		return float64(p.TotalKills)
	}
	return float64(p.TotalKills) / float64(p.TotalDeaths)
}

// WinRate returns the lifetime win percentage.
func (p *Profile) WinRate() float64 {
	if p.TotalGamesPlayed == 0 {
		return 0
	}
	return float64(p.TotalWins) / float64(p.TotalGamesPlayed) * 100
}

// AddPlayTime adds elapsed match time to the lifetime total.
func (p *Profile) AddPlayTime(d time.Duration) { p.TotalPlayTime += d }

// Touch updates the last-played timestamp.
func (p *Profile) Touch() { p.LastPlayed = time.Now() }

// PaintballCount returns the loadout ammo size for the upgrade level.
func (p *Profile) PaintballCount() int32 {
	return basePaintballCount + p.PaintballCountLevel*paintballsPerLevel
}

// ReloadSpeed returns the reload time in seconds for the upgrade level.
func (p *Profile) ReloadSpeed() float64 {
	return baseReloadSeconds - float64(p.ReloadSpeedLevel)*reloadSpeedupPerLevel
}

// KDRatio returns this gamemode's kills/deaths ratio.
func (gs *GamemodeStats) KDRatio() float64 {
	if gs.Deaths == 0 {
		return float64(gs.Kills)
	}
	return float64(gs.Kills) / float64(gs.Deaths)
}

// WinRate returns this gamemode's win percentage.
func (gs *GamemodeStats) WinRate() float64 {
	if gs.GamesPlayed == 0 {
		return 0
	}
	return float64(gs.Wins) / float64(gs.GamesPlayed) * 100
}
