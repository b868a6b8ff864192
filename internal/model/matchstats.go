package model

import (
	"time"

	"github.com/google/uuid"
)

// MatchStats накапливает счётчики одного игрока в рамках одного матча.
// Создаётся с нулями на старте матча, складывается в Profile на финише
// и после этого выбрасывается. Не потокобезопасен сам по себе —
// координатор матча сериализует все мутации.
type MatchStats struct {
	PlayerID uuid.UUID

	Kills  int32
	Deaths int32
	Shots  int32

	// Flag Rush
	FlagCaptures     int32
	FlagReturns      int32
	FlagKills        int32 // kills while carrying the flag
	FlagCarrierKills int32 // kills of enemy flag carriers

	// Juggernaut
	JuggernautKills        int32 // kills made as juggernaut
	JuggernautDeaths       int32 // deaths as juggernaut
	JuggernautKillsAgainst int32 // juggernauts killed as a regular player
	PlayerKills            int32 // kills as regular player in Juggernaut mode
	PlayerDeaths           int32
	JuggernautSurvival     time.Duration // time survived as juggernaut
}

// NewMatchStats создаёт пустой аккумулятор для игрока.
func NewMatchStats(playerID uuid.UUID) *MatchStats {
	return &MatchStats{PlayerID: playerID}
}

// AddKill increments the kill counter.
func (s *MatchStats) AddKill() { s.Kills++ }

// AddDeath increments the death counter.
func (s *MatchStats) AddDeath() { s.Deaths++ }

// AddShot increments the shots-fired counter.
func (s *MatchStats) AddShot() { s.Shots++ }

// AddFlagCapture increments the flag capture counter.
func (s *MatchStats) AddFlagCapture() { s.FlagCaptures++ }

// AddFlagReturn increments the flag return counter.
func (s *MatchStats) AddFlagReturn() { s.FlagReturns++ }

// KDRatio returns kills/deaths; with zero deaths the kill count itself.
func (s *MatchStats) KDRatio() float64 {
	if s.Deaths == 0 {
		return float64(s.Kills)
	}
	return float64(s.Kills) / float64(s.Deaths)
}

// Clone returns an independent copy for end-of-match snapshots.
func (s *MatchStats) Clone() *MatchStats {
	c := *s
	return &c
}
