// Package stats consumes end-of-match snapshots: determines winners per
// gamemode rule, folds match counters into durable profiles and grants
// experience and coin rewards.
package stats

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/game/match"
	"github.com/udisondev/paintgo/internal/model"
)

// ProfileProvider is the slice of the profile manager the engine needs.
// *player.Manager satisfies it.
type ProfileProvider interface {
	LoadProfile(ctx context.Context, id uuid.UUID, name string) (*model.Profile, error)
	SaveProfile(p *model.Profile)
}

// Engine реализует match.StatsSink: по снапшоту матча определяет
// победителей, раскладывает счётчики в профили и начисляет награды.
type Engine struct {
	profiles ProfileProvider
}

// NewEngine creates the statistics engine.
func NewEngine(profiles ProfileProvider) *Engine {
	return &Engine{profiles: profiles}
}

// MatchEnded determines winners and applies rewards for the snapshot.
func (e *Engine) MatchEnded(res match.Result) {
	winners := e.DetermineWinners(res)
	e.ApplyRewards(res, winners)
}

// DetermineWinners возвращает победителей матча. Ничья в командных
// режимах и в FFA означает отсутствие победителей — пустое множество.
func (e *Engine) DetermineWinners(res match.Result) map[uuid.UUID]bool {
	winners := make(map[uuid.UUID]bool)

	switch res.Gamemode {
	case model.TeamDeathmatch:
		e.teamWinners(res, winners, func(s *model.MatchStats) int32 { return s.Kills })
	case model.FlagRush:
		e.teamWinners(res, winners, func(s *model.MatchStats) int32 { return s.FlagCaptures })
	case model.FreeForAll:
		var best uuid.UUID
		var bestKills int32 = -1
		tied := false
		for id, s := range res.Stats {
			switch {
			case s.Kills > bestKills:
				best, bestKills, tied = id, s.Kills, false
			case s.Kills == bestKills:
				tied = true
			}
		}
		if !tied && bestKills >= 0 {
			winners[best] = true
		}
	case model.Juggernaut:
		juggernautsAlive := false
		for id, team := range res.Teams {
			if team == model.TeamJuggernaut && res.Lives[id] > 0 {
				juggernautsAlive = true
				break
			}
		}
		want := model.TeamPlayers
		if juggernautsAlive {
			want = model.TeamJuggernaut
		}
		for id, team := range res.Teams {
			if team == want {
				winners[id] = true
			}
		}
	}
	return winners
}

// teamWinners credits the whole team with the higher summed score.
func (e *Engine) teamWinners(res match.Result, winners map[uuid.UUID]bool, score func(*model.MatchStats) int32) {
	totals := make(map[model.Team]int32)
	for id, s := range res.Stats {
		totals[res.Teams[id]] += score(s)
	}

	var winning model.Team
	var best int32 = -1
	tied := false
	for team, total := range totals {
		switch {
		case total > best:
			winning, best, tied = team, total, false
		case total == best:
			tied = true
		}
	}
	if tied || best < 0 {
		return
	}
	for id, team := range res.Teams {
		if team == winning {
			winners[id] = true
		}
	}
}

// ApplyRewards folds each participant's match counters into their
// durable profile and grants experience and coins. A profile load
// failure skips that player only; the rest of the roster is processed.
func (e *Engine) ApplyRewards(res match.Result, winners map[uuid.UUID]bool) {
	ctx := context.Background()
	for id, s := range res.Stats {
		profile, err := e.profiles.LoadProfile(ctx, id, res.Names[id])
		if err != nil {
			slog.Error("loading profile for match rewards",
				"player", res.Names[id],
				"error", err)
			continue
		}

		won := winners[id]
		e.fold(profile, res, s, won)

		xp := CalculateExperience(s, won)
		coins := CalculateCoins(s, won)
		leveled := profile.AddExperience(xp)
		profile.AddCoins(coins)

		e.profiles.SaveProfile(profile)

		slog.Info("match rewards applied",
			"player", profile.PlayerName,
			"gamemode", res.Gamemode,
			"kills", s.Kills,
			"deaths", s.Deaths,
			"winner", won,
			"xp", xp,
			"coins", coins,
			"leveled", leveled)
	}
}

// fold adds one match's counters to the profile's lifetime and
// per-gamemode totals.
func (e *Engine) fold(p *model.Profile, res match.Result, s *model.MatchStats, won bool) {
	p.TotalKills += s.Kills
	p.TotalDeaths += s.Deaths
	p.TotalShots += s.Shots
	p.TotalGamesPlayed++
	p.AddPlayTime(res.Duration)
	if won {
		p.TotalWins++
	} else {
		p.TotalLosses++
	}

	gs := p.GamemodeStats(res.Gamemode)
	gs.Kills += s.Kills
	gs.Deaths += s.Deaths
	gs.Shots += s.Shots
	gs.GamesPlayed++
	gs.PlayTime += res.Duration
	if won {
		gs.Wins++
	} else {
		gs.Losses++
	}

	switch res.Gamemode {
	case model.FlagRush:
		gs.FlagCaptures += s.FlagCaptures
		gs.FlagReturns += s.FlagReturns
		gs.FlagKills += s.FlagKills
		gs.FlagCarrierKills += s.FlagCarrierKills
	case model.Juggernaut:
		switch res.Teams[s.PlayerID] {
		case model.TeamJuggernaut:
			gs.JuggernautKills += s.JuggernautKills
			gs.JuggernautDeaths += s.JuggernautDeaths
			gs.JuggernautSurvival += s.JuggernautSurvival
			if won {
				gs.JuggernautGamesWon++
			}
		case model.TeamPlayers:
			gs.PlayerKills += s.PlayerKills
			gs.PlayerDeaths += s.PlayerDeaths
			gs.JuggernautKillsAgainst += s.JuggernautKillsAgainst
			if won {
				gs.PlayerGamesWon++
			}
		}
	}
}

// CalculateExperience computes the XP grant for one player's match:
// participation base, per-kill and flag bonuses, win bonus and a K/D
// tier bonus.
func CalculateExperience(s *model.MatchStats, won bool) int64 {
	xp := int64(50)
	xp += int64(s.Kills) * 25
	xp += int64(s.FlagCaptures) * 100
	xp += int64(s.FlagReturns) * 50
	if won {
		xp += 100
	}
	if s.Deaths > 0 {
		kd := float64(s.Kills) / float64(s.Deaths)
		if kd >= 2.0 {
			xp += 50
		} else if kd >= 1.5 {
			xp += 25
		}
	} else if s.Kills > 0 {
		// Deathless bonus.
		xp += 75
	}
	return xp
}

// CalculateCoins computes the coin grant, a smaller weighting of the
// same performance counters.
func CalculateCoins(s *model.MatchStats, won bool) int64 {
	coins := int64(25)
	coins += int64(s.Kills) * 10
	coins += int64(s.FlagCaptures) * 50
	coins += int64(s.FlagReturns) * 25
	if won {
		coins += 50
	}
	return coins
}
