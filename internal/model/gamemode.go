package model

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Gamemode identifies one of the paintball round types.
type Gamemode int32

const (
	TeamDeathmatch Gamemode = iota
	FreeForAll
	FlagRush
	Juggernaut
)

// UnlimitedLives marks a gamemode without a life limit.
const UnlimitedLives int32 = -1

// gamemodeInfo is the static descriptor for a gamemode. Behavior dispatch
// goes through this table instead of per-mode subtypes.
type gamemodeInfo struct {
	name         string
	displayName  string
	duration     time.Duration
	lives        int32
	minPlayers   int
	hasTeams     bool
	respawnDelay time.Duration
	juggernauts  float64 // fraction of the roster made juggernaut
	description  string
}

var gamemodes = [...]gamemodeInfo{
	TeamDeathmatch: {
		name:        "TEAM_DEATHMATCH",
		displayName: "Team Deathmatch",
		duration:    5 * time.Minute,
		lives:       1,
		minPlayers:  4,
		hasTeams:    true,
		description: "Last team standing wins",
	},
	FreeForAll: {
		name:        "FREE_FOR_ALL",
		displayName: "Free For All",
		duration:    5 * time.Minute,
		lives:       1,
		minPlayers:  6,
		description: "Last player standing wins",
	},
	FlagRush: {
		name:         "FLAG_RUSH",
		displayName:  "Flag Rush",
		duration:     10 * time.Minute,
		lives:        UnlimitedLives,
		minPlayers:   6,
		hasTeams:     true,
		respawnDelay: 5 * time.Second,
		description:  "Capture the enemy flag and return it to your base",
	},
	Juggernaut: {
		name:         "JUGGERNAUT",
		displayName:  "Juggernaut",
		duration:     5 * time.Minute,
		lives:        3,
		minPlayers:   8,
		hasTeams:     true,
		respawnDelay: 10 * time.Second,
		juggernauts:  0.2,
		description:  "Players must eliminate the juggernauts to win",
	},
}

// Gamemodes returns all gamemodes in declaration order.
func Gamemodes() []Gamemode {
	return []Gamemode{TeamDeathmatch, FreeForAll, FlagRush, Juggernaut}
}

// RandomGamemode returns a uniformly random gamemode.
func RandomGamemode() Gamemode {
	return Gamemode(rand.IntN(len(gamemodes)))
}

// ParseGamemode resolves a gamemode by enum name or display name,
// case-insensitively. Returns false if no gamemode matches.
func ParseGamemode(s string) (Gamemode, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for i, info := range gamemodes {
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.displayName) {
			return Gamemode(i), true
		}
	}
	return 0, false
}

func (g Gamemode) valid() bool {
	return g >= 0 && int(g) < len(gamemodes)
}

// String returns the canonical enum name (e.g. "FLAG_RUSH").
func (g Gamemode) String() string {
	if !g.valid() {
		return "UNKNOWN"
	}
	return gamemodes[g].name
}

// DisplayName returns the human-readable name.
func (g Gamemode) DisplayName() string {
	if !g.valid() {
		return "Unknown"
	}
	return gamemodes[g].displayName
}

// Duration returns the round length.
func (g Gamemode) Duration() time.Duration { return gamemodes[g].duration }

// Lives returns the life count per player, or UnlimitedLives.
func (g Gamemode) Lives() int32 { return gamemodes[g].lives }

// HasUnlimitedLives reports whether players respawn without limit.
func (g Gamemode) HasUnlimitedLives() bool { return gamemodes[g].lives == UnlimitedLives }

// MinPlayers returns the minimum roster size.
func (g Gamemode) MinPlayers() int { return gamemodes[g].minPlayers }

// HasTeams reports whether the mode splits the roster into teams.
func (g Gamemode) HasTeams() bool { return gamemodes[g].hasTeams }

// RespawnDelay returns the respawn delay, zero for single-life modes.
func (g Gamemode) RespawnDelay() time.Duration { return gamemodes[g].respawnDelay }

// JuggernautFraction returns the share of the roster assigned as
// juggernauts, zero for every other mode.
func (g Gamemode) JuggernautFraction() float64 { return gamemodes[g].juggernauts }

// RequiresFlagSpawns reports whether arenas need flag markers for this mode.
func (g Gamemode) RequiresFlagSpawns() bool { return g == FlagRush }

// Description returns the one-line mode description.
func (g Gamemode) Description() string { return gamemodes[g].description }

// MarshalText encodes the gamemode as its enum name (JSON/YAML documents).
func (g Gamemode) MarshalText() ([]byte, error) {
	if !g.valid() {
		return nil, fmt.Errorf("invalid gamemode %d", int32(g))
	}
	return []byte(gamemodes[g].name), nil
}

// UnmarshalText decodes a gamemode from its enum or display name.
func (g *Gamemode) UnmarshalText(text []byte) error {
	gm, ok := ParseGamemode(string(text))
	if !ok {
		return fmt.Errorf("unknown gamemode %q", string(text))
	}
	*g = gm
	return nil
}
