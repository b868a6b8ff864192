package model

import (
	"fmt"
	"strings"
)

// SpawnType is the role tag carried by a spawn marker inside an arena
// region. Markers travel embedded in the region snapshot as entities;
// this tag is how a pasted entity maps back to a gameplay role.
type SpawnType int32

const (
	SpawnRed SpawnType = iota
	SpawnBlue
	SpawnFreeForAll
	SpawnRedFlag
	SpawnBlueFlag
)

type spawnTypeInfo struct {
	name        string
	displayName string
	gamemodes   []Gamemode
}

var spawnTypes = [...]spawnTypeInfo{
	SpawnRed:        {"RED_SPAWN", "Red Team Spawn", []Gamemode{TeamDeathmatch, FlagRush, Juggernaut}},
	SpawnBlue:       {"BLUE_SPAWN", "Blue Team Spawn", []Gamemode{TeamDeathmatch, FlagRush, Juggernaut}},
	SpawnFreeForAll: {"FREE_FOR_ALL_SPAWN", "Free For All Spawn", []Gamemode{FreeForAll}},
	SpawnRedFlag:    {"RED_FLAG_SPAWN", "Red Flag Spawn", []Gamemode{FlagRush}},
	SpawnBlueFlag:   {"BLUE_FLAG_SPAWN", "Blue Flag Spawn", []Gamemode{FlagRush}},
}

// SpawnTypes returns every spawn role in declaration order.
func SpawnTypes() []SpawnType {
	return []SpawnType{SpawnRed, SpawnBlue, SpawnFreeForAll, SpawnRedFlag, SpawnBlueFlag}
}

// ParseSpawnType resolves a spawn role by enum name, case-insensitively.
func ParseSpawnType(s string) (SpawnType, bool) {
	for i, info := range spawnTypes {
		if strings.EqualFold(s, info.name) {
			return SpawnType(i), true
		}
	}
	return 0, false
}

// SpawnTypeForTeam maps a match team to the marker role its players spawn
// at. Juggernauts use the red side, their hunters the blue side.
func SpawnTypeForTeam(t Team) SpawnType {
	switch t {
	case TeamRed, TeamJuggernaut:
		return SpawnRed
	case TeamBlue, TeamPlayers:
		return SpawnBlue
	default:
		return SpawnFreeForAll
	}
}

func (s SpawnType) valid() bool {
	return s >= 0 && int(s) < len(spawnTypes)
}

// String returns the canonical enum name (e.g. "RED_SPAWN").
func (s SpawnType) String() string {
	if !s.valid() {
		return "UNKNOWN"
	}
	return spawnTypes[s].name
}

// DisplayName returns the human-readable role name.
func (s SpawnType) DisplayName() string {
	if !s.valid() {
		return "Unknown"
	}
	return spawnTypes[s].displayName
}

// CompatibleGamemodes returns the gamemodes this role is meaningful for.
func (s SpawnType) CompatibleGamemodes() []Gamemode {
	if !s.valid() {
		return nil
	}
	return spawnTypes[s].gamemodes
}

// MarshalText encodes the spawn type as its enum name.
func (s SpawnType) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid spawn type %d", int32(s))
	}
	return []byte(spawnTypes[s].name), nil
}

// UnmarshalText decodes a spawn type from its enum name.
func (s *SpawnType) UnmarshalText(text []byte) error {
	st, ok := ParseSpawnType(string(text))
	if !ok {
		return fmt.Errorf("unknown spawn type %q", string(text))
	}
	*s = st
	return nil
}
