package model

// Team identifies a side a player fights on during a match.
type Team int32

const (
	TeamRed Team = iota
	TeamBlue
	TeamJuggernaut
	TeamPlayers // non-juggernauts in Juggernaut mode
	TeamFree    // everyone in Free For All
)

var teamNames = [...]string{
	TeamRed:        "Red",
	TeamBlue:       "Blue",
	TeamJuggernaut: "Juggernaut",
	TeamPlayers:    "Players",
	TeamFree:       "Free",
}

// DisplayName returns the human-readable team name.
func (t Team) DisplayName() string {
	if t < 0 || int(t) >= len(teamNames) {
		return "Unknown"
	}
	return teamNames[t]
}

// String returns the same value as DisplayName.
func (t Team) String() string { return t.DisplayName() }
