package model

import (
	"testing"
	"time"
)

func TestParseGamemode(t *testing.T) {
	tests := []struct {
		in   string
		want Gamemode
		ok   bool
	}{
		{"TEAM_DEATHMATCH", TeamDeathmatch, true},
		{"team_deathmatch", TeamDeathmatch, true},
		{"Team Deathmatch", TeamDeathmatch, true},
		{"FLAG_RUSH", FlagRush, true},
		{"Juggernaut", Juggernaut, true},
		{"free for all", FreeForAll, true},
		{"", 0, false},
		{"  ", 0, false},
		{"CAPTURE_POINT", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseGamemode(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseGamemode(%q) ok = %v; want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseGamemode(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestGamemode_Descriptors(t *testing.T) {
	if TeamDeathmatch.Duration() != 5*time.Minute {
		t.Errorf("TeamDeathmatch.Duration() = %v; want 5m", TeamDeathmatch.Duration())
	}
	if !FlagRush.HasUnlimitedLives() {
		t.Error("FlagRush.HasUnlimitedLives() = false; want true")
	}
	if FlagRush.Duration() != 10*time.Minute {
		t.Errorf("FlagRush.Duration() = %v; want 10m", FlagRush.Duration())
	}
	if FreeForAll.HasTeams() {
		t.Error("FreeForAll.HasTeams() = true; want false")
	}
	if got := Juggernaut.JuggernautFraction(); got != 0.2 {
		t.Errorf("Juggernaut.JuggernautFraction() = %v; want 0.2", got)
	}
	if got := TeamDeathmatch.JuggernautFraction(); got != 0 {
		t.Errorf("TeamDeathmatch.JuggernautFraction() = %v; want 0", got)
	}
	if !FlagRush.RequiresFlagSpawns() {
		t.Error("FlagRush.RequiresFlagSpawns() = false; want true")
	}
	if Juggernaut.RespawnDelay() != 10*time.Second {
		t.Errorf("Juggernaut.RespawnDelay() = %v; want 10s", Juggernaut.RespawnDelay())
	}
}

func TestGamemode_TextRoundTrip(t *testing.T) {
	for _, gm := range Gamemodes() {
		text, err := gm.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", gm, err)
		}
		var back Gamemode
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if back != gm {
			t.Errorf("round trip %v -> %q -> %v", gm, text, back)
		}
	}
}

func TestSpawnTypeForTeam(t *testing.T) {
	tests := []struct {
		team Team
		want SpawnType
	}{
		{TeamRed, SpawnRed},
		{TeamBlue, SpawnBlue},
		{TeamJuggernaut, SpawnRed},
		{TeamPlayers, SpawnBlue},
		{TeamFree, SpawnFreeForAll},
	}
	for _, tt := range tests {
		if got := SpawnTypeForTeam(tt.team); got != tt.want {
			t.Errorf("SpawnTypeForTeam(%v) = %v; want %v", tt.team, got, tt.want)
		}
	}
}
