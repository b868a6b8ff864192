package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the paintball server module.
type Config struct {
	// DataDir is the root of all persisted state: arenas.json,
	// schematics/ and players/.
	DataDir string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`

	// Workers is the size of the background I/O pool.
	Workers int `yaml:"workers"`

	Arenas   ArenaConfig   `yaml:"arenas"`
	Match    MatchConfig   `yaml:"match"`
	Profiles ProfileConfig `yaml:"profiles"`
}

// ArenaConfig controls region capture/paste and registry behavior.
type ArenaConfig struct {
	// PasteOrigin is the fixed point arenas are pasted at in the play
	// and editor worlds.
	PasteOrigin Point `yaml:"paste_origin"`

	// Capture half-extents around the paste origin, in blocks.
	CaptureRadiusX int `yaml:"capture_radius_x"`
	CaptureRadiusY int `yaml:"capture_radius_y"`
	CaptureRadiusZ int `yaml:"capture_radius_z"`

	// DeleteRegionFiles controls whether deleting an arena also removes
	// its schematic file.
	DeleteRegionFiles bool `yaml:"delete_region_files"`

	// WatchRegistry enables reloading arenas.json when it changes on disk.
	WatchRegistry bool `yaml:"watch_registry"`
}

// MatchConfig controls round flow timing.
type MatchConfig struct {
	// ResultDelaySeconds is how long the result screen is shown before
	// players are returned to the lobby.
	ResultDelaySeconds int `yaml:"result_delay_seconds"`

	// FallbackSpawn is where players are placed when an arena carries no
	// marker for their role.
	FallbackSpawn Point `yaml:"fallback_spawn"`
}

// ProfileConfig selects and configures the player profile store.
type ProfileConfig struct {
	// Store is "file" or "postgres".
	Store    string         `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Point is an integer block position in config documents.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		DataDir:  "data",
		LogLevel: "info",
		Workers:  4,
		Arenas: ArenaConfig{
			PasteOrigin:    Point{X: 0, Y: 100, Z: 0},
			CaptureRadiusX: 200,
			CaptureRadiusY: 50,
			CaptureRadiusZ: 200,
			WatchRegistry:  true,
		},
		Match: MatchConfig{
			ResultDelaySeconds: 5,
			FallbackSpawn:      Point{X: 0, Y: 100, Z: 0},
		},
		Profiles: ProfileConfig{
			Store: "file",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "paintgo",
				Password: "paintgo",
				DBName:   "paintgo",
				SSLMode:  "disable",
			},
		},
	}
}

// Load loads the config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
