package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/paintgo/internal/arena"
	"github.com/udisondev/paintgo/internal/command"
	"github.com/udisondev/paintgo/internal/config"
	"github.com/udisondev/paintgo/internal/game/match"
	"github.com/udisondev/paintgo/internal/game/stats"
	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/player"
	"github.com/udisondev/paintgo/internal/rank"
	"github.com/udisondev/paintgo/internal/region"
	"github.com/udisondev/paintgo/internal/sched"
	"github.com/udisondev/paintgo/internal/spawn"
	"github.com/udisondev/paintgo/internal/world"
)

const configPath = "config/paintball.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && err != context.Canceled {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	path := configPath
	if p := os.Getenv("PAINTGO_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("paintball server starting", "log_level", cfg.LogLevel, "data_dir", cfg.DataDir)

	pool := sched.NewPool(ctx, cfg.Workers)
	loop := sched.NewLoop()

	worlds := world.NewManager()

	store, err := region.NewFileStore(filepath.Join(cfg.DataDir, "schematics"))
	if err != nil {
		return fmt.Errorf("opening region store: %w", err)
	}

	registry, err := arena.NewRegistry(filepath.Join(cfg.DataDir, "arenas"))
	if err != nil {
		return fmt.Errorf("opening arena registry: %w", err)
	}

	origin := world.BlockPos{
		X: int32(cfg.Arenas.PasteOrigin.X),
		Y: int32(cfg.Arenas.PasteOrigin.Y),
		Z: int32(cfg.Arenas.PasteOrigin.Z),
	}
	lifecycle := arena.NewLifecycle(store, worlds, pool, origin)

	captureBounds := world.Cuboid{
		Min: world.BlockPos{
			X: origin.X - int32(cfg.Arenas.CaptureRadiusX),
			Y: origin.Y - int32(cfg.Arenas.CaptureRadiusY),
			Z: origin.Z - int32(cfg.Arenas.CaptureRadiusZ),
		},
		Max: world.BlockPos{
			X: origin.X + int32(cfg.Arenas.CaptureRadiusX),
			Y: origin.Y + int32(cfg.Arenas.CaptureRadiusY),
			Z: origin.Z + int32(cfg.Arenas.CaptureRadiusZ),
		},
	}
	scanner := spawn.NewScanner()
	editor := spawn.NewEditor(registry, lifecycle, scanner, worlds, captureBounds)

	profileStore, err := openProfileStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer profileStore.Close()
	profiles := player.NewManager(profileStore, pool)

	engine := stats.NewEngine(profiles)

	coord := match.NewCoordinator(loop, worlds, lifecycle, scanner, engine, match.Config{
		ResultDelay: time.Duration(cfg.Match.ResultDelaySeconds) * time.Second,
		FallbackSpawn: model.NewLocation(
			float64(cfg.Match.FallbackSpawn.X),
			float64(cfg.Match.FallbackSpawn.Y),
			float64(cfg.Match.FallbackSpawn.Z),
			0,
		),
	})

	ranks := rank.NewStaticService()
	commands := command.NewHandler(registry, lifecycle, editor, coord, ranks, store, cfg.Arenas.DeleteRegionFiles)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(gctx)
	})

	// Admin console on stdin. Runs outside the group: a blocked read on
	// stdin would otherwise stall shutdown.
	console := command.Invoker{ID: uuid.New(), Name: "console"}
	ranks.Grant(console.ID)
	go runConsole(gctx, commands, console)

	if cfg.Arenas.WatchRegistry {
		g.Go(func() error {
			return registry.Watch(gctx.Done())
		})
	}

	slog.Info("paintball server ready", "arenas", len(registry.List()))

	err = g.Wait()

	// Flush profiles with a fresh context: the group's is already gone.
	profiles.SaveAll(context.Background())
	if werr := pool.Wait(); werr != nil {
		slog.Error("background pool", "error", werr)
	}
	return err
}

// runConsole reads "/paintball ..." lines from stdin and feeds them to
// the command handler. Exits on EOF or shutdown.
func runConsole(ctx context.Context, commands *command.Handler, inv command.Invoker) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		args := strings.Fields(sc.Text())
		if len(args) > 0 && (args[0] == "paintball" || args[0] == "/paintball") {
			args = args[1:]
		}
		if len(args) == 0 {
			continue
		}
		fmt.Println(commands.Execute(inv, args))
	}
}

func openProfileStore(ctx context.Context, cfg config.Config) (player.ProfileStore, error) {
	switch cfg.Profiles.Store {
	case "postgres":
		dsn := cfg.Profiles.Database.DSN()
		if err := player.RunMigrations(ctx, dsn); err != nil {
			return nil, fmt.Errorf("migrating profile store: %w", err)
		}
		store, err := player.NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("opening profile store: %w", err)
		}
		slog.Info("profile store ready", "backend", "postgres")
		return store, nil
	default:
		store, err := player.NewFileStore(filepath.Join(cfg.DataDir, "players"))
		if err != nil {
			return nil, fmt.Errorf("opening profile store: %w", err)
		}
		slog.Info("profile store ready", "backend", "file")
		return store, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
