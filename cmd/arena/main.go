package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/db"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/simlog"
)

const ArenaConfigPath = "config/arena.yaml"

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

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	cfgPath := fs.String("config", ArenaConfigPath, "arena config file (env "+config.EnvConfigPath+" overrides the default)")
	duration := fs.Duration("duration", 0, "wall-clock run length; 0 uses run_for from the config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *cfgPath
	if p := os.Getenv(config.EnvConfigPath); p != "" && path == ArenaConfigPath {
		path = p
	}
	cfg, err := config.LoadArena(path)
	if err != nil {
		return fmt.Errorf("loading arena config: %w", err)
	}
	if *duration > 0 {
		cfg.RunFor = *duration
	}

	// Configure slog based on config.LogLevel
	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	simlog.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("skirmish arena starting",
		"config", path,
		"log_level", cfg.LogLevel,
		"tick", cfg.TickInterval,
		"run_for", cfg.RunFor,
		"seed", cfg.Seed)

	var (
		recorder *db.Recorder
		repo     *db.EncounterRepository
		session  int64
	)
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		repo = db.NewEncounterRepository(database.Pool())
		session, err = repo.CreateSession(ctx, cfg.Seed)
		if err != nil {
			return err
		}
		recorder = db.NewRecorder(repo, session)
		slog.Info("encounter session opened", "sessionID", session)
	}

	a, err := newArena(cfg, recorder)
	if err != nil {
		return fmt.Errorf("building arena: %w", err)
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	a.player.SetOnDeath(func(*model.Player) {
		slog.Info("player died, ending run")
		stop()
	})

	a.spawner.Start()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		slog.Info("starting simulation loop", "interval", cfg.TickInterval)
		return a.manager.Start(gctx, cfg.TickInterval)
	})

	if recorder != nil {
		g.Go(func() error {
			return recorder.Run(gctx, cfg.Database.FlushInterval)
		})
	}

	if cfg.RunFor > 0 {
		g.Go(func() error {
			timer := time.NewTimer(cfg.RunFor)
			defer timer.Stop()
			select {
			case <-timer.C:
				slog.Info("run length reached", "run_for", cfg.RunFor)
				stop()
			case <-gctx.Done():
			}
			return nil
		})
	}

	err = g.Wait()
	a.spawner.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("simulation error: %w", err)
	}

	s := a.summary()
	if repo != nil {
		finishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.FinishSession(finishCtx, session, s.Spawned, s.Eliminated); err != nil {
			slog.Error("finishing encounter session", "sessionID", session, "error", err)
		}
	}

	fmt.Fprintln(os.Stdout, s)
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
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
