package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/hotseat/internal/config"
	"github.com/playperu/hotseat/internal/database"
	"github.com/playperu/hotseat/internal/handler/health"
	"github.com/playperu/hotseat/internal/migrations"
	"github.com/playperu/hotseat/internal/selector"
	"github.com/playperu/hotseat/internal/server"
	"github.com/playperu/hotseat/internal/setupflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	store := server.NewSQLiteStore(db)

	if err := server.EnsureAdmin(ctx, logger, store, cfg.AdminEmail, cfg.AdminPasswordHash); err != nil {
		return err
	}
	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, store); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
	}

	// --- Setup flows ---
	broker := server.NewBroker()
	flows := server.NewFlowRegistry(setupflow.Deps{
		Roster:   store,
		Catalog:  store,
		Selector: selector.New(store),
		Sessions: store,
	}, cfg.CountOptions, broker, logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:  store,
		Admin:  store,
		Flows:  flows,
		Broker: broker,
		Health: health.NewHandler(logger, map[string]health.Checker{
			"sqlite":  dbChecker{db},
			"catalog": catalogChecker(store),
		}).Routes(),
	}, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		return flows.RunSweeper(gctx, cfg.FlowTTL, time.Minute)
	})

	return g.Wait()
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// catalogChecker fails when no question pack is available to play.
func catalogChecker(store *server.SQLiteStore) health.CheckFunc {
	return func(ctx context.Context) error {
		packs, err := store.AllPacks(ctx)
		if err != nil {
			return err
		}
		if len(packs) == 0 {
			return errors.New("catalog has no question packs")
		}
		return nil
	}
}
