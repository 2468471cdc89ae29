package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Atharv226/CampusVote/cliparse"
	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliparse.Config) error {
	store, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, store); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", store.Type())

	components, err := router.NewComponents(store, cfg, slog.Default())
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           middleware.CORS(router.NewRouter(components, cfg)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Stop accepting votes first, then let in-flight broadcasts finish
		err := server.Shutdown(shutdownCtx)
		if cerr := components.Controller.Close(shutdownCtx); cerr != nil {
			slog.Warn("propagation did not drain", "error", cerr)
		}
		slog.Info("Server closed")
		return err
	})

	return g.Wait()
}
