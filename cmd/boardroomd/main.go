// Command boardroomd serves the board-game platform: HTTP game endpoints,
// per-game WebSocket event streams and the built-in AI roster.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/boardroom/internal/ai"
	"github.com/hailam/boardroom/internal/auth"
	"github.com/hailam/boardroom/internal/bus"
	"github.com/hailam/boardroom/internal/config"
	"github.com/hailam/boardroom/internal/orchestrator"
	"github.com/hailam/boardroom/internal/server"
	"github.com/hailam/boardroom/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("exiting", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.ResetDB {
		log.Warn("resetting database", zap.String("path", cfg.DBPath))
		if err := st.Reset(); err != nil {
			return err
		}
	}

	b := bus.New(cfg.EventBuffer)
	defer b.Shutdown()

	reg := ai.DefaultRoster(log, cfg.AzulModelPath)
	orch := orchestrator.New(st, b, reg, log)
	if err := orch.SeedAIPlayers(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(log, orch, st, b, auth.New(cfg.TokenSecret, cfg.TokenTTL), reg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		errc <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.Stringer("signal", sig))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
