package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	httpapi "github.com/nqh2610/lophoconline-sub002/internal/api/http"
	"github.com/nqh2610/lophoconline-sub002/internal/config"
	"github.com/nqh2610/lophoconline-sub002/internal/repository"
	"github.com/nqh2610/lophoconline-sub002/internal/service"
	"github.com/nqh2610/lophoconline-sub002/internal/transport"
	"github.com/nqh2610/lophoconline-sub002/lib/logger/sl"
	"github.com/nqh2610/lophoconline-sub002/lib/logger/slogpretty"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	registry := repository.NewInMemoryRegistry()
	hub := transport.NewHub(log, cfg.Signaling.HeartbeatInterval, cfg.Signaling.EventBuffer)

	signalingService := service.NewSignalingService(registry, hub, log, cfg.Signaling.ReconnectGrace)
	sweeper := service.NewSweeper(registry, hub, log, cfg.Signaling.SweepInterval, cfg.Signaling.InactivityTimeout)

	signalingController := httpapi.NewSignalingController(signalingService)
	eventsController := httpapi.NewEventsController(hub, log)
	adminController := httpapi.NewAdminController(registry, cfg.Admin.Token, log)

	router := httpapi.SetupRouter(signalingController, eventsController, adminController, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx)

	srv := &http.Server{Addr: cfg.HTTP.Address, Handler: router}
	go func() {
		log.Info("starting application",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("env", cfg.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	hub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", sl.Err(err))
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
