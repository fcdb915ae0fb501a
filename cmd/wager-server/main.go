package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-casino/internal/app/wager"
	"chat-casino/internal/config"
	"chat-casino/internal/game"
	"chat-casino/internal/logging"
	"chat-casino/internal/outbox"
	"chat-casino/internal/store"
	httptransport "chat-casino/internal/transport/http"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := wager.New(st, buildOptions(cfg))
	if err := svc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("service start failed")
	}
	report, err := svc.Recover(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("restart recovery failed")
	}
	log.Info().
		Int("balances", report.Balances).
		Int("duels_refunded", report.DuelsRefunded).
		Int("rounds_refunded", report.RoundsRefunded).
		Int64("amount_refunded", report.AmountRefunded).
		Msg("state recovered")

	r := httptransport.NewRouter(svc, cfg.Server, cfg.Log)
	httptransport.LogRoutes(r)

	server := newHTTPServer(cfg.Server.HTTPAddr, r)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("pending writes not flushed")
	}
	log.Info().Msg("server stopped")
}

func buildOptions(cfg config.AppConfig) wager.Options {
	return wager.Options{
		Rules: game.RulesFromConfig(cfg.Game, cfg.Server.HouseUserID),
		Outbox: outbox.Config{
			Workers:      cfg.Outbox.Workers,
			Buffer:       cfg.Outbox.Buffer,
			RetryMax:     cfg.Outbox.RetryMax,
			RetryBase:    cfg.Outbox.RetryBase,
			WriteTimeout: cfg.Outbox.WriteTimeout,
		},
		ServerSeed:        cfg.Game.DiceServerSeed,
		ReplaySchedule:    cfg.Outbox.ReplaySchedule,
		ReconcileSchedule: cfg.Outbox.ReconcileSchedule,
	}
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
