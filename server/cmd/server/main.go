package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/upstatus/upstatus/pkg/logging"
	"github.com/upstatus/upstatus/server/internal/alerts"
	"github.com/upstatus/upstatus/server/internal/api"
	"github.com/upstatus/upstatus/server/internal/auth"
	"github.com/upstatus/upstatus/server/internal/config"
	"github.com/upstatus/upstatus/server/internal/store"
	"github.com/upstatus/upstatus/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "server.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Server.Log)
	if err != nil {
		slog.Error("failed to configure logging", "err", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	slog.Info("upstatus-server starting",
		"config", *configPath,
		"http_port", cfg.Server.HTTPPort,
		"summary_file", cfg.Server.SummaryFile,
		"broadcast_interval", cfg.Server.BroadcastInterval,
		"auth_mode", cfg.Server.Auth.Mode,
		"webhooks", len(cfg.Server.Alerts.Webhooks),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing summary is not fatal: the generator may not have run yet.
	st := store.New(cfg.Server.SummaryFile)
	alertEngine := alerts.New(cfg.Server.Alerts)
	if err := st.Load(); err != nil {
		slog.Warn("summary not loaded yet", "err", err)
	} else {
		slog.Info("summary loaded", "sites", st.Count())
		alertEngine.Observe(st.List())
	}

	hub := ws.New(st, cfg.Server.BroadcastInterval, cfg.Server.CORS.AllowedOrigins...)
	go hub.Run(ctx)

	// Every reload feeds the alert engine and pushes a fresh snapshot.
	go func() {
		err := st.Watch(ctx, func() {
			alertEngine.Observe(st.List())
			hub.Notify()
		})
		if err != nil {
			slog.Error("summary watcher stopped", "err", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           routes(cfg.Server, st, hub, alertEngine),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("upstatus-server shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// routes mounts the REST API, /metrics and the WebSocket stream. The API key
// guards every route, the stream included.
func routes(cfg config.ServerConfig, st *store.Store, hub http.Handler, alertSrc api.AlertSource) http.Handler {
	guard := auth.APIKey(cfg.Auth.Mode, cfg.Auth.EffectiveHeader(), cfg.Auth.Key())
	apiHandler := api.New(st, api.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthHeader:     cfg.Auth.EffectiveHeader(),
		Auth:           guard,
		Alerts:         alertSrc,
	})
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/ws/stream", guard(hub))
	return mux
}
