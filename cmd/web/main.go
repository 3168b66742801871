package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
	"github.com/hocine1592/offlinesteamweb/internal/config"
	"github.com/hocine1592/offlinesteamweb/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	source := catalog.NewClient(cfg.Catalog.Endpoint,
		catalog.WithProxyPrefix(cfg.Catalog.ProxyPrefix),
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithLogger(logger.Named("catalog")),
	)
	srv, err := newServer(cfg, logger, source)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	// The first page views render the loading state until this completes.
	go srv.store.Run(ctx, cfg.Catalog.Refresh)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()
	logger.Info("web listening",
		zap.String("addr", httpSrv.Addr),
		zap.Bool("dev", cfg.Server.Dev),
		zap.String("catalog", cfg.Catalog.Endpoint),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
	logger.Info("web stopped")
}
