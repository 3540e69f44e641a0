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
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gamechain/config"
	"gamechain/core"
	"gamechain/core/events"
	"gamechain/core/types"
	"gamechain/observability/logging"
	"gamechain/rpc"
	"gamechain/storage"
)

// eventLogger forwards engine events to the structured log.
type eventLogger struct {
	logger *slog.Logger
}

func (e eventLogger) Emit(evt events.Event) {
	attrs := []any{slog.String("event", evt.EventType())}
	if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
		if payload := carrier.Event(); payload != nil {
			for key, value := range payload.Attributes {
				attrs = append(attrs, slog.String(key, value))
			}
		}
	}
	e.logger.Info("economy event", attrs...)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("GAMECHAIN_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup("gamechaind", env, logging.Options{Path: cfg.LogPath})

	gameDeposit, err := cfg.ParseDeposit(cfg.GameDeposit)
	if err != nil {
		logger.Error("Invalid game deposit", slog.Any("error", err))
		os.Exit(1)
	}
	tradeDeposit, err := cfg.ParseDeposit(cfg.TradeDeposit)
	if err != nil {
		logger.Error("Invalid trade deposit", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node := core.NewNode(db, core.Config{
		GameDeposit:        gameDeposit,
		TradeDeposit:       tradeDeposit,
		MaxGameCollections: cfg.MaxGameCollections,
		MaxItems:           cfg.MaxItems,
		MaxMintPerCall:     cfg.MaxMintPerCall,
		MaxBundle:          cfg.MaxBundle,
		RandomAttempts:     cfg.RandomAttempts,
	})
	node.SetEmitter(eventLogger{logger: logger.With(slog.String("component", "events"))})

	rpcServer := rpc.NewServer(node, cfg.RPCAuthToken)

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Post("/", rpcServer.Handle)

	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	rpcSrv := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("RPC server listening", slog.String("address", cfg.RPCAddress), slog.String("network", cfg.NetworkName))
		if err := rpcSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("rpc server: %w", err)
		}
	}()
	go func() {
		logger.Info("Metrics server listening", slog.String("address", cfg.MetricsAddress))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Server failed", slog.Any("error", err))
	case sig := <-stop:
		logger.Info("Shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rpcSrv.Shutdown(ctx); err != nil {
		logger.Error("RPC shutdown failed", slog.Any("error", err))
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		logger.Error("Metrics shutdown failed", slog.Any("error", err))
	}
}
