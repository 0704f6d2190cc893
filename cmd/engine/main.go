package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hemanth5544/Order-Execution-Engine/params"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/api"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/broadcast"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/dex"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/engine"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/queue"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/storage"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = filepath.Join(cfg.Server.DataDir, "engine.log")
	}

	logger, err := util.NewLoggerWithFile(logFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", logFile)

	// ---- Persistence ----
	store, err := storage.NewPebbleStore(filepath.Join(cfg.Server.DataDir, "orders"))
	if err != nil {
		sugar.Fatalw("store_open_failed", "err", err)
	}

	orderLog, err := storage.NewFileLog(filepath.Join(cfg.Server.DataDir, "orders.log"))
	if err != nil {
		sugar.Warnw("order_log_open_failed", "err", err)
	}

	// ---- Execution pipeline ----
	// Everything is constructor-injected; no globals anywhere.
	adapters, _ := dex.NewSimulatedVenues(cfg.Dex, sugar)
	router := dex.NewRouter(adapters, sugar)
	hub := broadcast.NewHub(sugar)
	exec := engine.NewExecutor(store, router, hub, cfg.Queue.MaxRetries, sugar)

	scheduler := queue.NewScheduler(cfg.Queue, func(ctx context.Context, job queue.Job) engine.Outcome {
		return exec.ExecuteOrder(ctx, job.OrderID)
	}, util.RealClock{}, sugar)

	var logSink storage.EventLog = orderLog
	if orderLog == nil {
		logSink = storage.NewNopLog()
	}
	server := api.NewServer(store, scheduler, hub, logSink, sugar)

	sugar.Infow("engine_config",
		"port", cfg.Server.Port,
		"max_concurrent_orders", cfg.Queue.MaxConcurrentOrders,
		"orders_per_minute", cfg.Queue.OrdersPerMinute,
		"max_retries", cfg.Queue.MaxRetries,
		"venues", router.Venues(),
	)

	// ---- Serve until signalled ----
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		sugar.Fatalw("api_server_failed", "err", err)
	case <-ctx.Done():
		sugar.Infow("shutdown_signal_received")
	}

	// Ordered teardown: stop admissions, drain in-flight jobs, then release
	// the store.
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Shutdown(drainCtx); err != nil {
		sugar.Warnw("scheduler_shutdown_incomplete", "err", err)
	}
	if err := store.Close(); err != nil {
		sugar.Warnw("store_close_failed", "err", err)
	}
	sugar.Infow("engine_stopped")
}
