package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spread-observer/src/cache"
	"spread-observer/src/config"
	"spread-observer/src/helpers"
	"spread-observer/src/logger"
	"spread-observer/src/monitor"
	"spread-observer/src/server"
)

// -----------------------------------------------------------------------------

func main() {

	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf, conf.Name)
	errorHandler := helpers.NewErrorHandler(appLogger.Named("ErrorHandler"))

	// 4. Setup Components
	store, err := setupDatabase(conf, appLogger, errorHandler)
	if err != nil {
		appLogger.Critical("Database unavailable: %v", err)
	}
	defer store.Close()

	feed := setupFeed(conf.MConfig)

	history := cache.NewHistoryCache(time.Duration(conf.Monitor.CacheTTLSeconds)*time.Second, logger.NewLogger(conf, "HistoryCache"))
	session := monitor.NewSession(conf.MConfig, feed, history, logger.NewLogger(conf, "Session"))

	control := setupControl(conf)
	session.OnPairChange = control.OnPairChange

	// 5. Restore the tracked pair
	pair := restorePair(store, conf, appLogger)
	session.SetPair(pair.CodeA, pair.CodeB)

	// 6. Background cache hygiene
	sweeper := cache.NewSweeper(history, time.Duration(conf.Monitor.CacheSweepSeconds)*time.Second, logger.NewLogger(conf, "Sweeper"))
	if err := sweeper.Start(); err != nil {
		appLogger.Warning("Cache sweeper not started: %v", err)
	}

	// 7. Start Servers
	srv := server.NewFastAPIServer(conf.MConfig, session, store, logger.NewLogger(conf, "FastAPIServer"))
	startServers(srv, control, conf, appLogger)

	// 8. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	sweeper.Stop()
	control.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		if err := srv.Stop(); err != nil {
			appLogger.Error("Server shutdown: %v", err)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		appLogger.Warning("Server shutdown timed out")
	}
	appLogger.Info("Shutdown complete.")
}
