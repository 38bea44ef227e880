package main

import (
	"context"
	"time"

	"spread-observer/src/config"
	"spread-observer/src/data_source/tencent"
	pb "spread-observer/src/grpc_control"
	"spread-observer/src/helpers"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
	"spread-observer/src/models"
	"spread-observer/src/network"
	"spread-observer/src/storage"
)

// -----------------------------------------------------------------------------

// setupDatabase opens the pair store, retrying the connection a few times.
func setupDatabase(conf *config.Config, appLogger *logger.Logger, errorHandler *helpers.ErrorHandler) (interfaces.IPairStore, error) {
	storeLogger := logger.NewLogger(conf, "PairStore-"+conf.Storage.DBType)
	store, err := storage.NewPairStore(conf.MConfig, storeLogger)
	if err != nil {
		return nil, err
	}

	err = errorHandler.ExecuteWithRetry("database initialize", store.Initialize, 3)
	if err != nil {
		return nil, err
	}
	appLogger.Info("Pair store ready (%s)", conf.Storage.DBType)
	return store, nil
}

// -----------------------------------------------------------------------------

// setupFeed builds the Tencent quote feed on top of the network manager.
func setupFeed(config *models.MConfig) interfaces.IQuoteFeed {
	networkManager := network.NewAsyncNetworkManager(config, logger.NewLogger(config, "NetworkManager"))
	return tencent.NewTencentSource(config, networkManager, logger.NewLogger(config, "TencentSource"))
}

// -----------------------------------------------------------------------------

func setupControl(config *config.Config) *pb.ControlService {
	return pb.NewControlService(logger.NewLogger(config, "ControlService"))
}

// -----------------------------------------------------------------------------

// restorePair prefers the stored pair and falls back to the YAML defaults.
func restorePair(store interfaces.IPairStore, conf *config.Config, appLogger *logger.Logger) models.MTrackedPair {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pair, err := store.LoadPair(ctx)
	if err != nil {
		appLogger.Warning("Could not load stored pair: %v", err)
	}
	if pair.IsConfigured() {
		appLogger.Info("Restored pair %s / %s from store", pair.CodeA, pair.CodeB)
		return pair
	}

	pair = conf.DefaultPair()
	if pair.IsConfigured() {
		appLogger.Info("Using configured pair %s / %s", pair.CodeA, pair.CodeB)
	} else {
		appLogger.Info("No pair configured yet; waiting for /api/update-stocks")
	}
	return pair
}
