package main

import (
	"spread-observer/src/config"
	pb "spread-observer/src/grpc_control"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
)

// -----------------------------------------------------------------------------

// startServers starts the HTTP API and, when grpc_port is set, the gRPC
// health server.
func startServers(
	srv interfaces.IDataExchanger,
	control *pb.ControlService,
	config *config.Config,
	appLogger *logger.Logger,
) {

	// 1. FastAPIServer
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 2. gRPC health
	if config.GrpcPort == 0 {
		appLogger.Info("grpc_port not set, gRPC health server disabled")
		return
	}
	go func() {
		if err := control.Serve(config.GrpcHost, config.GrpcPort); err != nil {
			appLogger.Error("gRPC server stopped: %v", err)
		}
	}()
}
