package grpc_control

import (
	"fmt"
	"net"
	"sync"

	"spread-observer/src/logger"
	"spread-observer/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// MonitorService is the health service name reported for the pair monitor.
const MonitorService = "spread_observer.Monitor"

// ControlService exposes the standard gRPC health protocol. The overall
// server is always SERVING; MonitorService is SERVING only while a pair is
// tracked.
type ControlService struct {
	Health *health.Server
	Logger *logger.Logger

	server *grpc.Server
	mu     sync.Mutex
}

// -----------------------------------------------------------------------------

func NewControlService(log *logger.Logger) *ControlService {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(MonitorService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &ControlService{
		Health: hs,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Register attaches the health service to registrar.
func (s *ControlService) Register(registrar grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(registrar, s.Health)
}

// -----------------------------------------------------------------------------

// OnPairChange updates the monitor status after the tracked pair changes.
func (s *ControlService) OnPairChange(pair models.MTrackedPair) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if pair.IsConfigured() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus(MonitorService, status)
	s.Logger.Debug("Health %s -> %s", MonitorService, status)
}

// -----------------------------------------------------------------------------

// Serve listens on host:port and blocks until Stop.
func (s *ControlService) Serve(host string, port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}

	srv := grpc.NewServer()
	s.Register(srv)

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.Logger.Info("Starting gRPC health server on %s", lis.Addr())
	return srv.Serve(lis)
}

// -----------------------------------------------------------------------------

// Stop marks everything NOT_SERVING and stops the server gracefully.
func (s *ControlService) Stop() {
	s.Health.Shutdown()

	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
}
