// Package healthcheck serves the standard gRPC health protocol and reports
// whether the task store is reachable.
package healthcheck

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported alongside the overall ("") status.
const ServiceName = "tasktracker.TaskTracker"

// DefaultInterval is how often the store is probed.
const DefaultInterval = 15 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps a gRPC server exposing grpc.health.v1.Health.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	db       Pinger
	interval time.Duration
}

// New creates a health server that probes db every interval. A non-positive
// interval falls back to DefaultInterval.
func New(db Pinger, interval time.Duration) *Server {
	if interval <= 0 {
		interval = DefaultInterval
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	s := &Server{grpc: srv, health: hs, db: db, interval: interval}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Probe pings the store once and records the result.
func (s *Server) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		slog.Warn("health probe failed", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Run probes the store until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.Probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Serve accepts health checks on lis. It blocks until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Shutdown marks every service NOT_SERVING and stops the server, waiting for
// in-flight RPCs until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() { s.grpc.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Start listens on addr, serves health checks and probes db in the
// background. It returns a shutdown function.
func Start(ctx context.Context, addr string, db Pinger, interval time.Duration) (func(context.Context) error, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := New(db, interval)
	probeCtx, stopProbe := context.WithCancel(ctx)
	go s.Run(probeCtx)
	go func() {
		slog.Info("grpc health server starting", "addr", lis.Addr().String())
		if err := s.Serve(lis); err != nil {
			slog.Error("grpc health server error", "error", err)
		}
	}()

	return func(ctx context.Context) error {
		stopProbe()
		return s.Shutdown(ctx)
	}, nil
}
