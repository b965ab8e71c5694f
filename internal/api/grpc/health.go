package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"carrental-backend/internal/api/grpc/interceptor"
	"carrental-backend/internal/logger"
)

// BookingServiceName is the service name reported next to the overall "" status.
const BookingServiceName = "carrental.v1.Booking"

const (
	defaultProbeInterval = 15 * time.Second
	probeTimeout         = 2 * time.Second
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer publishes the grpc_health_v1 status of the booking backend,
// derived from whether the database answers a ping.
type HealthServer struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
}

func NewHealthServer(db Pinger) *HealthServer {
	h := &HealthServer{
		server:   health.NewServer(),
		db:       db,
		interval: defaultProbeInterval,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(BookingServiceName, status)
}

// Refresh pings the database once and updates the published status.
func (h *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		logger.Warn("Health probe failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.set(status)
	return status
}

// Watch refreshes the status until ctx is done.
func (h *HealthServer) Watch(ctx context.Context) {
	h.Refresh(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING so that load balancers drain the instance.
func (h *HealthServer) Shutdown() {
	h.server.Shutdown()
}

// NewServer builds the gRPC server exposing health and reflection.
func NewServer(h *HealthServer) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptor.RecoveryUnary(),
		interceptor.LoggingUnary(),
	))
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
	return s
}
