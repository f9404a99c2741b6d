package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/maintenance"
)

// ServiceName is the health service name reported next to the overall ("")
// status.
const ServiceName = "maintenance"

const defaultProbeInterval = 10 * time.Second

// HealthServer publishes database reachability through the standard
// grpc.health.v1 service.
type HealthServer struct {
	Maint            *maintenance.Maintenance
	RateLimiterStore *common.RateLimiterStore
	Health           *health.Server
	ProbeInterval    time.Duration
}

func NewHealthServer(m *maintenance.Maintenance, limiter *common.RateLimiterStore) *HealthServer {
	return &HealthServer{
		Maint:            m,
		RateLimiterStore: limiter,
		Health:           health.NewServer(),
		ProbeInterval:    defaultProbeInterval,
	}
}

func grpcLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameGrpcServer,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryHealth),
	)
}

func (h *HealthServer) CheckClientLimiter(key string) bool {
	return h.RateLimiterStore.Allow(key)
}

// Probe pings the database once and updates the published status.
func (h *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.Maint.Db.Ping(ctx); err != nil {
		grpcLogger().Warn("Database ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.Health.SetServingStatus("", status)
	h.Health.SetServingStatus(ServiceName, status)
	return status
}

// Watch probes until ctx is cancelled, then marks the service as shutting
// down.
func (h *HealthServer) Watch(ctx context.Context) {
	h.Probe(ctx)

	ticker := time.NewTicker(h.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Health.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// NewServer builds a grpc.Server with the logging and rate limit
// interceptors and the health service registered.
func (h *HealthServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		LoggingInterceptor(),
		h.CreateRateLimitInterceptor([]string{healthpb.Health_Check_FullMethodName}),
	))
	server := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(server, h.Health)
	return server
}
