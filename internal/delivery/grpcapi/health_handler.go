package grpcapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RatesService is the health service name that tracks the rate source.
const RatesService = "rates"

// HealthHandler serves grpc.health.v1. The overall status is always SERVING
// while the process runs. RatesService follows the rate source probe.
type HealthHandler struct {
	server  *health.Server
	source  domain.RateSource
	log     *slog.Logger
	metrics *metrics.RateMetrics
}

func NewHealthHandler(source domain.RateSource, log *slog.Logger, m *metrics.RateMetrics) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	s := health.NewServer()
	s.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.SetServingStatus(RatesService, healthpb.HealthCheckResponse_UNKNOWN)
	return &HealthHandler{server: s, source: source, log: log, metrics: m}
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Refresh probes the rate source once and publishes the result.
func (h *HealthHandler) Refresh(ctx context.Context) bool {
	available := h.source.IsAvailable(ctx)
	h.metrics.SetSourceAvailable(h.source.Name(), available)

	status := healthpb.HealthCheckResponse_SERVING
	if !available {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		h.log.Warn("rate source unavailable", "source", h.source.Name())
	}
	h.server.SetServingStatus(RatesService, status)
	return available
}

// Watch refreshes every interval until ctx is done.
func (h *HealthHandler) Watch(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)
	ticker := time.NewTicker(interval)
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

// Shutdown flips every service to NOT_SERVING ahead of GracefulStop.
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}
