package gateway

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"erpgate.dev/internal/obs"
)

// NewGRPCHealthServer builds the gRPC surface used by platform probes. The
// REST API stays the only resource surface; gRPC carries health only.
func NewGRPCHealthServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	return srv, h
}

// SyncHealth mirrors the readiness probe into the gRPC health service until
// ctx ends.
func (a *API) SyncHealth(ctx context.Context, h *health.Server, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	set := func() {
		if err := a.probe.Check(ctx); err != nil {
			obs.SetReady(false)
			h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		obs.SetReady(true)
		h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}
	set()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			set()
		}
	}
}
