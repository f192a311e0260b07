package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthService is the gRPC service name whose status tracks the store.
const HealthService = "catalogue.Search"

// GRPCHealth serves the standard gRPC health protocol. The status of
// HealthService follows periodic store pings.
type GRPCHealth struct {
	srv    *grpc.Server
	hs     *health.Server
	store  Pinger
	every  time.Duration
	logger *slog.Logger
}

func NewGRPCHealth(store Pinger, logger *slog.Logger) *GRPCHealth {
	if logger == nil {
		logger = slog.Default()
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return &GRPCHealth{srv: srv, hs: hs, store: store, every: 15 * time.Second, logger: logger}
}

// Check pings the store once and updates the service status.
func (g *GRPCHealth) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if g.store != nil {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := g.store.Ping(pctx)
		cancel()
		if err != nil {
			g.logger.Warn("grpc.health.store_down", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	g.hs.SetServingStatus(HealthService, status)
	return status
}

// Serve blocks until ctx is done or the listener fails.
func (g *GRPCHealth) Serve(ctx context.Context, lis net.Listener) error {
	g.Check(ctx)
	go func() {
		t := time.NewTicker(g.every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				g.Check(ctx)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- g.srv.Serve(lis) }()
	g.logger.Info("grpc health serving", "addr", lis.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	g.hs.Shutdown()
	g.srv.GracefulStop()
	return nil
}

// ListenAndServe is Serve on a fresh TCP listener.
func (g *GRPCHealth) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return g.Serve(ctx, lis)
}
