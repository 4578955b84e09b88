package main

import (
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const grpcServiceName = "agri_advisor.Advisor"

// grpcHealth serves the standard grpc.health.v1 protocol for orchestrators
// that check liveness over gRPC.
type grpcHealth struct {
	srv    *grpc.Server
	hs     *health.Server
	logger *zap.Logger
}

func newGRPCHealth(logger *zap.Logger) *grpcHealth {
	g := &grpcHealth{srv: grpc.NewServer(), hs: health.NewServer(), logger: logger}
	healthpb.RegisterHealthServer(g.srv, g.hs)
	g.SetServing(false)
	return g
}

func (g *grpcHealth) Serve(lis net.Listener) error {
	g.logger.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
	return g.srv.Serve(lis)
}

func (g *grpcHealth) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	g.hs.SetServingStatus("", st)
	g.hs.SetServingStatus(grpcServiceName, st)
}

// Stop flips every service to NOT_SERVING before closing the listener.
func (g *grpcHealth) Stop() {
	g.hs.Shutdown()
	g.srv.GracefulStop()
}
