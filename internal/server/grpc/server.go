// Package grpc serves the standard gRPC health service. The serving status
// follows the reachability of the ledger endpoint.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/electronshop/shopkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// LedgerService is the health service name reporting ledger readiness. The
// empty name reports the same status for the whole server.
const LedgerService = "shopkeeper.Ledger"

// HeadReader reports the latest ledger position.
type HeadReader interface {
	Head(ctx context.Context) (uint64, error)
}

type HealthServer struct {
	address  string
	ledger   HeadReader
	interval time.Duration
	logger   logging.Logger
	health   *health.Server
}

func NewHealthServer(address string, l logging.Logger, ledger HeadReader, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &HealthServer{
		address:  address,
		ledger:   ledger,
		interval: interval,
		logger:   l.With("module", "grpc_health"),
		health:   health.NewServer(),
	}
}

// Run serves until ctx is done.
func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	return srv.Serve(listen)
}

func (s *HealthServer) watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probe(ctx)
		}
	}
}

// probe sets the serving status from one head lookup.
func (s *HealthServer) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if _, err := s.ledger.Head(pctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "ledger head unavailable", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(LedgerService, status)
}
