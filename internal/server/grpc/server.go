// Package grpc runs the gRPC endpoint of the server. It exposes the standard
// health service, reporting SERVING while the database answers pings.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/docsync/internal/logging"
)

const defaultCheckInterval = 5 * time.Second

// Pinger is the dependency whose reachability decides the health status.
type Pinger interface {
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	address  string
	db       Pinger
	logger   logging.Logger
	health   *health.Server
	interval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, db Pinger, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &GRPCServer{
		address:  a,
		db:       db,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
		interval: interval,
	}
}

// check pings the database and publishes the result for the whole server
// ("") as well as for the sync service name.
func (s *GRPCServer) check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

// ServiceName is the health service name clients may query.
const ServiceName = "docsync.Sync"

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
