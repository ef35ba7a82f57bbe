package health

import (
	"context"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "todos.v1.TodoService"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker is a grpc.health.v1 server whose status follows the store.
// Each Check re-probes the store before answering.
type Checker struct {
	*health.Server
	store Pinger
}

// NewChecker returns a Checker probing store.
func NewChecker(store Pinger) *Checker {
	return &Checker{Server: health.NewServer(), store: store}
}

// Check probes the store, records the result, and answers from the recorded status.
func (c *Checker) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	c.refresh(ctx)
	return c.Server.Check(ctx, req)
}

func (c *Checker) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := c.store.Ping(ctx); err != nil {
		log.Printf("health: store ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.SetServingStatus("", status)
	c.SetServingStatus(ServiceName, status)
}

// Start serves the health service on addr and returns the bound address and
// a shutdown function. Shutdown marks every service NOT_SERVING before stopping.
func Start(addr string, store Pinger) (net.Addr, func(context.Context) error, error) {
	if store == nil {
		panic("store is required")
	}
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	checker := NewChecker(store)
	checker.refresh(context.Background())

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, checker)

	go func() { _ = srv.Serve(lis) }()

	return lis.Addr(), func(ctx context.Context) error {
		checker.Shutdown()
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
