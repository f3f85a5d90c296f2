// Package health publishes backend reachability over the standard gRPC health protocol.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rbright/predicweb/internal/backend"
)

// Server tracks one status per backend service plus the overall "" service.
type Server struct {
	status *grpchealth.Server
	grpc   *grpc.Server
}

// NewServer registers the health service. Backends start UNKNOWN until their first call.
func NewServer(services ...string) *Server {
	s := &Server{
		status: grpchealth.NewServer(),
		grpc:   grpc.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.status)
	s.status.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range services {
		s.status.SetServingStatus(name, healthpb.HealthCheckResponse_UNKNOWN)
	}
	return s
}

// Observe implements backend.Observer. Only an unreachable socket marks a service down;
// a daemon that accepted the connection is serving even when the exchange failed.
func (s *Server) Observe(service string, _ time.Duration, err error) {
	if errors.Is(err, backend.ErrConnect) {
		s.status.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.status.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
}

// Status returns the current status of service as a lowercase word.
func (s *Server) Status(ctx context.Context, service string) (string, error) {
	resp, err := s.status.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return "", err
	}
	return statusWord(resp.GetStatus()), nil
}

// Serve blocks until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		s.status.Shutdown()
		s.grpc.GracefulStop()
	}()

	if err := s.grpc.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve grpc health: %w", err)
	}
	return nil
}

// Check asks a running instance at addr for the status of service.
func Check(ctx context.Context, addr string, service string, timeout time.Duration) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", errors.New("health address is empty")
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return "", fmt.Errorf("dial health %q: %w", addr, err)
	}
	defer conn.Close()

	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn.Connect()
	if err := waitForReady(readyCtx, conn); err != nil {
		return "", fmt.Errorf("wait for health endpoint readiness: %w", err)
	}

	resp, err := healthpb.NewHealthClient(conn).Check(readyCtx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return "", fmt.Errorf("health check %q: %w", service, err)
	}
	return statusWord(resp.GetStatus()), nil
}

func statusWord(status healthpb.HealthCheckResponse_ServingStatus) string {
	return strings.ToLower(status.String())
}
