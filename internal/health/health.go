package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall ("")
// status.
const ServiceName = "storefront.Catalog"

var ErrNotChecked = errors.New("health not checked yet")

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Monitor pings the database on an interval and mirrors the result into a
// gRPC health server.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	server   *grpchealth.Server
	log      zerolog.Logger

	mu      sync.RWMutex
	lastErr error
}

func NewMonitor(p Pinger, interval time.Duration, log zerolog.Logger) *Monitor {
	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	m := &Monitor{
		pinger:   p,
		interval: interval,
		timeout:  timeout,
		server:   grpchealth.NewServer(),
		log:      log.With().Str("component", "health").Logger(),
		lastErr:  ErrNotChecked,
	}
	m.setServing(healthpb.HealthCheckResponse_NOT_SERVING)
	return m
}

func (m *Monitor) Server() *grpchealth.Server {
	return m.server
}

// Check returns the result of the most recent ping.
func (m *Monitor) Check(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Run probes immediately and then on every tick until ctx is done. On exit
// the status is switched to NOT_SERVING.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe performs a single ping and records the outcome.
func (m *Monitor) Probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(pingCtx)

	m.mu.Lock()
	changed := (err == nil) != (m.lastErr == nil)
	m.lastErr = err
	m.mu.Unlock()

	if err != nil {
		m.setServing(healthpb.HealthCheckResponse_NOT_SERVING)
		if changed {
			m.log.Warn().Err(err).Msg("database unreachable")
		}
		return
	}
	m.setServing(healthpb.HealthCheckResponse_SERVING)
	if changed {
		m.log.Info().Msg("database reachable")
	}
}

func (m *Monitor) setServing(status healthpb.HealthCheckResponse_ServingStatus) {
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)
}

// NewGRPCServer returns a traced gRPC server exposing m and reflection.
func NewGRPCServer(m *Monitor) *grpc.Server {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(s, m.Server())

	// Enable reflection for grpcurl/grpcui
	reflection.Register(s)
	return s
}
