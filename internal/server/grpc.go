// Package server assembles the gRPC server: interceptor chain, OpenTelemetry
// instrumentation, health, and reflection. The auth core itself is
// transport-agnostic; this is the hosting shell around it.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"sessiongate/internal/server/interceptors"
)

// Health methods never require a token.
var defaultPublicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// Options configures the gRPC server assembly.
type Options struct {
	// Authz validates Bearer tokens on protected methods. Required.
	Authz interceptors.Authorizer
	// PublicMethods are full method names served without a token, merged with
	// the health methods.
	PublicMethods map[string]bool
	// MethodPermissions maps full method names to the permissions they require.
	MethodPermissions map[string][]string
	// Meter feeds the per-RPC counter and latency histogram. May be nil.
	Meter metric.Meter
	// SkipMetrics are full method names excluded from metrics (health checks
	// are always excluded).
	SkipMetrics map[string]bool
}

// New builds the gRPC server with the interceptor chain and registers the
// health and reflection services. The returned health server starts in
// NOT_SERVING; the caller flips it once dependencies are ready.
func New(opts Options) (*grpc.Server, *health.Server) {
	public := make(map[string]bool, len(defaultPublicMethods)+len(opts.PublicMethods))
	for m := range defaultPublicMethods {
		public[m] = true
	}
	for m, ok := range opts.PublicMethods {
		public[m] = ok
	}

	skipMetrics := map[string]bool{
		"/grpc.health.v1.Health/Check": true,
		"/grpc.health.v1.Health/Watch": true,
	}
	for m, ok := range opts.SkipMetrics {
		skipMetrics[m] = ok
	}

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.MetricsUnary(opts.Meter, skipMetrics),
			interceptors.AuthUnary(opts.Authz, public, opts.MethodPermissions),
		),
	)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(s, healthSrv)
	reflection.Register(s)

	return s, healthSrv
}
