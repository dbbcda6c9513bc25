package interceptors

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsUnary returns a unary server interceptor that counts RPCs and
// records their latency through the given meter. If meter is nil, the
// interceptor no-ops. skipMethods is the set of full method names to not
// record (e.g. health checks).
func MetricsUnary(meter metric.Meter, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	if meter == nil {
		return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			return handler(ctx, req)
		}
	}

	requests, err := meter.Int64Counter("rpc.server.requests",
		metric.WithDescription("Completed RPCs by method and status code"))
	if err != nil {
		log.Printf("metrics: failed to create request counter: %v", err)
	}
	latency, err := meter.Float64Histogram("rpc.server.duration",
		metric.WithDescription("RPC handling duration"),
		metric.WithUnit("ms"))
	if err != nil {
		log.Printf("metrics: failed to create latency histogram: %v", err)
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		attrs := metric.WithAttributes(
			attribute.String("rpc.method", info.FullMethod),
			attribute.String("rpc.status_code", status.Code(err).String()),
		)
		if requests != nil {
			requests.Add(ctx, 1, attrs)
		}
		if latency != nil {
			latency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0, attrs)
		}
		return resp, err
	}
}
