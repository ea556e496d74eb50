package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// NewGRPCServer registers the extraction service, the health service (set
// to SERVING) and reflection for grpcurl. Extra interceptors run after
// logging.
func NewGRPCServer(svc ExtractionServer, maxMsgBytes int, logger *slog.Logger, interceptors ...grpc.UnaryServerInterceptor) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	chain := append([]grpc.UnaryServerInterceptor{LoggingInterceptor(logger)}, interceptors...)
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(chain...)}
	if maxMsgBytes > 0 {
		// leave room for framing around the document bytes
		opts = append(opts, grpc.MaxRecvMsgSize(maxMsgBytes+1<<20))
	}
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(s)

	RegisterExtractionServer(s, svc)
	return s, hs
}

// LoggingInterceptor logs every unary call with its status code and duration.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc.call",
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// RateLimitInterceptor rejects extraction calls with ResourceExhausted once
// the token bucket is empty. Health checks are never limited.
func RateLimitInterceptor(limiter *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if limiter != nil && strings.HasPrefix(info.FullMethod, "/"+serviceName+"/") && !limiter.Allow() {
			return nil, status.Error(codes.ResourceExhausted, "too many extraction requests")
		}
		return handler(ctx, req)
	}
}
