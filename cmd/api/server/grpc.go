package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "user-roster/internal/adapter/grpc"
	"user-roster/internal/adapter/grpc/middleware"
	"user-roster/internal/usecase/user"
	"user-roster/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(userUC user.Usecase, l *zap.Logger, rateLimiter *middleware.RateLimiter) *grpc.Server {
	// Create gRPC server with request ID and rate limit interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)
	grpcadapter.RegisterRosterServer(grpcServer, grpcadapter.NewUserServiceServer(userUC, l))

	return grpcServer
}
