package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"user-roster/cmd/api/di"
	"user-roster/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server
}

// New creates a new server instance. The gRPC server exists only when GRPC_ENABLED is set.
func New(cfg *config.Config, l *zap.Logger, c *di.Container) (*Server, error) {
	ginServer, err := SetupGinServer(c.GinHandler, c.Templates, c.RateLimiter, cfg.IsProduction(), httpAddress(cfg), l)
	if err != nil {
		return nil, fmt.Errorf("failed to set up Gin server: %w", err)
	}

	s := &Server{
		Config: cfg,
		Logger: l,
		Gin:    ginServer,
	}
	if cfg.App.GRPCEnabled {
		s.GRPC = SetupGRPC(c.UserUC, l, c.RateLimiter)
	}

	return s, nil
}

// Start runs every configured server and returns when the first one fails.
func (s *Server) Start(ctx context.Context) error {
	// Bind before serving so port errors surface immediately
	lc := net.ListenConfig{}
	ginLis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Gin.Addr, err)
	}

	var grpcLis net.Listener
	if s.GRPC != nil {
		addr := grpcAddress(s.Config)
		grpcLis, err = lc.Listen(ctx, "tcp", addr)
		if err != nil {
			_ = ginLis.Close()
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
	}

	return s.serve(ginLis, grpcLis)
}

// serve runs the servers on the given listeners. A failure of either one stops
// the other, so the error always reaches the caller.
func (s *Server) serve(ginLis, grpcLis net.Listener) error {
	var g errgroup.Group
	var once sync.Once
	stopAll := func() {
		once.Do(func() {
			_ = s.Gin.Close()
			if s.GRPC != nil {
				s.GRPC.Stop()
			}
		})
	}

	g.Go(func() error {
		s.Logger.Info("Gin server running", zap.String("address", ginLis.Addr().String()))
		if err := s.Gin.Serve(ginLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stopAll()
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil && grpcLis != nil {
		g.Go(func() error {
			s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
			if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				stopAll()
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Shutdown stops the servers, waiting for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.Gin != nil {
		s.Logger.Info("shutting down Gin server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("grpc shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

// grpcAddress returns the gRPC server address
func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
