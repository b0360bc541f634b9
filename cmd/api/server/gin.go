package server

import (
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "user-roster/internal/adapter/gin/handler"
	"user-roster/internal/adapter/gin/middleware"
	ginrouter "user-roster/internal/adapter/gin/router"
	grpcmiddleware "user-roster/internal/adapter/grpc/middleware"
)

// SetupGinServer creates and configures the Gin server for the roster page and REST API
func SetupGinServer(
	handler *ginhandler.UserHandler,
	templates *template.Template,
	rateLimiter *grpcmiddleware.RateLimiter,
	production bool,
	ginAddr string,
	l *zap.Logger,
) (*http.Server, error) {
	// Setup Gin router with all middleware and routes
	router, err := ginrouter.SetupRouter(handler, ginrouter.Options{
		Templates:   templates,
		RateLimiter: rateLimiter,
		Secure:      middleware.SecureOptions(production),
		Release:     production,
	}, l)
	if err != nil {
		return nil, err
	}

	l.Info("Gin server configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}, nil
}
