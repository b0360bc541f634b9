package router

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"user-roster/internal/adapter/gin/handler"
	"user-roster/internal/adapter/gin/middleware"
	grpcmiddleware "user-roster/internal/adapter/grpc/middleware"
	"user-roster/web"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "user-roster"

// OpenAPIPath serves the embedded API document.
const OpenAPIPath = "/openapi/roster.swagger.json"

// Options configures the router.
type Options struct {
	Templates   *template.Template
	RateLimiter *grpcmiddleware.RateLimiter
	Secure      secure.Options
	Release     bool
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) (*gin.Engine, error) {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.SetHTMLTemplate(opts.Templates)

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Secure(opts.Secure))
	router.Use(middleware.RateLimiter(opts.RateLimiter, log))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": ServiceName,
		})
	})

	// Roster page and its form endpoint
	router.GET("/", userHandler.Page)
	router.Any(handler.ActionPath, userHandler.Action)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}
	router.StaticFS("/static", http.FS(static))

	// API docs
	router.GET(OpenAPIPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", web.OpenAPI)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(OpenAPIPath))))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
		}
	}

	return router, nil
}
