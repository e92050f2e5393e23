package router // package router defines how HTTP routes are registered for the API

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/post-service/internal/config"
	"github.com/iliyamo/post-service/internal/handler"
	"github.com/iliyamo/post-service/internal/middleware"
)

// Options carries the optional Redis-backed middleware settings.  A nil
// Redis client disables both the cache and the rate limiter.
type Options struct {
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// Setup installs the validator and the middleware every route runs behind:
// trailing-slash normalisation, panic recovery, request logging, CORS for
// all origins and the rate limiter.
func Setup(e *echo.Echo, opts Options) {
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("http: %s %s %d %s ip=%s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			return nil
		},
	}))
	e.Use(echomw.CORS())
	e.Use(middleware.NewTokenBucket(opts.RateLimit, opts.Redis))
}

// RegisterRoutes registers the root text route and the health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/", handler.Home)
	e.GET("/healthz", h.Health)
}

// RegisterPosts registers the /posts resource.  Reads go through the
// response cache; writes purge it.  /posts/specific is a static route and
// echo matches it before /posts/:id.
func RegisterPosts(e *echo.Echo, p *handler.PostHandler, opts Options) {
	g := e.Group("/posts",
		middleware.NewRedisCache(opts.Cache, opts.Redis),
		middleware.InvalidateCache(opts.Cache, opts.Redis),
	)
	g.GET("", p.ListPosts)
	g.GET("/specific", p.SpecificPost)
	g.POST("", p.CreatePost)
	g.GET("/:id", p.GetPost)
	g.DELETE("/:id", p.DeletePost)
	g.PATCH("/:id", p.UpdatePost)
}
