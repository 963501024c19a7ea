package router // package router wires handlers and middleware onto an Echo instance

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-receipt-service/internal/config"
	"github.com/iliyamo/cinema-receipt-service/internal/handler"
	"github.com/iliyamo/cinema-receipt-service/internal/middleware"
)

// Deps carries what the routes need.  Redis may be nil; the rate limiter
// and cache then pass requests straight through.
type Deps struct {
	Receipts    *handler.ReceiptHandler
	Redis       *redis.Client
	RateLimit   config.RateLimitConfig
	Cache       config.CacheConfig
	JWTSecret   string
	CORSOrigins []string
	Log         *logrus.Entry
}

// New builds the Echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	RegisterCatalog(e, d)
	RegisterReceipts(e, d)
	return e
}

// RegisterCatalog exposes the schedule and menu behind the response cache.
func RegisterCatalog(e *echo.Echo, d Deps) {
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	e.GET("/v1/movies", handler.Movies, cache)
	e.GET("/v1/movies/:id", handler.Movie, cache)
	e.GET("/v1/concessions", handler.Concessions, cache)
	e.GET("/v1/seats", handler.Seats, cache)
}

// RegisterReceipts exposes the receipt endpoints behind the rate limiter.
// The internal notification additionally requires a STAFF or OWNER token
// when a JWT secret is configured.
func RegisterReceipts(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	e.POST("/v1/receipts", d.Receipts.IssueTicket, limit)

	guard := []echo.MiddlewareFunc{}
	if d.JWTSecret != "" {
		guard = append(guard, middleware.JWTAuth(d.JWTSecret), middleware.RequireRole("STAFF", "OWNER"))
	}
	guard = append(guard, limit)
	e.POST("/v1/notifications/booking", d.Receipts.NotifyBooking, guard...)
}
