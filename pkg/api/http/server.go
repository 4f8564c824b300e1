package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/demo-backend/internal/application/catalog"
	"github.com/aescanero/demo-backend/pkg/adapters/downstream"
	"github.com/aescanero/demo-backend/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// serviceName is reported by the health and readiness probes
const serviceName = "demo-backend"

const defaultMaxBodyBytes = 1 << 20

// DatabaseClient is the downstream database service
type DatabaseClient interface {
	BaseURL() string
	CheckHealth(ctx context.Context, timeout time.Duration) error
	Query(ctx context.Context, payload json.RawMessage, timeout time.Duration) (*downstream.QueryResult, error)
}

// Server represents the HTTP API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	catalog  *catalog.Service
	database DatabaseClient
	metrics  ports.MetricsCollector
	logger   *zap.Logger

	environment   string
	statusTimeout time.Duration
	queryTimeout  time.Duration
	queryLimiter  *rate.Limiter
}

// Config holds HTTP server configuration
type Config struct {
	Addr        string
	Environment string

	Catalog  *catalog.Service
	Database DatabaseClient

	StatusTimeout time.Duration
	QueryTimeout  time.Duration
	// QueryRateLimit is requests per second for /api/db/query; 0 disables
	QueryRateLimit float64
	QueryBurst     int

	MaxBodyBytes       int64
	CORSAllowedOrigins []string

	Metrics ports.MetricsCollector
	// MetricsHandler serves /metrics; defaults to promhttp.Handler()
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true
	router.Use(gin.CustomRecovery(recoveryHandler(cfg.Logger)))
	router.Use(requestID())
	router.Use(requestLogger(cfg.Logger))
	router.Use(requestMetrics(cfg.Metrics))

	s := &Server{
		router:        router,
		catalog:       cfg.Catalog,
		database:      cfg.Database,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		environment:   cfg.Environment,
		statusTimeout: cfg.StatusTimeout,
		queryTimeout:  cfg.QueryTimeout,
	}
	if cfg.QueryRateLimit > 0 {
		s.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueryRateLimit), cfg.QueryBurst)
	}

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	s.setupRoutes(metricsHandler)

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	chain := alice.New(
		newCORS(origins).Handler,
		limitBody(maxBody),
	)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           chain.Then(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(metricsHandler http.Handler) {
	// Probes
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ready", s.handleReady)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(metricsHandler))

	// Database service
	s.router.GET("/db/status", s.handleDBStatus)

	api := s.router.Group("/api")
	{
		api.GET("/users", s.handleListUsers)
		api.GET("/users/:id", s.handleGetUser)
		api.POST("/users", s.handleCreateUser)

		api.GET("/items", s.handleListItems)
		api.GET("/items/:id", s.handleGetItem)
		api.POST("/items", s.handleCreateItem)

		api.POST("/db/query", rateLimit(s.queryLimiter), s.handleDBQuery)
	}

	// Compatibility stub
	s.router.GET("/write", s.handleWrite)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	})
}

// EventStreamer serves the live event feed
type EventStreamer interface {
	HandleEventStream(c *gin.Context)
}

// SetupWebSocket adds the WebSocket event feed to the server
func (s *Server) SetupWebSocket(handler EventStreamer) {
	s.router.GET("/api/events/ws", handler.HandleEventStream)
}

// Handler returns the full handler chain, including CORS and body limits
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{requestIDHeader},
	})
}
