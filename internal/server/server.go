package server

import (
	"context"
	"embed"
	"errors"
	"net"
	"net/http"
	"time"

	_ "summymail/docs" // swagger spec
	"summymail/internal/config"
	"summymail/internal/handlers"
	"summymail/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

//go:embed static
var staticFiles embed.FS

// Server represents the application server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   zerolog.Logger
	analyzer handlers.ThreadAnalyzer
	digests  handlers.DigestSender
	session  *session.Session

	// cancelled on Shutdown so an in-flight model call is abandoned with the UI
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config, analyzer handlers.ThreadAnalyzer, digests handlers.DigestSender, logger zerolog.Logger) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:     cfg,
		logger:     logger,
		analyzer:   analyzer,
		digests:    digests,
		session:    session.New(),
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.Server.BaseContext = func(net.Listener) context.Context { return s.baseCtx }

	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit("2M"))

	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))

	api.GET("/", handlers.RootHandler(s.config.Version))
	api.GET("/state", handlers.StateHandler(s.session))
	api.POST("/analyze", handlers.AnalyzeHandler(s.analyzer, s.session, s.logger))
	api.POST("/action-items/:index/toggle", handlers.ToggleActionItemHandler(s.session))
	api.POST("/digest", handlers.DigestHandler(s.digests, s.session, s.logger))

	// Single page UI (last to avoid conflicts)
	s.echo.StaticFS("/", echo.MustSubFS(staticFiles, "static"))
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	err := s.echo.Start(":" + s.config.Port)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown abandons any in-flight analysis and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelBase()
	return s.echo.Shutdown(ctx)
}
