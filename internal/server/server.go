// Package server exposes the FARE metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/fare/internal/config"
	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/api"
	"github.com/tensorplex-labs/fare/pkg/fare"
)

// ConfigFromEnv builds a server config from the application config.
func ConfigFromEnv(cfg *config.AppConfig) *ServerConfig {
	return &ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		BodyLimit:     cfg.Server.BodyLimit,
		DefaultWindow: cfg.Audit.Window,
		DefaultStep:   cfg.Audit.Step,
		Parallelism:   cfg.Audit.Parallelism,
	}
}

// NewServer creates a new server with every route registered
func NewServer(serverConfig *ServerConfig) *Server {
	if serverConfig == nil {
		serverConfig = &ServerConfig{}
	}
	if serverConfig.Host == "" {
		serverConfig.Host = DefaultServerHost
	}
	if serverConfig.Port == 0 {
		serverConfig.Port = DefaultServerPort
	}
	if serverConfig.BodyLimit == 0 {
		serverConfig.BodyLimit = DefaultBodyLimit
	}
	if serverConfig.DefaultWindow == 0 {
		serverConfig.DefaultWindow = report.DefaultWindow
	}
	if serverConfig.DefaultStep == 0 {
		serverConfig.DefaultStep = report.DefaultStep
	}
	if serverConfig.Parallelism == 0 {
		serverConfig.Parallelism = 1
	}
	if serverConfig.Registry == nil {
		serverConfig.Registry = prometheus.NewRegistry()
	}

	log.Info().
		Any("serverConfig", serverConfig).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverConfig.BodyLimit,
	})

	metrics := NewMetrics()
	if err := metrics.Register(serverConfig.Registry); err != nil {
		log.Warn().Err(err).Msg("Failed to register server metrics")
	}

	app.Use(recover.New()) // add panic recovery
	app.Use(metrics.Middleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(ZstdMiddleware([]string{api.HealthPath, api.MetricsPath}))

	server := &Server{
		App:     app,
		config:  serverConfig,
		metrics: metrics,
	}
	server.routes()

	return server
}

func (s *Server) routes() {
	s.App.Get(api.HealthPath, func(c *fiber.Ctx) error {
		return c.JSON(createResponse(api.HealthResponse{Status: "ok"}, nil))
	})
	s.App.Get(api.MetricsPath, adaptor.HTTPHandler(
		promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}),
	))

	ServeRoute(s, api.ScorePath, s.handleScore)
	ServeRoute(s, api.AuditPath, s.handleAudit)
	ServeRoute(s, api.DiagnosticsPath, s.handleDiagnostics)
	ServeRoute(s, api.ReportPath, s.handleReport)
}

// fiberErrHandler maps fare precondition errors to 400 and fiber errors to
// their own status; everything else is a 500.
func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := statusFor(err)

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]interface{}{}, err))
}

func statusFor(err error) int {
	// Retrieve the custom status code if it's a *fiber.Error
	var e *fiber.Error
	if errors.As(err, &e) {
		return e.Code
	}
	if fare.IsInputError(err) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// ServeRoute registers a POST handler decoding Req and encoding Resp.
func ServeRoute[Req, Resp any](s *Server, path string, handler RouterHandler[Req, Resp]) {
	s.App.Post(path, func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			log.Error().
				Err(err).
				Str("route", path).
				Msg("Failed to parse request body")
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		}

		resp, err := handler(c, req)
		if err != nil {
			log.Error().
				Err(err).
				Str("route", path).
				Msg("Handler returned error")
			return err
		}

		return c.JSON(createResponse(resp, nil))
	})
}

// Address returns the host:port the server listens on.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", ln.Addr().String()).Msg("Server starting")
		errCh <- s.App.Listener(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received, gracefully shutting down...")
	return s.App.ShutdownWithTimeout(5 * time.Second)
}

// createResponse creates a StdResponse with the given body and error
func createResponse[T any](body T, err error) api.StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return api.StdResponse[T]{
			Body:  body,
			Error: &errMsg,
		}
	}
	return api.StdResponse[T]{
		Body:  body,
		Error: nil,
	}
}
