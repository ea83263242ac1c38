package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Server defaults
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8888
	DefaultBodyLimit  = 4 * 1024 * 1024 // 4MB
)

// Server represents the FARE HTTP server
type Server struct {
	App     *fiber.App
	config  *ServerConfig
	metrics *Metrics
}

type ServerConfig struct {
	Host      string
	Port      int
	BodyLimit int
	// Audit defaults applied when a request leaves window or step at zero.
	DefaultWindow int
	DefaultStep   int
	Parallelism   int
	// Registry collects the service metrics; a fresh registry when nil.
	Registry *prometheus.Registry `json:"-"`
}

// RouterHandler is a generic handler function type
type RouterHandler[Req, Resp any] func(*fiber.Ctx, Req) (Resp, error)
