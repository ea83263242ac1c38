// Package logger provides the global logger for the application
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/zap"
)

var (
	zapLogger *zap.Logger
	mu        sync.RWMutex
)

// Options selects the log level. Flags take precedence over Environment.
type Options struct {
	Environment string
	Debug       bool
	Trace       bool
	Info        bool
	Out         io.Writer
}

// LevelFor resolves the zerolog level for the given options.
func LevelFor(opts Options) zerolog.Level {
	switch {
	case opts.Debug:
		return zerolog.DebugLevel
	case opts.Trace:
		return zerolog.TraceLevel
	case opts.Info:
		return zerolog.InfoLevel
	}

	switch strings.ToLower(opts.Environment) {
	case "dev", "test":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func initLogger(opts Options) {
	if opts.Environment == "" {
		opts.Environment = os.Getenv("ENVIRONMENT")
	}
	if opts.Environment == "" {
		opts.Environment = "prod"
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out}).With().Caller().Logger()

	logLevel := LevelFor(opts)
	zerolog.SetGlobalLevel(logLevel)

	zl, err := newZap(opts.Environment, logLevel)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build zap logger, using nop")
		zl = zap.NewNop()
	}
	mu.Lock()
	zapLogger = zl
	mu.Unlock()

	switch logLevel {
	case zerolog.DebugLevel:
		log.Debug().Str("environment", opts.Environment).Msg("Debug logging enabled")
	case zerolog.TraceLevel:
		log.Trace().Str("environment", opts.Environment).Msg("Trace logging enabled")
	default:
		log.Info().Str("environment", opts.Environment).Msg("Info logging enabled")
	}
}

func newZap(environment string, level zerolog.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if environment == "dev" || environment == "test" {
		cfg = zap.NewDevelopmentConfig()
	}
	if level <= zerolog.DebugLevel {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// Init initializes the logger from the environment and the given options.
// It sets up the global zerolog logger with console output.
// Example usage:
//
//	logger.Init(logger.Options{Debug: debugFlag}) <- in the command's PersistentPreRun
//
// Then, `fare audit --debug ...`
func Init(opts Options) {
	initLogger(opts)
}

// Sugar returns a sugared logger for easier use. It is a nop until Init runs.
func Sugar() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if zapLogger == nil {
		return zap.NewNop().Sugar()
	}
	return zapLogger.Sugar()
}
