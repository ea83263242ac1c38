// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	Environment string `env:"ENVIRONMENT, default=prod"`
	Server      ServerEnvConfig
	Client      ClientEnvConfig
	Audit       AuditEnvConfig
}

// LoadConfig loads .env from the working directory, then reads the
// configuration from the process environment.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	return LoadConfigFrom(ctx, envconfig.OsLookuper())
}

// LoadDotEnv loads the given files (default ".env") into the process
// environment. Missing files are skipped and variables that are already set
// keep their value.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// LoadConfigFrom reads the configuration from an arbitrary lookuper.
func LoadConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Audit.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerEnvConfig configures the HTTP server.
type ServerEnvConfig struct {
	Host      string `env:"FARE_SERVER_HOST, default=0.0.0.0"`
	Port      int    `env:"FARE_SERVER_PORT, default=8888"`
	BodyLimit int    `env:"FARE_SERVER_BODY_LIMIT, default=4194304"`
}

// Address returns host:port.
func (c ServerEnvConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClientEnvConfig configures the HTTP client.
type ClientEnvConfig struct {
	ServerURL string        `env:"FARE_SERVER_URL, default=http://127.0.0.1:8888"`
	Timeout   time.Duration `env:"FARE_CLIENT_TIMEOUT, default=30s"`
	RetryMax  int           `env:"FARE_CLIENT_RETRY_MAX, default=3"`
	RetryWait time.Duration `env:"FARE_CLIENT_RETRY_WAIT, default=500ms"`
}

// AuditEnvConfig holds audit defaults used when flags or requests omit them.
type AuditEnvConfig struct {
	Window      int `env:"FARE_AUDIT_WINDOW, default=50"`
	Step        int `env:"FARE_AUDIT_STEP, default=10"`
	Parallelism int `env:"FARE_AUDIT_PARALLELISM, default=1"`
}

// Validate rejects non-positive defaults.
func (c AuditEnvConfig) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("FARE_AUDIT_WINDOW must be positive, got %d", c.Window)
	}
	if c.Step <= 0 {
		return fmt.Errorf("FARE_AUDIT_STEP must be positive, got %d", c.Step)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("FARE_AUDIT_PARALLELISM must be positive, got %d", c.Parallelism)
	}
	return nil
}

// IsDev reports whether the environment is dev or test.
func (c *AppConfig) IsDev() bool {
	switch strings.ToLower(c.Environment) {
	case "dev", "test":
		return true
	}
	return false
}
