// Package config loads the client and sandbox node settings from environment variables.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// ClientEnvironment configures the CLI and the driver it builds.
type ClientEnvironment struct {
	Environment string `env:"ENVIRONMENT,default=dev"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	// nodes and driver wide headers
	Nodes          []string      `env:"PLANETMINT_NODES,separator=|"`
	Headers        []string      `env:"PLANETMINT_HEADERS,separator=|"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=20s"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST,default=1"`

	// local state
	KeysDir  string `env:"KEYS_DIR,default=./keys"`
	StoreDir string `env:"STORE_DIR,default=./data/client"`
}

// NodeEnvironment configures the sandbox node.
type NodeEnvironment struct {
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=9984"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`

	ReadTimeout    time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	RequestTimeout time.Duration `env:"HANDLER_TIMEOUT,default=60s"`
	RateLimitRPS   int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst int32         `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestSize int64         `env:"MAX_REQUEST_SIZE,default=1048576"`

	StoreDir string `env:"STORE_DIR,default=./data/node"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewClientConfig loads the client settings from the environment.
func NewClientConfig() (*ClientEnvironment, error) {
	var cfg ClientEnvironment

	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateClientConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewNodeConfig loads the sandbox node settings from the environment.
func NewNodeConfig() (*NodeEnvironment, error) {
	var cfg NodeEnvironment

	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateNodeConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HTTPHeaders parses PLANETMINT_HEADERS.
func (c *ClientEnvironment) HTTPHeaders() (http.Header, error) {
	return ParseHeaders(c.Headers)
}

// ParseHeaders turns "Key:Value" entries into a header set. Empty entries are skipped.
func ParseHeaders(entries []string) (http.Header, error) {
	headers := http.Header{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected Key:Value", entry)
		}
		headers.Add(name, strings.TrimSpace(value))
	}
	return headers, nil
}

func validateClientConfig(cfg *ClientEnvironment) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be 0 or greater")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if _, err := ParseHeaders(cfg.Headers); err != nil {
		return fmt.Errorf("invalid PLANETMINT_HEADERS: %w", err)
	}
	return nil
}

func validateNodeConfig(cfg *NodeEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be 0 or greater")
	}
	if cfg.MaxRequestSize < 1 {
		return fmt.Errorf("MAX_REQUEST_SIZE must be at least 1")
	}
	if cfg.StoreDir == "" {
		return fmt.Errorf("STORE_DIR is required")
	}
	return nil
}
