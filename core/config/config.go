package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/anoideaopen/fastreflect/core/logger"
)

var ErrCfgBytesEmpty = errors.New("config bytes is empty")

// validation errors
var (
	ErrLoggingLevel    = errors.New("unknown logging level")
	ErrLoggingFormat   = errors.New("unknown logging format")
	ErrTracingEndpoint = errors.New("tracing endpoint must be host:port")
	ErrServiceName     = errors.New("tracing requires a service name")
)

var levels = []string{"panic", "fatal", "error", "warn", "warning", "info", "debug", "trace"}

// Config configures the ambient services of the library.
type Config struct {
	Logging Logging `json:"logging"`
	Tracing Tracing `json:"tracing"`
}

// Logging configures the process-wide logger.
type Logging struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// Tracing configures the OTLP/HTTP exporter of compile spans. An empty endpoint turns
// tracing off.
type Tracing struct {
	Endpoint    string `json:"endpoint,omitempty"`
	CACerts     string `json:"caCerts,omitempty"` // base64 encoded PEM bundle
	ServiceName string `json:"serviceName,omitempty"`
}

// Enabled reports whether spans are exported.
func (t Tracing) Enabled() bool {
	return t.Endpoint != ""
}

// FromBytes parses the provided byte slice containing JSON-encoded configuration.
func FromBytes(cfgBytes []byte) (*Config, error) {
	if len(cfgBytes) == 0 {
		return nil, ErrCfgBytesEmpty
	}

	cfg := new(Config)
	if err := json.Unmarshal(cfgBytes, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration. Empty values are valid and select the defaults.
func (c *Config) Validate() error {
	if c.Logging.Level != "" && !slices.Contains(levels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: '%s'", ErrLoggingLevel, c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: '%s'", ErrLoggingFormat, c.Logging.Format)
	}

	if !c.Tracing.Enabled() {
		return nil
	}

	if u, err := url.Parse("//" + c.Tracing.Endpoint); err != nil || u.Host != c.Tracing.Endpoint || u.Port() == "" {
		return fmt.Errorf("%w: '%s'", ErrTracingEndpoint, c.Tracing.Endpoint)
	}

	if c.Tracing.ServiceName == "" {
		return ErrServiceName
	}

	return nil
}
