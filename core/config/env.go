package config

import (
	"fmt"
	"os"

	"github.com/anoideaopen/fastreflect/core/logger"
	"github.com/anoideaopen/fastreflect/version"
)

// Environment variables. EnvConfig holds a whole JSON document and takes precedence
// over the others.
const (
	EnvConfig          = "FASTREFLECT_CONFIG"
	EnvTracingEndpoint = "FASTREFLECT_TRACING_ENDPOINT"
	EnvTracingCACerts  = "FASTREFLECT_TRACING_CA_CERTS"
)

// FromEnv builds the configuration from the process environment.
func FromEnv() (*Config, error) {
	if raw, ok := os.LookupEnv(EnvConfig); ok {
		cfg, err := FromBytes([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", EnvConfig, err)
		}
		if cfg.Tracing.ServiceName == "" {
			cfg.Tracing.ServiceName = version.ServiceName()
		}
		return cfg, nil
	}

	return &Config{
		Logging: Logging{
			Level:  os.Getenv(logger.EnvLoggingLevel),
			Format: os.Getenv(logger.EnvLoggingFormat),
		},
		Tracing: Tracing{
			Endpoint:    os.Getenv(EnvTracingEndpoint),
			CACerts:     os.Getenv(EnvTracingCACerts),
			ServiceName: version.ServiceName(),
		},
	}, nil
}
