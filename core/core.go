// Package core is the entry point of the library: contexts of existing types, synthesized
// types and the setup of the ambient services.
package core

import (
	"fmt"
	"reflect"

	"github.com/anoideaopen/fastreflect/core/capsule"
	"github.com/anoideaopen/fastreflect/core/config"
	"github.com/anoideaopen/fastreflect/core/fastclass"
	"github.com/anoideaopen/fastreflect/core/logger"
	"github.com/anoideaopen/fastreflect/core/telemetry"
	"github.com/anoideaopen/fastreflect/version"
	"github.com/sirupsen/logrus"
)

// Field is one field of a synthesized type.
type Field = capsule.Field

// GetContext returns the context of t. It is idempotent and safe for concurrent use.
func GetContext(t reflect.Type) *fastclass.Context {
	return fastclass.GetContext(t)
}

// ContextOf returns the context of T.
func ContextOf[T any]() *fastclass.Context {
	return fastclass.GetContext(reflect.TypeOf((*T)(nil)).Elem())
}

// Synthesize creates a struct type named name with one field per entry, in order, and
// returns its context.
func Synthesize(name string, fields ...Field) (*fastclass.Context, error) {
	return capsule.Create(name, fields...)
}

// Setup validates cfg and applies it to the process-wide logger and trace provider.
// A nil cfg is read from the environment.
func Setup(cfg *config.Config) error {
	if cfg == nil {
		var err error
		if cfg, err = config.FromEnv(); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	if err := telemetry.InstallTraceProvider(cfg.Tracing); err != nil {
		return fmt.Errorf("installing trace provider: %w", err)
	}

	fields := logrus.Fields{"tracing": cfg.Tracing.Enabled()}
	for k, v := range version.Runtime() {
		fields[k] = v
	}
	logger.Logger().WithFields(fields).Debug("fastreflect is set up")

	return nil
}
