package fastclass

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/anoideaopen/fastreflect/core/logger"
	"github.com/anoideaopen/fastreflect/core/meta"
	"github.com/anoideaopen/fastreflect/core/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// lastContextID numbers contexts across all registries.
var lastContextID atomic.Uint64

// Registry maps runtime types to their contexts. Contexts are never evicted.
type Registry struct {
	mu       sync.RWMutex
	contexts map[reflect.Type]*Context

	log    *logrus.Entry
	tracer trace.Tracer
}

// Option represents a function that applies configuration options to a Registry.
type Option func(r *Registry)

// WithLogger sets the logger compiles and context creation are reported to.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Registry) {
		r.log = l.WithField("component", "fastclass")
	}
}

// WithTracerProvider sets the provider of the tracer compile spans are started with.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) {
		r.tracer = tp.Tracer(telemetry.InstrumentationName)
	}
}

// NewRegistry returns an empty registry. Without options it reports to the process-wide
// logger and the global trace provider.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		contexts: make(map[reflect.Type]*Context),
		log:      logger.Logger().WithField("component", "fastclass"),
		tracer:   telemetry.Tracer(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry()
})

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry()
}

// GetOrCreate returns the context of t, creating it on first request. Concurrent first
// requests observe the same context.
func (r *Registry) GetOrCreate(t reflect.Type) *Context {
	r.mu.RLock()
	c, ok := r.contexts[t]
	r.mu.RUnlock()

	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok = r.contexts[t]; ok {
		return c
	}

	c = newContext(r, lastContextID.Add(1), t)
	r.contexts[t] = c

	r.log.WithFields(logrus.Fields{
		"context_id": c.id,
		"type":       t.String(),
	}).Debug("context created")

	return c
}

// NewInstance creates a value of t with its parameterless constructor.
func (r *Registry) NewInstance(t reflect.Type) (any, error) {
	return r.GetOrCreate(t).NewInstance()
}

// GetContext returns the context of t from the process-wide registry.
func GetContext(t reflect.Type) *Context {
	return Default().GetOrCreate(t)
}

// NewInstance creates a value of t with its parameterless constructor.
func NewInstance(t reflect.Type) (any, error) {
	return Default().NewInstance(t)
}

// CreateMethod returns the thunk of m from the context of its declaring type.
func CreateMethod(m *meta.Method) *Method {
	thunk, _ := GetContext(m.Owner().Type()).Method(m)
	return thunk
}

// GetterForProperty returns the compiled getter of the property name of t, or nil when
// the property does not exist or cannot be read.
func GetterForProperty(t reflect.Type, name string) func(receiver any) (any, error) {
	p := GetContext(t).PropertyByName(name)
	if p == nil || !p.CanRead() {
		return nil
	}

	return p.Get
}
