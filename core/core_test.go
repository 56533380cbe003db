package core

import (
	"context"
	"reflect"
	"testing"

	"github.com/anoideaopen/fastreflect/core/config"
	"github.com/anoideaopen/fastreflect/core/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type temperature struct {
	Celsius float64
}

func (t temperature) Fahrenheit() float64 { return t.Celsius*9/5 + 32 }

func TestContextOf(t *testing.T) {
	c := ContextOf[temperature]()
	require.Same(t, GetContext(reflect.TypeOf(temperature{})), c)

	got, err := c.MethodByName("Fahrenheit").Invoke(temperature{Celsius: 100})
	require.NoError(t, err)
	require.Equal(t, 212.0, got)

	require.NotSame(t, c, ContextOf[*temperature]())
}

func TestSynthesize(t *testing.T) {
	intType := reflect.TypeOf(0)

	c, err := Synthesize("Vector", Field{Name: "x", Type: intType}, Field{Name: "y", Type: intType})
	require.NoError(t, err)

	v, err := c.NewInstance()
	require.NoError(t, err)

	require.NoError(t, c.FieldByName("x").Set(v, 3))
	require.NoError(t, c.FieldByName("y").Set(v, 5))

	x, err := c.FieldByName("x").Get(v)
	require.NoError(t, err)
	require.Equal(t, 3, x)

	y, err := c.FieldByName("y").Get(v)
	require.NoError(t, err)
	require.Equal(t, 5, y)

	_, err = Synthesize("Vector")
	require.Error(t, err)
}

func TestSetup(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		require.NoError(t, logger.Configure("", ""))
	})

	require.NoError(t, Setup(&config.Config{Logging: config.Logging{Level: "debug", Format: "json"}}))
	require.Equal(t, logrus.DebugLevel, logger.Logger().GetLevel())

	err := Setup(&config.Config{Logging: config.Logging{Level: "shout"}})
	require.ErrorIs(t, err, config.ErrLoggingLevel)

	t.Setenv(logger.EnvLoggingLevel, "error")
	require.NoError(t, Setup(nil))
	require.Equal(t, logrus.ErrorLevel, logger.Logger().GetLevel())

	t.Setenv(config.EnvConfig, `{"logging":{"level":"info"}}`)
	require.NoError(t, Setup(nil))
	require.Equal(t, logrus.InfoLevel, logger.Logger().GetLevel())

	t.Setenv(config.EnvConfig, `{`)
	require.Error(t, Setup(nil))
}

func TestSetupWithTracing(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	require.NoError(t, Setup(&config.Config{
		Tracing: config.Tracing{Endpoint: "localhost:4318", ServiceName: "fastreflect-test"},
	}))

	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok)
	require.NoError(t, tp.Shutdown(context.Background()))
}
