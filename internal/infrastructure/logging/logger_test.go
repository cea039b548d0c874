package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/loggable/internal/diag"
)

func newObserved(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), level), logs
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", OutputPaths: []string{"stdout"}})
	assert.Error(t, err)

	_, err = New(Config{
		Level:           "info",
		OutputPaths:     []string{"stdout"},
		ComponentLevels: map[string]string{"ContractService": "chatty"},
	})
	assert.Error(t, err)
}

func TestNewWithComponentLevels(t *testing.T) {
	logger, err := New(Config{
		Level:           "info",
		OutputPaths:     []string{"stdout"},
		ComponentLevels: map[string]string{"ContractService": "debug"},
	})
	require.NoError(t, err)

	assert.True(t, logger.For("ContractService").Enabled(zapcore.DebugLevel))
	assert.False(t, logger.For("ContractController").Enabled(zapcore.DebugLevel))
	assert.True(t, logger.For("ContractController").Enabled(zapcore.InfoLevel))
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "info", DefaultConfig().Level)
	assert.False(t, DefaultConfig().Development)
	assert.Equal(t, "debug", DevelopmentConfig().Level)
	assert.NotNil(t, NewDefault())
	assert.NotNil(t, NewDevelopment())
}

func TestSinkIsCachedPerComponent(t *testing.T) {
	logger, _ := newObserved(zapcore.InfoLevel)
	assert.Same(t, logger.For("a"), logger.For("a"))
	assert.NotSame(t, logger.For("a"), logger.For("b"))
}

func TestSinkWriteAttachesDiagnosticFields(t *testing.T) {
	logger, logs := newObserved(zapcore.InfoLevel)

	ctx, store := diag.Ensure(context.Background())
	store.Put("traceId", "abc")
	store.Put(diag.KeyCategory, "BUSINESS")

	logger.For("ContractService").Write(ctx, zapcore.InfoLevel, "contract %d added", []any{7})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "contract 7 added", entry.Message)
	assert.Equal(t, "ContractService", entry.LoggerName)
	assert.Equal(t, map[string]interface{}{
		"traceId":  "abc",
		"category": "BUSINESS",
	}, entry.ContextMap())
}

func TestSinkLevelFiltering(t *testing.T) {
	logger, logs := newObserved(zapcore.InfoLevel)
	sink := logger.For("ContractService")

	assert.False(t, sink.Enabled(zapcore.DebugLevel))
	sink.Write(context.Background(), zapcore.DebugLevel, "hidden", nil)
	assert.Equal(t, 0, logs.Len())

	logger.SetLevel(zapcore.DebugLevel)
	assert.True(t, sink.Enabled(zapcore.DebugLevel))
	sink.Write(context.Background(), zapcore.DebugLevel, "shown", nil)
	assert.Equal(t, 1, logs.Len())
}

func TestSetComponentLevel(t *testing.T) {
	logger, _ := newObserved(zapcore.InfoLevel)
	before := logger.For("ContractService")
	assert.False(t, before.Enabled(zapcore.DebugLevel))

	logger.SetComponentLevel("ContractService", zapcore.DebugLevel)
	assert.True(t, logger.For("ContractService").Enabled(zapcore.DebugLevel))

	logger.SetComponentLevel("ContractService", zapcore.WarnLevel)
	assert.False(t, logger.For("ContractService").Enabled(zapcore.InfoLevel))
}

func TestSinkWritesLiteralLineWithoutArgs(t *testing.T) {
	logger, logs := newObserved(zapcore.InfoLevel)
	logger.For("x").Write(context.Background(), zapcore.InfoLevel, "100% done", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "100% done", logs.All()[0].Message)
}
