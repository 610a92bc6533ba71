package logger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{Logger: zap.New(core)}, logs
}

func TestWithWalletTagsEntries(t *testing.T) {
	log, logs := observedLogger()

	log.WithWallet("0xabc").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "0xabc", entries[0].ContextMap()["wallet"])
}

func TestWithOperationAddsCorrelationID(t *testing.T) {
	log, logs := observedLogger()

	log.WithOperation("wallet_snapshot").Info("started")
	log.WithOperation("wallet_snapshot").Info("started")

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	second := entries[1].ContextMap()
	assert.Equal(t, "wallet_snapshot", first["operation"])

	// Each operation gets a fresh id
	id1, ok := first["correlation_id"].(string)
	require.True(t, ok)
	id2, ok := second["correlation_id"].(string)
	require.True(t, ok)
	assert.NotEqual(t, id1, id2)

	_, err := uuid.Parse(id1)
	assert.NoError(t, err)
}

func TestHelpersChain(t *testing.T) {
	log, logs := observedLogger()

	log.WithComponent("api").WithWallet("0xabc").WithOperation("wallet_snapshot").Info("done")

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "api", ctx["component"])
	assert.Equal(t, "0xabc", ctx["wallet"])
	assert.Equal(t, "wallet_snapshot", ctx["operation"])
}

func TestLogErrorAttachesError(t *testing.T) {
	log, logs := observedLogger()

	log.LogError("it broke", assert.AnError, zap.String("extra", "field"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.NotNil(t, entries[0].ContextMap()["error"])
	assert.Equal(t, "field", entries[0].ContextMap()["extra"])
}
