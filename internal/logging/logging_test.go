package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput_WritesToBothWriters(t *testing.T) {
	require.NoError(t, Init(t.TempDir(), 1, slog.LevelInfo))

	var structured, human bytes.Buffer
	require.NoError(t, SetOutput(&structured, &human))

	Info("hello", "key", "value")

	assert.Contains(t, structured.String(), `"msg":"hello"`)
	assert.Contains(t, human.String(), "hello")
	assert.Contains(t, human.String(), "key=value")
}

func TestSetOutput_RejectsNilWriters(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, SetOutput(nil, &buf))
	assert.Error(t, SetOutput(&buf, nil))
}

func TestForService_AddsServiceAttr(t *testing.T) {
	require.NoError(t, Init(t.TempDir(), 2, slog.LevelInfo))
	var structured, human bytes.Buffer
	require.NoError(t, SetOutput(&structured, &human))

	logger := ForService("renderer")
	logger.Info("ready")

	assert.True(t, strings.Contains(structured.String(), `"service":"renderer"`))
}

func TestDefaultReplaceAttr_CustomLevelNames(t *testing.T) {
	a := slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(LevelTrace)}
	got := defaultReplaceAttr(nil, a)
	assert.Equal(t, "TRACE", got.Value.String())

	a = slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(LevelFatal)}
	got = defaultReplaceAttr(nil, a)
	assert.Equal(t, "FATAL", got.Value.String())
}

func TestDefaultReplaceAttr_TruncatesFloats(t *testing.T) {
	a := slog.Attr{Key: "rms", Value: slog.Float64Value(0.123456)}
	got := defaultReplaceAttr(nil, a)
	assert.Equal(t, 0.12, got.Value.Float64())
}
