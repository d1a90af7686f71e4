package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.WithBoardID("b-1").Info("board created", zap.String("title", "Roadmap"))
	log.Debug("dropped below level")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"board_id":"b-1"`)
	assert.Contains(t, out, `"title":"Roadmap"`)
	assert.NotContains(t, out, "dropped below level")
}

func TestWithUserIDAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.WithUserID("u-7").WithError(errors.New("disk full")).Warn("save failed")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"user_id":"u-7"`)
	assert.Contains(t, out, `"error":"disk full"`)
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewLogger(LoggingConfig{Level: "loud", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Info("visible")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "visible"))
}

func TestWithContext(t *testing.T) {
	log := NewNop()
	assert.Same(t, log, log.WithContext(context.Background()))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "u-1")
	child := log.WithContext(ctx)
	assert.NotSame(t, log, child)
	assert.Len(t, child.fields, 2)
}

func TestWithFieldsDoesNotAliasParent(t *testing.T) {
	base := NewNop().WithFields(zap.String("component", "a"))
	one := base.WithFields(zap.String("x", "1"))
	two := base.WithFields(zap.String("y", "2"))

	assert.Len(t, base.fields, 1)
	assert.Equal(t, "x", one.fields[1].Key)
	assert.Equal(t, "y", two.fields[1].Key)
}
