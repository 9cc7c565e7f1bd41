package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLinesAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "arsketch.log")
	l, err := New(Options{FilePath: path})
	require.NoError(t, err)

	l.Info("entity created", zap.Int("index", 0))
	l.Debug("hidden at info level")
	require.NoError(t, l.Sync())

	lines := l.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "entity created")
	assert.Contains(t, lines[0], `"index": 0`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "entity created")
}

func TestSetLevel(t *testing.T) {
	l, err := New(Options{Level: "warn"})
	require.NoError(t, err)
	l.Info("quiet")
	assert.Empty(t, l.Lines())

	l.SetLevel(zapcore.DebugLevel)
	l.Debug("loud")
	assert.Len(t, l.Lines(), 1)
}

func TestBadLevel(t *testing.T) {
	_, err := New(Options{Level: "shouty"})
	assert.Error(t, err)
}

func TestLineBufferIsBounded(t *testing.T) {
	l, err := New(Options{})
	require.NoError(t, err)
	for i := 0; i < maxLines+10; i++ {
		l.Info(fmt.Sprintf("line %d", i))
	}
	lines := l.Lines()
	require.Len(t, lines, maxLines)
	assert.Contains(t, lines[0], "line 10")
}
