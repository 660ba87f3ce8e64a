package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogClusters(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelDebug).WithOp("eigh").WithShape([]int{16, 16}, []int{4, 4})

	l.LogClusters(3, 8, time.Millisecond, nil)
	out := buf.String()
	assert.Contains(t, out, "factorization completed")
	assert.Contains(t, out, "op=eigh")
	assert.Contains(t, out, "clusters=3")
	assert.Contains(t, out, "largest=8")

	buf.Reset()
	l.LogClusters(2, 4, 0, errors.New("no convergence"))
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "factorization failed")
	assert.Contains(t, buf.String(), "no convergence")

	// Failures stay below Info so callers own error reporting.
	buf.Reset()
	quiet := NewText(&buf, slog.LevelInfo)
	quiet.LogClusters(2, 4, 0, errors.New("no convergence"))
	assert.Empty(t, buf.String())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelInfo)
	l.LogContraction(10, 4, time.Microsecond)
	assert.Empty(t, buf.String())
}

func TestNoop(t *testing.T) {
	l := Noop()
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
	assert.NotPanics(t, func() { l.LogClusters(1, 1, 0, nil) })
	assert.NotNil(t, FromSlog(nil).Logger)
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
