package options

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	o := Apply()
	assert.False(t, o.BlockSort)
	assert.Equal(t, DefaultSymmetryTol, o.SymmetryTol)
	assert.NotNil(t, o.Logger)

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	o = Apply(WithBlockSort(true), WithWorkers(1), WithSymmetryTol(-1), WithLogger(l))
	assert.True(t, o.BlockSort)
	assert.False(t, o.Parallel.Enabled)
	assert.Equal(t, -1.0, o.SymmetryTol)

	o.Logger.Debug("hello")
	assert.Contains(t, buf.String(), "hello")
}
