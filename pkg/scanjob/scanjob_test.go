package scanjob

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTerminal(t *testing.T) {
	tests := []struct {
		state    State
		terminal bool
	}{
		{StateIdle, false},
		{StateSubmitting, false},
		{StateRunning, false},
		{StateCompleted, true},
		{StateFailed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

func TestClampProgress(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-20, 0},
		{-1, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{101, 100},
		{400, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampProgress(tt.in), "clampProgress(%d)", tt.in)
	}
}

func TestNewStartsIdle(t *testing.T) {
	c := New(newFakeService())
	snap := c.Snapshot()
	require.Equal(t, StateIdle, snap.State)
	require.Empty(t, snap.JobID)
	require.Empty(t, snap.Folder)
	require.Zero(t, snap.Progress)
	require.Empty(t, snap.LastError)
}

func TestOptions(t *testing.T) {
	svc := newFakeService()

	c := New(svc)
	require.Equal(t, DefaultPollInterval, c.interval)
	require.NotNil(t, c.logger)

	c = New(svc, WithPollInterval(250*time.Millisecond))
	require.Equal(t, 250*time.Millisecond, c.interval)

	c = New(svc, WithPollInterval(0), WithPollInterval(-time.Second))
	require.Equal(t, DefaultPollInterval, c.interval, "non-positive intervals are ignored")

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	c = New(svc, WithLogger(custom), WithLogger(nil))
	require.Same(t, custom, c.logger, "nil logger is ignored")
}
