package reminders

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunner_InvalidSpec(t *testing.T) {
	_, err := NewRunner("not a cron", nil, func(context.Context) error { return nil }, nil)
	assert.Error(t, err)
}

func TestRunner_RunsJob(t *testing.T) {
	var calls atomic.Int32
	r, err := NewRunner("@every 1s", time.UTC, func(context.Context) error {
		calls.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)

	r.Start(context.Background())
	defer r.Stop()

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
