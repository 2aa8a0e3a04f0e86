package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saludhogar/internal/domain/reminders"
)

func TestReminderLog_SeenRecordPrune(t *testing.T) {
	ctx := context.Background()
	l := NewReminderLog()
	base := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)

	seen, err := l.Seen(ctx, "medication:f1:m1:2025-03-05T08:00:00Z")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, l.Record(ctx, reminders.Decision{Key: "medication:f1:m1:2025-03-05T08:00:00Z", DueAt: base, CreatedAt: base}))
	require.NoError(t, l.Record(ctx, reminders.Decision{Key: "appointment:f1:a1:2025-03-06T07:00:00Z", DueAt: base.Add(23 * time.Hour), CreatedAt: base.Add(time.Second)}))
	assert.Error(t, l.Record(ctx, reminders.Decision{}))

	seen, _ = l.Seen(ctx, "medication:f1:m1:2025-03-05T08:00:00Z")
	assert.True(t, seen)

	recent := l.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "appointment:f1:a1:2025-03-06T07:00:00Z", recent[0].Key)

	n, err := l.Prune(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, l.Recent(0), 1)
}
