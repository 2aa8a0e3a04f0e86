package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saludhogar/internal/querycache"
)

type fakeSource struct {
	items   []Notification
	failing error
	tokens  []PushToken
}

func (f *fakeSource) List(context.Context) ([]Notification, error) {
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeSource) MarkRead(_ context.Context, id string) error {
	if f.failing != nil {
		return f.failing
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeSource) MarkAllRead(context.Context) error {
	if f.failing != nil {
		return f.failing
	}
	for i := range f.items {
		f.items[i].IsRead = true
	}
	return nil
}

func (f *fakeSource) Delete(context.Context, string) error { return f.failing }

func (f *fakeSource) DeleteAll(context.Context) error {
	if f.failing != nil {
		return f.failing
	}
	f.items = nil
	return nil
}

func (f *fakeSource) RegisterPushToken(_ context.Context, t PushToken) error {
	f.tokens = append(f.tokens, t)
	return nil
}

func newTestService() (*Service, *fakeSource) {
	t0 := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	src := &fakeSource{items: []Notification{
		{ID: "1", Type: TypeMedicationReminder, CreatedAt: t0},
		{ID: "2", Type: TypeAppointmentReminder, CreatedAt: t0.Add(time.Hour)},
		{ID: "3", Type: TypeMedicationReminder, CreatedAt: t0.Add(-time.Hour), IsRead: true},
	}}
	cache := querycache.New(querycache.NewMemoryStore(), querycache.Options{TTL: time.Minute})
	return NewService(src, cache), src
}

func TestList_NewestFirstAndUnread(t *testing.T) {
	svc, _ := newTestService()
	items, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"2", "1", "3"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, 2, UnreadCount(items))
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _ = svc.List(ctx, "u1")

	require.NoError(t, svc.MarkAllRead(ctx, "u1"))
	items, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, UnreadCount(items))
}

func TestMarkRead_FailureKeepsUnread(t *testing.T) {
	svc, src := newTestService()
	ctx := context.Background()
	_, _ = svc.List(ctx, "u1")
	src.failing = errors.New("upstream down")

	require.Error(t, svc.MarkRead(ctx, "u1", "1"))
	items, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, UnreadCount(items))
}

func TestDeleteAll(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.DeleteAll(ctx, "u1"))
	items, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRegisterPushToken(t *testing.T) {
	svc, src := newTestService()
	ctx := context.Background()

	err := svc.RegisterPushToken(ctx, PushToken{Token: "abc", Platform: "symbian"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.RegisterPushToken(ctx, PushToken{Token: " ", Platform: "ios"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.RegisterPushToken(ctx, PushToken{Token: " abc ", Platform: "Android"}))
	assert.Equal(t, []PushToken{{Token: "abc", Platform: "android"}}, src.tokens)
}
