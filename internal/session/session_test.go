package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saludhogar/internal/domain/families"
	"saludhogar/internal/ports/auth"
	"saludhogar/internal/querycache"
)

type fakeAuth struct {
	logins  int
	logouts []string
}

func (f *fakeAuth) Login(context.Context, string, string) (string, error) {
	f.logins++
	return "sid-1", nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logouts = append(f.logouts, auth.SessionFrom(ctx))
	return nil
}

func (f *fakeAuth) Me(ctx context.Context) (auth.Claims, error) {
	return auth.Claims{UserID: "u1", SessionID: auth.SessionFrom(ctx)}, nil
}

type fakeFamilies struct{}

func (fakeFamilies) ListForUser(ctx context.Context, userID string) ([]families.Family, error) {
	if auth.SessionFrom(ctx) == "" {
		return nil, assert.AnError
	}
	return []families.Family{{ID: "f1"}, {ID: "f2"}}, nil
}

func TestInitWithCredentials_AndTeardown(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAuth{}
	store := querycache.NewMemoryStore()
	cache := querycache.New(store, querycache.Options{TTL: time.Minute})
	require.NoError(t, querycache.Put(ctx, cache, querycache.Key{"families", "u1"}, []string{"x"}))

	s := New(fa, fakeFamilies{}, cache, nil)
	require.NoError(t, s.Init(ctx, Credentials{Email: "agent@example.com", Password: "pw"}))

	u, err := s.User()
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, "sid-1", auth.SessionFrom(s.Context(ctx)))
	assert.Equal(t, "f1", s.ActiveFamily())
	assert.Len(t, s.Families(), 2)

	require.NoError(t, s.SetActiveFamily("f2"))
	assert.Equal(t, "f2", s.ActiveFamily())
	assert.ErrorIs(t, s.SetActiveFamily("nope"), ErrUnknownFamily)

	require.NoError(t, s.Teardown(ctx))
	assert.Equal(t, []string{"sid-1"}, fa.logouts)
	assert.Empty(t, store.Keys())
	_, err = s.User()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestInitWithSessionID_DoesNotLogout(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAuth{}
	s := New(fa, fakeFamilies{}, querycache.New(nil, querycache.Options{}), nil)

	require.NoError(t, s.Init(ctx, Credentials{SessionID: "existing"}))
	assert.Zero(t, fa.logins)

	require.NoError(t, s.Teardown(ctx))
	assert.Empty(t, fa.logouts)
}

func TestInit_NoCredentials(t *testing.T) {
	s := New(&fakeAuth{}, fakeFamilies{}, nil, nil)
	assert.ErrorIs(t, s.Init(context.Background(), Credentials{}), ErrNoCredentials)
}
