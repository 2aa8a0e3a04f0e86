package families

import (
	"context"
	"errors"
	"testing"
	"time"

	"saludhogar/internal/querycache"
)

type testSource struct {
	families []Family
	members  map[string][]Member
	calls    int
}

func (s *testSource) ListFamilies(context.Context) ([]Family, error) {
	s.calls++
	return s.families, nil
}

func (s *testSource) ListMembers(_ context.Context, familyID string) ([]Member, error) {
	s.calls++
	return s.members[familyID], nil
}

func (s *testSource) Stats(context.Context, string) (Stats, error) {
	return Stats{"members": 2}, nil
}

func d(y int, m time.Month, day int) *time.Time {
	t := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAgeOn(t *testing.T) {
	birth := *d(2000, time.June, 15)
	cases := []struct {
		ref  time.Time
		want int
	}{
		{*d(2025, time.June, 14), 24},
		{*d(2025, time.June, 15), 25},
		{*d(2025, time.December, 1), 25},
		{*d(1999, time.January, 1), 0},
	}
	for _, tc := range cases {
		if got := AgeOn(birth, tc.ref); got != tc.want {
			t.Fatalf("AgeOn(%v) = %d want %d", tc.ref, got, tc.want)
		}
	}
}

func TestRequire_ChecksMembershipAndCachesPerUser(t *testing.T) {
	src := &testSource{families: []Family{{ID: "1", Name: "Pérez"}}}
	svc := NewService(src, querycache.New(nil, querycache.Options{}))
	ctx := context.Background()

	if _, err := svc.Require(ctx, "u1", "1"); err != nil {
		t.Fatalf("expected access: %v", err)
	}
	if _, err := svc.Require(ctx, "u1", "2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected one upstream call for the same user, got %d", src.calls)
	}

	_, _ = svc.Require(ctx, "u2", "1")
	if src.calls != 2 {
		t.Fatalf("different users must not share the family list cache")
	}
}

func TestMemberViews_SortedWithAge(t *testing.T) {
	src := &testSource{members: map[string][]Member{
		"1": {
			{ID: "b", FirstName: "Zoe", LastName: "Pérez", BirthDate: d(2015, time.March, 10)},
			{ID: "a", FirstName: "Ana", LastName: "Pérez"},
		},
	}}
	svc := NewService(src, querycache.New(nil, querycache.Options{}))
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }

	items, err := svc.MemberViews(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "a" {
		t.Fatalf("expected sorted by name: %+v", items)
	}
	if items[0].Age != nil {
		t.Fatalf("member without birth date has no age")
	}
	if items[1].Age == nil || *items[1].Age != 9 {
		t.Fatalf("expected age 9, got %v", items[1].Age)
	}

	if _, err := svc.Member(context.Background(), "1", "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
