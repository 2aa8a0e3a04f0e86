package vaccinations

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testSource struct{ items []Vaccination }

func (s *testSource) ListByFamily(context.Context, string) ([]Vaccination, error) {
	return s.items, nil
}
func (s *testSource) ListByMember(context.Context, string, string) ([]Vaccination, error) {
	return s.items, nil
}
func (s *testSource) Create(_ context.Context, _ string, in Input) (Vaccination, error) {
	return Vaccination{ID: "new", MemberID: in.MemberID, VaccineName: in.VaccineName}, nil
}
func (s *testSource) Update(_ context.Context, _ string, id string, in Input) (Vaccination, error) {
	return Vaccination{ID: id}, nil
}
func (s *testSource) Delete(context.Context, string, string) error { return nil }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestList_NextDoseDueAndOrder(t *testing.T) {
	src := &testSource{items: []Vaccination{
		{ID: "old", DateAdministered: date(2024, 1, 10), NextDoseDate: ptr(date(2025, 3, 5))},
		{ID: "new", DateAdministered: date(2025, 2, 1), NextDoseDate: ptr(date(2025, 3, 6))},
		{ID: "single", DateAdministered: date(2024, 6, 1)},
	}}
	svc := NewService(src, nil, time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 3, 5, 23, 0, 0, 0, time.UTC) }

	items, err := svc.List(context.Background(), "f1", "")
	if err != nil {
		t.Fatal(err)
	}
	if items[0].ID != "new" || items[2].ID != "old" {
		t.Fatalf("expected newest first: %+v", items)
	}
	due, _ := svc.Due(context.Background(), "f1")
	if len(due) != 1 || due[0].ID != "old" {
		t.Fatalf("only the dose due on 2025-03-05 should be flagged: %+v", due)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&testSource{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "f1", Input{MemberID: "m1", VaccineName: "Hepatitis B"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing date should fail, got %v", err)
	}

	_, err = svc.Create(ctx, "f1", Input{
		MemberID: "m1", VaccineName: "Hepatitis B",
		DateAdministered: date(2025, 3, 1),
		NextDoseDate:     ptr(date(2025, 2, 1)),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("next dose before administration should fail, got %v", err)
	}

	v, err := svc.Create(ctx, "f1", Input{MemberID: " m1 ", VaccineName: "Hepatitis B", DateAdministered: date(2025, 3, 1)})
	if err != nil || v.MemberID != "m1" {
		t.Fatalf("create: %v %+v", err, v)
	}
}
