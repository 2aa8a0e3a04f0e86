package medications

import (
	"context"
	"errors"
	"testing"
	"time"

	"saludhogar/internal/medschedule"
	"saludhogar/internal/querycache"
)

type testSource struct {
	items      []Medication
	created    []Input
	failDel    bool
	failUpdate bool
	onUpdate   func(ctx context.Context)
	lists      int
}

func (s *testSource) ListByFamily(context.Context, string) ([]Medication, error) {
	s.lists++
	return s.items, nil
}

func (s *testSource) ListByMember(_ context.Context, _ string, memberID string) ([]Medication, error) {
	out := []Medication{}
	for _, m := range s.items {
		if m.MemberID == memberID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *testSource) Create(_ context.Context, familyID string, in Input) (Medication, error) {
	s.created = append(s.created, in)
	return applyInput(Medication{ID: "new", FamilyID: familyID}, in), nil
}

func (s *testSource) Update(ctx context.Context, familyID, id string, in Input) (Medication, error) {
	if s.onUpdate != nil {
		s.onUpdate(ctx)
	}
	if s.failUpdate {
		return Medication{}, errors.New("upstream 500")
	}
	return applyInput(Medication{ID: id, FamilyID: familyID}, in), nil
}

func (s *testSource) Delete(context.Context, string, string) error {
	if s.failDel {
		return errors.New("upstream 500")
	}
	return nil
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func tod(t *testing.T, s ...string) []medschedule.TimeOfDay {
	t.Helper()
	out, err := medschedule.ParseTimes(s)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func newTestService(src Source, now time.Time) *Service {
	svc := NewService(src, querycache.New(nil, querycache.Options{}), time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func fixture(t *testing.T) []Medication {
	return []Medication{
		{ID: "1", MemberID: "m1", Name: "Ibuprofeno", Dosage: "400 mg", StartDate: day(2025, 1, 1), ReminderTimes: tod(t, "20:00", "08:00")},
		{ID: "2", MemberID: "m2", Name: "Amoxicilina", Dosage: "500 mg", StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 10)},
		{ID: "3", MemberID: "m1", Name: "Vitamina D", Dosage: "1 gota", StartDate: day(2025, 1, 1), ReminderDays: medschedule.MustDaySet(0), ReminderTimes: tod(t, "07:00")},
		{ID: "4", MemberID: "m2", Name: "Paracetamol", Dosage: "1 g", StartDate: day(2025, 1, 1)},
		{ID: "5", MemberID: "m2", Name: "Sin inicio", Dosage: "x"},
	}
}

func TestList_ActiveFilterUsesEvaluator(t *testing.T) {
	// 2025-03-05 es miércoles
	svc := newTestService(&testSource{items: fixture(t)}, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	active := true
	got, err := svc.List(ctx, "f1", Filter{Active: &active, SortBy: "name", SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if ids(got) != "1,4,3" {
		t.Fatalf("active = %s", ids(got))
	}

	inactive := false
	got, _ = svc.List(ctx, "f1", Filter{Active: &inactive, SortBy: "name", SortOrder: "asc"})
	if ids(got) != "2,5" {
		t.Fatalf("inactive = %s", ids(got))
	}

	got, _ = svc.List(ctx, "f1", Filter{SortBy: "name", SortOrder: "asc", Offset: 1, Limit: 2})
	if ids(got) != "1,4" {
		t.Fatalf("paginated = %s", ids(got))
	}
}

func TestToday_ScheduledDaysAndOrdering(t *testing.T) {
	ctx := context.Background()

	// miércoles: la vitamina D (solo lunes) no aparece
	svc := newTestService(&testSource{items: fixture(t)}, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	got, err := svc.Today(ctx, "f1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Medication.ID != "1" || got[1].Medication.ID != "4" {
		t.Fatalf("unexpected today list: %+v", got)
	}
	if got[0].Times[0].String() != "08:00" {
		t.Fatalf("times must be sorted: %v", got[0].Times)
	}

	// lunes: la vitamina D (07:00) va primero
	svc = newTestService(&testSource{items: fixture(t)}, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	got, _ = svc.Today(ctx, "f1")
	if len(got) != 3 || got[0].Medication.ID != "3" {
		t.Fatalf("unexpected monday list: %+v", got)
	}
}

func TestCreate_ValidatesAndNormalizes(t *testing.T) {
	src := &testSource{}
	svc := newTestService(src, time.Now())
	ctx := context.Background()

	base := Input{MemberID: "m1", Name: "Losartán", Dosage: "50 mg", StartDate: day(2025, 1, 1)}

	bad := base
	bad.ReminderDays = medschedule.MustDaySet(0, 2)
	_, err := svc.Create(ctx, "f1", bad)
	var subErr *SubmissionError
	if !errors.As(err, &subErr) || !subErr.Result.Has(medschedule.CodeSpecificDaysWithoutTimes) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}

	full := base
	full.ReminderDays = medschedule.MustDaySet(0, 1, 2, 3, 4, 5, 6)
	full.ReminderTimes = tod(t, "21:00", "09:00")
	if _, err := svc.Create(ctx, "f1", full); err != nil {
		t.Fatalf("create: %v", err)
	}
	sent := src.created[0]
	if !sent.ReminderDays.IsEmpty() {
		t.Fatalf("full day set must be sent as empty, got %v", sent.ReminderDays.Ints())
	}
	if medschedule.TimeStrings(sent.ReminderTimes)[0] != "09:00" {
		t.Fatalf("times should be sent sorted: %v", sent.ReminderTimes)
	}

	missing := base
	missing.StartDate = nil
	if _, err := svc.Create(ctx, "f1", missing); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_InvalidatesList(t *testing.T) {
	src := &testSource{items: fixture(t)}
	svc := newTestService(src, time.Now())
	ctx := context.Background()

	_, _ = svc.List(ctx, "f1", Filter{})
	_, _ = svc.List(ctx, "f1", Filter{})
	if src.lists != 1 {
		t.Fatalf("expected cached list, got %d upstream calls", src.lists)
	}

	_, err := svc.Create(ctx, "f1", Input{MemberID: "m1", Name: "X", Dosage: "1", StartDate: day(2025, 1, 1)})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = svc.List(ctx, "f1", Filter{})
	if src.lists != 2 {
		t.Fatalf("create should invalidate the family list")
	}
}

func TestDelete_UpstreamFailureReturnsError(t *testing.T) {
	src := &testSource{items: fixture(t), failDel: true}
	svc := newTestService(src, time.Now())
	ctx := context.Background()

	_, _ = svc.List(ctx, "f1", Filter{})
	if err := svc.Delete(ctx, "f1", "1"); err == nil {
		t.Fatalf("expected upstream error")
	}
	if _, err := svc.Get(ctx, "f1", "1"); err != nil {
		t.Fatalf("medication should still exist after failed delete: %v", err)
	}
}

func TestUpdate_OptimisticWriteAndRollback(t *testing.T) {
	src := &testSource{items: fixture(t), failUpdate: true}
	svc := newTestService(src, time.Now())
	ctx := context.Background()

	if _, err := svc.List(ctx, "f1", Filter{}); err != nil {
		t.Fatal(err)
	}

	var during string
	src.onUpdate = func(ctx context.Context) {
		cached, ok := querycache.Peek[[]Medication](ctx, svc.cache, listKey("f1"))
		if !ok {
			return
		}
		for _, m := range cached {
			if m.ID == "1" {
				during = m.Dosage
			}
		}
	}

	in := Input{MemberID: "m1", Name: "Ibuprofeno", Dosage: "600 mg", StartDate: day(2025, 1, 1), ReminderTimes: tod(t, "08:00")}
	if _, err := svc.Update(ctx, "f1", "1", in); err == nil {
		t.Fatalf("expected upstream error")
	}
	if during != "600 mg" {
		t.Fatalf("cached list should hold the speculative dosage during the call, got %q", during)
	}

	got, err := svc.Get(ctx, "f1", "1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Dosage != "400 mg" {
		t.Fatalf("failed update must not leave the speculative dosage, got %q", got.Dosage)
	}
	if src.lists != 2 {
		t.Fatalf("settle should force a refetch, got %d upstream lists", src.lists)
	}
}

func TestUpdate_RejectsSpecificDaysWithoutTimes(t *testing.T) {
	src := &testSource{items: fixture(t)}
	svc := newTestService(src, time.Now())

	in := Input{MemberID: "m2", Name: "Paracetamol", Dosage: "1 g", StartDate: day(2025, 1, 1), ReminderDays: medschedule.MustDaySet(0, 2)}
	_, err := svc.Update(context.Background(), "f1", "4", in)
	var subErr *SubmissionError
	if !errors.As(err, &subErr) || !subErr.Result.Has(medschedule.CodeSpecificDaysWithoutTimes) {
		t.Fatalf("expected submission error, got %v", err)
	}
}

func ids(items []Medication) string {
	s := ""
	for i, m := range items {
		if i > 0 {
			s += ","
		}
		s += m.ID
	}
	return s
}
