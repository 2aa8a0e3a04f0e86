package medschedule

import (
	"reflect"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func times(t *testing.T, values ...string) []TimeOfDay {
	t.Helper()
	out, err := ParseTimes(values)
	if err != nil {
		t.Fatalf("ParseTimes(%v): %v", values, err)
	}
	return out
}

func TestIsActive_NoStartDate_NeverActive(t *testing.T) {
	s := Schedule{EndDate: date(2030, 1, 1)}
	for _, ref := range []*time.Time{date(1999, 1, 1), date(2025, 6, 1), date(2031, 1, 1)} {
		if IsActive(s, *ref) {
			t.Fatalf("expected inactive without start date at %s", ref)
		}
	}
}

func TestIsActive_OpenEnded(t *testing.T) {
	start := date(2025, 3, 10)
	s := Schedule{StartDate: start}

	if !IsActive(s, *start) {
		t.Fatalf("expected active on start date")
	}
	if IsActive(s, start.AddDate(0, 0, -1)) {
		t.Fatalf("expected inactive the day before start")
	}
	for _, days := range []int{1, 30, 365, 3650} {
		if !IsActive(s, start.AddDate(0, 0, days)) {
			t.Fatalf("expected active %d days after start", days)
		}
	}
}

func TestIsActive_InclusiveWindow(t *testing.T) {
	start := date(2025, 3, 10)
	end := date(2025, 3, 20)
	s := Schedule{StartDate: start, EndDate: end}

	for d := *start; !d.After(*end); d = d.AddDate(0, 0, 1) {
		if !IsActive(s, d) {
			t.Fatalf("expected active on %s", d.Format("2006-01-02"))
		}
	}
	if IsActive(s, start.AddDate(0, 0, -1)) {
		t.Fatalf("expected inactive before window")
	}
	if IsActive(s, end.AddDate(0, 0, 1)) {
		t.Fatalf("expected inactive after window")
	}
}

func TestIsActive_IgnoresTimeOfDay(t *testing.T) {
	s := Schedule{StartDate: date(2025, 3, 10), EndDate: date(2025, 3, 10)}

	late := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	if !IsActive(s, late) {
		t.Fatalf("expected active late on the end date")
	}

	// Fecha de inicio con hora: cuenta solo el día.
	withHour := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	s = Schedule{StartDate: &withHour}
	if !IsActive(s, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected active in the morning of a start date recorded with an afternoon hour")
	}
}

func TestIsActive_EndBeforeStart_IsInactive(t *testing.T) {
	s := Schedule{StartDate: date(2025, 3, 20), EndDate: date(2025, 3, 10)}
	for d := *date(2025, 3, 1); d.Before(*date(2025, 4, 1)); d = d.AddDate(0, 0, 1) {
		if IsActive(s, d) {
			t.Fatalf("expected inactive on %s with inverted window", d.Format("2006-01-02"))
		}
	}
}

func TestIsScheduledOnDay(t *testing.T) {
	tests := []struct {
		name string
		days DaySet
		want [7]bool
	}{
		{"empty", MustDaySet(), [7]bool{true, true, true, true, true, true, true}},
		{"full", MustDaySet(0, 1, 2, 3, 4, 5, 6), [7]bool{true, true, true, true, true, true, true}},
		{"tue thu", MustDaySet(1, 3), [7]bool{false, true, false, true, false, false, false}},
		{"sunday only", MustDaySet(6), [7]bool{false, false, false, false, false, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Schedule{Days: tt.days}
			for d := Monday; d <= Sunday; d++ {
				if got := IsScheduledOnDay(s, d); got != tt.want[d] {
					t.Fatalf("day %d: got %v want %v", d, got, tt.want[d])
				}
			}
		})
	}
}

func TestDescribeDaySet(t *testing.T) {
	tests := []struct {
		name string
		days DaySet
		want string
	}{
		{"empty", MustDaySet(), "every day"},
		{"full", MustDaySet(6, 5, 4, 3, 2, 1, 0), "every day"},
		{"unordered input", MustDaySet(2, 0), "Mon, Wed"},
		{"duplicates", MustDaySet(4, 4, 1), "Tue, Fri"},
		{"weekend", MustDaySet(6, 5), "Sat, Sun"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeDaySet(Schedule{Days: tt.days}); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeDaySetIn_Spanish(t *testing.T) {
	if got := DescribeDaySetIn(Schedule{}, language.Spanish); got != "Todos los días" {
		t.Fatalf("got %q", got)
	}
	if got := DescribeDaySetIn(Schedule{Days: MustDaySet(2, 0)}, language.MustParse("es-DO")); got != "Lun, Mié" {
		t.Fatalf("got %q", got)
	}
}

func TestMatchLocale(t *testing.T) {
	tests := map[string]language.Tag{
		"":                        language.English,
		"es-DO,es;q=0.9":          language.Spanish,
		"fr-FR":                   language.English,
		"en-US,en;q=0.8,es;q=0.5": language.English,
	}
	for header, want := range tests {
		if got := MatchLocale(header); got != want {
			t.Fatalf("MatchLocale(%q) = %s want %s", header, got, want)
		}
	}
}

func TestSortedReminderTimes(t *testing.T) {
	s := Schedule{Times: times(t, "14:00", "08:00", "08:00")}
	got := TimeStrings(SortedReminderTimes(s))
	want := []string{"08:00", "08:00", "14:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	// La entrada no se modifica.
	if s.Times[0].String() != "14:00" {
		t.Fatalf("input was reordered: %v", TimeStrings(s.Times))
	}
}

func TestSortedReminderTimes_SingleDigitHourIsChronological(t *testing.T) {
	s := Schedule{Times: times(t, "10:30", "9:05")}
	got := TimeStrings(SortedReminderTimes(s))
	if !reflect.DeepEqual(got, []string{"09:05", "10:30"}) {
		t.Fatalf("got %v", got)
	}
}

func TestSortedReminderTimes_Empty(t *testing.T) {
	got := SortedReminderTimes(Schedule{})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name  string
		days  DaySet
		times []string
		ok    bool
	}{
		{"proper subset without times", MustDaySet(1, 2), nil, false},
		{"six days without times", MustDaySet(0, 1, 2, 3, 4, 5), nil, false},
		{"single day without times", MustDaySet(3), nil, false},
		{"empty set without times", MustDaySet(), nil, true},
		{"full set without times", MustDaySet(0, 1, 2, 3, 4, 5, 6), nil, true},
		{"proper subset with time", MustDaySet(1, 2), []string{"09:00"}, true},
		{"empty set with times", MustDaySet(), []string{"09:00", "21:00"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateSubmission(Schedule{Days: tt.days, Times: times(t, tt.times...)})
			if res.OK() != tt.ok {
				t.Fatalf("OK()=%v want %v (codes=%v)", res.OK(), tt.ok, res.Codes)
			}
			if !tt.ok && !res.Has(CodeSpecificDaysWithoutTimes) {
				t.Fatalf("expected %s, got %v", CodeSpecificDaysWithoutTimes, res.Codes)
			}
		})
	}
}

func TestEvaluator_Idempotent(t *testing.T) {
	s := Schedule{
		StartDate: date(2025, 1, 1),
		Days:      MustDaySet(4, 0),
		Times:     times(t, "20:00", "07:30"),
	}
	ref := *date(2025, 2, 3)

	for i := 0; i < 3; i++ {
		if !IsActive(s, ref) {
			t.Fatalf("call %d: expected active", i)
		}
		if !IsScheduledOnDay(s, Monday) || IsScheduledOnDay(s, Tuesday) {
			t.Fatalf("call %d: unexpected day result", i)
		}
		if got := DescribeDaySet(s); got != "Mon, Fri" {
			t.Fatalf("call %d: got %q", i, got)
		}
		if got := TimeStrings(SortedReminderTimes(s)); !reflect.DeepEqual(got, []string{"07:30", "20:00"}) {
			t.Fatalf("call %d: got %v", i, got)
		}
		if !ValidateSubmission(s).OK() {
			t.Fatalf("call %d: expected valid", i)
		}
	}
}
