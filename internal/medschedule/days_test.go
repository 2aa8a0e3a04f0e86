package medschedule

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewDaySet_RejectsOutOfRange(t *testing.T) {
	for _, bad := range []int{-1, 7, 42} {
		if _, err := NewDaySet(0, bad); !errors.Is(err, ErrInvalidDay) {
			t.Fatalf("NewDaySet(0,%d): expected ErrInvalidDay, got %v", bad, err)
		}
	}
}

func TestDaySet_Normalize(t *testing.T) {
	full := MustDaySet(0, 1, 2, 3, 4, 5, 6)
	if got := full.Normalize(); !got.IsEmpty() {
		t.Fatalf("full set should normalize to empty, got %v", got.Ints())
	}
	if got := MustDaySet().Normalize(); !got.IsEmpty() {
		t.Fatalf("empty set should stay empty")
	}
	partial := MustDaySet(5, 1)
	if got := partial.Normalize(); !reflect.DeepEqual(got.Ints(), []int{1, 5}) {
		t.Fatalf("partial set changed: %v", got.Ints())
	}
}

func TestDaySet_LenAndSubset(t *testing.T) {
	s := MustDaySet(1, 1, 3)
	if s.Len() != 2 {
		t.Fatalf("expected 2 distinct days, got %d", s.Len())
	}
	if !s.IsProperSubset() {
		t.Fatalf("expected proper subset")
	}
	if MustDaySet().IsProperSubset() || MustDaySet(0, 1, 2, 3, 4, 5, 6).IsProperSubset() {
		t.Fatalf("empty/full must not be proper subsets")
	}
}

func TestWeekdayOf_MondayIsZero(t *testing.T) {
	// 2025-12-22 es lunes.
	monday := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := WeekdayOf(monday.AddDate(0, 0, i)); got != Weekday(i) {
			t.Fatalf("offset %d: got %d", i, got)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	ok := map[string]string{
		"08:00":    "08:00",
		"8:05":     "08:05",
		" 23:59 ":  "23:59",
		"07:30:00": "07:30",
	}
	for in, want := range ok {
		got, err := ParseTimeOfDay(in)
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q): %v", in, err)
		}
		if got.String() != want {
			t.Fatalf("ParseTimeOfDay(%q) = %s want %s", in, got, want)
		}
	}

	for _, bad := range []string{"", "8", "24:00", "12:60", "12:5", "aa:bb", "10:00:99", "1:2:3:4"} {
		if _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("ParseTimeOfDay(%q): expected ErrInvalidTime, got %v", bad, err)
		}
	}
}

func TestDueBetween(t *testing.T) {
	loc := time.UTC
	s := Schedule{
		StartDate: date(2025, 12, 22),
		EndDate:   date(2025, 12, 24),
		Days:      MustDaySet(0, 2), // lunes y miércoles
		Times:     times(t, "20:00", "08:00"),
	}

	from := time.Date(2025, 12, 21, 0, 0, 0, 0, loc)
	to := time.Date(2025, 12, 26, 0, 0, 0, 0, loc)

	got := DueBetween(s, from, to)
	want := []time.Time{
		time.Date(2025, 12, 22, 8, 0, 0, 0, loc),
		time.Date(2025, 12, 22, 20, 0, 0, 0, loc),
		time.Date(2025, 12, 24, 8, 0, 0, 0, loc),
		time.Date(2025, 12, 24, 20, 0, 0, 0, loc),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDueBetween_HalfOpenWindow(t *testing.T) {
	s := Schedule{StartDate: date(2025, 1, 1), Times: times(t, "08:00")}
	at := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	if got := DueBetween(s, at.Add(-time.Minute), at); len(got) != 1 {
		t.Fatalf("expected the upper bound to be included, got %v", got)
	}
	if got := DueBetween(s, at, at.Add(time.Minute)); len(got) != 0 {
		t.Fatalf("expected the lower bound to be excluded, got %v", got)
	}
}

func TestDueBetween_AsNeededNeverFires(t *testing.T) {
	s := Schedule{StartDate: date(2025, 1, 1)}
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := DueBetween(s, from, from.Add(48*time.Hour)); len(got) != 0 {
		t.Fatalf("expected no reminders for as-needed medication, got %v", got)
	}
}
