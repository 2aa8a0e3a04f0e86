// Package medschedule decide cuándo está vigente un medicamento y en qué
// días y horas deberían dispararse sus recordatorios.
//
// Todas las funciones son puras: no guardan estado entre llamadas y se pueden
// usar desde varias goroutines sin coordinación.
package medschedule

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidDay  = errors.New("invalid reminder day")
	ErrInvalidTime = errors.New("invalid reminder time")
)

// Schedule es el subconjunto de un medicamento que define su calendario.
type Schedule struct {
	StartDate *time.Time // nil = sin inicio definido, nunca activo
	EndDate   *time.Time // nil = sin fin (inclusive cuando existe)

	Days  DaySet
	Times []TimeOfDay
}

// DateOf trunca t a su fecha de calendario (medianoche UTC de su Y/M/D local).
// Así las comparaciones son por fecha y no por instante.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsActive indica si el tratamiento está vigente en la fecha de ref.
func IsActive(s Schedule, ref time.Time) bool {
	if s.StartDate == nil {
		return false
	}
	day := DateOf(ref)
	if DateOf(*s.StartDate).After(day) {
		return false
	}
	if s.EndDate == nil {
		return true
	}
	return !DateOf(*s.EndDate).Before(day)
}

// IsScheduledOnDay: conjunto vacío o completo = todos los días.
func IsScheduledOnDay(s Schedule, d Weekday) bool {
	if s.Days.EveryDay() {
		return true
	}
	return s.Days.Contains(d)
}

// SortedReminderTimes ordena por "HH:MM" y conserva duplicados.
// No modifica s.Times.
func SortedReminderTimes(s Schedule) []TimeOfDay {
	out := make([]TimeOfDay, len(s.Times))
	copy(out, s.Times)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
