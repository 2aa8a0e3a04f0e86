package medschedule

import (
	"fmt"
	"time"
)

// Weekday usa la convención del selector de días: lunes=0 … domingo=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const daysInWeek = 7

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

// WeekdayOf convierte time.Weekday (domingo=0) a Weekday (lunes=0).
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % daysInWeek)
}

// DaySet es el conjunto de días de recordatorio.
// Vacío y completo significan lo mismo: todos los días.
type DaySet uint8

const fullDaySet DaySet = 1<<daysInWeek - 1

// NewDaySet ignora duplicados. Valores fuera de 0..6 son error.
func NewDaySet(days ...int) (DaySet, error) {
	var s DaySet
	for _, d := range days {
		wd := Weekday(d)
		if !wd.Valid() {
			return 0, fmt.Errorf("%w: weekday %d out of range 0..6", ErrInvalidDay, d)
		}
		s |= 1 << uint(wd)
	}
	return s, nil
}

// MustDaySet es para tests y constantes.
func MustDaySet(days ...int) DaySet {
	s, err := NewDaySet(days...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s DaySet) Contains(d Weekday) bool {
	if !d.Valid() {
		return false
	}
	return s&(1<<uint(d)) != 0
}

// Len devuelve la cantidad de días distintos.
func (s DaySet) Len() int {
	n := 0
	for v := s & fullDaySet; v != 0; v &= v - 1 {
		n++
	}
	return n
}

func (s DaySet) IsEmpty() bool { return s&fullDaySet == 0 }

func (s DaySet) IsFull() bool { return s&fullDaySet == fullDaySet }

// EveryDay: vacío o completo.
func (s DaySet) EveryDay() bool { return s.IsEmpty() || s.IsFull() }

// IsProperSubset: entre 1 y 6 días.
func (s DaySet) IsProperSubset() bool { return !s.EveryDay() }

// Normalize lleva la selección completa al conjunto vacío, que es lo que
// espera el backend como comodín.
func (s DaySet) Normalize() DaySet {
	if s.EveryDay() {
		return 0
	}
	return s & fullDaySet
}

// Days devuelve los días en orden ascendente (lunes primero).
func (s DaySet) Days() []Weekday {
	out := make([]Weekday, 0, s.Len())
	for d := Monday; d <= Sunday; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Ints es la forma de cable (reminder_days).
func (s DaySet) Ints() []int {
	days := s.Days()
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}
