package medications

import (
	"time"

	"saludhogar/internal/medschedule"
)

// Medication es un tratamiento de un integrante de la familia.
type Medication struct {
	ID       string
	FamilyID string
	MemberID string

	Name      string
	Dosage    string // "500 mg"
	Frequency string // texto libre, p.ej. "cada 8 horas"

	StartDate *time.Time
	EndDate   *time.Time // inclusive; nil = sin fin

	PrescribedBy string
	Notes        string

	ReminderTimes []medschedule.TimeOfDay
	ReminderDays  medschedule.DaySet // vacío = todos los días

	CreatedAt time.Time
}

// Schedule extrae el calendario para el evaluador.
func (m Medication) Schedule() medschedule.Schedule {
	return medschedule.Schedule{
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Days:      m.ReminderDays,
		Times:     m.ReminderTimes,
	}
}

// Filter replica los parámetros de listado de la API.
type Filter struct {
	Active    *bool
	Limit     int    // 0 = sin límite
	Offset    int
	SortBy    string // start_date | name | created_at
	SortOrder string // asc | desc (default desc)
}

// Input es el payload de alta/edición.
type Input struct {
	MemberID  string
	Name      string
	Dosage    string
	Frequency string

	StartDate *time.Time
	EndDate   *time.Time

	PrescribedBy string
	Notes        string

	ReminderTimes []medschedule.TimeOfDay
	ReminderDays  medschedule.DaySet
}

func (in Input) Schedule() medschedule.Schedule {
	return medschedule.Schedule{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Days:      in.ReminderDays,
		Times:     in.ReminderTimes,
	}
}

// View es lo que ve el cliente: el medicamento con su estado derivado a la
// fecha de referencia.
type View struct {
	Medication
	IsActive       bool
	DaysLabel      string
	SortedTimes    []medschedule.TimeOfDay
	ScheduledToday bool
}
