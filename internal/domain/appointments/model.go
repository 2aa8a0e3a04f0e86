package appointments

import "time"

// Appointment es una cita médica de un integrante.
type Appointment struct {
	ID       string
	FamilyID string
	MemberID string

	DoctorName      string
	Specialty       string
	Location        string
	AppointmentDate time.Time
	Notes           string
}

// IsUpcoming: la cita es posterior a ref.
func (a Appointment) IsUpcoming(ref time.Time) bool {
	return a.AppointmentDate.After(ref)
}

type Input struct {
	MemberID        string
	DoctorName      string
	Specialty       string
	Location        string
	AppointmentDate time.Time
	Notes           string
}

// Bucket agrupa citas en la agenda.
type Bucket string

const (
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketThisWeek Bucket = "this_week"
	BucketLater    Bucket = "later"
	BucketPast     Bucket = "past"
)

// Agenda: pasadas de la más reciente a la más antigua, el resto ascendente.
type Agenda struct {
	Today    []Appointment
	Tomorrow []Appointment
	ThisWeek []Appointment
	Later    []Appointment
	Past     []Appointment
}
