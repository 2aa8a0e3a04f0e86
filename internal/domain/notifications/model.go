package notifications

import "time"

type Type string

const (
	TypeAppointmentReminder Type = "APPOINTMENT_REMINDER"
	TypeMedicationReminder  Type = "MEDICATION_REMINDER"
)

type Notification struct {
	ID                string
	UserID            string
	Type              Type
	Message           string
	RelatedEntityType string
	RelatedEntityID   string
	IsRead            bool
	CreatedAt         time.Time
}

// PushToken registra un dispositivo; la entrega la hace el backend.
type PushToken struct {
	Token    string
	Platform string
}

var validPlatforms = map[string]bool{
	"android": true,
	"ios":     true,
	"web":     true,
}
