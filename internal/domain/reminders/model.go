package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"saludhogar/internal/domain/notifications"
)

// Decision es un recordatorio que el agente decidió emitir. Key identifica
// la ocurrencia (entidad + instante) y sirve para no repetirla.
type Decision struct {
	ID                uuid.UUID          `json:"id"`
	Key               string             `json:"key"`
	Type              notifications.Type `json:"type"`
	FamilyID          string             `json:"family_id"`
	MemberID          string             `json:"member_id,omitempty"`
	RelatedEntityType string             `json:"related_entity_type"`
	RelatedEntityID   string             `json:"related_entity_id"`
	Message           string             `json:"message"`
	DueAt             time.Time          `json:"due_at"`
	CreatedAt         time.Time          `json:"created_at"`
}

const (
	OutcomeFired     = "fired"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// FiredLog guarda las claves ya emitidas.
type FiredLog interface {
	Seen(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, d Decision) error
}

// Report resume una pasada del agente.
type Report struct {
	From       time.Time
	To         time.Time
	Fired      int
	Duplicates int
	Errors     int
}
