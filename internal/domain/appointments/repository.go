package appointments

import "context"

type Source interface {
	ListByFamily(ctx context.Context, familyID string) ([]Appointment, error)
	Create(ctx context.Context, familyID string, in Input) (Appointment, error)
	Update(ctx context.Context, familyID, appointmentID string, in Input) (Appointment, error)
	Delete(ctx context.Context, familyID, appointmentID string) error
}
