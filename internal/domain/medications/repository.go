package medications

import "context"

// Source es la API upstream de medicamentos. La sesión viaja en ctx.
type Source interface {
	ListByFamily(ctx context.Context, familyID string) ([]Medication, error)
	ListByMember(ctx context.Context, familyID, memberID string) ([]Medication, error)
	Create(ctx context.Context, familyID string, in Input) (Medication, error)
	Update(ctx context.Context, familyID, medicationID string, in Input) (Medication, error)
	Delete(ctx context.Context, familyID, medicationID string) error
}
