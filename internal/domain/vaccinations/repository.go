package vaccinations

import "context"

type Source interface {
	ListByFamily(ctx context.Context, familyID string) ([]Vaccination, error)
	ListByMember(ctx context.Context, familyID, memberID string) ([]Vaccination, error)
	Create(ctx context.Context, familyID string, in Input) (Vaccination, error)
	Update(ctx context.Context, familyID, vaccinationID string, in Input) (Vaccination, error)
	Delete(ctx context.Context, familyID, vaccinationID string) error
}
