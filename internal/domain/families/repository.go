package families

import "context"

// Source es la API upstream de familias. La sesión viaja en ctx.
type Source interface {
	ListFamilies(ctx context.Context) ([]Family, error)
	ListMembers(ctx context.Context, familyID string) ([]Member, error)
	Stats(ctx context.Context, familyID string) (Stats, error)
}
