package history

import "context"

// Source es el CRUD upstream de una sección.
type Source[T Entry] interface {
	List(ctx context.Context, scope Scope) ([]T, error)
	Create(ctx context.Context, scope Scope, e T) (T, error)
	Update(ctx context.Context, scope Scope, id string, e T) (T, error)
	Delete(ctx context.Context, scope Scope, id string) error
}
