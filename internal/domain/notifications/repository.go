package notifications

import "context"

// Source es la bandeja upstream del usuario de la sesión en ctx.
type Source interface {
	List(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	RegisterPushToken(ctx context.Context, t PushToken) error
}
