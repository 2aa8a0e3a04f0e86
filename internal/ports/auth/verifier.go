package auth

import (
	"context"
	"strings"
)

// AuthVerifier verifica una sesión (cookie sid o bearer) y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, session string) (Claims, error)
}

type ctxKey struct{}

// WithSession guarda el id de sesión upstream en el contexto.
// Los adapters HTTP lo leen con SessionFrom para reenviar la cookie.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, strings.TrimSpace(sessionID))
}

func SessionFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}
