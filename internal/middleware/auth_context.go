package middleware

import (
	"context"
	"net/http"
	"strings"

	"saludhogar/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// SessionCookie es el nombre de la cookie de sesión de SaludHogar.
const SessionCookie = "sid"

// AuthContext:
// - Si verifier != nil y viene cookie sid (o Bearer) => intenta Verify() y setea claims.
// - Si verifier == nil => modo dev: X-Debug-User-ID (+ X-Debug-Session opcional) setea claims.
// - Si no hay claims, el request sigue igual; los handlers decidirán si exigen auth.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Dev mode: permitir inyectar user sin verifier
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					claims := auth.Claims{
						UserID:    uid,
						SessionID: strings.TrimSpace(r.Header.Get("X-Debug-Session")),
					}
					next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			// Verifier mode
			session := sessionToken(r)
			if session == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(auth.WithSession(r.Context(), session), session)
			if err != nil {
				// No cortamos aquí para no acoplar. El handler decide 401/403.
				next.ServeHTTP(w, r)
				return
			}
			if claims.SessionID == "" {
				claims.SessionID = session
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func withClaims(ctx context.Context, c auth.Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, c)
	if c.SessionID != "" {
		ctx = auth.WithSession(ctx, c.SessionID)
	}
	return ctx
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// sessionToken: primero la cookie sid, luego Authorization: Bearer.
func sessionToken(r *http.Request) string {
	if ck, err := r.Cookie(SessionCookie); err == nil {
		if v := strings.TrimSpace(ck.Value); v != "" {
			return v
		}
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
