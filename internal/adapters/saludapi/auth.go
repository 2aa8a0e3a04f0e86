package saludapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"saludhogar/internal/platform/flexid"
	"saludhogar/internal/ports/auth"
)

type userDTO struct {
	ID        flexid.ID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// Login devuelve el id de sesión (cookie sid) emitido por la API.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("login: %w", ErrUnauthorized)
	}
	resp, err := c.call(ctx, "auth.login", http.MethodPost, "/auth/login", nil,
		map[string]string{"email": email, "password": password}, nil)
	if err != nil {
		return "", err
	}
	for _, ck := range resp.Cookies {
		if ck.Name == CookieName && strings.TrimSpace(ck.Value) != "" {
			return ck.Value, nil
		}
	}
	return "", ErrNoSession
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, "auth.logout", http.MethodPost, "/auth/logout", nil, nil, nil)
	return err
}

// Me resuelve el usuario de la sesión en ctx.
func (c *Client) Me(ctx context.Context) (auth.Claims, error) {
	var out userDTO
	if _, err := c.call(ctx, "auth.me", http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return auth.Claims{}, err
	}
	if out.ID == "" {
		return auth.Claims{}, errors.New("saludapi: /auth/me missing id")
	}
	return auth.Claims{
		UserID:    out.ID.String(),
		Email:     strings.TrimSpace(out.Email),
		FirstName: strings.TrimSpace(out.FirstName),
		LastName:  strings.TrimSpace(out.LastName),
		SessionID: auth.SessionFrom(ctx),
	}, nil
}

// Verifier implementa auth.AuthVerifier preguntando a /auth/me.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, session string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	session = strings.TrimSpace(session)
	if session == "" {
		return auth.Claims{}, ErrUnauthorized
	}
	claims, err := v.client.Me(auth.WithSession(ctx, session))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("verify session: %w", err)
	}
	claims.SessionID = session
	return claims, nil
}
