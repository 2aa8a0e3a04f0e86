// Package session mantiene el contexto de sesión del agente y de la CLI:
// usuario, familias visibles y familia activa.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"saludhogar/internal/domain/families"
	"saludhogar/internal/platform/logger"
	"saludhogar/internal/ports/auth"
	"saludhogar/internal/querycache"
)

var (
	ErrNoCredentials = errors.New("session: no credentials or session id")
	ErrNotStarted    = errors.New("session: not initialized")
	ErrUnknownFamily = errors.New("session: family not visible to user")
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (auth.Claims, error)
}

type FamilyLister interface {
	ListForUser(ctx context.Context, userID string) ([]families.Family, error)
}

type Credentials struct {
	Email     string
	Password  string
	SessionID string // sesión ya emitida; se usa si no hay email/password
}

type Session struct {
	auth  Authenticator
	fams  FamilyLister
	cache *querycache.Cache
	log   logger.Logger

	mu       sync.RWMutex
	started  bool
	owned    bool // la abrimos nosotros con Login => la cerramos en Teardown
	claims   auth.Claims
	families []families.Family
	active   string
}

func New(a Authenticator, f FamilyLister, cache *querycache.Cache, log logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{auth: a, fams: f, cache: cache, log: log.With(map[string]any{"component": "session"})}
}

// Init abre (o adopta) la sesión, resuelve el usuario y elige la primera
// familia como activa.
func (s *Session) Init(ctx context.Context, creds Credentials) error {
	var (
		sid   string
		owned bool
		err   error
	)
	switch {
	case strings.TrimSpace(creds.Email) != "" && creds.Password != "":
		sid, err = s.auth.Login(ctx, creds.Email, creds.Password)
		if err != nil {
			return fmt.Errorf("session login: %w", err)
		}
		owned = true
	case strings.TrimSpace(creds.SessionID) != "":
		sid = strings.TrimSpace(creds.SessionID)
	default:
		return ErrNoCredentials
	}

	sctx := auth.WithSession(ctx, sid)
	claims, err := s.auth.Me(sctx)
	if err != nil {
		return fmt.Errorf("session me: %w", err)
	}
	claims.SessionID = sid

	fams, err := s.fams.ListForUser(sctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("session families: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	s.owned = owned
	s.claims = claims
	s.families = fams
	s.active = ""
	if len(fams) > 0 {
		s.active = fams[0].ID
	}
	s.log.Info("session started", map[string]any{"user_id": claims.UserID, "families": len(fams)})
	return nil
}

// Context agrega la sesión a ctx para los adapters upstream.
func (s *Session) Context(ctx context.Context) context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return auth.WithSession(ctx, s.claims.SessionID)
}

func (s *Session) User() (auth.Claims, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return auth.Claims{}, ErrNotStarted
	}
	return s.claims, nil
}

func (s *Session) Families() []families.Family {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]families.Family, len(s.families))
	copy(out, s.families)
	return out
}

func (s *Session) ActiveFamily() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *Session) SetActiveFamily(familyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	for _, f := range s.families {
		if f.ID == familyID {
			s.active = familyID
			return nil
		}
	}
	return ErrUnknownFamily
}

// Teardown cierra la sesión upstream (si la abrimos) y vacía la cache de
// consultas para no dejar datos de este usuario.
func (s *Session) Teardown(ctx context.Context) error {
	s.mu.Lock()
	started, owned, sid := s.started, s.owned, s.claims.SessionID
	s.started = false
	s.owned = false
	s.claims = auth.Claims{}
	s.families = nil
	s.active = ""
	s.mu.Unlock()

	if !started {
		return nil
	}

	var errs []error
	if owned {
		if err := s.auth.Logout(auth.WithSession(ctx, sid)); err != nil {
			errs = append(errs, fmt.Errorf("session logout: %w", err))
		}
	}
	if err := s.cache.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("session clear cache: %w", err))
	}
	return errors.Join(errs...)
}
