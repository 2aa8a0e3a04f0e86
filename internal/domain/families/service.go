package families

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"saludhogar/internal/querycache"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	src   Source
	cache *querycache.Cache
	now   func() time.Time
}

func NewService(src Source, cache *querycache.Cache) *Service {
	if cache == nil {
		cache = querycache.New(nil, querycache.Options{})
	}
	return &Service{
		src:   src,
		cache: cache,
		now:   time.Now,
	}
}

// ListForUser devuelve las familias visibles para la sesión actual.
// La cache es por usuario: dos usuarios no comparten esta lista.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Family, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return querycache.Fetch(ctx, s.cache, querycache.Key{"families", userID}, s.src.ListFamilies)
}

// Require verifica que userID pertenece a familyID. Las demás consultas
// por familia se cachean por familyID, así que este chequeo va antes.
func (s *Service) Require(ctx context.Context, userID, familyID string) (Family, error) {
	familyID = strings.TrimSpace(familyID)
	if familyID == "" {
		return Family{}, ErrInvalidInput
	}
	items, err := s.ListForUser(ctx, userID)
	if err != nil {
		return Family{}, err
	}
	for _, f := range items {
		if f.ID == familyID {
			return f, nil
		}
	}
	return Family{}, ErrForbidden
}

// RequireMember implementa el guard que usan los handlers de otros módulos.
func (s *Service) RequireMember(ctx context.Context, userID, familyID string) error {
	_, err := s.Require(ctx, userID, familyID)
	return err
}

func (s *Service) Members(ctx context.Context, familyID string) ([]Member, error) {
	items, err := querycache.Fetch(ctx, s.cache, querycache.Key{"members", familyID}, func(ctx context.Context) ([]Member, error) {
		return s.src.ListMembers(ctx, familyID)
	})
	if err != nil {
		return nil, err
	}
	out := make([]Member, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName()) < strings.ToLower(out[j].FullName())
	})
	return out, nil
}

func (s *Service) Member(ctx context.Context, familyID, memberID string) (Member, error) {
	items, err := s.Members(ctx, familyID)
	if err != nil {
		return Member{}, err
	}
	for _, m := range items {
		if m.ID == memberID {
			return m, nil
		}
	}
	return Member{}, ErrNotFound
}

// MemberNames indexa nombre completo por id; lo usan recordatorios y vistas.
func (s *Service) MemberNames(ctx context.Context, familyID string) (map[string]string, error) {
	items, err := s.Members(ctx, familyID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, m := range items {
		out[m.ID] = m.FullName()
	}
	return out, nil
}

// MemberView agrega la edad calculada a la fecha de hoy.
type MemberView struct {
	Member
	Age *int
}

func (s *Service) MemberViews(ctx context.Context, familyID string) ([]MemberView, error) {
	items, err := s.Members(ctx, familyID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]MemberView, 0, len(items))
	for _, m := range items {
		v := MemberView{Member: m}
		if m.BirthDate != nil {
			age := AgeOn(*m.BirthDate, now)
			v.Age = &age
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, familyID string) (Stats, error) {
	return querycache.Fetch(ctx, s.cache, querycache.Key{"stats", familyID}, func(ctx context.Context) (Stats, error) {
		return s.src.Stats(ctx, familyID)
	})
}
