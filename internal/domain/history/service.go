package history

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"saludhogar/internal/querycache"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("history entry not found")
)

// Section es el servicio de una sección de historia clínica.
type Section[T Entry] struct {
	kind  Kind
	src   Source[T]
	cache *querycache.Cache
	less  func(a, b T) bool
}

func NewSection[T Entry](kind Kind, src Source[T], cache *querycache.Cache, less func(a, b T) bool) *Section[T] {
	if cache == nil {
		cache = querycache.New(nil, querycache.Options{})
	}
	return &Section[T]{kind: kind, src: src, cache: cache, less: less}
}

func (s *Section[T]) Kind() Kind { return s.kind }

func (s *Section[T]) key(scope Scope) querycache.Key {
	if scope.MemberID == "" {
		return querycache.Key{"history", scope.FamilyID, string(s.kind)}
	}
	return querycache.Key{"history", scope.FamilyID, string(s.kind), scope.MemberID}
}

func checkScope(scope Scope) error {
	if strings.TrimSpace(scope.FamilyID) == "" {
		return ErrInvalidInput
	}
	return nil
}

func (s *Section[T]) List(ctx context.Context, scope Scope) ([]T, error) {
	if err := checkScope(scope); err != nil {
		return nil, err
	}
	items, err := querycache.Fetch(ctx, s.cache, s.key(scope), func(ctx context.Context) ([]T, error) {
		return s.src.List(ctx, scope)
	})
	if err != nil {
		return nil, err
	}
	out := make([]T, len(items))
	copy(out, items)
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	}
	return out, nil
}

func (s *Section[T]) Get(ctx context.Context, scope Scope, id string) (T, error) {
	var zero T
	items, err := s.List(ctx, scope)
	if err != nil {
		return zero, err
	}
	for _, e := range items {
		if e.EntryID() == id {
			return e, nil
		}
	}
	return zero, ErrNotFound
}

func (s *Section[T]) Create(ctx context.Context, scope Scope, e T) (T, error) {
	var zero T
	if err := checkScope(scope); err != nil {
		return zero, err
	}
	if err := e.Validate(); err != nil {
		return zero, err
	}
	created, err := s.src.Create(ctx, scope, e)
	if err != nil {
		return zero, err
	}
	_ = s.cache.Invalidate(ctx, s.key(scope))
	return created, nil
}

// Update reemplaza la entrada en la lista cacheada antes de confirmar.
func (s *Section[T]) Update(ctx context.Context, scope Scope, id string, e T) (T, error) {
	var zero T
	if err := checkScope(scope); err != nil {
		return zero, err
	}
	if strings.TrimSpace(id) == "" {
		return zero, ErrInvalidInput
	}
	if err := e.Validate(); err != nil {
		return zero, err
	}

	var updated T
	_, err := querycache.Mutate(ctx, s.cache, s.key(scope),
		func(items []T) []T {
			out := make([]T, len(items))
			copy(out, items)
			for i := range out {
				if out[i].EntryID() == id {
					out[i] = e
				}
			}
			return out
		},
		func(ctx context.Context) error {
			var err error
			updated, err = s.src.Update(ctx, scope, id, e)
			return err
		})
	if err != nil {
		return zero, err
	}
	return updated, nil
}

func (s *Section[T]) Delete(ctx context.Context, scope Scope, id string) error {
	if err := checkScope(scope); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	_, err := querycache.Mutate(ctx, s.cache, s.key(scope),
		func(items []T) []T {
			out := make([]T, 0, len(items))
			for _, e := range items {
				if e.EntryID() != id {
					out = append(out, e)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			return s.src.Delete(ctx, scope, id)
		})
	return err
}

// Book agrupa las secciones por integrante y los antecedentes familiares.
type Book struct {
	Allergies        *Section[Allergy]
	Conditions       *Section[Condition]
	Surgeries        *Section[Surgery]
	Hospitalizations *Section[Hospitalization]
	Family           *Section[FamilyCondition]
}

// Sources agrupa los adaptadores upstream de cada sección.
type Sources struct {
	Allergies        Source[Allergy]
	Conditions       Source[Condition]
	Surgeries        Source[Surgery]
	Hospitalizations Source[Hospitalization]
	Family           Source[FamilyCondition]
}

func NewBook(src Sources, cache *querycache.Cache) *Book {
	return &Book{
		Allergies: NewSection(KindAllergies, src.Allergies, cache, func(a, b Allergy) bool {
			// severas primero
			if a.IsSevere != b.IsSevere {
				return a.IsSevere
			}
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}),
		Conditions: NewSection(KindConditions, src.Conditions, cache, func(a, b Condition) bool {
			if a.IsActive != b.IsActive {
				return a.IsActive
			}
			return b.DateDiagnosed.Before(a.DateDiagnosed.Time)
		}),
		Surgeries: NewSection(KindSurgeries, src.Surgeries, cache, func(a, b Surgery) bool {
			return b.DateOfProcedure.Before(a.DateOfProcedure.Time)
		}),
		Hospitalizations: NewSection(KindHospitalizations, src.Hospitalizations, cache, func(a, b Hospitalization) bool {
			return b.AdmissionDate.Before(a.AdmissionDate.Time)
		}),
		Family: NewSection(KindFamilyHistory, src.Family, cache, func(a, b FamilyCondition) bool {
			return strings.ToLower(a.ConditionName) < strings.ToLower(b.ConditionName)
		}),
	}
}

// Summary trae las cuatro secciones del integrante en paralelo.
func (b *Book) Summary(ctx context.Context, scope Scope) (Summary, error) {
	if strings.TrimSpace(scope.MemberID) == "" {
		return Summary{}, ErrInvalidInput
	}

	var out Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Allergies, err = b.Allergies.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		out.Conditions, err = b.Conditions.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		out.Surgeries, err = b.Surgeries.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		out.Hospitalizations, err = b.Hospitalizations.List(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}
