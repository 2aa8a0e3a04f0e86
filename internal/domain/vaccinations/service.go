package vaccinations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"saludhogar/internal/querycache"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	src   Source
	cache *querycache.Cache
	now   func() time.Time
	loc   *time.Location
}

func NewService(src Source, cache *querycache.Cache, loc *time.Location) *Service {
	if cache == nil {
		cache = querycache.New(nil, querycache.Options{})
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		src:   src,
		cache: cache,
		now:   time.Now,
		loc:   loc,
	}
}

func listKey(familyID string) querycache.Key { return querycache.Key{"vaccinations", familyID} }

// View agrega el flag de próxima dosis pendiente.
type View struct {
	Vaccination
	NextDoseDue bool
}

// List ordena por fecha de aplicación, la más reciente primero.
func (s *Service) List(ctx context.Context, familyID, memberID string) ([]View, error) {
	if strings.TrimSpace(familyID) == "" {
		return nil, ErrInvalidInput
	}

	var (
		items []Vaccination
		err   error
	)
	if memberID != "" {
		items, err = querycache.Fetch(ctx, s.cache, querycache.Key{"vaccinations", familyID, "member", memberID}, func(ctx context.Context) ([]Vaccination, error) {
			return s.src.ListByMember(ctx, familyID, memberID)
		})
	} else {
		items, err = querycache.Fetch(ctx, s.cache, listKey(familyID), func(ctx context.Context) ([]Vaccination, error) {
			return s.src.ListByFamily(ctx, familyID)
		})
	}
	if err != nil {
		return nil, err
	}

	ref := s.now().In(s.loc)
	out := make([]View, 0, len(items))
	for _, v := range items {
		out = append(out, View{Vaccination: v, NextDoseDue: v.NextDoseDue(ref)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].DateAdministered.Before(out[i].DateAdministered)
	})
	return out, nil
}

// Due devuelve solo las que tienen próxima dosis vencida.
func (s *Service) Due(ctx context.Context, familyID string) ([]View, error) {
	items, err := s.List(ctx, familyID, "")
	if err != nil {
		return nil, err
	}
	out := make([]View, 0)
	for _, v := range items {
		if v.NextDoseDue {
			out = append(out, v)
		}
	}
	return out, nil
}

func prepare(in Input) (Input, error) {
	in.MemberID = strings.TrimSpace(in.MemberID)
	in.VaccineName = strings.TrimSpace(in.VaccineName)
	in.AdministeredBy = strings.TrimSpace(in.AdministeredBy)
	in.LotNumber = strings.TrimSpace(in.LotNumber)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.MemberID == "" || in.VaccineName == "" {
		return Input{}, fmt.Errorf("%w: member_id and vaccine_name are required", ErrInvalidInput)
	}
	if in.DateAdministered.IsZero() {
		return Input{}, fmt.Errorf("%w: date_administered is required", ErrInvalidInput)
	}
	if in.DoseNumber < 0 {
		return Input{}, fmt.Errorf("%w: dose_number must not be negative", ErrInvalidInput)
	}
	if in.NextDoseDate != nil && in.NextDoseDate.Before(in.DateAdministered) {
		return Input{}, fmt.Errorf("%w: next_dose_date is before date_administered", ErrInvalidInput)
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, familyID string, in Input) (Vaccination, error) {
	in, err := prepare(in)
	if err != nil {
		return Vaccination{}, err
	}
	v, err := s.src.Create(ctx, familyID, in)
	if err != nil {
		return Vaccination{}, err
	}
	_ = s.cache.Invalidate(ctx, listKey(familyID))
	return v, nil
}

func (s *Service) Update(ctx context.Context, familyID, vaccinationID string, in Input) (Vaccination, error) {
	if strings.TrimSpace(vaccinationID) == "" {
		return Vaccination{}, ErrInvalidInput
	}
	in, err := prepare(in)
	if err != nil {
		return Vaccination{}, err
	}
	v, err := s.src.Update(ctx, familyID, vaccinationID, in)
	if err != nil {
		return Vaccination{}, err
	}
	_ = s.cache.Invalidate(ctx, listKey(familyID))
	return v, nil
}

func (s *Service) Delete(ctx context.Context, familyID, vaccinationID string) error {
	if strings.TrimSpace(vaccinationID) == "" {
		return ErrInvalidInput
	}
	if err := s.src.Delete(ctx, familyID, vaccinationID); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, listKey(familyID))
}
