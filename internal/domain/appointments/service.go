package appointments

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
	ErrNotFound     = errors.New("appointment not found")
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

func listKey(familyID string) querycache.Key { return querycache.Key{"appointments", familyID} }

// List devuelve las citas ordenadas por fecha ascendente.
func (s *Service) List(ctx context.Context, familyID string) ([]Appointment, error) {
	if strings.TrimSpace(familyID) == "" {
		return nil, ErrInvalidInput
	}
	items, err := querycache.Fetch(ctx, s.cache, listKey(familyID), func(ctx context.Context) ([]Appointment, error) {
		return s.src.ListByFamily(ctx, familyID)
	})
	if err != nil {
		return nil, err
	}
	out := make([]Appointment, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppointmentDate.Before(out[j].AppointmentDate) })
	return out, nil
}

func (s *Service) ListByMember(ctx context.Context, familyID, memberID string) ([]Appointment, error) {
	items, err := s.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	out := make([]Appointment, 0)
	for _, a := range items {
		if a.MemberID == memberID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) Agenda(ctx context.Context, familyID string) (Agenda, error) {
	items, err := s.List(ctx, familyID)
	if err != nil {
		return Agenda{}, err
	}
	return BuildAgenda(items, s.now().In(s.loc)), nil
}

// BuildAgenda clasifica respecto de ref (en su zona horaria). Una cita de hoy
// que ya pasó cuenta como pasada.
func BuildAgenda(items []Appointment, ref time.Time) Agenda {
	loc := ref.Location()
	y, m, d := ref.Date()
	startToday := time.Date(y, m, d, 0, 0, 0, 0, loc)
	startTomorrow := startToday.AddDate(0, 0, 1)
	startDayAfter := startToday.AddDate(0, 0, 2)
	weekEnd := startToday.AddDate(0, 0, 7)

	ag := Agenda{
		Today:    []Appointment{},
		Tomorrow: []Appointment{},
		ThisWeek: []Appointment{},
		Later:    []Appointment{},
		Past:     []Appointment{},
	}
	for _, a := range items {
		at := a.AppointmentDate.In(loc)
		switch {
		case at.Before(ref):
			ag.Past = append(ag.Past, a)
		case at.Before(startTomorrow):
			ag.Today = append(ag.Today, a)
		case at.Before(startDayAfter):
			ag.Tomorrow = append(ag.Tomorrow, a)
		case at.Before(weekEnd):
			ag.ThisWeek = append(ag.ThisWeek, a)
		default:
			ag.Later = append(ag.Later, a)
		}
	}

	asc := func(xs []Appointment) {
		sort.SliceStable(xs, func(i, j int) bool { return xs[i].AppointmentDate.Before(xs[j].AppointmentDate) })
	}
	asc(ag.Today)
	asc(ag.Tomorrow)
	asc(ag.ThisWeek)
	asc(ag.Later)
	sort.SliceStable(ag.Past, func(i, j int) bool { return ag.Past[j].AppointmentDate.Before(ag.Past[i].AppointmentDate) })
	return ag
}

// Between devuelve las citas en (from, to]; lo usa el agente de recordatorios.
func Between(items []Appointment, from, to time.Time) []Appointment {
	out := make([]Appointment, 0)
	for _, a := range items {
		if a.IsUpcoming(from) && !a.AppointmentDate.After(to) {
			out = append(out, a)
		}
	}
	return out
}

func prepare(in Input) (Input, error) {
	in.MemberID = strings.TrimSpace(in.MemberID)
	in.DoctorName = strings.TrimSpace(in.DoctorName)
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.Location = strings.TrimSpace(in.Location)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.MemberID == "" || in.DoctorName == "" {
		return Input{}, fmt.Errorf("%w: member_id and doctor_name are required", ErrInvalidInput)
	}
	if in.AppointmentDate.IsZero() {
		return Input{}, fmt.Errorf("%w: appointment_date is required", ErrInvalidInput)
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, familyID string, in Input) (Appointment, error) {
	in, err := prepare(in)
	if err != nil {
		return Appointment{}, err
	}
	a, err := s.src.Create(ctx, familyID, in)
	if err != nil {
		return Appointment{}, err
	}
	_ = s.cache.Invalidate(ctx, listKey(familyID))
	return a, nil
}

func (s *Service) Update(ctx context.Context, familyID, appointmentID string, in Input) (Appointment, error) {
	if strings.TrimSpace(appointmentID) == "" {
		return Appointment{}, ErrInvalidInput
	}
	in, err := prepare(in)
	if err != nil {
		return Appointment{}, err
	}
	a, err := s.src.Update(ctx, familyID, appointmentID, in)
	if err != nil {
		return Appointment{}, err
	}
	_ = s.cache.Invalidate(ctx, listKey(familyID))
	return a, nil
}

func (s *Service) Delete(ctx context.Context, familyID, appointmentID string) error {
	if strings.TrimSpace(appointmentID) == "" {
		return ErrInvalidInput
	}
	_, err := querycache.Mutate(ctx, s.cache, listKey(familyID),
		func(items []Appointment) []Appointment {
			out := make([]Appointment, 0, len(items))
			for _, a := range items {
				if a.ID != appointmentID {
					out = append(out, a)
				}
			}
			return out
		},
		func(ctx context.Context) error { return s.src.Delete(ctx, familyID, appointmentID) })
	return err
}
