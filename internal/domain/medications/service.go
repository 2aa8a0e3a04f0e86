package medications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"

	"saludhogar/internal/medschedule"
	"saludhogar/internal/querycache"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medication not found")
)

// SubmissionError envuelve el resultado de validación del calendario; el
// handler lo traduce a 422 con el código.
type SubmissionError struct {
	Result medschedule.ValidationResult
}

func (e *SubmissionError) Error() string {
	codes := make([]string, 0, len(e.Result.Codes))
	for _, c := range e.Result.Codes {
		codes = append(codes, string(c))
	}
	return "medication schedule rejected: " + strings.Join(codes, ",")
}

type Service struct {
	src   Source
	cache *querycache.Cache
	now   func() time.Time
	loc   *time.Location
}

func NewService(src Source, cache *querycache.Cache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if cache == nil {
		cache = querycache.New(nil, querycache.Options{})
	}
	return &Service{
		src:   src,
		cache: cache,
		now:   time.Now,
		loc:   loc,
	}
}

func listKey(familyID string) querycache.Key { return querycache.Key{"medications", familyID} }

// today es la fecha de referencia en la zona configurada.
func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) all(ctx context.Context, familyID string) ([]Medication, error) {
	return querycache.Fetch(ctx, s.cache, listKey(familyID), func(ctx context.Context) ([]Medication, error) {
		return s.src.ListByFamily(ctx, familyID)
	})
}

// List aplica el filtro de vigencia con el evaluador (no con la fecha del
// servidor upstream), luego orden y paginado.
func (s *Service) List(ctx context.Context, familyID string, f Filter) ([]Medication, error) {
	if strings.TrimSpace(familyID) == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.all(ctx, familyID)
	if err != nil {
		return nil, err
	}

	ref := s.today()
	out := make([]Medication, 0, len(items))
	for _, m := range items {
		if f.Active != nil && medschedule.IsActive(m.Schedule(), ref) != *f.Active {
			continue
		}
		out = append(out, m)
	}

	sortMedications(out, f.SortBy, f.SortOrder)
	return paginate(out, f.Offset, f.Limit), nil
}

func (s *Service) ListByMember(ctx context.Context, familyID, memberID string) ([]Medication, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, ErrInvalidInput
	}
	return querycache.Fetch(ctx, s.cache, querycache.Key{"medications", familyID, "member", memberID}, func(ctx context.Context) ([]Medication, error) {
		return s.src.ListByMember(ctx, familyID, memberID)
	})
}

func (s *Service) Get(ctx context.Context, familyID, medicationID string) (Medication, error) {
	items, err := s.all(ctx, familyID)
	if err != nil {
		return Medication{}, err
	}
	for _, m := range items {
		if m.ID == medicationID {
			return m, nil
		}
	}
	return Medication{}, ErrNotFound
}

// Views deriva estado y etiquetas a la fecha de hoy.
func (s *Service) Views(items []Medication, tag language.Tag) []View {
	ref := s.today()
	wd := medschedule.WeekdayOf(ref)
	out := make([]View, 0, len(items))
	for _, m := range items {
		sch := m.Schedule()
		out = append(out, View{
			Medication:     m,
			IsActive:       medschedule.IsActive(sch, ref),
			DaysLabel:      medschedule.DescribeDaySetIn(sch, tag),
			SortedTimes:    medschedule.SortedReminderTimes(sch),
			ScheduledToday: medschedule.IsScheduledOnDay(sch, wd),
		})
	}
	return out
}

// TodayItem es una fila de "medicación de hoy".
type TodayItem struct {
	Medication Medication
	Times      []medschedule.TimeOfDay // vacío = a demanda
}

// Today lista lo vigente y programado para hoy. Primero los que tienen hora
// (por primera hora), después los de a demanda, ambos por nombre.
func (s *Service) Today(ctx context.Context, familyID string) ([]TodayItem, error) {
	items, err := s.all(ctx, familyID)
	if err != nil {
		return nil, err
	}
	return DueOn(items, s.today()), nil
}

// DueOn es la parte pura de Today; el agente de recordatorios la reutiliza.
func DueOn(items []Medication, ref time.Time) []TodayItem {
	wd := medschedule.WeekdayOf(ref)
	out := make([]TodayItem, 0)
	for _, m := range items {
		sch := m.Schedule()
		if !medschedule.IsActive(sch, ref) || !medschedule.IsScheduledOnDay(sch, wd) {
			continue
		}
		out = append(out, TodayItem{Medication: m, Times: medschedule.SortedReminderTimes(sch)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (len(a.Times) == 0) != (len(b.Times) == 0) {
			return len(a.Times) > 0
		}
		if len(a.Times) > 0 && a.Times[0] != b.Times[0] {
			return a.Times[0].String() < b.Times[0].String()
		}
		return strings.ToLower(a.Medication.Name) < strings.ToLower(b.Medication.Name)
	})
	return out
}

// Prepare valida y normaliza un alta/edición antes de enviarla upstream.
func Prepare(in Input) (Input, error) {
	in.MemberID = strings.TrimSpace(in.MemberID)
	in.Name = strings.TrimSpace(in.Name)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Frequency = strings.TrimSpace(in.Frequency)
	in.PrescribedBy = strings.TrimSpace(in.PrescribedBy)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.MemberID == "" || in.Name == "" || in.Dosage == "" {
		return Input{}, fmt.Errorf("%w: member_id, name and dosage are required", ErrInvalidInput)
	}
	if in.StartDate == nil {
		return Input{}, fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}

	if res := medschedule.ValidateSubmission(in.Schedule()); !res.OK() {
		return Input{}, &SubmissionError{Result: res}
	}

	// Los siete días se guardan como "todos" (conjunto vacío).
	in.ReminderDays = in.ReminderDays.Normalize()
	in.ReminderTimes = medschedule.SortedReminderTimes(in.Schedule())
	return in, nil
}

func (s *Service) Create(ctx context.Context, familyID string, in Input) (Medication, error) {
	in, err := Prepare(in)
	if err != nil {
		return Medication{}, err
	}
	m, err := s.src.Create(ctx, familyID, in)
	if err != nil {
		return Medication{}, err
	}
	_ = s.cache.Invalidate(ctx, listKey(familyID))
	return m, nil
}

func (s *Service) Update(ctx context.Context, familyID, medicationID string, in Input) (Medication, error) {
	if strings.TrimSpace(medicationID) == "" {
		return Medication{}, ErrInvalidInput
	}
	in, err := Prepare(in)
	if err != nil {
		return Medication{}, err
	}

	var updated Medication
	_, err = querycache.Mutate(ctx, s.cache, listKey(familyID),
		func(items []Medication) []Medication {
			out := make([]Medication, len(items))
			copy(out, items)
			for i := range out {
				if out[i].ID == medicationID {
					out[i] = applyInput(out[i], in)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			var err error
			updated, err = s.src.Update(ctx, familyID, medicationID, in)
			return err
		})
	if err != nil {
		return Medication{}, err
	}
	return updated, nil
}

// Delete quita el medicamento de la lista cacheada antes de confirmar; si
// upstream falla, la lista vuelve a su estado anterior.
func (s *Service) Delete(ctx context.Context, familyID, medicationID string) error {
	if strings.TrimSpace(medicationID) == "" {
		return ErrInvalidInput
	}
	_, err := querycache.Mutate(ctx, s.cache, listKey(familyID),
		func(items []Medication) []Medication {
			out := make([]Medication, 0, len(items))
			for _, m := range items {
				if m.ID != medicationID {
					out = append(out, m)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			return s.src.Delete(ctx, familyID, medicationID)
		})
	return err
}

func applyInput(m Medication, in Input) Medication {
	m.MemberID = in.MemberID
	m.Name = in.Name
	m.Dosage = in.Dosage
	m.Frequency = in.Frequency
	m.StartDate = in.StartDate
	m.EndDate = in.EndDate
	m.PrescribedBy = in.PrescribedBy
	m.Notes = in.Notes
	m.ReminderTimes = in.ReminderTimes
	m.ReminderDays = in.ReminderDays
	return m
}

func sortMedications(items []Medication, by, order string) {
	asc := strings.EqualFold(order, "asc")
	var less func(a, b Medication) bool
	switch by {
	case "name":
		less = func(a, b Medication) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "created_at":
		less = func(a, b Medication) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		// start_date; sin inicio va al final en ambos órdenes
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].StartDate, items[j].StartDate
			if a == nil || b == nil {
				return a != nil
			}
			if asc {
				return a.Before(*b)
			}
			return b.Before(*a)
		})
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

func paginate(items []Medication, offset, limit int) []Medication {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []Medication{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
