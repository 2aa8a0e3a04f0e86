package saludapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"saludhogar/internal/domain/medications"
	"saludhogar/internal/medschedule"
	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/flexid"
)

type medicationDTO struct {
	ID            flexid.ID  `json:"id"`
	FamilyID      flexid.ID  `json:"family_id"`
	MemberID      flexid.ID  `json:"member_id"`
	Name          string     `json:"name"`
	Dosage        string     `json:"dosage"`
	Frequency     string     `json:"frequency"`
	StartDate     dates.Date `json:"start_date"`
	EndDate       dates.Date `json:"end_date"`
	PrescribedBy  string     `json:"prescribed_by"`
	Notes         string     `json:"notes"`
	ReminderTimes []string   `json:"reminder_times"`
	ReminderDays  []int      `json:"reminder_days"`
	CreatedAt     string     `json:"created_at"`
}

// medicationWrite es el payload de alta/edición que acepta la API.
type medicationWrite struct {
	MemberID      flexid.ID `json:"member_id"`
	Name          string    `json:"name"`
	Dosage        string    `json:"dosage"`
	Frequency     string    `json:"frequency"`
	StartDate     *string   `json:"start_date"`
	EndDate       *string   `json:"end_date"`
	PrescribedBy  string    `json:"prescribed_by,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ReminderTimes []string  `json:"reminder_times"`
	ReminderDays  []int     `json:"reminder_days"`
}

func datePtr(d dates.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// toDomain descarta horas o días inválidos en lugar de fallar todo el listado.
func (c *Client) medicationToDomain(familyID string, m medicationDTO) medications.Medication {
	out := medications.Medication{
		ID:           m.ID.String(),
		FamilyID:     familyID,
		MemberID:     m.MemberID.String(),
		Name:         m.Name,
		Dosage:       m.Dosage,
		Frequency:    m.Frequency,
		StartDate:    datePtr(m.StartDate),
		EndDate:      datePtr(m.EndDate),
		PrescribedBy: m.PrescribedBy,
		Notes:        m.Notes,
	}
	for _, s := range m.ReminderTimes {
		t, err := medschedule.ParseTimeOfDay(s)
		if err != nil {
			c.log.Warn("skipping invalid reminder time", map[string]any{"medication_id": out.ID, "value": s})
			continue
		}
		out.ReminderTimes = append(out.ReminderTimes, t)
	}
	for _, d := range m.ReminderDays {
		set, err := medschedule.NewDaySet(d)
		if err != nil {
			c.log.Warn("skipping invalid reminder day", map[string]any{"medication_id": out.ID, "value": d})
			continue
		}
		out.ReminderDays |= set
	}
	if t, err := parseTimestamp(m.CreatedAt, c.loc); err == nil {
		out.CreatedAt = t
	}
	return out
}

func medicationPayload(in medications.Input) medicationWrite {
	return medicationWrite{
		MemberID:      flexid.ID(in.MemberID),
		Name:          in.Name,
		Dosage:        in.Dosage,
		Frequency:     in.Frequency,
		StartDate:     dates.FormatPtr(in.StartDate),
		EndDate:       dates.FormatPtr(in.EndDate),
		PrescribedBy:  in.PrescribedBy,
		Notes:         in.Notes,
		ReminderTimes: medschedule.TimeStrings(in.ReminderTimes),
		ReminderDays:  in.ReminderDays.Ints(),
	}
}

// Medications implementa medications.Source.
type Medications struct{ c *Client }

func (c *Client) Medications() *Medications { return &Medications{c: c} }

// List pasa el filtro como query params de la API.
func (m *Medications) List(ctx context.Context, familyID string, f medications.Filter) ([]medications.Medication, error) {
	q := url.Values{}
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sort_order", f.SortOrder)
	}
	return m.list(ctx, "medications.list", familyID, familyPath(familyID, "medications"), q)
}

func (m *Medications) ListByFamily(ctx context.Context, familyID string) ([]medications.Medication, error) {
	return m.List(ctx, familyID, medications.Filter{})
}

func (m *Medications) ListByMember(ctx context.Context, familyID, memberID string) ([]medications.Medication, error) {
	return m.list(ctx, "medications.list_member", familyID, familyPath(familyID, "members", memberID, "medications"), nil)
}

func (m *Medications) list(ctx context.Context, op, familyID, path string, q url.Values) ([]medications.Medication, error) {
	var raw []medicationDTO
	if _, err := m.c.call(ctx, op, http.MethodGet, path, q, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]medications.Medication, 0, len(raw))
	for _, r := range raw {
		out = append(out, m.c.medicationToDomain(familyID, r))
	}
	return out, nil
}

func (m *Medications) Create(ctx context.Context, familyID string, in medications.Input) (medications.Medication, error) {
	var raw medicationDTO
	if _, err := m.c.call(ctx, "medications.create", http.MethodPost, familyPath(familyID, "medications"), nil, medicationPayload(in), &raw); err != nil {
		return medications.Medication{}, err
	}
	return m.c.medicationToDomain(familyID, raw), nil
}

func (m *Medications) Update(ctx context.Context, familyID, medicationID string, in medications.Input) (medications.Medication, error) {
	var raw medicationDTO
	if _, err := m.c.call(ctx, "medications.update", http.MethodPatch, familyPath(familyID, "medications", medicationID), nil, medicationPayload(in), &raw); err != nil {
		return medications.Medication{}, err
	}
	return m.c.medicationToDomain(familyID, raw), nil
}

func (m *Medications) Delete(ctx context.Context, familyID, medicationID string) error {
	_, err := m.c.call(ctx, "medications.delete", http.MethodDelete, familyPath(familyID, "medications", medicationID), nil, nil, nil)
	return err
}
