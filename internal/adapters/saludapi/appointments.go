package saludapi

import (
	"context"
	"net/http"
	"time"

	"saludhogar/internal/domain/appointments"
	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/flexid"
)

type appointmentDTO struct {
	ID              flexid.ID `json:"id"`
	MemberID        flexid.ID `json:"member_id"`
	DoctorName      string    `json:"doctor_name"`
	Specialty       string    `json:"specialty"`
	Location        string    `json:"location"`
	AppointmentDate string    `json:"appointment_date"`
	Notes           string    `json:"notes"`
}

type appointmentWrite struct {
	MemberID        flexid.ID `json:"member_id"`
	DoctorName      string    `json:"doctor_name"`
	Specialty       string    `json:"specialty,omitempty"`
	Location        string    `json:"location,omitempty"`
	AppointmentDate string    `json:"appointment_date"`
	Notes           string    `json:"notes,omitempty"`
}

func (c *Client) appointmentToDomain(familyID string, a appointmentDTO) (appointments.Appointment, error) {
	at, err := dates.ParseInstant(a.AppointmentDate, c.loc)
	if err != nil {
		return appointments.Appointment{}, err
	}
	return appointments.Appointment{
		ID:              a.ID.String(),
		FamilyID:        familyID,
		MemberID:        a.MemberID.String(),
		DoctorName:      a.DoctorName,
		Specialty:       a.Specialty,
		Location:        a.Location,
		AppointmentDate: at,
		Notes:           a.Notes,
	}, nil
}

func appointmentPayload(in appointments.Input) appointmentWrite {
	return appointmentWrite{
		MemberID:        flexid.ID(in.MemberID),
		DoctorName:      in.DoctorName,
		Specialty:       in.Specialty,
		Location:        in.Location,
		AppointmentDate: in.AppointmentDate.Format(time.RFC3339),
		Notes:           in.Notes,
	}
}

// Appointments implementa appointments.Source.
type Appointments struct{ c *Client }

func (c *Client) Appointments() *Appointments { return &Appointments{c: c} }

func (a *Appointments) ListByFamily(ctx context.Context, familyID string) ([]appointments.Appointment, error) {
	var raw []appointmentDTO
	if _, err := a.c.call(ctx, "appointments.list", http.MethodGet, familyPath(familyID, "appointments"), nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]appointments.Appointment, 0, len(raw))
	for _, r := range raw {
		ap, err := a.c.appointmentToDomain(familyID, r)
		if err != nil {
			a.c.log.Warn("skipping appointment with invalid date", map[string]any{"appointment_id": r.ID.String(), "error": err})
			continue
		}
		out = append(out, ap)
	}
	return out, nil
}

func (a *Appointments) Create(ctx context.Context, familyID string, in appointments.Input) (appointments.Appointment, error) {
	var raw appointmentDTO
	if _, err := a.c.call(ctx, "appointments.create", http.MethodPost, familyPath(familyID, "appointments"), nil, appointmentPayload(in), &raw); err != nil {
		return appointments.Appointment{}, err
	}
	return a.c.appointmentToDomain(familyID, raw)
}

func (a *Appointments) Update(ctx context.Context, familyID, appointmentID string, in appointments.Input) (appointments.Appointment, error) {
	var raw appointmentDTO
	if _, err := a.c.call(ctx, "appointments.update", http.MethodPatch, familyPath(familyID, "appointments", appointmentID), nil, appointmentPayload(in), &raw); err != nil {
		return appointments.Appointment{}, err
	}
	return a.c.appointmentToDomain(familyID, raw)
}

func (a *Appointments) Delete(ctx context.Context, familyID, appointmentID string) error {
	_, err := a.c.call(ctx, "appointments.delete", http.MethodDelete, familyPath(familyID, "appointments", appointmentID), nil, nil, nil)
	return err
}
