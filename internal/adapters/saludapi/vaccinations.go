package saludapi

import (
	"context"
	"net/http"

	"saludhogar/internal/domain/vaccinations"
	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/flexid"
)

type vaccinationDTO struct {
	ID               flexid.ID  `json:"id"`
	MemberID         flexid.ID  `json:"member_id"`
	VaccineName      string     `json:"vaccine_name"`
	DateAdministered dates.Date `json:"date_administered"`
	DoseNumber       int        `json:"dose_number"`
	NextDoseDate     dates.Date `json:"next_dose_date"`
	AdministeredBy   string     `json:"administered_by"`
	LotNumber        string     `json:"lot_number"`
	Notes            string     `json:"notes"`
}

type vaccinationWrite struct {
	MemberID         flexid.ID `json:"member_id"`
	VaccineName      string    `json:"vaccine_name"`
	DateAdministered string    `json:"date_administered"`
	DoseNumber       int       `json:"dose_number,omitempty"`
	NextDoseDate     *string   `json:"next_dose_date"`
	AdministeredBy   string    `json:"administered_by,omitempty"`
	LotNumber        string    `json:"lot_number,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

func vaccinationToDomain(familyID string, v vaccinationDTO) vaccinations.Vaccination {
	return vaccinations.Vaccination{
		ID:               v.ID.String(),
		FamilyID:         familyID,
		MemberID:         v.MemberID.String(),
		VaccineName:      v.VaccineName,
		DateAdministered: v.DateAdministered.Time,
		DoseNumber:       v.DoseNumber,
		NextDoseDate:     datePtr(v.NextDoseDate),
		AdministeredBy:   v.AdministeredBy,
		LotNumber:        v.LotNumber,
		Notes:            v.Notes,
	}
}

func vaccinationPayload(in vaccinations.Input) vaccinationWrite {
	return vaccinationWrite{
		MemberID:         flexid.ID(in.MemberID),
		VaccineName:      in.VaccineName,
		DateAdministered: in.DateAdministered.Format(dates.Layout),
		DoseNumber:       in.DoseNumber,
		NextDoseDate:     dates.FormatPtr(in.NextDoseDate),
		AdministeredBy:   in.AdministeredBy,
		LotNumber:        in.LotNumber,
		Notes:            in.Notes,
	}
}

// Vaccinations implementa vaccinations.Source.
type Vaccinations struct{ c *Client }

func (c *Client) Vaccinations() *Vaccinations { return &Vaccinations{c: c} }

func (v *Vaccinations) ListByFamily(ctx context.Context, familyID string) ([]vaccinations.Vaccination, error) {
	return v.list(ctx, "vaccinations.list", familyID, familyPath(familyID, "vaccinations"))
}

func (v *Vaccinations) ListByMember(ctx context.Context, familyID, memberID string) ([]vaccinations.Vaccination, error) {
	return v.list(ctx, "vaccinations.list_member", familyID, familyPath(familyID, "members", memberID, "vaccinations"))
}

func (v *Vaccinations) list(ctx context.Context, op, familyID, path string) ([]vaccinations.Vaccination, error) {
	var raw []vaccinationDTO
	if _, err := v.c.call(ctx, op, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]vaccinations.Vaccination, 0, len(raw))
	for _, r := range raw {
		out = append(out, vaccinationToDomain(familyID, r))
	}
	return out, nil
}

func (v *Vaccinations) Create(ctx context.Context, familyID string, in vaccinations.Input) (vaccinations.Vaccination, error) {
	var raw vaccinationDTO
	if _, err := v.c.call(ctx, "vaccinations.create", http.MethodPost, familyPath(familyID, "vaccinations"), nil, vaccinationPayload(in), &raw); err != nil {
		return vaccinations.Vaccination{}, err
	}
	return vaccinationToDomain(familyID, raw), nil
}

func (v *Vaccinations) Update(ctx context.Context, familyID, vaccinationID string, in vaccinations.Input) (vaccinations.Vaccination, error) {
	var raw vaccinationDTO
	if _, err := v.c.call(ctx, "vaccinations.update", http.MethodPatch, familyPath(familyID, "vaccinations", vaccinationID), nil, vaccinationPayload(in), &raw); err != nil {
		return vaccinations.Vaccination{}, err
	}
	return vaccinationToDomain(familyID, raw), nil
}

func (v *Vaccinations) Delete(ctx context.Context, familyID, vaccinationID string) error {
	_, err := v.c.call(ctx, "vaccinations.delete", http.MethodDelete, familyPath(familyID, "vaccinations", vaccinationID), nil, nil, nil)
	return err
}
