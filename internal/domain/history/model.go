package history

import (
	"fmt"
	"strings"

	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/flexid"
)

type Kind string

const (
	KindAllergies        Kind = "allergies"
	KindConditions       Kind = "conditions"
	KindSurgeries        Kind = "surgeries"
	KindHospitalizations Kind = "hospitalizations"
	KindFamilyHistory    Kind = "history"
)

// Scope: MemberID vacío => antecedentes familiares.
type Scope struct {
	FamilyID string
	MemberID string
}

// Entry es un registro de historia clínica. El JSON coincide con el upstream.
type Entry interface {
	EntryID() string
	Validate() error
}

type Allergy struct {
	ID       flexid.ID `json:"id,omitempty"`
	MemberID flexid.ID `json:"member_id,omitempty"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Reaction string    `json:"reaction,omitempty"`
	IsSevere bool      `json:"is_severe"`
}

func (a Allergy) EntryID() string { return a.ID.String() }

func (a Allergy) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

type Condition struct {
	ID            flexid.ID  `json:"id,omitempty"`
	MemberID      flexid.ID  `json:"member_id,omitempty"`
	Name          string     `json:"name"`
	DateDiagnosed dates.Date `json:"date_diagnosed"`
	IsActive      bool       `json:"is_active"`
	Notes         string     `json:"notes,omitempty"`
}

func (c Condition) EntryID() string { return c.ID.String() }

func (c Condition) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

type Surgery struct {
	ID              flexid.ID  `json:"id,omitempty"`
	MemberID        flexid.ID  `json:"member_id,omitempty"`
	Name            string     `json:"name"`
	DateOfProcedure dates.Date `json:"date_of_procedure"`
	SurgeonName     string     `json:"surgeon_name,omitempty"`
	FacilityName    string     `json:"facility_name,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

func (s Surgery) EntryID() string { return s.ID.String() }

func (s Surgery) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if s.DateOfProcedure.IsZero() {
		return fmt.Errorf("%w: date_of_procedure is required", ErrInvalidInput)
	}
	return nil
}

type Hospitalization struct {
	ID            flexid.ID  `json:"id,omitempty"`
	MemberID      flexid.ID  `json:"member_id,omitempty"`
	Reason        string     `json:"reason"`
	AdmissionDate dates.Date `json:"admission_date"`
	DischargeDate dates.Date `json:"discharge_date"`
	FacilityName  string     `json:"facility_name,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

func (h Hospitalization) EntryID() string { return h.ID.String() }

func (h Hospitalization) Validate() error {
	if strings.TrimSpace(h.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if h.AdmissionDate.IsZero() {
		return fmt.Errorf("%w: admission_date is required", ErrInvalidInput)
	}
	if !h.DischargeDate.IsZero() && h.DischargeDate.Before(h.AdmissionDate.Time) {
		return fmt.Errorf("%w: discharge_date is before admission_date", ErrInvalidInput)
	}
	return nil
}

// Ongoing: internación sin alta.
func (h Hospitalization) Ongoing() bool { return h.DischargeDate.IsZero() }

// FamilyCondition es un antecedente familiar (no ligado a un integrante).
type FamilyCondition struct {
	ID            flexid.ID `json:"id,omitempty"`
	FamilyID      flexid.ID `json:"family_id,omitempty"`
	ConditionName string    `json:"condition_name"`
	Relative      string    `json:"relative,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

func (f FamilyCondition) EntryID() string { return f.ID.String() }

func (f FamilyCondition) Validate() error {
	if strings.TrimSpace(f.ConditionName) == "" {
		return fmt.Errorf("%w: condition_name is required", ErrInvalidInput)
	}
	return nil
}

// Summary reúne todas las secciones de un integrante.
type Summary struct {
	Allergies        []Allergy         `json:"allergies"`
	Conditions       []Condition       `json:"conditions"`
	Surgeries        []Surgery         `json:"surgeries"`
	Hospitalizations []Hospitalization `json:"hospitalizations"`
}
