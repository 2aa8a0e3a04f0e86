package vaccinations

import "time"

type Vaccination struct {
	ID       string
	FamilyID string
	MemberID string

	VaccineName      string
	DateAdministered time.Time
	DoseNumber       int
	NextDoseDate     *time.Time
	AdministeredBy   string
	LotNumber        string
	Notes            string
}

// NextDoseDue: hay próxima dosis y su fecha ya llegó (o pasó) a ref.
func (v Vaccination) NextDoseDue(ref time.Time) bool {
	if v.NextDoseDate == nil {
		return false
	}
	ry, rm, rd := ref.Date()
	day := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := v.NextDoseDate.Date()
	next := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return !next.After(day)
}

type Input struct {
	MemberID         string
	VaccineName      string
	DateAdministered time.Time
	DoseNumber       int
	NextDoseDate     *time.Time
	AdministeredBy   string
	LotNumber        string
	Notes            string
}
