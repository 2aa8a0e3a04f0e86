package families

import (
	"strings"
	"time"
)

// Family es un grupo familiar; un usuario puede pertenecer a varios.
type Family struct {
	ID      string
	Name    string
	Members []Member
}

// Member es un integrante de la familia (no necesariamente un usuario).
type Member struct {
	ID       string
	FamilyID string

	FirstName string
	LastName  string

	BirthDate   *time.Time
	Gender      string
	Relation    string // padre, madre, hijo/a...
	BloodType   string
	PhoneNumber string
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Stats es el resumen del dashboard tal como lo entrega la API.
type Stats map[string]any

// AgeOn devuelve la edad en años cumplidos a la fecha de ref.
// Si todavía no cumplió años este año, resta uno.
func AgeOn(birth, ref time.Time) int {
	by, bm, bd := birth.Date()
	ry, rm, rd := ref.Date()
	age := ry - by
	if rm < bm || (rm == bm && rd < bd) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
