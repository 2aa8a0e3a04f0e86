package saludapi

import (
	"context"
	"net/http"

	"saludhogar/internal/domain/families"
	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/flexid"
)

type memberDTO struct {
	ID          flexid.ID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	BirthDate   dates.Date `json:"birth_date"`
	Gender      string     `json:"gender"`
	Relation    string     `json:"relation"`
	BloodType   string     `json:"blood_type"`
	PhoneNumber string     `json:"phone_number"`
}

func (m memberDTO) toDomain(familyID string) families.Member {
	out := families.Member{
		ID:          m.ID.String(),
		FamilyID:    familyID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Gender:      m.Gender,
		Relation:    m.Relation,
		BloodType:   m.BloodType,
		PhoneNumber: m.PhoneNumber,
	}
	if !m.BirthDate.IsZero() {
		t := m.BirthDate.Time
		out.BirthDate = &t
	}
	return out
}

type familyDTO struct {
	ID      flexid.ID   `json:"id"`
	Name    string      `json:"name"`
	Members []memberDTO `json:"members"`
}

// Families implementa families.Source.
type Families struct{ c *Client }

func (c *Client) Families() *Families { return &Families{c: c} }

func (f *Families) ListFamilies(ctx context.Context) ([]families.Family, error) {
	var raw []familyDTO
	if _, err := f.c.call(ctx, "families.list", http.MethodGet, "/families", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]families.Family, 0, len(raw))
	for _, r := range raw {
		fam := families.Family{ID: r.ID.String(), Name: r.Name}
		for _, m := range r.Members {
			fam.Members = append(fam.Members, m.toDomain(fam.ID))
		}
		out = append(out, fam)
	}
	return out, nil
}

func (f *Families) ListMembers(ctx context.Context, familyID string) ([]families.Member, error) {
	var raw []memberDTO
	if _, err := f.c.call(ctx, "families.members", http.MethodGet, familyPath(familyID, "members"), nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]families.Member, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.toDomain(familyID))
	}
	return out, nil
}

func (f *Families) Stats(ctx context.Context, familyID string) (families.Stats, error) {
	out := families.Stats{}
	if _, err := f.c.call(ctx, "families.stats", http.MethodGet, familyPath(familyID, "stats"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
