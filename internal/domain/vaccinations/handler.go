package vaccinations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"saludhogar/internal/domain/families"
	"saludhogar/internal/middleware"
	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

type FamilyGuard interface {
	RequireMember(ctx context.Context, userID, familyID string) error
}

func RegisterRoutes(r chi.Router, svc *Service, guard FamilyGuard) {
	r.Route("/v1/families/{familyID}/vaccinations", func(vr chi.Router) {
		vr.Get("/", listVaccinationsHandler(svc, guard))
		vr.Post("/", createVaccinationHandler(svc, guard))
		vr.Get("/due", dueVaccinationsHandler(svc, guard))
		vr.Patch("/{vaccinationID}", updateVaccinationHandler(svc, guard))
		vr.Delete("/{vaccinationID}", deleteVaccinationHandler(svc, guard))
	})
}

type vaccinationRequest struct {
	MemberID         string `json:"member_id"`
	VaccineName      string `json:"vaccine_name"`
	DateAdministered string `json:"date_administered"` // YYYY-MM-DD
	DoseNumber       int    `json:"dose_number"`
	NextDoseDate     string `json:"next_dose_date"` // YYYY-MM-DD opcional
	AdministeredBy   string `json:"administered_by"`
	LotNumber        string `json:"lot_number"`
	Notes            string `json:"notes"`
}

type vaccinationResponse struct {
	ID               string  `json:"id"`
	MemberID         string  `json:"member_id"`
	VaccineName      string  `json:"vaccine_name"`
	DateAdministered string  `json:"date_administered"`
	DoseNumber       int     `json:"dose_number,omitempty"`
	NextDoseDate     *string `json:"next_dose_date"`
	NextDoseDue      bool    `json:"next_dose_due"`
	AdministeredBy   string  `json:"administered_by,omitempty"`
	LotNumber        string  `json:"lot_number,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

// listVaccinationsHandler godoc
// @Summary Vacunas de la familia (más reciente primero)
// @Tags vaccinations
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param member_id query string false "Filtrar por integrante"
// @Success 200 {array} vaccinationResponse
// @Router /v1/families/{familyID}/vaccinations [get]
func listVaccinationsHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		items, err := svc.List(r.Context(), familyID, strings.TrimSpace(r.URL.Query().Get("member_id")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

// dueVaccinationsHandler godoc
// @Summary Vacunas con próxima dosis vencida
// @Tags vaccinations
// @Produce json
// @Param familyID path string true "ID de familia"
// @Success 200 {array} vaccinationResponse
// @Router /v1/families/{familyID}/vaccinations/due [get]
func dueVaccinationsHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		items, err := svc.Due(r.Context(), familyID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

// createVaccinationHandler godoc
// @Summary Alta de vacuna
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param body body vaccinationRequest true "Vacuna"
// @Success 201 {object} vaccinationResponse
// @Router /v1/families/{familyID}/vaccinations [post]
func createVaccinationHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		in, ok := decodeInput(w, r)
		if !ok {
			return
		}
		v, err := svc.Create(r.Context(), familyID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(View{Vaccination: v}))
	}
}

// updateVaccinationHandler godoc
// @Summary Edición de vacuna
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param vaccinationID path string true "ID de vacuna"
// @Param body body vaccinationRequest true "Vacuna"
// @Success 200 {object} vaccinationResponse
// @Router /v1/families/{familyID}/vaccinations/{vaccinationID} [patch]
func updateVaccinationHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		in, ok := decodeInput(w, r)
		if !ok {
			return
		}
		v, err := svc.Update(r.Context(), familyID, chi.URLParam(r, "vaccinationID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(View{Vaccination: v}))
	}
}

// deleteVaccinationHandler godoc
// @Summary Baja de vacuna
// @Tags vaccinations
// @Param familyID path string true "ID de familia"
// @Param vaccinationID path string true "ID de vacuna"
// @Success 204
// @Router /v1/families/{familyID}/vaccinations/{vaccinationID} [delete]
func deleteVaccinationHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), familyID, chi.URLParam(r, "vaccinationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var req vaccinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return Input{}, false
	}
	in := Input{
		MemberID:       req.MemberID,
		VaccineName:    req.VaccineName,
		DoseNumber:     req.DoseNumber,
		AdministeredBy: req.AdministeredBy,
		LotNumber:      req.LotNumber,
		Notes:          req.Notes,
	}
	if strings.TrimSpace(req.DateAdministered) != "" {
		t, err := dates.Parse(req.DateAdministered)
		if err != nil {
			http.Error(w, "date_administered must be YYYY-MM-DD", http.StatusBadRequest)
			return Input{}, false
		}
		in.DateAdministered = t
	}
	next, err := dates.ParsePtr(req.NextDoseDate)
	if err != nil {
		http.Error(w, "next_dose_date must be YYYY-MM-DD", http.StatusBadRequest)
		return Input{}, false
	}
	in.NextDoseDate = next
	return in, true
}

func toResponse(v View) vaccinationResponse {
	return vaccinationResponse{
		ID:               v.ID,
		MemberID:         v.MemberID,
		VaccineName:      v.VaccineName,
		DateAdministered: v.DateAdministered.Format(dates.Layout),
		DoseNumber:       v.DoseNumber,
		NextDoseDate:     dates.FormatPtr(v.NextDoseDate),
		NextDoseDue:      v.NextDoseDue,
		AdministeredBy:   v.AdministeredBy,
		LotNumber:        v.LotNumber,
		Notes:            v.Notes,
	}
}

func toResponses(items []View) []vaccinationResponse {
	out := make([]vaccinationResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toResponse(v))
	}
	return out
}

func authorize(w http.ResponseWriter, r *http.Request, guard FamilyGuard) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	familyID := chi.URLParam(r, "familyID")
	if err := guard.RequireMember(r.Context(), claims.UserID, familyID); err != nil {
		writeError(w, err)
		return "", false
	}
	return familyID, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, families.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, families.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		st := httpclient.ResponseStatus(err)
		http.Error(w, http.StatusText(st), st)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
