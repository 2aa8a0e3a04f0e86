package families

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"saludhogar/internal/middleware"
	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/v1/families", listFamiliesHandler(svc))
	r.Get("/v1/families/{familyID}/members", listMembersHandler(svc))
	r.Get("/v1/families/{familyID}/stats", statsHandler(svc))
}

type familyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type memberResponse struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	FullName    string  `json:"full_name"`
	BirthDate   *string `json:"birth_date,omitempty"` // YYYY-MM-DD
	Age         *int    `json:"age,omitempty"`
	Gender      string  `json:"gender,omitempty"`
	Relation    string  `json:"relation,omitempty"`
	BloodType   string  `json:"blood_type,omitempty"`
	PhoneNumber string  `json:"phone_number,omitempty"`
}

// listFamiliesHandler godoc
// @Summary Familias del usuario
// @Tags families
// @Produce json
// @Success 200 {array} familyResponse
// @Failure 401 {string} string "unauthorized"
// @Router /v1/families [get]
func listFamiliesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListForUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]familyResponse, 0, len(items))
		for _, f := range items {
			out = append(out, familyResponse{ID: f.ID, Name: f.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listMembersHandler godoc
// @Summary Integrantes de la familia con edad calculada
// @Tags families
// @Produce json
// @Param familyID path string true "ID de familia"
// @Success 200 {array} memberResponse
// @Failure 403 {string} string "forbidden"
// @Router /v1/families/{familyID}/members [get]
func listMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		familyID := chi.URLParam(r, "familyID")
		if _, err := svc.Require(r.Context(), claims.UserID, familyID); err != nil {
			writeError(w, err)
			return
		}

		items, err := svc.MemberViews(r.Context(), familyID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]memberResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMemberResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// statsHandler godoc
// @Summary Resumen del dashboard
// @Tags families
// @Produce json
// @Param familyID path string true "ID de familia"
// @Success 200 {object} map[string]interface{}
// @Router /v1/families/{familyID}/stats [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		familyID := chi.URLParam(r, "familyID")
		if _, err := svc.Require(r.Context(), claims.UserID, familyID); err != nil {
			writeError(w, err)
			return
		}

		st, err := svc.Stats(r.Context(), familyID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func toMemberResponse(m MemberView) memberResponse {
	return memberResponse{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		FullName:    m.FullName(),
		BirthDate:   dates.FormatPtr(m.BirthDate),
		Age:         m.Age,
		Gender:      m.Gender,
		Relation:    m.Relation,
		BloodType:   m.BloodType,
		PhoneNumber: m.PhoneNumber,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		st := httpclient.ResponseStatus(err)
		http.Error(w, http.StatusText(st), st)
	}
}

// writeJSON está duplicado en cada módulo a propósito; ver comentario en medications/handler.go.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

