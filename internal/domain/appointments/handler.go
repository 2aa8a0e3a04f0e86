package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

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
	r.Route("/v1/families/{familyID}/appointments", func(ar chi.Router) {
		ar.Get("/", listAppointmentsHandler(svc, guard))
		ar.Post("/", createAppointmentHandler(svc, guard))
		ar.Get("/agenda", agendaHandler(svc, guard))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(svc, guard))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc, guard))
	})
}

type appointmentRequest struct {
	MemberID        string `json:"member_id"`
	DoctorName      string `json:"doctor_name"`
	Specialty       string `json:"specialty"`
	Location        string `json:"location"`
	AppointmentDate string `json:"appointment_date"` // RFC3339
	Notes           string `json:"notes"`
}

type appointmentResponse struct {
	ID              string    `json:"id"`
	MemberID        string    `json:"member_id"`
	DoctorName      string    `json:"doctor_name"`
	Specialty       string    `json:"specialty,omitempty"`
	Location        string    `json:"location,omitempty"`
	AppointmentDate time.Time `json:"appointment_date"`
	Notes           string    `json:"notes,omitempty"`
}

type agendaResponse struct {
	Today    []appointmentResponse `json:"today"`
	Tomorrow []appointmentResponse `json:"tomorrow"`
	ThisWeek []appointmentResponse `json:"this_week"`
	Later    []appointmentResponse `json:"later"`
	Past     []appointmentResponse `json:"past"`
}

// listAppointmentsHandler godoc
// @Summary Citas de la familia (fecha ascendente)
// @Tags appointments
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param member_id query string false "Filtrar por integrante"
// @Success 200 {array} appointmentResponse
// @Router /v1/families/{familyID}/appointments [get]
func listAppointmentsHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		var (
			items []Appointment
			err   error
		)
		if memberID := strings.TrimSpace(r.URL.Query().Get("member_id")); memberID != "" {
			items, err = svc.ListByMember(r.Context(), familyID, memberID)
		} else {
			items, err = svc.List(r.Context(), familyID)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

// agendaHandler godoc
// @Summary Agenda agrupada (hoy, mañana, esta semana, después, pasadas)
// @Tags appointments
// @Produce json
// @Param familyID path string true "ID de familia"
// @Success 200 {object} agendaResponse
// @Router /v1/families/{familyID}/appointments/agenda [get]
func agendaHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		ag, err := svc.Agenda(r.Context(), familyID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, agendaResponse{
			Today:    toResponses(ag.Today),
			Tomorrow: toResponses(ag.Tomorrow),
			ThisWeek: toResponses(ag.ThisWeek),
			Later:    toResponses(ag.Later),
			Past:     toResponses(ag.Past),
		})
	}
}

// createAppointmentHandler godoc
// @Summary Alta de cita
// @Tags appointments
// @Accept json
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param body body appointmentRequest true "Cita"
// @Success 201 {object} appointmentResponse
// @Router /v1/families/{familyID}/appointments [post]
func createAppointmentHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		in, ok := decodeInput(w, r, svc.loc)
		if !ok {
			return
		}
		a, err := svc.Create(r.Context(), familyID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Edición de cita
// @Tags appointments
// @Accept json
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param appointmentID path string true "ID de cita"
// @Param body body appointmentRequest true "Cita"
// @Success 200 {object} appointmentResponse
// @Router /v1/families/{familyID}/appointments/{appointmentID} [patch]
func updateAppointmentHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		in, ok := decodeInput(w, r, svc.loc)
		if !ok {
			return
		}
		a, err := svc.Update(r.Context(), familyID, chi.URLParam(r, "appointmentID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

// deleteAppointmentHandler godoc
// @Summary Baja de cita
// @Tags appointments
// @Param familyID path string true "ID de familia"
// @Param appointmentID path string true "ID de cita"
// @Success 204
// @Router /v1/families/{familyID}/appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), familyID, chi.URLParam(r, "appointmentID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request, loc *time.Location) (Input, bool) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return Input{}, false
	}
	var at time.Time
	if strings.TrimSpace(req.AppointmentDate) != "" {
		var err error
		if at, err = dates.ParseInstant(req.AppointmentDate, loc); err != nil {
			http.Error(w, "appointment_date must be RFC3339", http.StatusBadRequest)
			return Input{}, false
		}
	}
	return Input{
		MemberID:        req.MemberID,
		DoctorName:      req.DoctorName,
		Specialty:       req.Specialty,
		Location:        req.Location,
		AppointmentDate: at,
		Notes:           req.Notes,
	}, true
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		MemberID:        a.MemberID,
		DoctorName:      a.DoctorName,
		Specialty:       a.Specialty,
		Location:        a.Location,
		AppointmentDate: a.AppointmentDate,
		Notes:           a.Notes,
	}
}

func toResponses(items []Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
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
	case errors.Is(err, ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
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
