package medications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"saludhogar/internal/domain/families"
	"saludhogar/internal/medschedule"
	"saludhogar/internal/middleware"
	"saludhogar/internal/platform/dates"
	"saludhogar/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

// FamilyGuard verifica que el usuario pertenece a la familia.
type FamilyGuard interface {
	RequireMember(ctx context.Context, userID, familyID string) error
}

func RegisterRoutes(r chi.Router, svc *Service, guard FamilyGuard) {
	r.Route("/v1/families/{familyID}/medications", func(mr chi.Router) {
		mr.Get("/", listMedicationsHandler(svc, guard))
		mr.Post("/", createMedicationHandler(svc, guard))
		mr.Get("/today", todayHandler(svc, guard))

		mr.Get("/{medicationID}", getMedicationHandler(svc, guard))
		mr.Patch("/{medicationID}", updateMedicationHandler(svc, guard))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc, guard))
	})
}

type medicationRequest struct {
	MemberID      string   `json:"member_id"`
	Name          string   `json:"name"`
	Dosage        string   `json:"dosage"`
	Frequency     string   `json:"frequency"`
	StartDate     string   `json:"start_date"`         // YYYY-MM-DD
	EndDate       string   `json:"end_date,omitempty"` // YYYY-MM-DD opcional
	PrescribedBy  string   `json:"prescribed_by,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	ReminderTimes []string `json:"reminder_times"` // HH:MM
	ReminderDays  []int    `json:"reminder_days"`  // 0=lunes ... 6=domingo
}

// PATCH real: nil = no tocar. end_date:"" limpia la fecha de fin.
type medicationPatch struct {
	MemberID      *string   `json:"member_id"`
	Name          *string   `json:"name"`
	Dosage        *string   `json:"dosage"`
	Frequency     *string   `json:"frequency"`
	StartDate     *string   `json:"start_date"`
	EndDate       *string   `json:"end_date"`
	PrescribedBy  *string   `json:"prescribed_by"`
	Notes         *string   `json:"notes"`
	ReminderTimes *[]string `json:"reminder_times"`
	ReminderDays  *[]int    `json:"reminder_days"`
}

type medicationResponse struct {
	ID             string   `json:"id"`
	MemberID       string   `json:"member_id"`
	Name           string   `json:"name"`
	Dosage         string   `json:"dosage"`
	Frequency      string   `json:"frequency"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	PrescribedBy   string   `json:"prescribed_by,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	ReminderTimes  []string `json:"reminder_times"`
	ReminderDays   []int    `json:"reminder_days"`
	IsActive       bool     `json:"is_active"`
	DaysLabel      string   `json:"days_label"`
	ScheduledToday bool     `json:"scheduled_today"`
}

type todayResponse struct {
	Medication medicationResponse `json:"medication"`
	Times      []string           `json:"times"`
	AsNeeded   bool               `json:"as_needed"`
}

type validationErrorResponse struct {
	Code string `json:"code"`
}

// listMedicationsHandler godoc
// @Summary Medicamentos de la familia
// @Description Vigencia calculada con el evaluador de calendarios.
// @Tags medications
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param active query bool false "Solo vigentes (true) o no vigentes (false)"
// @Param member_id query string false "Filtrar por integrante"
// @Param limit query int false "Máximo de resultados"
// @Param offset query int false "Desplazamiento"
// @Param sort_by query string false "start_date | name | created_at"
// @Param sort_order query string false "asc | desc"
// @Success 200 {array} medicationResponse
// @Router /v1/families/{familyID}/medications [get]
func listMedicationsHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		q := r.URL.Query()
		f := Filter{
			SortBy:    q.Get("sort_by"),
			SortOrder: q.Get("sort_order"),
		}
		if v := q.Get("active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "active must be true or false", http.StatusBadRequest)
				return
			}
			f.Active = &b
		}
		var err error
		if f.Limit, err = intParam(q.Get("limit")); err != nil {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if f.Offset, err = intParam(q.Get("offset")); err != nil {
			http.Error(w, "offset must be a non-negative integer", http.StatusBadRequest)
			return
		}

		var items []Medication
		if memberID := strings.TrimSpace(q.Get("member_id")); memberID != "" {
			items, err = svc.ListByMember(r.Context(), familyID, memberID)
		} else {
			items, err = svc.List(r.Context(), familyID, f)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		tag := medschedule.MatchLocale(r.Header.Get("Accept-Language"))
		views := svc.Views(items, tag)
		out := make([]medicationResponse, 0, len(views))
		for _, v := range views {
			out = append(out, toMedicationResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// todayHandler godoc
// @Summary Medicación de hoy
// @Description Vigentes y programados para hoy, con horas ordenadas.
// @Tags medications
// @Produce json
// @Param familyID path string true "ID de familia"
// @Success 200 {array} todayResponse
// @Router /v1/families/{familyID}/medications/today [get]
func todayHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		items, err := svc.Today(r.Context(), familyID)
		if err != nil {
			writeError(w, err)
			return
		}

		tag := medschedule.MatchLocale(r.Header.Get("Accept-Language"))
		out := make([]todayResponse, 0, len(items))
		for _, it := range items {
			v := svc.Views([]Medication{it.Medication}, tag)[0]
			out = append(out, todayResponse{
				Medication: toMedicationResponse(v),
				Times:      medschedule.TimeStrings(it.Times),
				AsNeeded:   len(it.Times) == 0,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Detalle de medicamento
// @Tags medications
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param medicationID path string true "ID de medicamento"
// @Success 200 {object} medicationResponse
// @Failure 404 {string} string "not found"
// @Router /v1/families/{familyID}/medications/{medicationID} [get]
func getMedicationHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		m, err := svc.Get(r.Context(), familyID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		tag := medschedule.MatchLocale(r.Header.Get("Accept-Language"))
		writeJSON(w, http.StatusOK, toMedicationResponse(svc.Views([]Medication{m}, tag)[0]))
	}
}

// createMedicationHandler godoc
// @Summary Alta de medicamento
// @Description Días concretos sin horas se rechazan con 422 y code SPECIFIC_DAYS_WITHOUT_TIMES.
// @Tags medications
// @Accept json
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param body body medicationRequest true "Medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid input"
// @Failure 422 {object} validationErrorResponse
// @Router /v1/families/{familyID}/medications [post]
func createMedicationHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := req.toInput()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), familyID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		tag := medschedule.MatchLocale(r.Header.Get("Accept-Language"))
		writeJSON(w, http.StatusCreated, toMedicationResponse(svc.Views([]Medication{m}, tag)[0]))
	}
}

// updateMedicationHandler godoc
// @Summary Edición parcial de medicamento
// @Tags medications
// @Accept json
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param medicationID path string true "ID de medicamento"
// @Param body body medicationPatch true "Campos a modificar"
// @Success 200 {object} medicationResponse
// @Failure 422 {object} validationErrorResponse
// @Router /v1/families/{familyID}/medications/{medicationID} [patch]
func updateMedicationHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		medicationID := chi.URLParam(r, "medicationID")
		current, err := svc.Get(r.Context(), familyID, medicationID)
		if err != nil {
			writeError(w, err)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var patch medicationPatch
		if err := dec.Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := patch.merge(current)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.Update(r.Context(), familyID, medicationID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		tag := medschedule.MatchLocale(r.Header.Get("Accept-Language"))
		writeJSON(w, http.StatusOK, toMedicationResponse(svc.Views([]Medication{m}, tag)[0]))
	}
}

// deleteMedicationHandler godoc
// @Summary Baja de medicamento
// @Tags medications
// @Param familyID path string true "ID de familia"
// @Param medicationID path string true "ID de medicamento"
// @Success 204
// @Router /v1/families/{familyID}/medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID, ok := authorize(w, r, guard)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), familyID, chi.URLParam(r, "medicationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (req medicationRequest) toInput() (Input, error) {
	start, err := dates.ParsePtr(req.StartDate)
	if err != nil {
		return Input{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := dates.ParsePtr(req.EndDate)
	if err != nil {
		return Input{}, errors.New("end_date must be YYYY-MM-DD")
	}
	times, err := medschedule.ParseTimes(req.ReminderTimes)
	if err != nil {
		return Input{}, err
	}
	days, err := medschedule.NewDaySet(req.ReminderDays...)
	if err != nil {
		return Input{}, err
	}
	return Input{
		MemberID:      req.MemberID,
		Name:          req.Name,
		Dosage:        req.Dosage,
		Frequency:     req.Frequency,
		StartDate:     start,
		EndDate:       end,
		PrescribedBy:  req.PrescribedBy,
		Notes:         req.Notes,
		ReminderTimes: times,
		ReminderDays:  days,
	}, nil
}

func (p medicationPatch) merge(m Medication) (Input, error) {
	in := Input{
		MemberID:      m.MemberID,
		Name:          m.Name,
		Dosage:        m.Dosage,
		Frequency:     m.Frequency,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		PrescribedBy:  m.PrescribedBy,
		Notes:         m.Notes,
		ReminderTimes: m.ReminderTimes,
		ReminderDays:  m.ReminderDays,
	}
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&in.MemberID, p.MemberID)
	setStr(&in.Name, p.Name)
	setStr(&in.Dosage, p.Dosage)
	setStr(&in.Frequency, p.Frequency)
	setStr(&in.PrescribedBy, p.PrescribedBy)
	setStr(&in.Notes, p.Notes)

	var err error
	if p.StartDate != nil {
		if in.StartDate, err = dates.ParsePtr(*p.StartDate); err != nil {
			return Input{}, errors.New("start_date must be YYYY-MM-DD")
		}
	}
	if p.EndDate != nil {
		if in.EndDate, err = dates.ParsePtr(*p.EndDate); err != nil {
			return Input{}, errors.New("end_date must be YYYY-MM-DD")
		}
	}
	if p.ReminderTimes != nil {
		if in.ReminderTimes, err = medschedule.ParseTimes(*p.ReminderTimes); err != nil {
			return Input{}, err
		}
	}
	if p.ReminderDays != nil {
		if in.ReminderDays, err = medschedule.NewDaySet(*p.ReminderDays...); err != nil {
			return Input{}, err
		}
	}
	return in, nil
}

func toMedicationResponse(v View) medicationResponse {
	return medicationResponse{
		ID:             v.ID,
		MemberID:       v.MemberID,
		Name:           v.Name,
		Dosage:         v.Dosage,
		Frequency:      v.Frequency,
		StartDate:      dates.FormatPtr(v.StartDate),
		EndDate:        dates.FormatPtr(v.EndDate),
		PrescribedBy:   v.PrescribedBy,
		Notes:          v.Notes,
		ReminderTimes:  medschedule.TimeStrings(v.SortedTimes),
		ReminderDays:   v.ReminderDays.Ints(),
		IsActive:       v.IsActive,
		DaysLabel:      v.DaysLabel,
		ScheduledToday: v.ScheduledToday,
	}
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

func intParam(v string) (int, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid")
	}
	return n, nil
}

func writeError(w http.ResponseWriter, err error) {
	var subErr *SubmissionError
	switch {
	case errors.As(err, &subErr):
		writeJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{Code: string(subErr.Result.Codes[0])})
	case errors.Is(err, ErrInvalidInput), errors.Is(err, families.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, families.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	default:
		st := httpclient.ResponseStatus(err)
		http.Error(w, http.StatusText(st), st)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

