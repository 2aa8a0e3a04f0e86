package medications

import (
	"encoding/json"
	"net/http"
	"time"

	"saludhogar/internal/medschedule"
	"saludhogar/internal/platform/dates"

	"github.com/go-chi/chi/v5"
)

// RegisterScheduleRoutes expone el evaluador sin tocar la API upstream.
func RegisterScheduleRoutes(r chi.Router, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	r.Post("/v1/schedules/evaluate", evaluateScheduleHandler(loc))
	r.Post("/v1/schedules/validate", validateScheduleHandler())
}

type scheduleRequest struct {
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	ReminderDays  []int    `json:"reminder_days"`
	ReminderTimes []string `json:"reminder_times"`
	// ReferenceDate (YYYY-MM-DD) opcional; default hoy.
	ReferenceDate string `json:"reference_date"`
}

type evaluateResponse struct {
	ReferenceDate   string   `json:"reference_date"`
	IsActive        bool     `json:"is_active"`
	ScheduledOnDay  bool     `json:"scheduled_on_day"`
	DaysLabel       string   `json:"days_label"`
	SortedTimes     []string `json:"sorted_times"`
	ValidationCodes []string `json:"validation_codes"`
}

type validateResponse struct {
	OK    bool     `json:"ok"`
	Codes []string `json:"codes"`
}

// evaluateScheduleHandler godoc
// @Summary Evalúa un calendario de medicación
// @Tags schedules
// @Accept json
// @Produce json
// @Param body body scheduleRequest true "Calendario"
// @Success 200 {object} evaluateResponse
// @Failure 400 {string} string "invalid input"
// @Router /v1/schedules/evaluate [post]
func evaluateScheduleHandler(loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		s, err := req.schedule()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ref := time.Now().In(loc)
		if req.ReferenceDate != "" {
			if ref, err = dates.Parse(req.ReferenceDate); err != nil {
				http.Error(w, "reference_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
		}

		tag := medschedule.MatchLocale(r.Header.Get("Accept-Language"))
		writeJSON(w, http.StatusOK, evaluateResponse{
			ReferenceDate:   ref.Format(dates.Layout),
			IsActive:        medschedule.IsActive(s, ref),
			ScheduledOnDay:  medschedule.IsScheduledOnDay(s, medschedule.WeekdayOf(ref)),
			DaysLabel:       medschedule.DescribeDaySetIn(s, tag),
			SortedTimes:     medschedule.TimeStrings(medschedule.SortedReminderTimes(s)),
			ValidationCodes: codeStrings(medschedule.ValidateSubmission(s)),
		})
	}
}

// validateScheduleHandler godoc
// @Summary Valida un calendario antes de guardarlo
// @Tags schedules
// @Accept json
// @Produce json
// @Param body body scheduleRequest true "Calendario"
// @Success 200 {object} validateResponse
// @Failure 422 {object} validateResponse
// @Router /v1/schedules/validate [post]
func validateScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		s, err := req.schedule()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res := medschedule.ValidateSubmission(s)
		status := http.StatusOK
		if !res.OK() {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, validateResponse{OK: res.OK(), Codes: codeStrings(res)})
	}
}

func (req scheduleRequest) schedule() (medschedule.Schedule, error) {
	start, err := dates.ParsePtr(req.StartDate)
	if err != nil {
		return medschedule.Schedule{}, err
	}
	end, err := dates.ParsePtr(req.EndDate)
	if err != nil {
		return medschedule.Schedule{}, err
	}
	days, err := medschedule.NewDaySet(req.ReminderDays...)
	if err != nil {
		return medschedule.Schedule{}, err
	}
	times, err := medschedule.ParseTimes(req.ReminderTimes)
	if err != nil {
		return medschedule.Schedule{}, err
	}
	return medschedule.Schedule{StartDate: start, EndDate: end, Days: days, Times: times}, nil
}

func codeStrings(res medschedule.ValidationResult) []string {
	out := make([]string, 0, len(res.Codes))
	for _, c := range res.Codes {
		out = append(out, string(c))
	}
	return out
}
