package medications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saludhogar/internal/medschedule"
	"saludhogar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type allowGuard struct{}

func (allowGuard) RequireMember(context.Context, string, string) error { return nil }

func strp(s string) *string { return &s }

func TestMedicationPatch_Merge(t *testing.T) {
	current := Medication{
		ID: "2", MemberID: "m2", Name: "Amoxicilina", Dosage: "500 mg", Frequency: "c/8h",
		StartDate:     day(2025, 1, 1),
		EndDate:       day(2025, 1, 10),
		Notes:         "con comida",
		ReminderTimes: tod(t, "08:00", "16:00"),
		ReminderDays:  medschedule.MustDaySet(0, 2),
	}

	cases := []struct {
		name    string
		patch   medicationPatch
		wantErr bool
		check   func(t *testing.T, in Input)
	}{
		{
			name:  "nil fields keep current values",
			patch: medicationPatch{Dosage: strp("750 mg")},
			check: func(t *testing.T, in Input) {
				if in.Dosage != "750 mg" || in.Name != "Amoxicilina" || in.Notes != "con comida" {
					t.Fatalf("unexpected strings: %+v", in)
				}
				if in.EndDate == nil || !in.EndDate.Equal(*current.EndDate) {
					t.Fatalf("end date should be untouched")
				}
				if in.ReminderDays != current.ReminderDays || len(in.ReminderTimes) != 2 {
					t.Fatalf("schedule should be untouched")
				}
			},
		},
		{
			name:  "empty end_date clears it",
			patch: medicationPatch{EndDate: strp("")},
			check: func(t *testing.T, in Input) {
				if in.EndDate != nil {
					t.Fatalf("expected open-ended, got %v", in.EndDate)
				}
			},
		},
		{
			name:  "empty notes clear them",
			patch: medicationPatch{Notes: strp("")},
			check: func(t *testing.T, in Input) {
				if in.Notes != "" {
					t.Fatalf("notes should be cleared")
				}
			},
		},
		{
			name:  "times and days replaced",
			patch: medicationPatch{ReminderTimes: &[]string{"21:00"}, ReminderDays: &[]int{}},
			check: func(t *testing.T, in Input) {
				if len(in.ReminderTimes) != 1 || in.ReminderTimes[0] != (medschedule.TimeOfDay{Hour: 21}) {
					t.Fatalf("times not replaced: %v", in.ReminderTimes)
				}
				if !in.ReminderDays.EveryDay() {
					t.Fatalf("empty days should mean every day")
				}
			},
		},
		{name: "bad start_date", patch: medicationPatch{StartDate: strp("01/02/2025")}, wantErr: true},
		{name: "bad end_date", patch: medicationPatch{EndDate: strp("mañana")}, wantErr: true},
		{name: "bad time", patch: medicationPatch{ReminderTimes: &[]string{"25:00"}}, wantErr: true},
		{name: "bad weekday", patch: medicationPatch{ReminderDays: &[]int{7}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := tc.patch.merge(current)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("merge: %v", err)
			}
			tc.check(t, in)
		})
	}
}

func newPatchServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := newTestService(&testSource{items: fixture(t)}, time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))
	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, svc, allowGuard{})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doPatch(t *testing.T, baseURL, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPatch, baseURL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-User-ID", "u1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.Bytes()
}

func TestPatchMedication_HTTP(t *testing.T) {
	ts := newPatchServer(t)

	// 1) Solo dosis: el resto queda igual
	{
		st, body := doPatch(t, ts.URL, "/v1/families/f1/medications/1", `{"dosage":"600 mg"}`)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, body)
		}
		var out medicationResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatal(err)
		}
		if out.Dosage != "600 mg" || out.Name != "Ibuprofeno" || len(out.ReminderTimes) != 2 {
			t.Fatalf("unexpected response: %+v", out)
		}
	}

	// 2) end_date vacío limpia la fecha de fin
	{
		st, body := doPatch(t, ts.URL, "/v1/families/f1/medications/2", `{"end_date":""}`)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, body)
		}
		var out medicationResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatal(err)
		}
		if out.EndDate != nil || !out.IsActive {
			t.Fatalf("expected open-ended active medication: %+v", out)
		}
	}

	// 3) Días concretos sin horas => 422
	{
		st, body := doPatch(t, ts.URL, "/v1/families/f1/medications/4", `{"reminder_days":[0,2]}`)
		if st != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d body=%s", st, body)
		}
		var out validationErrorResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatal(err)
		}
		if out.Code != string(medschedule.CodeSpecificDaysWithoutTimes) {
			t.Fatalf("unexpected code %q", out.Code)
		}
	}

	// 4) Campo desconocido => 400
	{
		st, _ := doPatch(t, ts.URL, "/v1/families/f1/medications/1", `{"color":"rojo"}`)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", st)
		}
	}

	// 5) Medicamento inexistente => 404
	{
		st, _ := doPatch(t, ts.URL, "/v1/families/f1/medications/99", `{"dosage":"1"}`)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", st)
		}
	}
}
