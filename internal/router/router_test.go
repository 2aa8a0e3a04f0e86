package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"saludhogar/internal/adapters/saludapi"
	"saludhogar/internal/platform/httpclient"
	"saludhogar/internal/platform/metrics"
	"saludhogar/internal/querycache"
	"saludhogar/internal/router"
)

// fakeUpstream simula la API de SaludHogar con una familia (id 7) para la
// sesión "s-1".
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(saludapi.CookieName)
		if err != nil || ck.Value != "s-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/families":
			_, _ = io.WriteString(w, `[{"id":7,"name":"Pérez","members":[{"id":1,"first_name":"Ana","last_name":"Pérez"}]}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/families/7/members":
			_, _ = io.WriteString(w, `[{"id":1,"first_name":"Ana","last_name":"Pérez","birth_date":"1990-05-01"}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/families/7/medications":
			_, _ = io.WriteString(w, `[{"id":3,"family_id":7,"member_id":1,"name":"Ibuprofeno","dosage":"400mg","frequency":"daily",
				"start_date":"2020-01-01","end_date":null,"reminder_times":["20:00","08:00"],"reminder_days":[0,1,2,3,4,5,6]}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	up := fakeUpstream(t)

	hc, err := httpclient.New(httpclient.Options{BaseURL: up.URL})
	if err != nil {
		t.Fatalf("httpclient: %v", err)
	}
	api, err := saludapi.New(saludapi.Options{HTTP: hc})
	if err != nil {
		t.Fatalf("saludapi: %v", err)
	}
	cache := querycache.New(querycache.NewMemoryStore(), querycache.Options{TTL: time.Minute})

	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil,
		Services:     router.NewServices(api, cache, time.UTC),
		Metrics:      metrics.New(),
		Location:     time.UTC,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: %d %s", st, string(body))
	}
}

func TestHTTP_FamiliesAndMedications(t *testing.T) {
	ts := newTestServer(t)
	userID := "42"

	// 1) Sin usuario => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/v1/families", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}

	// 2) Familias del usuario
	{
		st, body := doReq(t, ts.URL, "GET", "/v1/families", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 families, got %d body=%s", st, string(body))
		}
		var out []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		mustJSON(t, body, &out)
		if len(out) != 1 || out[0].ID != "7" {
			t.Fatalf("unexpected families: %+v", out)
		}
	}

	// 3) Familia ajena => 403
	{
		st, _ := doReq(t, ts.URL, "GET", "/v1/families/99/medications", userID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 on foreign family, got %d", st)
		}
	}

	// 4) Medicamentos con horas ordenadas
	{
		st, body := doReq(t, ts.URL, "GET", "/v1/families/7/medications", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 medications, got %d body=%s", st, string(body))
		}
		var out []struct {
			ID            string   `json:"id"`
			ReminderTimes []string `json:"reminder_times"`
			IsActive      bool     `json:"is_active"`
			DaysLabel     string   `json:"days_label"`
		}
		mustJSON(t, body, &out)
		if len(out) != 1 {
			t.Fatalf("expected 1 medication, got %d", len(out))
		}
		if !out[0].IsActive {
			t.Fatalf("open-ended medication should be active")
		}
		if strings.Join(out[0].ReminderTimes, ",") != "08:00,20:00" {
			t.Fatalf("expected sorted times, got %v", out[0].ReminderTimes)
		}
		if out[0].DaysLabel != "every day" {
			t.Fatalf("unexpected days label %q", out[0].DaysLabel)
		}
	}

	// 5) Parámetro inválido => 400
	{
		st, _ := doReq(t, ts.URL, "GET", "/v1/families/7/medications?active=maybe", userID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 on bad active flag, got %d", st)
		}
	}
}

func TestHTTP_ScheduleEvaluate(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/v1/schedules/evaluate", "", map[string]any{
		"start_date":     "2024-03-01",
		"end_date":       "2024-03-31",
		"reminder_days":  []int{0, 2, 4},
		"reminder_times": []string{"21:00", "08:00"},
		"reference_date": "2024-03-04",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 evaluate, got %d body=%s", st, string(body))
	}
	var out struct {
		IsActive       bool     `json:"is_active"`
		ScheduledOnDay bool     `json:"scheduled_on_day"`
		SortedTimes    []string `json:"sorted_times"`
	}
	mustJSON(t, body, &out)
	// 2024-03-04 es lunes.
	if !out.IsActive || !out.ScheduledOnDay {
		t.Fatalf("expected active and scheduled on monday: %+v", out)
	}
	if strings.Join(out.SortedTimes, ",") != "08:00,21:00" {
		t.Fatalf("unexpected times %v", out.SortedTimes)
	}

	st, _ = doReq(t, ts.URL, "POST", "/v1/schedules/validate", "", map[string]any{
		"start_date":     "2024-03-01",
		"reminder_days":  []int{1, 3},
		"reminder_times": []string{},
	})
	if st != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on invalid schedule, got %d", st)
	}
}

func TestHTTP_MetricsExposed(t *testing.T) {
	ts := newTestServer(t)

	_, _ = doReq(t, ts.URL, "GET", "/health", "", nil)
	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	if !bytes.Contains(body, []byte("saludhogar_http_requests_total")) {
		t.Fatalf("metrics output missing request counter")
	}
}

func mustJSON(t *testing.T, body []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		req.Header.Set("X-Debug-Session", "s-1")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}
