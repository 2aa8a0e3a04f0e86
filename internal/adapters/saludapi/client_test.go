package saludapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saludhogar/internal/domain/history"
	"saludhogar/internal/domain/medications"
	"saludhogar/internal/medschedule"
	"saludhogar/internal/platform/httpclient"
	"saludhogar/internal/ports/auth"
)

type recorded struct {
	method string
	path   string
	query  string
	cookie string
	body   map[string]any
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if ck, err := r.Cookie(CookieName); err == nil {
			rec.cookie = ck.Value
		}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	hc, err := httpclient.New(httpclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	c, err := New(Options{HTTP: hc})
	require.NoError(t, err)
	return c, &calls
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestLoginAndVerify(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "s-123"})
			writeBody(w, `{"msg":"Login successful"}`)
		case "/auth/me":
			if ck, err := r.Cookie(CookieName); err != nil || ck.Value != "s-123" {
				http.Error(w, "no session", http.StatusUnauthorized)
				return
			}
			writeBody(w, `{"id":42,"email":"ana@example.com"}`)
		}
	})
	ctx := context.Background()

	sid, err := c.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "s-123", sid)
	assert.Equal(t, "secret", (*calls)[0].body["password"])

	claims, err := NewVerifier(c).Verify(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "s-123", claims.SessionID)

	_, err = NewVerifier(c).Verify(ctx, "other")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_NoCookie(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{}`)
	})
	_, err := c.Login(context.Background(), "ana@example.com", "secret")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMedications_ListDecodesAndForwardsSession(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[{
			"id": 7, "member_id": 3, "name": "Ibuprofeno", "dosage": "400 mg",
			"start_date": "2025-03-01", "end_date": null,
			"reminder_times": ["20:00:00", "08:00", "bad"],
			"reminder_days": [0, 2, 9],
			"created_at": "2025-03-01T10:00:00.123456"
		}]`)
	})
	ctx := auth.WithSession(context.Background(), "s-1")
	active := true

	items, err := c.Medications().List(ctx, "5", medications.Filter{Active: &active, Limit: 3})
	require.NoError(t, err)
	require.Len(t, items, 1)

	m := items[0]
	assert.Equal(t, "7", m.ID)
	assert.Equal(t, "3", m.MemberID)
	assert.Equal(t, "5", m.FamilyID)
	assert.Nil(t, m.EndDate)
	require.NotNil(t, m.StartDate)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *m.StartDate)
	assert.Equal(t, []medschedule.TimeOfDay{{Hour: 20}, {Hour: 8}}, m.ReminderTimes)
	assert.Equal(t, medschedule.MustDaySet(0, 2), m.ReminderDays)

	rec := (*calls)[0]
	assert.Equal(t, "/families/5/medications", rec.path)
	assert.Equal(t, "active=true&limit=3", rec.query)
	assert.Equal(t, "s-1", rec.cookie)
}

func TestMedications_CreatePayload(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		writeBody(w, `{"id": 8, "member_id": 3, "name": "Vitamina D", "dosage": "1 gota", "start_date": "2025-03-01"}`)
	})
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.Medications().Create(context.Background(), "5", medications.Input{
		MemberID:      "3",
		Name:          "Vitamina D",
		Dosage:        "1 gota",
		StartDate:     &start,
		ReminderTimes: []medschedule.TimeOfDay{{Hour: 9}},
		ReminderDays:  medschedule.MustDaySet(6, 0),
	})
	require.NoError(t, err)

	body := (*calls)[0].body
	assert.Equal(t, float64(3), body["member_id"])
	assert.Equal(t, "2025-03-01", body["start_date"])
	assert.Nil(t, body["end_date"])
	assert.Equal(t, []any{"09:00"}, body["reminder_times"])
	assert.Equal(t, []any{float64(0), float64(6)}, body["reminder_days"])
}

func TestHistorySource_Paths(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeBody(w, `[{"id": 1, "name": "Penicilina", "is_severe": true}]`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()
	src := c.HistorySources()

	items, err := src.Allergies.List(ctx, history.Scope{FamilyID: "5", MemberID: "3"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].EntryID())
	assert.True(t, items[0].IsSevere)

	require.NoError(t, src.Family.Delete(ctx, history.Scope{FamilyID: "5"}, "9"))

	assert.Equal(t, "/families/5/members/3/allergies", (*calls)[0].path)
	assert.Equal(t, "/families/5/history/9", (*calls)[1].path)
}

func TestNotifications_MarkReadPath(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Notifications().MarkRead(context.Background(), "12"))
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
	assert.Equal(t, "/notifications/12/mark-read", (*calls)[0].path)
}

func TestUpstreamErrorsKeepStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	_, err := c.Families().ListMembers(context.Background(), "5")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpclient.ResponseStatus(err))
}
