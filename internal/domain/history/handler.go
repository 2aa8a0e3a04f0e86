package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"saludhogar/internal/domain/families"
	"saludhogar/internal/middleware"
	"saludhogar/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

type FamilyGuard interface {
	RequireMember(ctx context.Context, userID, familyID string) error
}

func RegisterRoutes(r chi.Router, book *Book, guard FamilyGuard) {
	r.Route("/v1/families/{familyID}/members/{memberID}/history", func(hr chi.Router) {
		hr.Get("/", summaryHandler(book, guard))
		mountSection(hr, book.Allergies, guard)
		mountSection(hr, book.Conditions, guard)
		mountSection(hr, book.Surgeries, guard)
		mountSection(hr, book.Hospitalizations, guard)
	})

	r.Route("/v1/families/{familyID}/history", func(fr chi.Router) {
		fr.Get("/", listEntriesHandler(book.Family, guard))
		fr.Post("/", createEntryHandler(book.Family, guard))
		fr.Patch("/{entryID}", updateEntryHandler(book.Family, guard))
		fr.Delete("/{entryID}", deleteEntryHandler(book.Family, guard))
	})
}

func mountSection[T Entry](r chi.Router, sec *Section[T], guard FamilyGuard) {
	r.Route("/"+string(sec.Kind()), func(sr chi.Router) {
		sr.Get("/", listEntriesHandler(sec, guard))
		sr.Post("/", createEntryHandler(sec, guard))
		sr.Get("/{entryID}", getEntryHandler(sec, guard))
		sr.Patch("/{entryID}", updateEntryHandler(sec, guard))
		sr.Delete("/{entryID}", deleteEntryHandler(sec, guard))
	})
}

// summaryHandler godoc
// @Summary Historia clínica completa del integrante
// @Tags history
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param memberID path string true "ID de integrante"
// @Success 200 {object} Summary
// @Router /v1/families/{familyID}/members/{memberID}/history [get]
func summaryHandler(book *Book, guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		out, err := book.Summary(r.Context(), scope)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listEntriesHandler godoc
// @Summary Entradas de una sección (allergies, conditions, surgeries, hospitalizations) o antecedentes familiares
// @Tags history
// @Produce json
// @Param familyID path string true "ID de familia"
// @Param memberID path string true "ID de integrante"
// @Router /v1/families/{familyID}/members/{memberID}/history/{section} [get]
// @Router /v1/families/{familyID}/history [get]
func listEntriesHandler[T Entry](sec *Section[T], guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		items, err := sec.List(r.Context(), scope)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func getEntryHandler[T Entry](sec *Section[T], guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		e, err := sec.Get(r.Context(), scope, chi.URLParam(r, "entryID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// createEntryHandler godoc
// @Summary Alta de entrada de historia clínica
// @Tags history
// @Accept json
// @Produce json
// @Router /v1/families/{familyID}/members/{memberID}/history/{section} [post]
// @Router /v1/families/{familyID}/history [post]
func createEntryHandler[T Entry](sec *Section[T], guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		var e T
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		created, err := sec.Create(r.Context(), scope, e)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateEntryHandler[T Entry](sec *Section[T], guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		var e T
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		updated, err := sec.Update(r.Context(), scope, chi.URLParam(r, "entryID"), e)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteEntryHandler[T Entry](sec *Section[T], guard FamilyGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := authorize(w, r, guard)
		if !ok {
			return
		}
		if err := sec.Delete(r.Context(), scope, chi.URLParam(r, "entryID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func authorize(w http.ResponseWriter, r *http.Request, guard FamilyGuard) (Scope, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Scope{}, false
	}
	scope := Scope{
		FamilyID: chi.URLParam(r, "familyID"),
		MemberID: chi.URLParam(r, "memberID"),
	}
	if err := guard.RequireMember(r.Context(), claims.UserID, scope.FamilyID); err != nil {
		writeError(w, err)
		return Scope{}, false
	}
	return scope, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, families.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
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
