package saludapi

import (
	"context"
	"net/http"

	"saludhogar/internal/domain/history"
)

// HistorySource implementa history.Source[T] para una sección. Las entradas
// ya tienen el formato JSON de la API, no hay DTO intermedio.
type HistorySource[T history.Entry] struct {
	c    *Client
	kind history.Kind
}

func NewHistorySource[T history.Entry](c *Client, kind history.Kind) *HistorySource[T] {
	return &HistorySource[T]{c: c, kind: kind}
}

// HistorySources arma los cinco adaptadores de historia clínica.
func (c *Client) HistorySources() history.Sources {
	return history.Sources{
		Allergies:        NewHistorySource[history.Allergy](c, history.KindAllergies),
		Conditions:       NewHistorySource[history.Condition](c, history.KindConditions),
		Surgeries:        NewHistorySource[history.Surgery](c, history.KindSurgeries),
		Hospitalizations: NewHistorySource[history.Hospitalization](c, history.KindHospitalizations),
		Family:           NewHistorySource[history.FamilyCondition](c, history.KindFamilyHistory),
	}
}

func (h *HistorySource[T]) path(scope history.Scope, id string) string {
	var parts []string
	if scope.MemberID != "" {
		parts = append(parts, "members", scope.MemberID)
	}
	parts = append(parts, string(h.kind))
	if id != "" {
		parts = append(parts, id)
	}
	return familyPath(scope.FamilyID, parts...)
}

func (h *HistorySource[T]) op(action string) string {
	return "history." + string(h.kind) + "." + action
}

func (h *HistorySource[T]) List(ctx context.Context, scope history.Scope) ([]T, error) {
	var out []T
	if _, err := h.c.call(ctx, h.op("list"), http.MethodGet, h.path(scope, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (h *HistorySource[T]) Create(ctx context.Context, scope history.Scope, e T) (T, error) {
	var out T
	if _, err := h.c.call(ctx, h.op("create"), http.MethodPost, h.path(scope, ""), nil, e, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (h *HistorySource[T]) Update(ctx context.Context, scope history.Scope, id string, e T) (T, error) {
	var out T
	if _, err := h.c.call(ctx, h.op("update"), http.MethodPatch, h.path(scope, id), nil, e, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (h *HistorySource[T]) Delete(ctx context.Context, scope history.Scope, id string) error {
	_, err := h.c.call(ctx, h.op("delete"), http.MethodDelete, h.path(scope, id), nil, nil, nil)
	return err
}
