package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"saludhogar/internal/middleware"
	"saludhogar/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/v1/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(svc))
		nr.Delete("/", deleteAllHandler(svc))
		nr.Post("/read-all", markAllReadHandler(svc))
		nr.Post("/push-tokens", registerPushTokenHandler(svc))
		nr.Post("/{notificationID}/read", markReadHandler(svc))
		nr.Delete("/{notificationID}", deleteNotificationHandler(svc))
	})
}

type notificationResponse struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Message           string    `json:"message"`
	RelatedEntityType string    `json:"related_entity_type,omitempty"`
	RelatedEntityID   string    `json:"related_entity_id,omitempty"`
	IsRead            bool      `json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
}

type inboxResponse struct {
	Unread int                    `json:"unread"`
	Items  []notificationResponse `json:"items"`
}

type pushTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// listNotificationsHandler godoc
// @Summary Bandeja de notificaciones del usuario
// @Tags notifications
// @Produce json
// @Success 200 {object} inboxResponse
// @Router /v1/notifications [get]
func listNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		items, err := svc.List(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := inboxResponse{Unread: UnreadCount(items), Items: make([]notificationResponse, 0, len(items))}
		for _, n := range items {
			out.Items = append(out.Items, notificationResponse{
				ID:                n.ID,
				Type:              string(n.Type),
				Message:           n.Message,
				RelatedEntityType: n.RelatedEntityType,
				RelatedEntityID:   n.RelatedEntityID,
				IsRead:            n.IsRead,
				CreatedAt:         n.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// markReadHandler godoc
// @Summary Marcar notificación como leída
// @Tags notifications
// @Param notificationID path string true "ID de notificación"
// @Success 204
// @Router /v1/notifications/{notificationID}/read [post]
func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := svc.MarkRead(r.Context(), userID, chi.URLParam(r, "notificationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// markAllReadHandler godoc
// @Summary Marcar todas como leídas
// @Tags notifications
// @Success 204
// @Router /v1/notifications/read-all [post]
func markAllReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := svc.MarkAllRead(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// deleteNotificationHandler godoc
// @Summary Borrar notificación
// @Tags notifications
// @Param notificationID path string true "ID de notificación"
// @Success 204
// @Router /v1/notifications/{notificationID} [delete]
func deleteNotificationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), userID, chi.URLParam(r, "notificationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// deleteAllHandler godoc
// @Summary Vaciar bandeja
// @Tags notifications
// @Success 204
// @Router /v1/notifications [delete]
func deleteAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteAll(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// registerPushTokenHandler godoc
// @Summary Registrar token push del dispositivo
// @Tags notifications
// @Accept json
// @Param body body pushTokenRequest true "Token"
// @Success 204
// @Router /v1/notifications/push-tokens [post]
func registerPushTokenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(w, r); !ok {
			return
		}
		var req pushTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := svc.RegisterPushToken(r.Context(), PushToken{Token: req.Token, Platform: req.Platform}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := httpclient.ResponseStatus(err)
	http.Error(w, http.StatusText(st), st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
