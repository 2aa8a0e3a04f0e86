package saludapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"saludhogar/internal/domain/notifications"
	"saludhogar/internal/platform/flexid"
)

type notificationDTO struct {
	ID                flexid.ID `json:"id"`
	UserID            flexid.ID `json:"user_id"`
	Type              string    `json:"type"`
	Message           string    `json:"message"`
	RelatedEntityType string    `json:"related_entity_type"`
	RelatedEntityID   flexid.ID `json:"related_entity_id"`
	IsRead            bool      `json:"is_read"`
	CreatedAt         string    `json:"created_at"`
}

func (c *Client) notificationToDomain(n notificationDTO) notifications.Notification {
	out := notifications.Notification{
		ID:                n.ID.String(),
		UserID:            n.UserID.String(),
		Type:              notifications.Type(n.Type),
		Message:           n.Message,
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID.String(),
		IsRead:            n.IsRead,
	}
	if t, err := parseTimestamp(n.CreatedAt, c.loc); err == nil {
		out.CreatedAt = t
	}
	return out
}

// parseTimestamp acepta RFC3339 o el isoformat sin zona de la API.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999", s, loc)
}

// Notifications implementa notifications.Source.
type Notifications struct{ c *Client }

func (c *Client) Notifications() *Notifications { return &Notifications{c: c} }

func notificationPath(rest ...string) string {
	p := "/notifications"
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

func (n *Notifications) List(ctx context.Context) ([]notifications.Notification, error) {
	var raw []notificationDTO
	if _, err := n.c.call(ctx, "notifications.list", http.MethodGet, notificationPath(), nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]notifications.Notification, 0, len(raw))
	for _, r := range raw {
		out = append(out, n.c.notificationToDomain(r))
	}
	return out, nil
}

func (n *Notifications) MarkRead(ctx context.Context, id string) error {
	_, err := n.c.call(ctx, "notifications.mark_read", http.MethodPost, notificationPath(id, "mark-read"), nil, nil, nil)
	return err
}

func (n *Notifications) MarkAllRead(ctx context.Context) error {
	_, err := n.c.call(ctx, "notifications.mark_all_read", http.MethodPost, notificationPath("mark-all-read"), nil, nil, nil)
	return err
}

func (n *Notifications) Delete(ctx context.Context, id string) error {
	_, err := n.c.call(ctx, "notifications.delete", http.MethodDelete, notificationPath(id), nil, nil, nil)
	return err
}

func (n *Notifications) DeleteAll(ctx context.Context) error {
	_, err := n.c.call(ctx, "notifications.delete_all", http.MethodDelete, notificationPath(), nil, nil, nil)
	return err
}

func (n *Notifications) RegisterPushToken(ctx context.Context, t notifications.PushToken) error {
	body := map[string]string{"token": t.Token, "platform": t.Platform}
	_, err := n.c.call(ctx, "notifications.push_token", http.MethodPost, notificationPath("push-tokens"), nil, body, nil)
	return err
}
