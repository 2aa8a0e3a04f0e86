package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"saludhogar/internal/querycache"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	src   Source
	cache *querycache.Cache
}

func NewService(src Source, cache *querycache.Cache) *Service {
	if cache == nil {
		cache = querycache.New(nil, querycache.Options{})
	}
	return &Service{src: src, cache: cache}
}

// La bandeja es por usuario: la clave no puede compartirse entre sesiones.
func inboxKey(userID string) querycache.Key { return querycache.Key{"notifications", userID} }

// List devuelve la bandeja, más nuevas primero.
func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	items, err := querycache.Fetch(ctx, s.cache, inboxKey(userID), func(ctx context.Context) ([]Notification, error) {
		return s.src.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	out := make([]Notification, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	return out, nil
}

func UnreadCount(items []Notification) int {
	n := 0
	for _, it := range items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	_, err := querycache.Mutate(ctx, s.cache, inboxKey(userID),
		func(items []Notification) []Notification {
			return mapItems(items, func(n Notification) (Notification, bool) {
				if n.ID == id {
					n.IsRead = true
				}
				return n, true
			})
		},
		func(ctx context.Context) error { return s.src.MarkRead(ctx, id) })
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	_, err := querycache.Mutate(ctx, s.cache, inboxKey(userID),
		func(items []Notification) []Notification {
			return mapItems(items, func(n Notification) (Notification, bool) {
				n.IsRead = true
				return n, true
			})
		},
		s.src.MarkAllRead)
	return err
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	_, err := querycache.Mutate(ctx, s.cache, inboxKey(userID),
		func(items []Notification) []Notification {
			return mapItems(items, func(n Notification) (Notification, bool) {
				return n, n.ID != id
			})
		},
		func(ctx context.Context) error { return s.src.Delete(ctx, id) })
	return err
}

func (s *Service) DeleteAll(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	_, err := querycache.Mutate(ctx, s.cache, inboxKey(userID),
		func([]Notification) []Notification { return []Notification{} },
		s.src.DeleteAll)
	return err
}

func (s *Service) RegisterPushToken(ctx context.Context, t PushToken) error {
	t.Token = strings.TrimSpace(t.Token)
	t.Platform = strings.ToLower(strings.TrimSpace(t.Platform))
	if t.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if !validPlatforms[t.Platform] {
		return fmt.Errorf("%w: platform must be android, ios or web", ErrInvalidInput)
	}
	return s.src.RegisterPushToken(ctx, t)
}

// mapItems copia la lista aplicando fn; keep=false descarta el elemento.
func mapItems(items []Notification, fn func(Notification) (Notification, bool)) []Notification {
	out := make([]Notification, 0, len(items))
	for _, it := range items {
		if n, keep := fn(it); keep {
			out = append(out, n)
		}
	}
	return out
}
