package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"saludhogar/internal/domain/reminders"
)

// ReminderLog guarda en memoria las claves de recordatorios emitidos.
// Se pierde al reiniciar; para varias réplicas usar el de postgres.
type ReminderLog struct {
	mu    sync.RWMutex
	byKey map[string]reminders.Decision
}

func NewReminderLog() *ReminderLog {
	return &ReminderLog{byKey: make(map[string]reminders.Decision)}
}

func (l *ReminderLog) Seen(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byKey[key]
	return ok, nil
}

func (l *ReminderLog) Record(_ context.Context, d reminders.Decision) error {
	if strings.TrimSpace(d.Key) == "" {
		return errors.New("reminder key required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.byKey[d.Key]; exists {
		return nil
	}
	l.byKey[d.Key] = d
	return nil
}

// Recent devuelve las decisiones registradas, más nuevas primero.
func (l *ReminderLog) Recent(limit int) []reminders.Decision {
	l.mu.RLock()
	out := make([]reminders.Decision, 0, len(l.byKey))
	for _, d := range l.byKey {
		out = append(out, d)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[j].CreatedAt.Before(out[i].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Prune borra lo anterior a before (por DueAt).
func (l *ReminderLog) Prune(_ context.Context, before time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, d := range l.byKey {
		if d.DueAt.Before(before) {
			delete(l.byKey, k)
			n++
		}
	}
	return n, nil
}
