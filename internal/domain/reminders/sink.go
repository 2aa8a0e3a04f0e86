package reminders

import (
	"context"
	"errors"

	"saludhogar/internal/platform/logger"
)

// Sink recibe las decisiones; la entrega al usuario la hace el backend.
type Sink interface {
	Publish(ctx context.Context, d Decision) error
}

type LogSink struct {
	Log logger.Logger
}

func (s LogSink) Publish(_ context.Context, d Decision) error {
	log := s.Log
	if log == nil {
		log = logger.Nop()
	}
	log.Info("reminder", map[string]any{
		"id":          d.ID.String(),
		"key":         d.Key,
		"type":        string(d.Type),
		"family_id":   d.FamilyID,
		"entity_type": d.RelatedEntityType,
		"entity_id":   d.RelatedEntityID,
		"due_at":      d.DueAt,
		"message":     d.Message,
	})
	return nil
}

// MultiSink publica en todos; devuelve los errores combinados.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, d Decision) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
