// Package natssink publica decisiones de recordatorio en NATS para que el
// backend de notificaciones las entregue.
package natssink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"saludhogar/internal/domain/reminders"
	"saludhogar/internal/platform/logger"
)

const DefaultSubject = "saludhogar.reminders"

type Config struct {
	URL     string
	Subject string
	Name    string

	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// publisher es la parte de *nats.Conn que usa el sink.
type publisher interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

type Sink struct {
	pub     publisher
	conn    *nats.Conn
	subject string
	log     logger.Logger
}

func Connect(cfg Config, log logger.Logger) (*Sink, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("natssink: url required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Name == "" {
		cfg.Name = "saludhogar-reminders"
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", map[string]any{"error": err})
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", map[string]any{"url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("natssink: connect: %w", err)
	}

	s := newSink(nc, cfg.Subject, log)
	s.conn = nc
	return s, nil
}

func newSink(pub publisher, subject string, log logger.Logger) *Sink {
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sink{pub: pub, subject: subject, log: log}
}

// Subject por tipo: saludhogar.reminders.medication_reminder, etc.
func (s *Sink) subjectFor(d reminders.Decision) string {
	return s.subject + "." + strings.ToLower(string(d.Type))
}

func (s *Sink) Publish(ctx context.Context, d reminders.Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("natssink: marshal: %w", err)
	}
	msg := nats.NewMsg(s.subjectFor(d))
	msg.Data = data
	// El consumidor con JetStream deduplica por este header.
	msg.Header.Set(nats.MsgIdHdr, d.Key)

	if err := s.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("natssink: publish: %w", err)
	}
	if err := s.pub.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("natssink: flush: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	if s.conn != nil {
		_ = s.conn.Drain()
	}
}
