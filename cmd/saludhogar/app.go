package main

import (
	"context"
	"fmt"
	"time"

	"saludhogar/internal/adapters/events/natssink"
	"saludhogar/internal/adapters/saludapi"
	"saludhogar/internal/adapters/storage/memory"
	"saludhogar/internal/adapters/storage/postgres"
	"saludhogar/internal/config"
	"saludhogar/internal/domain/reminders"
	"saludhogar/internal/platform/httpclient"
	"saludhogar/internal/platform/logger"
	"saludhogar/internal/platform/metrics"
	"saludhogar/internal/querycache"
	"saludhogar/internal/router"
	"saludhogar/internal/session"
)

// app reúne las dependencias compartidas por serve y remind.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	loc     *time.Location
	metrics *metrics.Metrics
	cache   *querycache.Cache
	api     *saludapi.Client
	svc     *router.Services

	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, loc: loc, metrics: metrics.New()}

	// Redis es opcional; sin REDIS_URL (o si no responde) la caché queda en memoria.
	var store querycache.Store = querycache.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := querycache.NewRedisStore(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, using memory cache", map[string]any{"error": err})
		} else {
			store = rs
			a.closers = append(a.closers, func() { _ = rs.Close() })
		}
	}
	a.cache = querycache.New(store, querycache.Options{TTL: cfg.CacheTTL, Log: log, Metrics: a.metrics})

	hc, err := httpclient.New(httpclient.Options{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.APITimeout,
		RateLimit:   cfg.APIRateLimitRPS,
		Burst:       cfg.APIRateLimitBurst,
		BreakerName: "saludhogar-api",
	})
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}
	a.api, err = saludapi.New(saludapi.Options{HTTP: hc, Metrics: a.metrics, Log: log, Location: loc})
	if err != nil {
		return nil, fmt.Errorf("saludapi: %w", err)
	}
	a.svc = router.NewServices(a.api, a.cache, loc)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// reminderLog: postgres si hay DB_DSN, si no memoria (se pierde al reiniciar).
func (a *app) reminderLog(ctx context.Context) (reminders.FiredLog, error) {
	if a.cfg.DBDSN == "" {
		a.log.Warn("DB_DSN not set, reminder log kept in memory", nil)
		return memory.NewReminderLog(), nil
	}
	db, err := postgres.Open(a.cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	a.closers = append(a.closers, func() { _ = db.Close() })

	rl := postgres.NewReminderLog(db)
	if err := rl.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("reminder log schema: %w", err)
	}
	return rl, nil
}

// reminderSink: NATS si hay NATS_URL; siempre deja rastro en el log.
func (a *app) reminderSink() (reminders.Sink, error) {
	logSink := reminders.LogSink{Log: a.log}
	if a.cfg.NATSURL == "" {
		return logSink, nil
	}
	ns, err := natssink.Connect(natssink.Config{URL: a.cfg.NATSURL, Subject: a.cfg.NATSSubject}, a.log)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	a.closers = append(a.closers, ns.Close)
	return reminders.MultiSink{ns, logSink}, nil
}

// startSession abre la sesión del agente con AGENT_EMAIL/AGENT_PASSWORD o
// adopta una sesión existente.
func (a *app) startSession(ctx context.Context, sessionID string) (*session.Session, error) {
	sess := session.New(a.api, a.svc.Families, a.cache, a.log)
	creds := session.Credentials{SessionID: sessionID}
	if a.cfg.HasAgentCredentials() {
		creds.Email = a.cfg.AgentEmail
		creds.Password = a.cfg.AgentPassword
	}
	if err := sess.Init(ctx, creds); err != nil {
		return nil, err
	}
	return sess, nil
}

// newReminderJob arma el agente y devuelve el job que corre una pasada con
// la sesión dada.
func (a *app) newReminderJob(ctx context.Context, sess *session.Session) (reminders.Job, error) {
	firedLog, err := a.reminderLog(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := a.reminderSink()
	if err != nil {
		return nil, err
	}
	agent, err := reminders.NewAgent(reminders.Options{
		Families:     a.svc.Families,
		Medications:  a.svc.Medications,
		Appointments: a.svc.Appointments,
		Log:          firedLog,
		Sink:         sink,
		Logger:       a.log,
		Metrics:      a.metrics,
		Location:     a.loc,
		Lookahead:    a.cfg.AppointmentLookahead,
		Window:       a.cfg.ReminderWindow,
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		user, err := sess.User()
		if err != nil {
			return err
		}
		_, err = agent.Tick(sess.Context(ctx), user.UserID)
		return err
	}, nil
}

// startRunner programa el job según REMINDER_CRON.
func (a *app) startRunner(ctx context.Context, sess *session.Session) (*reminders.Runner, error) {
	job, err := a.newReminderJob(ctx, sess)
	if err != nil {
		return nil, err
	}
	runner, err := reminders.NewRunner(a.cfg.ReminderCron, a.loc, job, a.log)
	if err != nil {
		return nil, err
	}
	runner.Start(ctx)
	return runner, nil
}
