package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"saludhogar/internal/platform/logger"
)

// Job es lo que corre el Runner en cada disparo (login del agente + Tick).
type Job func(ctx context.Context) error

// Runner agenda el Job con una expresión cron ("@every 1m", "*/5 * * * *").
// Una ejecución lenta no se solapa con la siguiente.
type Runner struct {
	c   *cron.Cron
	job Job
	log logger.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func NewRunner(spec string, loc *time.Location, job Job, log logger.Logger) (*Runner, error) {
	if job == nil {
		return nil, fmt.Errorf("reminders: nil job")
	}
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	r := &Runner{c: c, job: job, log: log}
	if _, err := c.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("reminders: invalid schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start arranca el scheduler; ctx cancela las ejecuciones en curso.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.running = true
	r.c.Start()
	r.log.Info("reminder runner started", nil)
}

// Stop espera a que termine la ejecución en curso.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	done := r.c.Stop()
	cancel()
	<-done.Done()
	r.log.Info("reminder runner stopped", nil)
}

func (r *Runner) run() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.job(ctx); err != nil {
		r.log.Error("reminder job failed", map[string]any{"error": err})
	}
}

// cronLogger adapta logger.Logger a cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kv(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	f := kv(keysAndValues)
	f["error"] = err
	l.log.Error("cron: "+msg, f)
}

func kv(pairs []interface{}) map[string]any {
	out := make(map[string]any, len(pairs)/2+1)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return out
}
