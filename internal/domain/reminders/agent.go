package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"saludhogar/internal/domain/appointments"
	"saludhogar/internal/domain/families"
	"saludhogar/internal/domain/medications"
	"saludhogar/internal/domain/notifications"
	"saludhogar/internal/medschedule"
	"saludhogar/internal/platform/logger"
	"saludhogar/internal/platform/metrics"
)

const (
	DefaultLookahead = 24 * time.Hour
	DefaultWindow    = time.Hour
)

type FamilyLister interface {
	ListForUser(ctx context.Context, userID string) ([]families.Family, error)
	MemberNames(ctx context.Context, familyID string) (map[string]string, error)
}

type MedicationLister interface {
	List(ctx context.Context, familyID string, f medications.Filter) ([]medications.Medication, error)
}

type AppointmentLister interface {
	List(ctx context.Context, familyID string) ([]appointments.Appointment, error)
}

type Options struct {
	Families     FamilyLister
	Medications  MedicationLister
	Appointments AppointmentLister
	Log          FiredLog
	Sink         Sink
	Logger       logger.Logger
	Metrics      *metrics.Metrics

	Location  *time.Location
	Lookahead time.Duration
	// Window es cuánto mira hacia atrás la primera pasada de un agente nuevo
	// (reinicio, remind --once). Debe cubrir el intervalo entre ejecuciones;
	// la bitácora evita repetir lo ya enviado.
	Window time.Duration
}

// Agent decide qué recordatorios corresponden en cada pasada.
type Agent struct {
	opts Options
	now  func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

func NewAgent(opts Options) (*Agent, error) {
	if opts.Families == nil || opts.Medications == nil || opts.Appointments == nil {
		return nil, errors.New("reminders: families, medications and appointments are required")
	}
	if opts.Log == nil {
		return nil, errors.New("reminders: fired log is required")
	}
	if opts.Sink == nil {
		opts.Sink = LogSink{Log: opts.Logger}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	return &Agent{opts: opts, now: time.Now}, nil
}

// Tick corre una pasada con la hora actual.
func (a *Agent) Tick(ctx context.Context, userID string) (Report, error) {
	return a.Sweep(ctx, userID, a.now())
}

// Sweep evalúa medicamentos con recordatorio en (última pasada, now] y citas
// en (now, now+lookahead]. Una familia que falla no corta las demás.
func (a *Agent) Sweep(ctx context.Context, userID string, now time.Time) (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now = now.In(a.opts.Location)
	from := a.lastRun
	if from.IsZero() || !from.Before(now) {
		from = now.Add(-a.opts.Window)
	}
	rep := Report{From: from, To: now}

	fams, err := a.opts.Families.ListForUser(ctx, userID)
	if err != nil {
		return rep, fmt.Errorf("list families: %w", err)
	}

	var errs []error
	for _, f := range fams {
		if err := a.sweepFamily(ctx, f.ID, from, now, &rep); err != nil {
			errs = append(errs, fmt.Errorf("family %s: %w", f.ID, err))
		}
	}

	a.lastRun = now
	a.opts.Logger.Info("reminder sweep", map[string]any{
		"from":       from,
		"to":         now,
		"families":   len(fams),
		"fired":      rep.Fired,
		"duplicates": rep.Duplicates,
		"errors":     rep.Errors,
	})
	return rep, errors.Join(errs...)
}

func (a *Agent) sweepFamily(ctx context.Context, familyID string, from, now time.Time, rep *Report) error {
	names, err := a.opts.Families.MemberNames(ctx, familyID)
	if err != nil {
		return err
	}

	meds, err := a.opts.Medications.List(ctx, familyID, medications.Filter{})
	if err != nil {
		return err
	}
	for _, m := range meds {
		for _, at := range medschedule.DueBetween(m.Schedule(), from, now) {
			a.emit(ctx, Decision{
				Key:               fmt.Sprintf("medication:%s:%s:%s", familyID, m.ID, at.UTC().Format(time.RFC3339)),
				Type:              notifications.TypeMedicationReminder,
				FamilyID:          familyID,
				MemberID:          m.MemberID,
				RelatedEntityType: "medication",
				RelatedEntityID:   m.ID,
				Message:           MedicationMessage(names[m.MemberID], m.Name, m.Dosage),
				DueAt:             at,
			}, now, rep)
		}
	}

	appts, err := a.opts.Appointments.List(ctx, familyID)
	if err != nil {
		return err
	}
	for _, ap := range appointments.Between(appts, now, now.Add(a.opts.Lookahead)) {
		at := ap.AppointmentDate.In(a.opts.Location)
		a.emit(ctx, Decision{
			Key:               fmt.Sprintf("appointment:%s:%s:%s", familyID, ap.ID, ap.AppointmentDate.UTC().Format(time.RFC3339)),
			Type:              notifications.TypeAppointmentReminder,
			FamilyID:          familyID,
			MemberID:          ap.MemberID,
			RelatedEntityType: "appointment",
			RelatedEntityID:   ap.ID,
			Message:           AppointmentMessage(names[ap.MemberID], ap.DoctorName, ap.Location, at),
			DueAt:             at,
		}, now, rep)
	}
	return nil
}

func (a *Agent) emit(ctx context.Context, d Decision, now time.Time, rep *Report) {
	kind := string(d.Type)

	seen, err := a.opts.Log.Seen(ctx, d.Key)
	if err != nil {
		a.fail(kind, d, err, rep)
		return
	}
	if seen {
		rep.Duplicates++
		a.opts.Metrics.ReminderDecision(kind, OutcomeDuplicate)
		return
	}

	d.ID = uuid.New()
	d.CreatedAt = now
	if err := a.opts.Sink.Publish(ctx, d); err != nil {
		a.fail(kind, d, err, rep)
		return
	}
	// Se registra después de publicar: si el registro falla, en la próxima
	// pasada puede repetirse, pero nunca se pierde.
	if err := a.opts.Log.Record(ctx, d); err != nil {
		a.opts.Logger.Warn("record reminder failed", map[string]any{"key": d.Key, "error": err})
	}
	rep.Fired++
	a.opts.Metrics.ReminderDecision(kind, OutcomeFired)
}

func (a *Agent) fail(kind string, d Decision, err error, rep *Report) {
	rep.Errors++
	a.opts.Metrics.ReminderDecision(kind, OutcomeError)
	a.opts.Logger.Error("reminder failed", map[string]any{"key": d.Key, "error": err})
}
