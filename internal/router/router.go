package router

import (
	"net/http"
	"time"

	"saludhogar/internal/adapters/saludapi"
	"saludhogar/internal/domain/appointments"
	"saludhogar/internal/domain/families"
	"saludhogar/internal/domain/history"
	"saludhogar/internal/domain/medications"
	"saludhogar/internal/domain/notifications"
	"saludhogar/internal/domain/vaccinations"
	"saludhogar/internal/middleware"
	"saludhogar/internal/platform/metrics"
	"saludhogar/internal/ports/auth"
	"saludhogar/internal/querycache"

	_ "saludhogar/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services agrupa los servicios de dominio; los comparten la API y el agente
// de recordatorios.
type Services struct {
	Families      *families.Service
	Medications   *medications.Service
	Appointments  *appointments.Service
	Vaccinations  *vaccinations.Service
	History       *history.Book
	Notifications *notifications.Service
}

// NewServices arma los servicios sobre la API de SaludHogar.
func NewServices(api *saludapi.Client, cache *querycache.Cache, loc *time.Location) *Services {
	return &Services{
		Families:      families.NewService(api.Families(), cache),
		Medications:   medications.NewService(api.Medications(), cache, loc),
		Appointments:  appointments.NewService(api.Appointments(), cache, loc),
		Vaccinations:  vaccinations.NewService(api.Vaccinations(), cache, loc),
		History:       history.NewBook(api.HistorySources(), cache),
		Notifications: notifications.NewService(api.Notifications(), cache),
	}
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	Services *Services
	Metrics  *metrics.Metrics // opcional
	Location *time.Location

	SwaggerEnabled bool
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	// El evaluador no depende de la API upstream.
	medications.RegisterScheduleRoutes(r, loc)

	svc := opts.Services
	if svc == nil {
		return r
	}

	// Rutas por módulo; familias es el guard de pertenencia de las demás.
	families.RegisterRoutes(r, svc.Families)
	medications.RegisterRoutes(r, svc.Medications, svc.Families)
	appointments.RegisterRoutes(r, svc.Appointments, svc.Families)
	vaccinations.RegisterRoutes(r, svc.Vaccinations, svc.Families)
	history.RegisterRoutes(r, svc.History, svc.Families)
	notifications.RegisterRoutes(r, svc.Notifications)

	return r
}
