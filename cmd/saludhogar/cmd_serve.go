package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"saludhogar/internal/adapters/saludapi"
	"saludhogar/internal/domain/reminders"
	"saludhogar/internal/ports/auth"
	"saludhogar/internal/router"
)

var serveWithReminders bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta la API compañera",
	Long: `Levanta la API HTTP con las vistas derivadas (medicamentos vigentes, agenda,
vacunas pendientes, historial) sobre la API de SaludHogar.

Con --reminders y credenciales de agente también corre el agente de
recordatorios en segundo plano.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWithReminders, "reminders", false, "Run the reminder agent alongside the API")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var verifier auth.AuthVerifier
	if !a.cfg.IsDev() {
		verifier = saludapi.NewVerifier(a.api)
	} else {
		a.log.Warn("development mode: X-Debug-User-ID accepted without verification", nil)
	}

	if serveWithReminders {
		runner, err := startReminderRunner(ctx, a)
		if err != nil {
			return err
		}
		defer runner.Stop()
	}

	srv := &http.Server{
		Addr: a.cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			AuthVerifier:   verifier,
			Services:       a.svc,
			Metrics:        a.metrics,
			Location:       a.loc,
			SwaggerEnabled: a.cfg.SwaggerEnabled,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", map[string]any{"addr": srv.Addr, "env": a.cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func startReminderRunner(ctx context.Context, a *app) (*reminders.Runner, error) {
	if !a.cfg.HasAgentCredentials() {
		return nil, errors.New("--reminders requires AGENT_EMAIL and AGENT_PASSWORD")
	}
	sess, err := a.startSession(ctx, "")
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sess.Teardown(tctx)
	})

	return a.startRunner(ctx, sess)
}
