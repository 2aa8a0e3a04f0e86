package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	remindOnce    bool
	remindSession string
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Corre el agente de recordatorios",
	Long: `Evalúa medicamentos y citas de las familias del usuario y entrega cada
recordatorio una sola vez (NATS si NATS_URL está definido, si no al log).

Examples:
  # Una sola pasada con las credenciales del agente
  saludhogar remind --once

  # Adoptar una sesión ya emitida
  saludhogar remind --session=abc123
`,
	RunE: runRemind,
}

func init() {
	remindCmd.Flags().BoolVar(&remindOnce, "once", false, "Run a single sweep and exit")
	remindCmd.Flags().StringVar(&remindSession, "session", "", "Existing session id (used when no agent credentials are set)")
}

func runRemind(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.startSession(ctx, remindSession)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sess.Teardown(tctx)
	}()

	if remindOnce {
		job, err := a.newReminderJob(ctx, sess)
		if err != nil {
			return err
		}
		return job(ctx)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := a.startRunner(ctx, sess)
	if err != nil {
		return err
	}
	<-ctx.Done()
	runner.Stop()
	return nil
}
