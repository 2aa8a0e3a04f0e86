package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"saludhogar/internal/adapters/storage/postgres"
	"saludhogar/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Crea la tabla del registro de recordatorios en Postgres",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}

	db, err := postgres.Open(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.NewReminderLog(db).EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "reminder_log ready")
	return nil
}
