package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "saludhogar",
	Short: "SaludHogar - calendarios de medicación y recordatorios familiares",
	Long: "Cliente de la API de SaludHogar: expone una API compañera con vistas derivadas, " +
		"corre el agente de recordatorios y evalúa calendarios de medicación sin conexión.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, remindCmd, scheduleCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
