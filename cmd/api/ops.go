package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/config"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/database"
)

func migrateCmd(cfg func() *config.Config) *cobra.Command {
	var down, seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica (ou desfaz) as migrations do banco",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewDBConnection(cfg().DatabaseURL)
			if err != nil {
				return fmt.Errorf("falha ao conectar no banco: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(db, down); err != nil {
				return err
			}
			if seed && !down {
				return database.Seed(cmd.Context(), db)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "desfaz todas as migrations")
	cmd.Flags().BoolVar(&seed, "seed", false, "grava pipelines e planos padrão")
	return cmd
}

// remindCmd roda uma passada de lembretes; pensado para cron.
func remindCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Roda uma passada de lembretes de evento",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "events",
		Short: "Lembretes de 5, 3 e 1 dia",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.reminders.RunDailyReminders(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "two-hour",
		Short: "Lembrete de 2 horas para quem confirmou presença",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.reminders.RunTwoHourReminders(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	})

	return cmd
}

func cleanupCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Tarefas de limpeza",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "complimentary",
		Short: "Desativa negócios com cortesia vencida",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			output, err := a.cleanup.Execute(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(output)
		},
	})

	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
