package main

import (
	"os"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/config"
)

func main() {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "portal",
		Short:         "API, worker e tarefas agendadas do portal Mulheres em Convergência",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			loaded.SetupLogger()
			cfg = loaded
			return nil
		},
	}

	cfgFn := func() *config.Config { return cfg }

	root.AddCommand(serveCmd(cfgFn))
	root.AddCommand(workerCmd(cfgFn))
	root.AddCommand(migrateCmd(cfgFn))
	root.AddCommand(remindCmd(cfgFn))
	root.AddCommand(cleanupCmd(cfgFn))

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("❌ comando falhou")
		os.Exit(1)
	}
}
