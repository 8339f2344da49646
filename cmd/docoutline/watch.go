package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process the input directory, then keep outputs in sync with it",
	Long: `Run one batch, then watch the input directory. New or changed PDFs are
processed after a short quiet period; removing a PDF removes its JSON.
Stops on Ctrl+C or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		runner := newRunner(cfg, log)
		rep, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("initial batch complete", "documents", len(rep.Documents), "failed", rep.Failed())

		return pipeline.NewWatcher(runner, log).Watch(cmd.Context())
	},
}
