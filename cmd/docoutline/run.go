package main

import (
	"github.com/spf13/cobra"
)

var (
	runInput   string
	runOutput  string
	runWorkers int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every PDF in the input directory once",
	Long: `Process every PDF in the input directory and write <name>.json for each
into the output directory. Existing JSON outputs are removed first unless
clean_output is false.

Examples:
  docoutline run
  docoutline run --input ./pdfs --output ./out
  docoutline run --workers 4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("input") {
			cfg.InputDir = runInput
		}
		if cmd.Flags().Changed("output") {
			cfg.OutputDir = runOutput
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = runWorkers
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runBatch(cmd, cfg, log)
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "input directory (overrides input_dir)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output directory (overrides output_dir)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 1, "documents processed concurrently (overrides workers)")
}
