package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Extract titles and heading outlines from PDFs",
	Long: `docoutline reads every PDF in an input directory and writes one JSON file
per document containing its title and an H1/H2/H3 outline with page numbers.

Headings are found from font sizes alone: the three largest size groups
become H1, H2 and H3.

Running docoutline without a subcommand processes the configured input
directory once, the same as "docoutline run".`,
	Version:      GitRelease,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		return runBatch(cmd, cfg, log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./docoutline.yaml or ~/.docoutline/docoutline.yaml)",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads and validates configuration and builds the logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, cfg.Logger(os.Stdout), nil
}

func newExtractor(cfg config.Config) *outline.Extractor {
	return outline.NewExtractor(outline.Options{
		ClusterTolerance: cfg.Extract.ClusterTolerance,
		TitleTolerance:   cfg.Extract.TitleTolerance,
		MaxLevels:        cfg.Extract.MaxLevels,
	})
}

func newParsers(cfg config.Config) pipeline.ParserFactory {
	return pipeline.DefaultParsers(parser.Options{FallbackMutool: cfg.PDF.FallbackMutool})
}

func newRunner(cfg config.Config, log *slog.Logger) *pipeline.Runner {
	return pipeline.NewRunner(pipeline.RunConfig{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
		Clean:     cfg.CleanOutput,
		Preflight: cfg.PDF.Preflight,
		Validate:  cfg.Output.Validate,
	}, newParsers(cfg), newExtractor(cfg), log)
}

// runBatch processes the input directory once. Individual document failures
// are logged and reported but do not fail the command.
func runBatch(cmd *cobra.Command, cfg config.Config, log *slog.Logger) error {
	rep, err := newRunner(cfg, log).Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "processed %d documents (%d failed) into %s\n",
		len(rep.Documents), rep.Failed(), cfg.OutputDir)
	return nil
}
