package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/render"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Render the outline of one PDF as JSON, Markdown, HTML or DOCX",
	Long: `Extract one PDF and write its outline in the chosen format.

The output defaults to <name>.<ext> in the current directory; use -o - to
write to stdout.

Examples:
  docoutline export report.pdf --format md
  docoutline export report.pdf --format docx -o outline.docx
  docoutline export report.pdf --format html -o -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		renderer, err := render.ForFormat(exportFormat)
		if err != nil {
			return err
		}

		path := args[0]
		res, err := newRunner(cfg, log).ProcessFile(cmd.Context(), path)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := renderer.Render(&buf, res); err != nil {
			return fmt.Errorf("render %s: %w", exportFormat, err)
		}

		out := exportOut
		if out == "" {
			out = parser.Stem(path) + renderer.Ext()
		}
		if out == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		log.Info("exported", "input", path, "output", out, "format", exportFormat)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json, md, html or docx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <name>.<ext>, - for stdout)")
}
