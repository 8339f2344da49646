package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

var inspectSpans bool

type inspectReport struct {
	File          string             `json:"file"`
	ProbePages    int                `json:"probe_pages"`
	ProbeError    string             `json:"probe_error,omitempty"`
	Pages         int                `json:"pages"`
	MetadataTitle string             `json:"metadata_title"`
	FontSizes     [][]float64        `json:"font_size_clusters"`
	Result        doctree.Result     `json:"result"`
	Spans         []doctree.TextSpan `json:"spans,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show what the extractor sees in one PDF",
	Long: `Print the pdfcpu page count, the metadata title, the font-size clusters
and the extracted result for one PDF as JSON. With --spans, every collected
text span is included.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		path := args[0]
		if !parser.IsSupportedExtension(path) {
			return fmt.Errorf("%w: %s", parser.ErrUnsupported, filepath.Ext(path))
		}

		rep := inspectReport{File: path}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		rep.ProbePages, err = parser.Probe(f)
		f.Close()
		if err != nil {
			rep.ProbeError = err.Error()
		}

		// Inspect reports probe problems instead of stopping on them.
		cfg.PDF.Preflight = false
		runner := newRunner(cfg, log)
		doc, err := runner.Collect(cmd.Context(), path)
		if err != nil {
			return err
		}
		rep.Pages = doc.PageCount()
		rep.MetadataTitle = doc.MetadataTitle

		ext := newExtractor(cfg)
		rep.Result = ext.Extract(doc).Normalized()

		var sizes []float64
		for _, s := range doc.Spans() {
			if outline.IsMeaningful(s.Text) {
				sizes = append(sizes, s.FontSize)
			}
		}
		for _, c := range ext.Clusters(sizes).All() {
			rep.FontSizes = append(rep.FontSizes, c.Members)
		}
		if inspectSpans {
			rep.Spans = doc.Spans()
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rep)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectSpans, "spans", false, "include every collected text span")
}
