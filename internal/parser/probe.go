package parser

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Probe reads the cross-reference structure with pdfcpu and returns the page
// count. It rejects files that are not PDFs or are damaged beyond what the
// span collector should be handed.
func Probe(rs io.ReadSeeker) (int, error) {
	n, err := api.PageCount(rs, nil)
	if err != nil {
		return 0, fmt.Errorf("probe pdf: %w", err)
	}
	return n, nil
}
