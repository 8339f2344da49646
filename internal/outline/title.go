package outline

import (
	"math"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DefaultTitleTolerance is how close a span's size must be to the page maximum
// to count as "largest".
const DefaultTitleTolerance = 0.01

// ResolveTitle picks the document title. A meaningful metadata title wins;
// otherwise the topmost of the largest meaningful spans on the first page.
func ResolveTitle(metadataTitle string, firstPage []doctree.TextSpan) string {
	return resolveTitle(metadataTitle, firstPage, DefaultTitleTolerance)
}

func resolveTitle(metadataTitle string, firstPage []doctree.TextSpan, tolerance float64) string {
	if IsMeaningful(metadataTitle) {
		return strings.TrimSpace(metadataTitle)
	}

	candidates := make([]doctree.TextSpan, 0, len(firstPage))
	maxSize := math.Inf(-1)
	for _, s := range firstPage {
		if !IsMeaningful(s.Text) {
			continue
		}
		candidates = append(candidates, s)
		if s.FontSize > maxSize {
			maxSize = s.FontSize
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	var best *doctree.TextSpan
	for i := range candidates {
		s := &candidates[i]
		if math.Abs(s.FontSize-maxSize) > tolerance {
			continue
		}
		// Strict comparison keeps the earliest span on equal Y.
		if best == nil || s.Y < best.Y {
			best = s
		}
	}
	return strings.TrimSpace(best.Text)
}
