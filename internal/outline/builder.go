package outline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// LevelFunc maps a font size to a heading level, or "" for body text.
type LevelFunc func(size float64) doctree.Level

type placedHeading struct {
	heading doctree.Heading
	y       float64
}

type headingKey struct {
	level doctree.Level
	text  string
	page  int
}

// BuildOutline classifies meaningful spans into headings, orders them by page
// then vertical position, and keeps the first of any repeated
// (level, text, page) triple.
func BuildOutline(spans []doctree.TextSpan, levels LevelFunc) doctree.Outline {
	var placed []placedHeading
	for _, s := range spans {
		if !IsMeaningful(s.Text) {
			continue
		}
		lvl := levels(s.FontSize)
		if lvl == "" {
			continue
		}
		placed = append(placed, placedHeading{
			heading: doctree.Heading{Level: lvl, Text: strings.TrimSpace(s.Text), Page: s.Page},
			y:       s.Y,
		})
	}

	slices.SortStableFunc(placed, func(a, b placedHeading) int {
		if c := cmp.Compare(a.heading.Page, b.heading.Page); c != 0 {
			return c
		}
		return cmp.Compare(a.y, b.y)
	})

	out := make(doctree.Outline, 0, len(placed))
	seen := make(map[headingKey]struct{}, len(placed))
	for _, p := range placed {
		key := headingKey{level: p.heading.Level, text: p.heading.Text, page: p.heading.Page}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p.heading)
	}
	return out
}
