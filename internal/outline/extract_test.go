package outline

import (
	"encoding/json"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestExtract_MetadataTitleAndTwoLevels(t *testing.T) {
	doc := &doctree.Document{
		MetadataTitle: "Report",
		Pages: [][]doctree.TextSpan{{
			{Text: "Intro", FontSize: 18, Page: 1, Y: 50},
			{Text: "Body text here", FontSize: 10, Page: 1, Y: 80},
		}},
	}

	got := Extract(doc)
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"title":"Report","outline":[{"level":"H1","text":"Intro","page":1},{"level":"H2","text":"Body text here","page":1}]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	got := Extract(&doctree.Document{})
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"title":"","outline":[]}` {
		t.Errorf("unexpected result %s", data)
	}
}

func TestExtract_WhitespaceMetadataUsesTopmostLargest(t *testing.T) {
	doc := &doctree.Document{
		MetadataTitle: "   ",
		Pages: [][]doctree.TextSpan{{
			{Text: "Lower Title", FontSize: 26, Page: 1, Y: 140},
			{Text: "Upper Title", FontSize: 26, Page: 1, Y: 60},
		}},
	}
	if got := Extract(doc).Title; got != "Upper Title" {
		t.Errorf("expected %q, got %q", "Upper Title", got)
	}
}

func TestExtract_ClustersIgnoreNoiseSizes(t *testing.T) {
	// The 40pt rule line is not meaningful, so it must not claim H1.
	doc := &doctree.Document{
		Pages: [][]doctree.TextSpan{
			{
				{Text: "________", FontSize: 40, Page: 1, Y: 5},
				{Text: "Getting Started", FontSize: 20, Page: 1, Y: 30},
				{Text: "Paragraph body", FontSize: 11, Page: 1, Y: 60},
			},
			{
				{Text: "Next Steps", FontSize: 20, Page: 2, Y: 30},
			},
		},
	}
	got := Extract(doc)
	if got.Title != "Getting Started" {
		t.Errorf("expected title %q, got %q", "Getting Started", got.Title)
	}
	want := doctree.Outline{
		{Level: doctree.H1, Text: "Getting Started", Page: 1},
		{Level: doctree.H2, Text: "Paragraph body", Page: 1},
		{Level: doctree.H1, Text: "Next Steps", Page: 2},
	}
	if len(got.Outline) != len(want) {
		t.Fatalf("expected %d headings, got %+v", len(want), got.Outline)
	}
	for i := range want {
		if got.Outline[i] != want[i] {
			t.Errorf("heading[%d]: expected %+v, got %+v", i, want[i], got.Outline[i])
		}
	}
}

func TestExtract_FourthClusterIsBodyText(t *testing.T) {
	doc := &doctree.Document{
		Pages: [][]doctree.TextSpan{{
			{Text: "Title Page", FontSize: 28, Page: 1, Y: 10},
			{Text: "Part One", FontSize: 20, Page: 1, Y: 40},
			{Text: "Section 1", FontSize: 14, Page: 1, Y: 70},
			{Text: "Ordinary sentence.", FontSize: 10, Page: 1, Y: 90},
		}},
	}
	got := Extract(doc)
	if len(got.Outline) != 3 {
		t.Fatalf("expected 3 headings, got %+v", got.Outline)
	}
	if got.Outline[2].Level != doctree.H3 || got.Outline[2].Text != "Section 1" {
		t.Errorf("unexpected third heading %+v", got.Outline[2])
	}
}

func TestExtractor_MaxLevels(t *testing.T) {
	e := NewExtractor(Options{MaxLevels: 1})
	doc := &doctree.Document{
		Pages: [][]doctree.TextSpan{{
			{Text: "Top Heading", FontSize: 20, Page: 1, Y: 10},
			{Text: "Sub Heading", FontSize: 16, Page: 1, Y: 40},
		}},
	}
	got := e.Extract(doc)
	if len(got.Outline) != 1 || got.Outline[0].Level != doctree.H1 {
		t.Errorf("expected only the H1 heading, got %+v", got.Outline)
	}
}

func TestNewExtractor_Defaults(t *testing.T) {
	opts := NewExtractor(Options{MaxLevels: 9, ClusterTolerance: -1}).Options()
	if opts.MaxLevels != 3 {
		t.Errorf("expected MaxLevels 3, got %d", opts.MaxLevels)
	}
	if opts.ClusterTolerance != DefaultClusterTolerance {
		t.Errorf("expected default cluster tolerance, got %v", opts.ClusterTolerance)
	}
	if opts.TitleTolerance != DefaultTitleTolerance {
		t.Errorf("expected default title tolerance, got %v", opts.TitleTolerance)
	}
}
