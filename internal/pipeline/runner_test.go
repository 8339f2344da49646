package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestRunner(t *testing.T, workers int) (*Runner, string, string) {
	t.Helper()
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	r := NewRunner(RunConfig{
		InputDir:  in,
		OutputDir: out,
		Workers:   workers,
		Clean:     true,
		Validate:  true,
	}, fakeParsers, nil, discardLogger())
	return r, in, out
}

func readResult(t *testing.T, path string) doctree.Result {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var res doctree.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return res
}

func TestRunner_Run(t *testing.T) {
	r, in, out := newTestRunner(t, 1)
	writeFile(t, filepath.Join(in, "report.pdf"), reportDoc)
	writeFile(t, filepath.Join(in, "notes.txt"), reportDoc)

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.RunID == "" {
		t.Error("expected run ID")
	}
	if len(rep.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(rep.Documents))
	}
	if rep.Failed() != 0 {
		t.Errorf("expected no failures, got %+v", rep.Documents)
	}

	data, err := os.ReadFile(filepath.Join(out, "report.json"))
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	want := `{
  "title": "Annual Report",
  "outline": [
    {
      "level": "H1",
      "text": "Annual Report",
      "page": 1
    },
    {
      "level": "H2",
      "text": "Introduction",
      "page": 1
    },
    {
      "level": "H3",
      "text": "Some body text",
      "page": 1
    },
    {
      "level": "H2",
      "text": "Results",
      "page": 2
    }
  ]
}
`
	if string(data) != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", data, want)
	}
	if _, err := os.Stat(filepath.Join(out, "notes.json")); !os.IsNotExist(err) {
		t.Error("expected non-PDF input to be ignored")
	}
}

func TestRunner_InputsSortedCaseInsensitive(t *testing.T) {
	r, in, _ := newTestRunner(t, 1)
	for _, name := range []string{"b.pdf", "A.PDF", "c.Pdf", "d.pdf.bak", "readme.md"} {
		writeFile(t, filepath.Join(in, name), reportDoc)
	}
	if err := os.Mkdir(filepath.Join(in, "dir.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	inputs, err := r.Inputs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, p := range inputs {
		names = append(names, filepath.Base(p))
	}
	want := []string{"A.PDF", "b.pdf", "c.Pdf"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected inputs %v, got %v", want, names)
	}
}

func TestRunner_CleanRemovesOnlyJSON(t *testing.T) {
	r, _, out := newTestRunner(t, 1)
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(out, "stale.json"), "{}")
	writeFile(t, filepath.Join(out, "OLD.JSON"), "{}")
	writeFile(t, filepath.Join(out, "keep.txt"), "keep")

	if err := r.Clean(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"stale.json", "OLD.JSON"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", name)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "keep.txt")); err != nil {
		t.Errorf("expected keep.txt to survive: %v", err)
	}
}

func TestRunner_CleanCreatesOutputDir(t *testing.T) {
	r, _, out := newTestRunner(t, 1)
	if err := r.Clean(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || !fi.IsDir() {
		t.Errorf("expected output dir to exist: %v", err)
	}
}

func TestRunner_FailuresAreIsolated(t *testing.T) {
	r, in, out := newTestRunner(t, 1)
	writeFile(t, filepath.Join(in, "a.pdf"), reportDoc)
	writeFile(t, filepath.Join(in, "b.pdf"), "fail")
	writeFile(t, filepath.Join(in, "c.pdf"), "panic")
	writeFile(t, filepath.Join(in, "d.pdf"), reportDoc)

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if rep.Failed() != 2 {
		t.Errorf("expected 2 failures, got %d: %+v", rep.Failed(), rep.Documents)
	}
	if !strings.Contains(rep.Documents[1].Err, "broken xref") {
		t.Errorf("expected parse error for b.pdf, got %q", rep.Documents[1].Err)
	}
	if !strings.Contains(rep.Documents[2].Err, "panic") {
		t.Errorf("expected recovered panic for c.pdf, got %q", rep.Documents[2].Err)
	}
	for _, name := range []string{"a.json", "d.json"} {
		if res := readResult(t, filepath.Join(out, name)); res.Title != "Annual Report" {
			t.Errorf("%s: expected title %q, got %q", name, "Annual Report", res.Title)
		}
	}
	for _, name := range []string{"b.json", "c.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("expected no output for failed %s", name)
		}
	}
}

func TestRunner_DuplicateOutputStem(t *testing.T) {
	r, in, out := newTestRunner(t, 4)
	writeFile(t, filepath.Join(in, "a.PDF"), reportDoc)
	writeFile(t, filepath.Join(in, "a.pdf"), "fail")

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if len(rep.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(rep.Documents))
	}
	if rep.Failed() != 1 {
		t.Errorf("expected 1 failure, got %d: %+v", rep.Failed(), rep.Documents)
	}

	owner, dup := rep.Documents[0], rep.Documents[1]
	if filepath.Base(owner.Input) != "a.PDF" || owner.Err != "" {
		t.Errorf("expected a.PDF to own the output, got %+v", owner)
	}
	if filepath.Base(dup.Input) != "a.pdf" || !strings.Contains(dup.Err, "already produced by") {
		t.Errorf("expected duplicate error for a.pdf, got %+v", dup)
	}
	if dup.Output != "" {
		t.Errorf("expected no output for the duplicate, got %q", dup.Output)
	}
	if res := readResult(t, filepath.Join(out, "a.json")); res.Title != "Annual Report" {
		t.Errorf("expected title %q, got %q", "Annual Report", res.Title)
	}
}

func TestRunner_EmptyDocument(t *testing.T) {
	r, in, out := newTestRunner(t, 1)
	writeFile(t, filepath.Join(in, "blank.pdf"), "")

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "blank.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"title\": \"\",\n  \"outline\": []\n}\n"
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, data)
	}
}

func TestRunner_ConcurrentMatchesSequential(t *testing.T) {
	seq, seqIn, seqOut := newTestRunner(t, 1)
	par, parIn, parOut := newTestRunner(t, 4)
	for i, body := range []string{reportDoc, "fail", reportDoc, "18|1|10|Only heading", reportDoc, ""} {
		name := string(rune('a'+i)) + ".pdf"
		writeFile(t, filepath.Join(seqIn, name), body)
		writeFile(t, filepath.Join(parIn, name), body)
	}

	seqRep, err := seq.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	parRep, err := par.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(seqRep.Documents) != len(parRep.Documents) {
		t.Fatalf("expected %d documents, got %d", len(seqRep.Documents), len(parRep.Documents))
	}
	for i := range seqRep.Documents {
		s, p := seqRep.Documents[i], parRep.Documents[i]
		if filepath.Base(s.Input) != filepath.Base(p.Input) || s.Title != p.Title || s.Headings != p.Headings || (s.Err == "") != (p.Err == "") {
			t.Errorf("document %d differs: %+v vs %+v", i, s, p)
		}
		if s.Output == "" {
			continue
		}
		a, _ := os.ReadFile(filepath.Join(seqOut, filepath.Base(s.Output)))
		b, _ := os.ReadFile(filepath.Join(parOut, filepath.Base(p.Output)))
		if string(a) != string(b) {
			t.Errorf("%s: outputs differ", filepath.Base(s.Output))
		}
	}
}

func TestRunner_MissingInputDir(t *testing.T) {
	r := NewRunner(RunConfig{
		InputDir:  filepath.Join(t.TempDir(), "missing"),
		OutputDir: t.TempDir(),
	}, fakeParsers, nil, discardLogger())
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("expected error for missing input dir")
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	r, in, _ := newTestRunner(t, 1)
	writeFile(t, filepath.Join(in, "a.pdf"), reportDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRunner_WriteFailureReportsPath(t *testing.T) {
	r, in, out := newTestRunner(t, 1)
	writeFile(t, filepath.Join(in, "a.pdf"), reportDoc)
	if err := os.MkdirAll(filepath.Join(out, "a.json"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(out, "a.json", "x"), "block rename")

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if rep.Failed() != 1 {
		t.Fatalf("expected 1 failure, got %+v", rep.Documents)
	}
	if !strings.Contains(rep.Documents[0].Err, filepath.Join(out, "a.json")) {
		t.Errorf("expected error to name output path, got %q", rep.Documents[0].Err)
	}
}

func TestRunner_ProcessFile(t *testing.T) {
	r, in, out := newTestRunner(t, 1)
	path := filepath.Join(in, "report.pdf")
	writeFile(t, path, reportDoc)

	res, err := r.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "Annual Report" || len(res.Outline) != 4 {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("expected ProcessFile not to write output")
	}
}

func TestRunner_PreflightRejectsNonPDF(t *testing.T) {
	in := t.TempDir()
	r := NewRunner(RunConfig{
		InputDir:  in,
		OutputDir: t.TempDir(),
		Preflight: true,
	}, DefaultParsers(parser.Options{}), nil, discardLogger())
	path := filepath.Join(in, "fake.pdf")
	writeFile(t, path, reportDoc)

	if _, err := r.ProcessFile(context.Background(), path); err == nil {
		t.Error("expected preflight to reject a non-PDF body")
	}
}

func TestRunner_OutputPath(t *testing.T) {
	r := NewRunner(RunConfig{OutputDir: "/out"}, fakeParsers, nil, discardLogger())
	if got := r.OutputPath("/in/My File.PDF"); got != filepath.Join("/out", "My File.json") {
		t.Errorf("expected %q, got %q", filepath.Join("/out", "My File.json"), got)
	}
}
