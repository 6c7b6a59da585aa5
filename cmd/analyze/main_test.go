package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-matcher/internal/analyses"
)

type stubAnalyzer struct {
	result analyses.Result
	err    error
	got    analyses.AnalyzeRequest
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req analyses.AnalyzeRequest) (analyses.Result, error) {
	s.got = req
	return s.result, s.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunAnalyzeWritesReportAndChart(t *testing.T) {
	dir := t.TempDir()
	svc := &stubAnalyzer{result: analyses.Result{
		Markdown: "# Report\n",
		ChartPNG: []byte("\x89PNG"),
	}}
	opts := options{
		ResumePath: writeFile(t, dir, "resume.txt", "Python and SQL"),
		JobPath:    writeFile(t, dir, "jd.txt", "Python, SQL, Docker"),
		OutDir:     filepath.Join(dir, "out"),
	}

	var out bytes.Buffer
	if err := runAnalyze(context.Background(), svc, opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "# Report") {
		t.Fatalf("expected markdown on stdout, got %q", out.String())
	}
	if svc.got.Resume.FileName != "resume.txt" || !strings.HasPrefix(svc.got.Resume.ContentType, "text/plain") {
		t.Fatalf("unexpected resume upload %+v", svc.got.Resume)
	}
	if _, err := os.Stat(filepath.Join(opts.OutDir, "chart.png")); err != nil {
		t.Fatalf("expected chart.png: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.OutDir, "report.md")); err != nil {
		t.Fatalf("expected report.md: %v", err)
	}
}

func TestRunAnalyzeReportsFriendlyError(t *testing.T) {
	dir := t.TempDir()
	svc := &stubAnalyzer{err: &analyses.SchemaError{Reason: "missing key"}}
	opts := options{
		ResumePath: writeFile(t, dir, "resume.txt", "Python"),
		JobPath:    writeFile(t, dir, "jd.txt", "Docker"),
		OutDir:     dir,
	}

	err := runAnalyze(context.Background(), svc, opts, &bytes.Buffer{})
	var schemaErr *analyses.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "analysis failed, please retry") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRunAnalyzeMissingFile(t *testing.T) {
	opts := options{ResumePath: filepath.Join(t.TempDir(), "nope.pdf"), JobPath: "x", OutDir: t.TempDir()}
	if err := runAnalyze(context.Background(), &stubAnalyzer{}, opts, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
}
