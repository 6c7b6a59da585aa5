package main

// Analyze a resume against a job description without the server:
//   go run ./cmd/analyze --resume resume.pdf --job jd.pdf --out ./report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/urfave/cli/v2"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/shared/config"
)

func main() {
	app := &cli.App{
		Name:  "analyze",
		Usage: "score a resume against a job description",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "resume", Aliases: []string{"r"}, Usage: "resume file (pdf, docx, html or txt)", Required: true},
			&cli.StringFlag{Name: "job", Aliases: []string{"j"}, Usage: "job description file", Required: true},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "directory for report.md and chart.png", Value: "."},
			&cli.StringFlag{Name: "provider", Usage: "override LLM_PROVIDER", EnvVars: []string{"LLM_PROVIDER"}},
			&cli.StringFlag{Name: "model", Usage: "override LLM_MODEL"},
			&cli.BoolFlag{Name: "json", Usage: "print the JSON result instead of markdown"},
		},
		Action: analyzeAction,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func analyzeAction(c *cli.Context) error {
	if p := c.String("provider"); p != "" {
		_ = os.Setenv("LLM_PROVIDER", p)
	}
	if m := c.String("model"); m != "" {
		_ = os.Setenv("LLM_MODEL", m)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := bootstrap.BuildLLM(c.Context, cfg)
	if err != nil {
		return err
	}
	links, err := bootstrap.BuildLinks(cfg)
	if err != nil {
		return err
	}
	svc := &analyses.Service{
		LLM:           client,
		Links:         links,
		Provider:      cfg.LLMProvider,
		Model:         cfg.LLMModel,
		PromptVersion: cfg.PromptVersion,
		LLMTimeout:    cfg.LLMTimeout,
	}

	return runAnalyze(c.Context, svc, options{
		ResumePath: c.String("resume"),
		JobPath:    c.String("job"),
		OutDir:     c.String("out"),
		JSON:       c.Bool("json"),
	}, c.App.Writer)
}

type options struct {
	ResumePath string
	JobPath    string
	OutDir     string
	JSON       bool
}

func runAnalyze(ctx context.Context, svc analyses.Analyzer, opts options, w io.Writer) error {
	resume, err := readUpload(analyses.FieldResume, opts.ResumePath)
	if err != nil {
		return err
	}
	jd, err := readUpload(analyses.FieldJobDescription, opts.JobPath)
	if err != nil {
		return err
	}

	result, err := svc.Analyze(ctx, analyses.AnalyzeRequest{Resume: resume, JobDescription: jd})
	if err != nil {
		failure := analyses.Classify(err)
		return fmt.Errorf("%s: %w", failure.Message, err)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(opts.OutDir, "report.md"), []byte(result.Markdown), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if len(result.ChartPNG) > 0 {
		if err := os.WriteFile(filepath.Join(opts.OutDir, "chart.png"), result.ChartPNG, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = fmt.Fprintln(w, result.Markdown)
	return err
}

func readUpload(field, path string) (analyses.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analyses.Upload{}, fmt.Errorf("read %s: %w", field, err)
	}
	return analyses.Upload{
		Field:       field,
		FileName:    filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}
