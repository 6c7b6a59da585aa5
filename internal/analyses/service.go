package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resume-matcher/internal/events"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/report"
	"resume-matcher/internal/runlog"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/telemetry"
)

const (
	chartKeyPrefix   = "charts/"
	afterworkTimeout = 5 * time.Second
)

// Service runs one analysis synchronously: extract, ask the model, score, render.
type Service struct {
	LLM           llm.Client
	Charts        object.ObjectStore
	Links         *report.LinkCatalog
	Runs          runlog.Repo
	Events        events.Publisher
	Provider      string
	Model         string
	PromptVersion string
	LLMTimeout    time.Duration

	retryDelay time.Duration
	now        func() time.Time
	newID      func() string
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func (s *Service) linkCatalog() *report.LinkCatalog {
	if s.Links != nil {
		return s.Links
	}
	return report.DefaultLinkCatalog()
}

// Analyze produces a report for one resume and job description pair.
// On error no partial result is returned; the run is still recorded.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (Result, error) {
	if req.RequestID == "" {
		req.RequestID = requestIDFromContext(ctx)
	} else {
		ctx = withRequestID(ctx, req.RequestID)
	}
	startedAt := s.clock()
	runID := s.id()

	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        req.RequestID,
		"run_id":            runID,
		"status":            "processing",
		"status_transition": "received->processing",
		"provider":          s.Provider,
		"model":             s.Model,
	})

	var promptHash string
	result, err := s.analyze(llm.WithPromptHashCapture(ctx, &promptHash), runID, req)
	completedAt := s.clock()
	elapsed := durationMs(&startedAt, &completedAt)

	run := runlog.Run{
		ID:            runID,
		RequestID:     req.RequestID,
		Provider:      s.Provider,
		Model:         s.Model,
		PromptVersion: s.promptVersion(),
		PromptHash:    promptHash,
		DurationMs:    elapsed,
		CreatedAt:     startedAt,
	}
	if err != nil {
		failure := Classify(err)
		run.Status = runlog.StatusFailed
		run.ErrorKind = failure.Kind
		s.recordFailure(ctx, run, err)
		return Result{}, err
	}

	result.DurationMs = elapsed
	run.Status = runlog.StatusCompleted
	run.MatchPercentage = result.Report.MatchPercentage
	run.MatchedCount = len(result.Report.MatchedSkills)
	run.RequiredCount = result.Report.RequiredCount
	s.recordSuccess(ctx, run)
	return result, nil
}

func (s *Service) analyze(ctx context.Context, runID string, req AnalyzeRequest) (Result, error) {
	if s.LLM == nil {
		return Result{}, errors.New("analysis service has no llm client")
	}

	resumeText, err := extractUpload(ctx, FieldResume, req.Resume)
	if err != nil {
		return Result{}, err
	}
	jdText, err := extractUpload(ctx, FieldJobDescription, req.JobDescription)
	if err != nil {
		return Result{}, err
	}

	client := newRetryingLLM(s.LLM, s.LLMTimeout, runID, req.RequestID)
	if rl, ok := client.(retryingLLM); ok && s.retryDelay > 0 {
		rl.delay = s.retryDelay
		client = rl
	}
	raw, err := client.AnalyzeMatch(ctx, llm.AnalyzeInput{
		ResumeText:     resumeText.Content,
		JobDescription: jdText.Content,
		PromptVersion:  s.promptVersion(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		if errors.Is(err, llm.ErrEmptyResponse) {
			return Result{}, &SchemaError{Reason: "model returned no content", Err: err}
		}
		return Result{}, fmt.Errorf("%w: %w", ErrModelCall, err)
	}

	parsed, err := ParseResult(raw)
	if err != nil {
		return Result{}, err
	}
	score := ComputeScore(parsed)

	rep := report.Report{
		MatchPercentage: score.Percentage,
		MatchedSkills:   score.Matched,
		MissingSkills:   score.Missing,
		RequiredCount:   score.RequiredCount,
		SoftSkills:      normalizeSkills(parsed.JDSoftSkills),
		Suggestions:     parsed.Suggestions,
		LearningLinks:   s.linkCatalog().LearningLinks(score.Missing),
		PoweredBy:       PoweredBy(s.Provider, s.Model),
	}

	result := Result{
		RunID:          runID,
		RequestID:      req.RequestID,
		Report:         rep,
		Markdown:       report.BuildMarkdown(rep),
		Resume:         documentInfo(req.Resume, resumeText),
		JobDescription: documentInfo(req.JobDescription, jdText),
		Provider:       s.Provider,
		Model:          s.Model,
		PromptVersion:  s.promptVersion(),
	}

	png, err := report.RenderChart(len(score.Matched), len(score.Missing))
	if err != nil {
		telemetry.Warn("analysis.chart_failed", map[string]any{
			"request_id": req.RequestID,
			"run_id":     runID,
			"error":      err,
		})
		return result, nil
	}
	result.ChartPNG = png
	if png != nil && s.Charts != nil {
		key := runID + ".png"
		if _, err := s.Charts.SaveWithKey(ctx, chartKeyPrefix+key, "image/png", bytes.NewReader(png)); err != nil {
			telemetry.Warn("analysis.chart_store_failed", map[string]any{
				"request_id": req.RequestID,
				"run_id":     runID,
				"error":      err,
			})
		} else {
			result.ChartKey = key
		}
	}
	return result, nil
}

func extractUpload(ctx context.Context, field string, up Upload) (extract.Text, error) {
	text, err := extract.ExtractTextFromBytes(ctx, up.Data, up.ContentType, up.FileName)
	if err != nil {
		var extractErr *extract.ExtractionError
		if errors.As(err, &extractErr) {
			extractErr.Field = field
		}
		return extract.Text{}, err
	}
	return text, nil
}

func documentInfo(up Upload, text extract.Text) DocumentInfo {
	return DocumentInfo{
		FileName:   up.FileName,
		MimeType:   text.MimeType,
		Pages:      text.Pages,
		Characters: utf8.RuneCountInString(text.Content),
		Truncated:  text.Truncated,
		Language:   text.Language,
	}
}

func (s *Service) promptVersion() string {
	if s.PromptVersion != "" {
		return s.PromptVersion
	}
	return llm.DefaultPromptVersion
}

// PoweredBy names the provider and model for report footers.
func PoweredBy(provider, model string) string {
	var name string
	switch provider {
	case config.ProviderGemini:
		name = "Google Gemini"
	case config.ProviderOpenAI:
		name = "OpenAI"
	default:
		name = provider
	}
	if model == "" {
		return name
	}
	if name == "" {
		return model
	}
	return fmt.Sprintf("%s (%s)", name, model)
}

func (s *Service) recordSuccess(ctx context.Context, run runlog.Run) {
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(run.DurationMs)
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        run.RequestID,
		"run_id":            run.ID,
		"status":            run.Status,
		"status_transition": "processing->completed",
		"match_percentage":  run.MatchPercentage,
		"required_count":    run.RequiredCount,
		"prompt_hash":       run.PromptHash,
		"duration_ms":       run.DurationMs,
	})
	s.afterwork(ctx, run)
}

func (s *Service) recordFailure(ctx context.Context, run runlog.Run, err error) {
	switch run.ErrorKind {
	case ErrorKindExtraction:
		metrics.IncExtractionFailed()
	case ErrorKindSchema:
		metrics.IncSchemaFailed()
	}
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(run.DurationMs)
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        run.RequestID,
		"run_id":            run.ID,
		"status":            run.Status,
		"status_transition": "processing->failed",
		"error_kind":        run.ErrorKind,
		"error":             sanitizeError(err),
		"duration_ms":       run.DurationMs,
	})
	s.afterwork(ctx, run)
}

// afterwork records the run and publishes its event. Failures are logged only.
func (s *Service) afterwork(ctx context.Context, run runlog.Run) {
	bg, cancel := context.WithTimeout(backgroundWithRequestID(ctx), afterworkTimeout)
	defer cancel()

	if s.Runs != nil {
		if err := s.Runs.Record(bg, run); err != nil {
			telemetry.Error("runlog.record_failed", map[string]any{
				"request_id": run.RequestID,
				"run_id":     run.ID,
				"error":      err,
			})
		}
	}
	if s.Events != nil {
		ev := events.Event{Type: events.TypeFor(run), Run: run, PublishedAt: s.clock()}
		if err := s.Events.Publish(bg, ev); err != nil {
			metrics.IncEventPublishFailed()
			telemetry.Warn("events.publish_failed", map[string]any{
				"request_id": run.RequestID,
				"run_id":     run.ID,
				"type":       ev.Type,
				"error":      err,
			})
		}
	}
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}
