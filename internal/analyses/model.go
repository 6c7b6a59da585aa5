package analyses

import (
	"resume-matcher/internal/report"
)

const (
	FieldResume         = "resume"
	FieldJobDescription = "jobDescription"
)

// AnalysisResult is the structured answer returned by the model.
type AnalysisResult struct {
	JDTechnicalSkills     []string `json:"jd_technical_skills"`
	JDSoftSkills          []string `json:"jd_soft_skills"`
	ResumeTechnicalSkills []string `json:"resume_technical_skills"`
	Suggestions           []string `json:"suggestions"`
}

// Score is derived locally from an AnalysisResult.
type Score struct {
	Matched       []string `json:"matched"`
	Missing       []string `json:"missing"`
	RequiredCount int      `json:"requiredCount"`
	Percentage    float64  `json:"percentage"`
}

// Upload is one uploaded document, held in memory for a single request.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// AnalyzeRequest carries both uploads for one analysis.
type AnalyzeRequest struct {
	Resume         Upload
	JobDescription Upload
	RequestID      string
}

// DocumentInfo describes what was read from an upload. It never contains the text.
type DocumentInfo struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	Pages      int    `json:"pages,omitempty"`
	Characters int    `json:"characters"`
	Truncated  bool   `json:"truncated"`
	Language   string `json:"language,omitempty"`
}

// Result is a completed analysis.
type Result struct {
	RunID          string        `json:"runId"`
	RequestID      string        `json:"requestId,omitempty"`
	Report         report.Report `json:"report"`
	Markdown       string        `json:"markdown"`
	ChartKey       string        `json:"chartKey,omitempty"`
	ChartPNG       []byte        `json:"-"`
	Resume         DocumentInfo  `json:"resume"`
	JobDescription DocumentInfo  `json:"jobDescription"`
	Provider       string        `json:"provider"`
	Model          string        `json:"model"`
	PromptVersion  string        `json:"promptVersion"`
	DurationMs     float64       `json:"durationMs"`
}
