package analyses

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseResultValidFixture(t *testing.T) {
	result, err := ParseResult(loadFixture(t, filepath.Join("testdata", "result_partial_match.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.JDTechnicalSkills) != 3 {
		t.Fatalf("expected 3 jd skills, got %v", result.JDTechnicalSkills)
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", result.Suggestions)
	}
}

func TestParseResultStripsMarkdownFences(t *testing.T) {
	result, err := ParseResult(loadFixture(t, filepath.Join("testdata", "result_fenced.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.JDTechnicalSkills) != 1 || result.JDTechnicalSkills[0] != "Go" {
		t.Fatalf("unexpected jd skills %v", result.JDTechnicalSkills)
	}
	if result.Suggestions == nil {
		t.Fatalf("expected empty, non-nil suggestions")
	}
}

func TestParseResultToleratesSurroundingProse(t *testing.T) {
	raw := []byte(`Here is the analysis: {"jd_technical_skills":["Go"],"jd_soft_skills":[],"resume_technical_skills":[],"suggestions":[]} Hope this helps.`)
	if _, err := ParseResult(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseResultSchemaErrors(t *testing.T) {
	cases := []struct {
		name           string
		fixture        string
		raw            string
		wantNoRequired bool
	}{
		{name: "missing key", fixture: "result_missing_key.json"},
		{name: "string instead of array", fixture: "result_wrong_type.json"},
		{name: "non-string element", fixture: "result_mixed_array.json"},
		{name: "no required skills", fixture: "result_no_required.json", wantNoRequired: true},
		{name: "not json", raw: "The candidate is a great fit."},
		{name: "empty", raw: "   "},
		{name: "array root", raw: `["Python"]`},
		{name: "null list", raw: `{"jd_technical_skills":null,"jd_soft_skills":[],"resume_technical_skills":[],"suggestions":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := []byte(tc.raw)
			if tc.fixture != "" {
				raw = loadFixture(t, filepath.Join("testdata", tc.fixture))
			}
			result, err := ParseResult(raw)
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if result.JDTechnicalSkills != nil || result.Suggestions != nil {
				t.Fatalf("expected zero result on error, got %+v", result)
			}
			if tc.wantNoRequired != errors.Is(err, ErrNoRequiredSkills) {
				t.Fatalf("ErrNoRequiredSkills match = %v, want %v (err=%v)", !tc.wantNoRequired, tc.wantNoRequired, err)
			}
		})
	}
}
