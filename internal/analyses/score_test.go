package analyses

import (
	"math"
	"reflect"
	"testing"
)

func TestComputeScorePartialMatch(t *testing.T) {
	score := ComputeScore(AnalysisResult{
		JDTechnicalSkills:     []string{"Python", "SQL", "Docker"},
		ResumeTechnicalSkills: []string{"python", " sql ", "Excel"},
	})
	if score.RequiredCount != 3 {
		t.Fatalf("required = %d", score.RequiredCount)
	}
	if !reflect.DeepEqual(score.Matched, []string{"python", "sql"}) {
		t.Fatalf("matched = %v", score.Matched)
	}
	if !reflect.DeepEqual(score.Missing, []string{"docker"}) {
		t.Fatalf("missing = %v", score.Missing)
	}
	if math.Abs(score.Percentage-200.0/3.0) > 1e-9 {
		t.Fatalf("percentage = %v", score.Percentage)
	}
}

func TestComputeScoreNoRequiredSkills(t *testing.T) {
	score := ComputeScore(AnalysisResult{ResumeTechnicalSkills: []string{"Go"}})
	if score.Percentage != 0 || score.RequiredCount != 0 {
		t.Fatalf("expected zero score, got %+v", score)
	}
	if score.Matched == nil || score.Missing == nil {
		t.Fatalf("expected empty, non-nil lists")
	}
}

func TestComputeScoreDedupesCaseInsensitively(t *testing.T) {
	score := ComputeScore(AnalysisResult{
		JDTechnicalSkills:     []string{"Go", "go", "GO ", "Machine  Learning"},
		ResumeTechnicalSkills: []string{"machine learning"},
	})
	if score.RequiredCount != 2 {
		t.Fatalf("required = %d, want 2", score.RequiredCount)
	}
	if score.Percentage != 50 {
		t.Fatalf("percentage = %v, want 50", score.Percentage)
	}
}

func TestComputeScoreFullMatch(t *testing.T) {
	score := ComputeScore(AnalysisResult{
		JDTechnicalSkills:     []string{"Kubernetes"},
		ResumeTechnicalSkills: []string{"kubernetes", "Terraform"},
	})
	if score.Percentage != 100 || len(score.Missing) != 0 {
		t.Fatalf("unexpected score %+v", score)
	}
}
