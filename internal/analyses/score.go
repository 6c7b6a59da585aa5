package analyses

import (
	"sort"
	"strings"
)

// ComputeScore compares resume skills with job skills case-insensitively.
// With no required skills the percentage is 0.
func ComputeScore(result AnalysisResult) Score {
	required := normalizeSkills(result.JDTechnicalSkills)
	have := make(map[string]struct{}, len(result.ResumeTechnicalSkills))
	for _, s := range normalizeSkills(result.ResumeTechnicalSkills) {
		have[s] = struct{}{}
	}

	score := Score{
		Matched:       []string{},
		Missing:       []string{},
		RequiredCount: len(required),
	}
	for _, skill := range required {
		if _, ok := have[skill]; ok {
			score.Matched = append(score.Matched, skill)
		} else {
			score.Missing = append(score.Missing, skill)
		}
	}
	if score.RequiredCount > 0 {
		score.Percentage = float64(len(score.Matched)) / float64(score.RequiredCount) * 100
	}
	return score
}

// normalizeSkills trims, lowercases, dedupes and sorts skill names.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		key := strings.ToLower(strings.Join(strings.Fields(s), " "))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
