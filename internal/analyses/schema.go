package analyses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var requiredKeys = []string{"jd_technical_skills", "jd_soft_skills", "resume_technical_skills", "suggestions"}

// ParseResult decodes and validates a model answer.
// Every key must be present and hold an array of strings, and at least one
// technical skill must be required by the job description.
func ParseResult(raw []byte) (AnalysisResult, error) {
	cleaned := cleanJSON(raw)
	if len(cleaned) == 0 {
		return AnalysisResult{}, &SchemaError{Reason: "empty response"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(cleaned, &fields); err != nil {
		return AnalysisResult{}, &SchemaError{Reason: "response is not a JSON object", Err: err}
	}

	lists := make(map[string][]string, len(requiredKeys))
	for _, key := range requiredKeys {
		value, ok := fields[key]
		if !ok {
			return AnalysisResult{}, &SchemaError{Reason: fmt.Sprintf("missing key %q", key)}
		}
		list, err := decodeStringArray(value)
		if err != nil {
			return AnalysisResult{}, &SchemaError{Reason: fmt.Sprintf("key %q must be an array of strings", key), Err: err}
		}
		lists[key] = list
	}

	result := AnalysisResult{
		JDTechnicalSkills:     lists["jd_technical_skills"],
		JDSoftSkills:          lists["jd_soft_skills"],
		ResumeTechnicalSkills: lists["resume_technical_skills"],
		Suggestions:           compact(lists["suggestions"]),
	}
	if len(normalizeSkills(result.JDTechnicalSkills)) == 0 {
		return AnalysisResult{}, &SchemaError{Reason: "job description has no technical skills", Err: ErrNoRequiredSkills}
	}
	return result, nil
}

func decodeStringArray(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("not an array")
	}
	var out []string
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// cleanJSON strips markdown code fences and any prose around the outermost object.
func cleanJSON(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return []byte(s)
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
