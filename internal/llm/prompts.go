package llm

import (
	_ "embed"
	"log"
	"strings"

	"resume-matcher/internal/shared/util"
)

// DefaultPromptVersion is used when no version is requested.
const DefaultPromptVersion = "skillmatch_v1"

const systemInstruction = "You are a top-tier senior recruiter and career coach with 15 years of experience. " +
	"Respond with JSON only. No markdown. Never omit keys."

var (
	//go:embed prompts/skillmatch_v1.txt
	promptSkillMatchV1 string
)

// PromptTemplate returns the prompt template text and whether the version was recognized.
func PromptTemplate(version string) (string, bool) {
	switch version {
	case "skillmatch_v1":
		return promptSkillMatchV1, true
	default:
		return promptSkillMatchV1, false
	}
}

// Prompt is the rendered request shared by all providers.
type Prompt struct {
	Version string
	System  string
	User    string
}

// BuildPrompt renders the template for the requested version.
func BuildPrompt(input AnalyzeInput) Prompt {
	version := strings.TrimSpace(input.PromptVersion)
	if version == "" {
		version = DefaultPromptVersion
	}
	template, ok := PromptTemplate(version)
	if !ok {
		log.Printf("unknown prompt version %q, defaulting to %s", version, DefaultPromptVersion)
		version = DefaultPromptVersion
	}
	replacer := strings.NewReplacer(
		"{{RESUME_TEXT}}", input.ResumeText,
		"{{JOB_DESCRIPTION}}", input.JobDescription,
	)
	return Prompt{
		Version: version,
		System:  systemInstruction,
		User:    replacer.Replace(template),
	}
}

// Hash fingerprints the full prompt.
func (p Prompt) Hash() string {
	return util.HashText("system: " + p.System + "\n\nuser: " + p.User)
}
