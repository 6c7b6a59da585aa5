package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const noSuggestions = "No specific suggestions were generated. Your resume looks well-aligned!"

// Report is everything rendered for one analysis. It has no persisted identity.
type Report struct {
	MatchPercentage float64   `json:"matchPercentage"`
	MatchedSkills   []string  `json:"matchedSkills"`
	MissingSkills   []string  `json:"missingSkills"`
	RequiredCount   int       `json:"requiredCount"`
	SoftSkills      []string  `json:"softSkills"`
	Suggestions     []string  `json:"suggestions"`
	LearningLinks   []LinkSet `json:"learningLinks"`
	PoweredBy       string    `json:"poweredBy,omitempty"`
}

// TitleSkill title-cases a lowercase skill name for display.
func TitleSkill(skill string) string {
	return cases.Title(language.English).String(strings.TrimSpace(skill))
}

func titledList(skills []string, empty string) string {
	if len(skills) == 0 {
		return empty
	}
	titled := make([]string, 0, len(skills))
	for _, s := range skills {
		titled = append(titled, TitleSkill(s))
	}
	sort.Strings(titled)
	return strings.Join(titled, ", ")
}

// BuildMarkdown renders the human-readable report.
func BuildMarkdown(r Report) string {
	var b strings.Builder
	b.WriteString("# ⭐ Resume Analysis Report\n\n")
	fmt.Fprintf(&b, "Your resume has a **%.1f%%** match with the job's **core technical requirements**.\n\n", r.MatchPercentage)

	b.WriteString("## 💡 AI-Powered Suggestions\n\n")
	if len(r.Suggestions) == 0 {
		b.WriteString(noSuggestions + "\n")
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	b.WriteString("\n---\n")
	fmt.Fprintf(&b, "## ✅ Matched Technical Skills (%d)\n", len(r.MatchedSkills))
	b.WriteString(titledList(r.MatchedSkills, "None"))
	fmt.Fprintf(&b, "\n\n## ❌ Missing Technical Skills (%d)\n", len(r.MissingSkills))
	b.WriteString(titledList(r.MissingSkills, "None! Great job."))

	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "### 💬 Required Soft Skills (%d)\n", len(r.SoftSkills))
	b.WriteString("While not part of the score, be prepared to discuss these:\n\n")
	b.WriteString(titledList(r.SoftSkills, "None specified."))
	b.WriteString("\n\n---\n")

	if len(r.LearningLinks) > 0 {
		b.WriteString("## 📚 Learning Resources\n")
		b.WriteString("Here are some links to help you get started on the missing technical skills:\n\n")
		for _, set := range r.LearningLinks {
			fmt.Fprintf(&b, "### %s\n", TitleSkill(set.Skill))
			for _, link := range set.Links {
				fmt.Fprintf(&b, "* [Search on %s](%s)\n", link.Provider, link.URL)
			}
			b.WriteString("\n")
		}
	}

	poweredBy := strings.TrimSpace(r.PoweredBy)
	if poweredBy == "" {
		poweredBy = "a hosted language model"
	}
	fmt.Fprintf(&b, "\n*Powered by %s. This is an automated guide.*\n", poweredBy)
	return b.String()
}
