package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLearningLinksOnePerSkillSorted(t *testing.T) {
	sets := DefaultLinkCatalog().LearningLinks([]string{"docker", "aws", "docker", " "})
	if len(sets) != 2 {
		t.Fatalf("expected 2 link sets, got %d", len(sets))
	}
	if sets[0].Skill != "aws" || sets[1].Skill != "docker" {
		t.Fatalf("expected sorted skills, got %s, %s", sets[0].Skill, sets[1].Skill)
	}
	if len(sets[0].Links) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(sets[0].Links))
	}
}

func TestLearningLinksURLs(t *testing.T) {
	sets := DefaultLinkCatalog().LearningLinks([]string{"machine learning"})
	want := map[string]string{
		"YouTube":  "https://www.youtube.com/results?search_query=machine%20learning%20tutorial%20for%20beginners",
		"Udemy":    "https://www.udemy.com/courses/search/?q=machine%20learning",
		"Coursera": "https://www.coursera.org/search?query=machine%20learning",
	}
	for _, link := range sets[0].Links {
		if want[link.Provider] != link.URL {
			t.Fatalf("%s: got %s, want %s", link.Provider, link.URL, want[link.Provider])
		}
	}
}

func TestLearningLinksEscapesSpecialCharacters(t *testing.T) {
	sets := DefaultLinkCatalog().LearningLinks([]string{"c++ & ci/cd"})
	udemy := sets[0].Links[1].URL
	if udemy != "https://www.udemy.com/courses/search/?q=c%2B%2B%20%26%20ci/cd" {
		t.Fatalf("unexpected url %s", udemy)
	}
}

func TestLearningLinksEmpty(t *testing.T) {
	if sets := DefaultLinkCatalog().LearningLinks(nil); len(sets) != 0 {
		t.Fatalf("expected no link sets, got %d", len(sets))
	}
}

func TestLoadLinkCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.yaml")
	content := "providers:\n  - name: Docs\n    url: https://docs.example.com/?s={query}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	catalog, err := LoadLinkCatalog(path)
	if err != nil {
		t.Fatalf("LoadLinkCatalog: %v", err)
	}
	sets := catalog.LearningLinks([]string{"go"})
	if len(sets[0].Links) != 1 || sets[0].Links[0].URL != "https://docs.example.com/?s=go" {
		t.Fatalf("unexpected links: %+v", sets[0].Links)
	}
}

func TestParseLinkCatalogRejectsInvalid(t *testing.T) {
	cases := []string{
		"providers: []",
		"providers:\n  - name: X\n    url: https://x.example.com/\n",
		"providers:\n  - url: https://x.example.com/{query}\n",
		"::not yaml",
	}
	for _, c := range cases {
		if _, err := ParseLinkCatalog([]byte(c)); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestRenderChartNoSkills(t *testing.T) {
	data, err := RenderChart(0, 0)
	if err != nil || data != nil {
		t.Fatalf("expected no chart, got %d bytes err=%v", len(data), err)
	}
}

func TestRenderChartProducesPNG(t *testing.T) {
	for _, counts := range [][2]int{{2, 1}, {3, 0}, {0, 4}} {
		data, err := RenderChart(counts[0], counts[1])
		if err != nil {
			t.Fatalf("RenderChart(%d, %d): %v", counts[0], counts[1], err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		if img.Bounds().Dx() != chartWidth {
			t.Fatalf("unexpected width %d", img.Bounds().Dx())
		}
	}
}

func TestBuildMarkdownSections(t *testing.T) {
	r := Report{
		MatchPercentage: 200.0 / 3.0,
		MatchedSkills:   []string{"sql", "python"},
		MissingSkills:   []string{"docker"},
		RequiredCount:   3,
		SoftSkills:      []string{"communication"},
		Suggestions:     []string{"Add a Docker project."},
		LearningLinks:   DefaultLinkCatalog().LearningLinks([]string{"docker"}),
		PoweredBy:       "Gemini (gemini-2.5-flash)",
	}
	md := BuildMarkdown(r)
	for _, want := range []string{
		"**66.7%**",
		"- Add a Docker project.",
		"## ✅ Matched Technical Skills (2)\nPython, Sql",
		"## ❌ Missing Technical Skills (1)\nDocker",
		"### 💬 Required Soft Skills (1)",
		"Communication",
		"### Docker\n* [Search on YouTube](https://www.youtube.com/results?search_query=docker%20tutorial%20for%20beginners)",
		"*Powered by Gemini (gemini-2.5-flash). This is an automated guide.*",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBuildMarkdownEmptyFallbacks(t *testing.T) {
	md := BuildMarkdown(Report{})
	for _, want := range []string{
		"**0.0%**",
		noSuggestions,
		"## ✅ Matched Technical Skills (0)\nNone",
		"None! Great job.",
		"None specified.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Learning Resources") {
		t.Fatal("expected no learning resources section without missing skills")
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Title\n\n- item <script>alert(1)</script>\n")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, "<h1>Title</h1>") || !strings.Contains(out, "<li>") {
		t.Fatalf("unexpected html: %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html passed through: %s", out)
	}
}

func TestTitleSkill(t *testing.T) {
	if got := TitleSkill(" machine learning "); got != "Machine Learning" {
		t.Fatalf("unexpected title %q", got)
	}
}
