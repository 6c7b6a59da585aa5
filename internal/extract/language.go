package extract

import (
	"sync"

	"github.com/pemistahl/lingua-go"
)

const minLanguageSample = 40

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.German,
				lingua.French,
				lingua.Spanish,
				lingua.Portuguese,
				lingua.Italian,
				lingua.Dutch,
			).
			Build()
	})
	return detector
}

// DetectLanguage names the natural language of text, or "" when the sample is too short or ambiguous.
func DetectLanguage(text string) string {
	if len(text) < minLanguageSample {
		return ""
	}
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return lang.String()
}
