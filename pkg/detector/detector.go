// Package detector guesses the natural language of a parsed document.
package detector

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// minLetters is the shortest text worth running detection on.
const minLetters = 12

var languages = []lingua.Language{
	lingua.Chinese,
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
}

var (
	once     sync.Once
	detector lingua.LanguageDetector
)

func get() lingua.LanguageDetector {
	once.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build()
	})
	return detector
}

// Language returns the lower-case ISO 639-1 code of text's language, or ""
// when the text is too short or no language is reliable.
func Language(text string) string {
	letters := 0
	for _, r := range text {
		if r > ' ' {
			letters++
		}
	}
	if letters < minLetters {
		return ""
	}

	lang, ok := get().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
