// Package language provides best-effort language detection for extracted text.
package language

import (
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"github.com/joseph-ayodele/catalogue-search/constants"
)

// sampleLimit bounds the amount of text fed to the detector.
const sampleLimit = 4096

// Detect returns the ISO 639-1 code of the dominant language in text. It
// returns constants.LanguageNone for empty text, text without a recognisable
// script, or when the detector fails.
func Detect(text string) (code string) {
	defer func() {
		if r := recover(); r != nil {
			code = constants.LanguageNone
		}
	}()

	sample := strings.TrimSpace(text)
	if sample == "" {
		return constants.LanguageNone
	}
	sample = truncate(sample, sampleLimit)

	info := whatlanggo.Detect(sample)
	if info.Confidence <= 0 {
		return constants.LanguageNone
	}
	if iso := info.Lang.Iso6391(); iso != "" {
		return iso
	}
	return constants.LanguageNone
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
