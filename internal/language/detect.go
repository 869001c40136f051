package language

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// Detect guesses the ISO 639-1 language of text. Kana and Hangul settle the
// answer outright since short lyric lines of kanji alone often read as Chinese.
// An empty code means the language could not be identified.
func Detect(text string) (string, float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0
	}
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			return "ja", 1
		case unicode.Is(unicode.Hangul, r):
			return "ko", 1
		}
	}
	info := whatlanggo.Detect(text)
	if e, ok := byDetect[info.Lang]; ok {
		return e.code2, info.Confidence
	}
	return "", info.Confidence
}

// Resolve returns the ISO 639-1 code to use for requested. "auto" detects
// from sample; fallback is used when nothing can be determined.
func Resolve(requested, sample, fallback string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		requested = fallback
	}
	if requested == Auto {
		if code, _ := Detect(sample); code != "" {
			return code
		}
		return ToISO2(fallback)
	}
	if code := ToISO2(requested); code != "" {
		return code
	}
	return ToISO2(fallback)
}
