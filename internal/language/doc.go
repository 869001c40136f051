// Package language normalizes language codes and detects the language of a
// lyric transcript.
//
// Codes are accepted as ISO 639-1, ISO 639-2, English words, or BCP 47 tags
// and reduced to ISO 639-1 for the aligner and the translation prompts.
// Detect backs the "auto" alignment language.
package language
