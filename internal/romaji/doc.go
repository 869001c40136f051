// Package romaji converts Japanese lyric lines to Latin script.
//
// Three romanizers are available: a built-in Hepburn kana table (kanji pass
// through unchanged), the external kakasi transliterator, and a no-op that
// yields empty strings. Every romanizer returns exactly one value per input
// line.
package romaji
