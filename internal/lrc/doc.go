// Package lrc renders merged lyric records as LRC text and parses it back.
//
// Each timed line carries the original text, its romanization, and the
// preferred translation separated by tabs, so a single file serves players
// that only show the first column and tools that split all three.
package lrc
