// Package pipeline runs alignment and translation for one song and merges
// their outputs into timed, translated lyric records.
//
// The two halves are independent: alignment needs the audio and the
// transcript, translation needs only the transcript. Runner starts both
// concurrently, waits for both, and merges by position. Merge never tries
// to repair a misaligned translation; it reports suspicious rows as flags.
package pipeline
