// Package stablets force-aligns a lyric transcript to audio with stable-ts.
//
// The aligner runs an embedded Python script through uvx so no Python
// environment has to be managed by hand. Audio is first normalized to a
// 16 kHz mono WAV with ffmpeg (optional), then aligned twice with silence
// suppression; the second pass refines the first. The script writes the
// recognized words with their timings to JSON, which Align returns as
// lyrics tokens in chronological order.
package stablets
