// Package lyrics regroups a flat stream of aligner word tokens into the
// transcript's own line structure and converts line timestamps into the
// zero-padded components used by LRC output.
//
// Reconstruction is strictly sequential. A single MatchCursor threads
// through every line; it only moves forward, so each token is assigned to at
// most one line. Lines that cannot be matched keep their slot in the output
// with a zero-length timestamp at the previous line's end.
package lyrics
