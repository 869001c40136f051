// Package export writes merged lyric records in the artifact formats the
// CLI and HTTP API offer: LRC, JSON, CSV, XLSX, SRT, and WebVTT.
package export
