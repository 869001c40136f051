// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns a Result holding streams, container
// format, and the tag dictionaries used for song metadata. Tag lookups are
// case-insensitive because containers disagree on key casing (ID3 "title",
// Vorbis "TITLE").
package ffprobe
