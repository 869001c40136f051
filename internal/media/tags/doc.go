// Package tags reads song metadata from audio files and embeds rendered
// lyrics back into them.
//
// Metadata comes from ffprobe tags, with the title falling back to the file
// name. When ffprobe cannot report a duration, FLAC, MP3 and WAV files are
// measured with native decoders. FLAC lyrics are written as a Vorbis LYRICS
// comment; every other container goes through ffmpeg with a stream copy.
package tags
