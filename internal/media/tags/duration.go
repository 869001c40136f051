package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	flac "github.com/go-flac/go-flac"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned when no native decoder handles the file.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DecodeDuration measures the duration in seconds with a native decoder
// chosen by file extension.
func DecodeDuration(path string) (float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return flacDuration(path)
	case ".mp3":
		return mp3Duration(path)
	case ".wav":
		return wavDuration(path)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func flacDuration(path string) (float64, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return 0, fmt.Errorf("parse flac: %w", err)
	}
	info, err := f.GetStreamInfo()
	if err != nil {
		return 0, fmt.Errorf("flac stream info: %w", err)
	}
	if info.SampleRate <= 0 {
		return 0, errors.New("flac stream info: zero sample rate")
	}
	return float64(info.SampleCount) / float64(info.SampleRate), nil
}

func mp3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	// go-mp3 emits 16-bit stereo: four bytes per sample frame.
	length := d.Length()
	if length <= 0 || d.SampleRate() <= 0 {
		return 0, errors.New("decode mp3: unknown length")
	}
	return float64(length) / 4 / float64(d.SampleRate()), nil
}

func wavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return 0, errors.New("decode wav: invalid file")
	}
	if err := decoder.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("decode wav: %w", err)
	}
	bytesPerSecond := int64(decoder.SampleRate) * int64(decoder.NumChans) * int64(decoder.BitDepth) / 8
	if bytesPerSecond <= 0 {
		return 0, errors.New("decode wav: invalid format")
	}
	return float64(decoder.PCMLen()) / float64(bytesPerSecond), nil
}
