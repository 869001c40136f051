package romaji

import (
	"context"
	"fmt"
	"strings"
)

// Romanizer names accepted by New.
const (
	KindKana   = "kana"
	KindKakasi = "kakasi"
	KindNone   = "none"
)

// Romanizer transliterates lines. Implementations must return one output per input line.
type Romanizer interface {
	Romanize(ctx context.Context, lines []string) ([]string, error)
}

// Options selects and configures a romanizer.
type Options struct {
	Kind         string
	KakasiBinary string
}

// New returns the romanizer named by opts.Kind. An empty kind selects kana.
func New(opts Options) (Romanizer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindKana:
		return Kana{}, nil
	case KindKakasi:
		return NewKakasi(opts.KakasiBinary), nil
	case KindNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("romaji: unknown romanizer %q", opts.Kind)
	}
}

// None yields an empty string for every line.
type None struct{}

// Romanize implements Romanizer.
func (None) Romanize(_ context.Context, lines []string) ([]string, error) {
	return make([]string, len(lines)), nil
}

// DropRepeatedTail removes the final word when it repeats the word before it.
// kakasi occasionally emits the last segment of a line twice.
func DropRepeatedTail(words []string) []string {
	if n := len(words); n >= 2 && words[n-1] == words[n-2] {
		return words[:n-1]
	}
	return words
}
