package romaji

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultKakasiBinary is used when no binary is configured.
const DefaultKakasiBinary = "kakasi"

// kakasiArgs converts kanji, hiragana, katakana and full-width symbols to
// ASCII and splits words with spaces.
var kakasiArgs = []string{"-i", "utf8", "-o", "utf8", "-Ja", "-Ha", "-Ka", "-Ea", "-ka", "-s"}

// Kakasi shells out to the kakasi transliterator.
type Kakasi struct {
	binary        string
	commandRunner func(ctx context.Context, stdin string, name string, args ...string) (string, error)
}

// NewKakasi constructs a kakasi romanizer. An empty binary selects DefaultKakasiBinary.
func NewKakasi(binary string) *Kakasi {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultKakasiBinary
	}
	return &Kakasi{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (k *Kakasi) WithCommandRunner(runner func(ctx context.Context, stdin string, name string, args ...string) (string, error)) {
	k.commandRunner = runner
}

// Binary returns the executable name.
func (k *Kakasi) Binary() string {
	return k.binary
}

// Romanize implements Romanizer. Lines are sent in a single invocation.
func (k *Kakasi) Romanize(ctx context.Context, lines []string) ([]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	output, err := k.run(ctx, strings.Join(lines, "\n")+"\n", k.binary, kakasiArgs...)
	if err != nil {
		return nil, fmt.Errorf("kakasi: %w", err)
	}
	converted := strings.Split(strings.TrimRight(strings.ReplaceAll(output, "\r\n", "\n"), "\n"), "\n")
	// A trailing run of blank input lines is eaten by TrimRight.
	for len(converted) < len(lines) && strings.TrimSpace(lines[len(converted)]) == "" {
		converted = append(converted, "")
	}
	if len(converted) != len(lines) {
		return nil, fmt.Errorf("kakasi: returned %d lines for %d inputs", len(converted), len(lines))
	}
	out := make([]string, len(converted))
	for i, line := range converted {
		out[i] = strings.Join(DropRepeatedTail(strings.Fields(line)), " ")
	}
	return out, nil
}

func (k *Kakasi) run(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	if k.commandRunner != nil {
		return k.commandRunner(ctx, stdin, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
