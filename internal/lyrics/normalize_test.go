package lyrics

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct{ input, want string }{
		{"Hello, World!", "helloworld"},
		{"  君の 名は。 ", "君の名は"},
		{"ＡＢＣ１２３", "abc123"},
		{"don't stop", "dontstop"},
		{"", ""},
		{"...", ""},
		{"ｶﾀｶﾅ", "カタカナ"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitTranscript(t *testing.T) {
	got := SplitTranscript("\n a\r\n\r\nb\n\n")
	want := []string{"a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitTranscript = %q, want %q", got, want)
	}
	if lines := SplitTranscript("  \n\t "); lines != nil {
		t.Fatalf("expected nil for whitespace transcript, got %q", lines)
	}
	if joined := JoinTranscript(want); joined != "a\n\nb" {
		t.Fatalf("JoinTranscript = %q", joined)
	}
}

func TestDiagnose(t *testing.T) {
	tokens := []Token{tok("hello", 0, 0.5), tok("world", 0.5, 1.2)}
	lines := Reconstruct([]string{"hello", "", "xyz", "world"}, tokens)
	mismatches := Diagnose(lines, tokens)
	if len(mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %+v", mismatches)
	}
	m := mismatches[0]
	if m.Index != 2 || m.Target != "xyz" || m.Upcoming != "world" {
		t.Fatalf("unexpected mismatch %+v", m)
	}
	if !strings.Contains(m.Diff, "[-xyz-]") || !strings.Contains(m.Diff, "{+world+}") {
		t.Fatalf("unexpected diff %q", m.Diff)
	}
}
