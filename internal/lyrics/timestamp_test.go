package lyrics

import "testing"

func TestDecompose(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		policy MillisecondPolicy
		want   TimeParts
	}{
		{"zero", 0, MillisecondsCarry, TimeParts{}},
		{"fraction", 1.2, MillisecondsCarry, TimeParts{0, 1, 200}},
		{"minute", 61.5, MillisecondsCarry, TimeParts{1, 1, 500}},
		{"half millisecond rounds up", 61.0005, MillisecondsCarry, TimeParts{1, 1, 1}},
		{"unbounded minutes", 3725.25, MillisecondsCarry, TimeParts{62, 5, 250}},
		{"carry into minute", 59.9996, MillisecondsCarry, TimeParts{1, 0, 0}},
		{"observed keeps 1000", 59.9996, MillisecondsObserved, TimeParts{0, 59, 1000}},
		{"truncate", 59.9996, MillisecondsTruncate, TimeParts{0, 59, 999}},
		{"truncate exact tenth", 1.2, MillisecondsTruncate, TimeParts{0, 1, 200}},
		{"negative clamps", -3, MillisecondsCarry, TimeParts{}},
		{"default policy carries", 0.9999, "", TimeParts{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decompose(tt.input, tt.policy)
			if got != tt.want {
				t.Fatalf("Decompose(%v, %q) = %+v, want %+v", tt.input, tt.policy, got, tt.want)
			}
		})
	}
}

func TestTimePartsFormat(t *testing.T) {
	mm, ss, mmm := TimeParts{Minutes: 1, Seconds: 2, Milliseconds: 3}.Format()
	if mm != "01" || ss != "02" || mmm != "003" {
		t.Fatalf("Format = %s %s %s", mm, ss, mmm)
	}
	mm, _, mmm = TimeParts{Minutes: 123, Milliseconds: 1000}.Format()
	if mm != "123" || mmm != "1000" {
		t.Fatalf("wide Format = %s %s", mm, mmm)
	}
}

func TestStamp(t *testing.T) {
	tests := []struct {
		name        string
		mm, ss, mmm string
		policy      CentisecondPolicy
		want        string
	}{
		{"truncates", "00", "01", "209", CentisecondsTruncate, "00:01.20"},
		{"truncates observed overflow", "00", "59", "1000", CentisecondsTruncate, "00:59.10"},
		{"pads short field", "0", "1", "5", CentisecondsTruncate, "00:01.00"},
		{"rounds", "00", "01", "209", CentisecondsRound, "00:01.21"},
		{"round carries", "00", "59", "996", CentisecondsRound, "01:00.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Stamp(tt.mm, tt.ss, tt.mmm, tt.policy)
			if err != nil {
				t.Fatalf("Stamp: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Stamp = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStampRejectsGarbageWhenRounding(t *testing.T) {
	if _, err := Stamp("aa", "00", "000", CentisecondsRound); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseMillisecondPolicy(""); err != nil || p != MillisecondsCarry {
		t.Fatalf("empty millisecond policy = %q, %v", p, err)
	}
	if p, err := ParseMillisecondPolicy(" Observed "); err != nil || p != MillisecondsObserved {
		t.Fatalf("observed policy = %q, %v", p, err)
	}
	if _, err := ParseMillisecondPolicy("floor"); err == nil {
		t.Fatal("expected error for unknown millisecond policy")
	}
	if p, err := ParseCentisecondPolicy(""); err != nil || p != CentisecondsTruncate {
		t.Fatalf("empty centisecond policy = %q, %v", p, err)
	}
	if _, err := ParseCentisecondPolicy("ceil"); err == nil {
		t.Fatal("expected error for unknown centisecond policy")
	}
}
