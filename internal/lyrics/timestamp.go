package lyrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MillisecondPolicy controls how the fractional second is reduced to
// milliseconds.
type MillisecondPolicy string

const (
	// MillisecondsCarry rounds and carries a 1000 result into the seconds.
	MillisecondsCarry MillisecondPolicy = "carry"
	// MillisecondsObserved rounds and leaves a 1000 result as is.
	MillisecondsObserved MillisecondPolicy = "observed"
	// MillisecondsTruncate drops the sub-millisecond remainder.
	MillisecondsTruncate MillisecondPolicy = "truncate"
)

// CentisecondPolicy controls how LRC stamps shorten milliseconds.
type CentisecondPolicy string

const (
	// CentisecondsTruncate keeps the first two digits of the millisecond field.
	CentisecondsTruncate CentisecondPolicy = "truncate"
	// CentisecondsRound rounds to the nearest hundredth, carrying as needed.
	CentisecondsRound CentisecondPolicy = "round"
)

// ParseMillisecondPolicy validates a policy name. Empty selects carry.
func ParseMillisecondPolicy(value string) (MillisecondPolicy, error) {
	switch policy := MillisecondPolicy(strings.ToLower(strings.TrimSpace(value))); policy {
	case "":
		return MillisecondsCarry, nil
	case MillisecondsCarry, MillisecondsObserved, MillisecondsTruncate:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown millisecond policy %q", value)
	}
}

// ParseCentisecondPolicy validates a policy name. Empty selects truncate.
func ParseCentisecondPolicy(value string) (CentisecondPolicy, error) {
	switch policy := CentisecondPolicy(strings.ToLower(strings.TrimSpace(value))); policy {
	case "":
		return CentisecondsTruncate, nil
	case CentisecondsTruncate, CentisecondsRound:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown centisecond policy %q", value)
	}
}

// TimeParts is a timestamp split into LRC components. Minutes are unbounded.
type TimeParts struct {
	Minutes      int
	Seconds      int
	Milliseconds int
}

// Decompose splits t seconds into minutes, seconds and milliseconds.
// Negative and non-finite input is treated as zero.
func Decompose(t float64, policy MillisecondPolicy) TimeParts {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		t = 0
	}
	minutes := int(math.Floor(t / 60))
	rem := math.Mod(t, 60)
	seconds := int(math.Floor(rem))
	frac := (rem - float64(seconds)) * 1000

	var ms int
	if policy == MillisecondsTruncate {
		// absorb float representation error, 1.2 must not become 199ms
		ms = int(math.Floor(frac + 1e-6))
		if ms > 999 {
			ms = 999
		}
	} else {
		ms = int(math.RoundToEven(frac))
	}

	parts := TimeParts{Minutes: minutes, Seconds: seconds, Milliseconds: ms}
	if policy == MillisecondsCarry || policy == "" {
		parts = parts.carry()
	}
	return parts
}

func (p TimeParts) carry() TimeParts {
	if p.Milliseconds >= 1000 {
		p.Seconds += p.Milliseconds / 1000
		p.Milliseconds %= 1000
	}
	if p.Seconds >= 60 {
		p.Minutes += p.Seconds / 60
		p.Seconds %= 60
	}
	return p
}

// Format returns the zero-padded "MM", "SS" and "mmm" fields.
func (p TimeParts) Format() (string, string, string) {
	return fmt.Sprintf("%02d", p.Minutes), fmt.Sprintf("%02d", p.Seconds), fmt.Sprintf("%03d", p.Milliseconds)
}

// TotalSeconds returns the timestamp as fractional seconds.
func (p TimeParts) TotalSeconds() float64 {
	return float64(p.Minutes*60+p.Seconds) + float64(p.Milliseconds)/1000
}

// ParseTimeParts reads previously formatted fields back.
func ParseTimeParts(minutes, seconds, milliseconds string) (TimeParts, error) {
	mm, err := strconv.Atoi(strings.TrimSpace(minutes))
	if err != nil {
		return TimeParts{}, fmt.Errorf("parse minutes %q: %w", minutes, err)
	}
	ss, err := strconv.Atoi(strings.TrimSpace(seconds))
	if err != nil {
		return TimeParts{}, fmt.Errorf("parse seconds %q: %w", seconds, err)
	}
	ms, err := strconv.Atoi(strings.TrimSpace(milliseconds))
	if err != nil {
		return TimeParts{}, fmt.Errorf("parse milliseconds %q: %w", milliseconds, err)
	}
	if mm < 0 || ss < 0 || ms < 0 {
		return TimeParts{}, fmt.Errorf("negative time field in %s:%s.%s", minutes, seconds, milliseconds)
	}
	return TimeParts{Minutes: mm, Seconds: ss, Milliseconds: ms}, nil
}

// Stamp renders "MM:SS.cc" from formatted fields.
//
// With CentisecondsTruncate the hundredths are the first two characters of
// the millisecond field exactly as stored, so an observed "1000" yields "10".
func Stamp(minutes, seconds, milliseconds string, policy CentisecondPolicy) (string, error) {
	if policy == CentisecondsRound {
		parts, err := ParseTimeParts(minutes, seconds, milliseconds)
		if err != nil {
			return "", err
		}
		cs := int(math.Round(float64(parts.Milliseconds) / 10))
		parts.Milliseconds = cs * 10
		parts = parts.carry()
		return fmt.Sprintf("%02d:%02d.%02d", parts.Minutes, parts.Seconds, parts.Milliseconds/10), nil
	}
	mmm := strings.TrimSpace(milliseconds)
	for len(mmm) < 3 {
		mmm = "0" + mmm
	}
	return fmt.Sprintf("%s:%s.%s", pad2(minutes), pad2(seconds), mmm[:2]), nil
}

func pad2(value string) string {
	value = strings.TrimSpace(value)
	for len(value) < 2 {
		value = "0" + value
	}
	return value
}
