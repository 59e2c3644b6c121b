package asstime

import (
	"fmt"
	"strconv"
	"strings"
)

// Max is the largest representable time: one millisecond short of ten hours.
const Max = 10*60*60*1000 - 1

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

// Precision selects how many fractional digits Format emits.
type Precision int

const (
	// Centiseconds emits two fractional digits, the native ASS form.
	Centiseconds Precision = iota
	// Milliseconds emits three fractional digits.
	Milliseconds
)

// ParsePrecision maps a configuration value onto a Precision.
func ParsePrecision(value string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "centiseconds", "cs":
		return Centiseconds, nil
	case "milliseconds", "ms":
		return Milliseconds, nil
	default:
		return Centiseconds, fmt.Errorf("time precision: unsupported value %q", value)
	}
}

func (p Precision) String() string {
	if p == Milliseconds {
		return "milliseconds"
	}
	return "centiseconds"
}

// Time is a script timestamp in whole milliseconds.
type Time struct {
	ms int
}

// FromMillis builds a Time, clamping ms into [0, Max].
func FromMillis(ms int) Time {
	return Time{ms: clamp(ms)}
}

func clamp(ms int) int {
	if ms < 0 {
		return 0
	}
	if ms > Max {
		return Max
	}
	return ms
}

// Parse reads H:MM:SS.fff style text. Up to two leading colon fields are
// honoured (hours and minutes); any excess leading fields are skipped. The
// final field is seconds with an arbitrary-precision fraction that is
// truncated or zero-padded to milliseconds. Unparseable fields read as 0.
func Parse(text string) Time {
	text = strings.TrimSpace(text)
	colons := strings.Count(text, ":")
	for ; colons > 2; colons-- {
		text = text[strings.IndexByte(text, ':')+1:]
	}

	fields := strings.Split(text, ":")
	var hours, minutes int
	switch len(fields) {
	case 3:
		hours = atoi(fields[0])
		minutes = atoi(fields[1])
	case 2:
		minutes = atoi(fields[0])
	}
	ms := parseSeconds(fields[len(fields)-1])
	return FromMillis(scale(hours, msPerHour) + scale(minutes, msPerMinute) + ms)
}

// scale multiplies a field by its unit after bounding it to just past Max, so
// the product cannot overflow and still clamps to the right end.
func scale(v, unit int) int {
	limit := Max/unit + 1
	return min(max(v, -limit), limit) * unit
}

// parseSeconds reads "SS.fff" as a fixed-point value with three implied
// decimals.
func parseSeconds(field string) int {
	field = strings.TrimSpace(field)
	whole, frac, _ := strings.Cut(strings.ReplaceAll(field, ",", "."), ".")
	ms := scale(atoi(whole), msPerSecond)
	if frac == "" {
		return ms
	}
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	n, err := strconv.Atoi(frac)
	if err != nil || n < 0 {
		return ms
	}
	return ms + n
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// Millis returns the time in milliseconds.
func (t Time) Millis() int { return t.ms }

// Hours returns the hour component.
func (t Time) Hours() int { return t.ms / msPerHour }

// Minutes returns the minute component (0-59).
func (t Time) Minutes() int { return t.ms / msPerMinute % 60 }

// Seconds returns the second component (0-59).
func (t Time) Seconds() int { return t.ms / msPerSecond % 60 }

// Milliseconds returns the millisecond component (0-999).
func (t Time) Milliseconds() int { return t.ms % msPerSecond }

// Format renders the time as H:MM:SS.cc or H:MM:SS.mmm. The centisecond form
// drops the final digit without rounding.
func (t Time) Format(p Precision) string {
	if p == Milliseconds {
		return fmt.Sprintf("%d:%02d:%02d.%03d", t.Hours(), t.Minutes(), t.Seconds(), t.Milliseconds())
	}
	return fmt.Sprintf("%d:%02d:%02d.%02d", t.Hours(), t.Minutes(), t.Seconds(), t.Milliseconds()/10)
}

// String renders the time in the native ASS centisecond form.
func (t Time) String() string { return t.Format(Centiseconds) }

// Add returns t shifted by delta milliseconds, clamped to the valid range.
func (t Time) Add(delta int) Time { return FromMillis(t.ms + delta) }

// Sub returns t-u in milliseconds.
func (t Time) Sub(u Time) int { return t.ms - u.ms }

// Compare returns -1, 0 or +1.
func (t Time) Compare(u Time) int {
	switch {
	case t.ms < u.ms:
		return -1
	case t.ms > u.ms:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is earlier than u.
func (t Time) Before(u Time) bool { return t.ms < u.ms }

// After reports whether t is later than u.
func (t Time) After(u Time) bool { return t.ms > u.ms }

// Equal compares exact millisecond values.
func (t Time) Equal(u Time) bool { return t.ms == u.ms }

// EqualAt compares t and u at the given precision; at centisecond precision
// the final millisecond digit is ignored.
func (t Time) EqualAt(u Time, p Precision) bool {
	if p == Centiseconds {
		return t.ms/10 == u.ms/10
	}
	return t.ms == u.ms
}

// Truncate drops precision below p.
func (t Time) Truncate(p Precision) Time {
	if p == Centiseconds {
		return Time{ms: t.ms / 10 * 10}
	}
	return t
}
