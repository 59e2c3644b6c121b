package override

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"subforge/internal/asscolor"
)

// ErrOmitted is returned when reading a parameter the tag did not supply.
var ErrOmitted = errors.New("override: parameter omitted")

// ErrWrongType is returned when a block is requested from a non-block parameter.
var ErrWrongType = errors.New("override: parameter type mismatch")

// DataType is the storage type declared by a tag prototype.
type DataType int

const (
	TypeText DataType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeBlock
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeBlock:
		return "block"
	default:
		return "text"
	}
}

// Class describes what a parameter means, which drives resampling and
// timing adjustments.
type Class int

const (
	ClassNormal Class = iota
	ClassAbsoluteSize
	ClassAbsolutePosX
	ClassAbsolutePosY
	ClassRelativeSizeX
	ClassRelativeSizeY
	ClassRelativeTimeStart
	ClassRelativeTimeEnd
	ClassKaraoke
	ClassDrawing
	ClassAlpha
	ClassColor
)

var classNames = [...]string{
	ClassNormal:            "normal",
	ClassAbsoluteSize:      "absolute_size",
	ClassAbsolutePosX:      "absolute_pos_x",
	ClassAbsolutePosY:      "absolute_pos_y",
	ClassRelativeSizeX:     "relative_size_x",
	ClassRelativeSizeY:     "relative_size_y",
	ClassRelativeTimeStart: "relative_time_start",
	ClassRelativeTimeEnd:   "relative_time_end",
	ClassKaraoke:           "karaoke",
	ClassDrawing:           "drawing",
	ClassAlpha:             "alpha",
	ClassColor:             "color",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Param is one value inside an override tag. The raw text is kept as written;
// typed accessors interpret it on demand and never fail on malformed numbers.
type Param struct {
	Type  DataType
	Class Class

	omitted bool
	value   string

	// block holds the parsed form of a TypeBlock value once requested.
	block []*Tag
}

func newParam(typ DataType, class Class) Param {
	return Param{Type: typ, Class: class, omitted: true}
}

// Omitted reports whether the tag did not supply this parameter.
func (p *Param) Omitted() bool { return p.omitted }

// String renders the parameter as it appears inside the tag. Omitted
// parameters render as the empty string.
func (p *Param) String() string {
	if p.omitted {
		return ""
	}
	if p.block != nil {
		var b strings.Builder
		for _, tag := range p.block {
			b.WriteString(tag.String())
		}
		p.value = b.String()
	}
	return p.value
}

// Text returns the raw parameter text.
func (p *Param) Text() (string, error) {
	if p.omitted {
		return "", ErrOmitted
	}
	return p.String(), nil
}

// Int returns the parameter as an integer. Alpha parameters read the first
// hexadecimal run and clamp to 0..255; everything else reads a leading
// decimal number. Unparseable text reads as 0.
func (p *Param) Int() (int, error) {
	if p.omitted {
		return 0, ErrOmitted
	}
	if p.Class == ClassAlpha {
		return parseAlpha(p.value), nil
	}
	return atoi(p.value), nil
}

// IntOr returns Int, or def when the parameter was omitted.
func (p *Param) IntOr(def int) int {
	n, err := p.Int()
	if err != nil {
		return def
	}
	return n
}

// Float returns the parameter as a float, reading a leading number.
func (p *Param) Float() (float64, error) {
	if p.omitted {
		return 0, ErrOmitted
	}
	return atof(p.value), nil
}

// FloatOr returns Float, or def when the parameter was omitted.
func (p *Param) FloatOr(def float64) float64 {
	f, err := p.Float()
	if err != nil {
		return def
	}
	return f
}

// Bool treats any non-zero integer as true.
func (p *Param) Bool() (bool, error) {
	n, err := p.Int()
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// Color parses the parameter as an override colour.
func (p *Param) Color() (asscolor.Color, error) {
	if p.omitted {
		return asscolor.Color{}, ErrOmitted
	}
	return asscolor.Parse(p.value), nil
}

// Block returns the nested tags of a block parameter such as the modifiers
// of \t. The tags are parsed on first access and edits to them are reflected
// by String.
func (p *Param) Block() ([]*Tag, error) {
	if p.omitted {
		return nil, ErrOmitted
	}
	if p.Type != TypeBlock {
		return nil, fmt.Errorf("block of %s parameter: %w", p.Type, ErrWrongType)
	}
	if p.block == nil {
		p.block = parseTagList(p.value)
	}
	return p.block, nil
}

// SetText replaces the parameter text, marking it present.
func (p *Param) SetText(value string) {
	p.omitted = false
	p.value = value
	p.block = nil
}

// SetInt stores n. Alpha parameters are written in &HXX& form.
func (p *Param) SetInt(n int) {
	if p.Class == ClassAlpha {
		p.SetText(asscolor.AlphaOverride(uint8(clampInt(n, 0, 255))))
		return
	}
	p.SetText(strconv.Itoa(n))
}

// SetFloat stores f with at most three decimals.
func (p *Param) SetFloat(f float64) {
	p.SetText(FormatFloat(f))
}

// SetBool stores 1 or 0.
func (p *Param) SetBool(b bool) {
	if b {
		p.SetText("1")
		return
	}
	p.SetText("0")
}

// SetColor stores c in override form.
func (p *Param) SetColor(c asscolor.Color) {
	p.SetText(c.AssOverride())
}

// SetBlock replaces the nested tags of a block parameter.
func (p *Param) SetBlock(tags []*Tag) {
	if tags == nil {
		tags = []*Tag{}
	}
	p.omitted = false
	p.block = tags
	p.String()
}

// Omit marks the parameter absent.
func (p *Param) Omit() {
	p.omitted = true
	p.value = ""
	p.block = nil
}

func (p Param) clone() Param {
	out := p
	if p.block != nil {
		out.block = make([]*Tag, len(p.block))
		for i, tag := range p.block {
			out.block[i] = tag.Clone()
		}
	}
	return out
}

// FormatFloat renders f with up to three decimals and no trailing zeros.
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func parseAlpha(s string) int {
	start := strings.IndexFunc(s, isHexDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && isHexDigit(rune(s[end])) {
		end++
	}
	run := s[start:end]
	if len(run) > 8 {
		return 255
	}
	n, err := strconv.ParseUint(run, 16, 64)
	if err != nil {
		return 0
	}
	return clampInt(int(n), 0, 255)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// atoi reads an optional sign and the digits that follow, like C's atoi.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt32
		}
		return math.MaxInt32
	}
	return n
}

// atof reads the longest numeric prefix of s.
func atof(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	mantissa := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		mantissa++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			mantissa++
		}
	}
	if mantissa == 0 {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		digits := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > digits {
			end = exp
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
