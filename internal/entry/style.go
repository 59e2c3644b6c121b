package entry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"subforge/internal/asscolor"
	"subforge/internal/override"
)

// StyleVersion selects the Style line layout.
type StyleVersion int

const (
	// StyleV4 is the 18-field SSA layout with decimal colours and SSA
	// alignment numbering.
	StyleV4 StyleVersion = iota
	// StyleV4Plus is the 23-field ASS layout.
	StyleV4Plus
)

const (
	styleFieldsV4     = 18
	styleFieldsV4Plus = 23
	maxMargin         = 9999
)

// Style is a named set of default text attributes.
type Style struct {
	Name string
	Font string
	Size float64

	Primary   asscolor.Color
	Secondary asscolor.Color
	Outline   asscolor.Color
	Shadow    asscolor.Color

	Bold      bool
	Italic    bool
	Underline bool
	StrikeOut bool

	ScaleX  float64
	ScaleY  float64
	Spacing float64
	Angle   float64

	BorderStyle  int
	OutlineWidth float64
	ShadowWidth  float64

	// Alignment uses numpad layout: 1-3 bottom, 4-6 middle, 7-9 top.
	Alignment int
	// Margins are left, right, top and bottom. Files store one vertical
	// margin, which is read into both top and bottom.
	Margins  [4]int
	Encoding int
}

// DefaultStyle returns the style added to scripts that define none.
func DefaultStyle() *Style {
	return &Style{
		Name:         "Default",
		Font:         "Arial",
		Size:         48,
		Primary:      asscolor.White,
		Secondary:    asscolor.Red,
		Outline:      asscolor.Black,
		Shadow:       asscolor.Black,
		ScaleX:       100,
		ScaleY:       100,
		BorderStyle:  1,
		OutlineWidth: 2,
		ShadowWidth:  2,
		Alignment:    2,
		Margins:      [4]int{10, 10, 10, 10},
		Encoding:     1,
	}
}

// ParseStyle parses a "Style:" line in the given layout. A wrong field count
// is a *ParseError; malformed numbers read as zero.
func ParseStyle(line string, version StyleVersion) (*Style, error) {
	rest, ok := strings.CutPrefix(line, "Style:")
	if !ok {
		return nil, &ParseError{Kind: "style", Text: line, Reason: "missing Style: prefix"}
	}
	want := styleFieldsV4Plus
	if version == StyleV4 {
		want = styleFieldsV4
	}
	fields := strings.Split(rest, ",")
	if len(fields) != want {
		return nil, &ParseError{
			Kind:   "style",
			Text:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", want, len(fields)),
		}
	}

	f := fieldReader{fields: fields}
	s := &Style{
		Name:      strings.TrimSpace(f.next()),
		Font:      strings.TrimSpace(f.next()),
		Size:      f.float(),
		Primary:   asscolor.Parse(f.next()),
		Secondary: asscolor.Parse(f.next()),
		Outline:   asscolor.Parse(f.next()),
		Shadow:    asscolor.Parse(f.next()),
		Bold:      f.int() != 0,
		Italic:    f.int() != 0,
		ScaleX:    100,
		ScaleY:    100,
	}
	if version == StyleV4Plus {
		s.Underline = f.int() != 0
		s.StrikeOut = f.int() != 0
		s.ScaleX = f.float()
		s.ScaleY = f.float()
		s.Spacing = f.float()
		s.Angle = f.float()
	}
	s.BorderStyle = f.int()
	s.OutlineWidth = f.float()
	s.ShadowWidth = f.float()
	s.Alignment = f.int()
	if version == StyleV4 {
		s.Alignment = SsaToAssAlignment(s.Alignment)
	}
	for i := 0; i < 3; i++ {
		s.Margins[i] = clampMargin(f.int())
	}
	s.Margins[3] = s.Margins[2]
	if version == StyleV4 {
		f.next() // alpha level, unused by ASS renderers
	}
	s.Encoding = f.int()
	return s, nil
}

func (s *Style) Group() Group { return GroupStyles }
func (s *Style) Clone() Entry { c := *s; return &c }
func (s *Style) entry()       {}

// Data renders the style in the 23-field ASS layout. Commas in the name and
// font are replaced because they would shift every later field.
func (s *Style) Data() string {
	var b strings.Builder
	b.WriteString("Style: ")
	fields := []string{
		unsafeField(s.Name),
		unsafeField(s.Font),
		override.FormatFloat(s.Size),
		s.Primary.AssStyle(),
		s.Secondary.AssStyle(),
		s.Outline.AssStyle(),
		s.Shadow.AssStyle(),
		assBool(s.Bold),
		assBool(s.Italic),
		assBool(s.Underline),
		assBool(s.StrikeOut),
		override.FormatFloat(s.ScaleX),
		override.FormatFloat(s.ScaleY),
		override.FormatFloat(s.Spacing),
		override.FormatFloat(s.Angle),
		strconv.Itoa(s.BorderStyle),
		override.FormatFloat(s.OutlineWidth),
		override.FormatFloat(s.ShadowWidth),
		strconv.Itoa(s.Alignment),
		strconv.Itoa(s.Margins[0]),
		strconv.Itoa(s.Margins[1]),
		strconv.Itoa(s.Margins[2]),
		strconv.Itoa(s.Encoding),
	}
	b.WriteString(strings.Join(fields, ","))
	return b.String()
}

// Scale adjusts the style for a change of script resolution. sx and sy are
// the horizontal and vertical scale factors.
func (s *Style) Scale(sx, sy float64) {
	if sx <= 0 || sy <= 0 {
		return
	}
	s.Size *= sy
	s.OutlineWidth *= sy
	s.ShadowWidth *= sy
	s.Spacing *= sx
	s.ScaleX *= sx / sy
	s.Margins[0] = clampMargin(int(math.Round(float64(s.Margins[0]) * sx)))
	s.Margins[1] = clampMargin(int(math.Round(float64(s.Margins[1]) * sx)))
	s.Margins[2] = clampMargin(int(math.Round(float64(s.Margins[2]) * sy)))
	s.Margins[3] = clampMargin(int(math.Round(float64(s.Margins[3]) * sy)))
}

// SsaToAssAlignment converts legacy SSA alignment numbers to numpad layout.
func SsaToAssAlignment(a int) int {
	switch a {
	case 1, 2, 3:
		return a
	case 5, 6, 7:
		return a + 2
	case 9, 10, 11:
		return a - 5
	default:
		return 2
	}
}

// AssToSsaAlignment is the inverse of SsaToAssAlignment.
func AssToSsaAlignment(a int) int {
	switch a {
	case 1, 2, 3:
		return a
	case 4, 5, 6:
		return a + 5
	case 7, 8, 9:
		return a - 2
	default:
		return 2
	}
}

type fieldReader struct {
	fields []string
	pos    int
}

func (r *fieldReader) next() string {
	if r.pos >= len(r.fields) {
		return ""
	}
	s := r.fields[r.pos]
	r.pos++
	return s
}

func (r *fieldReader) int() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.next()))
	if err != nil {
		return 0
	}
	return n
}

func (r *fieldReader) float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(r.next()), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func clampMargin(n int) int {
	return min(max(n, 0), maxMargin)
}

func assBool(b bool) string {
	if b {
		return "-1"
	}
	return "0"
}

func unsafeField(s string) string {
	return strings.ReplaceAll(s, ",", ";")
}
