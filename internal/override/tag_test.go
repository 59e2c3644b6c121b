package override

import (
	"errors"
	"testing"
)

func presence(tag *Tag) []bool {
	out := make([]bool, len(tag.Params))
	for i := range tag.Params {
		out[i] = !tag.Params[i].Omitted()
	}
	return out
}

func equalBools(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOptionalParameterSelection(t *testing.T) {
	cases := []struct {
		raw     string
		name    string
		present []bool
		out     string
	}{
		{`\t(\fs20)`, `\t`, []bool{false, false, false, true}, `\t(\fs20)`},
		{`\t(0.5,\fs20)`, `\t`, []bool{false, false, true, true}, `\t(0.5,\fs20)`},
		{`\t(0,500,\fs20)`, `\t`, []bool{true, true, false, true}, `\t(0,500,\fs20)`},
		{`\t(0,500,2,\fs20)`, `\t`, []bool{true, true, true, true}, `\t(0,500,2,\fs20)`},
		{`\move(1,2,3,4)`, `\move`, []bool{true, true, true, true, false, false}, `\move(1,2,3,4)`},
		{`\move(1,2,3,4,10,20)`, `\move`, []bool{true, true, true, true, true, true}, `\move(1,2,3,4,10,20)`},
		{`\move(1,2,3,4,5)`, `\move`, []bool{true, true, true, true, false, false}, `\move(1,2,3,4)`},
		{`\fade(255,0,255)`, `\fade`, []bool{true, true, true, false, false, false, false}, `\fade(255,0,255)`},
		{`\fade(255,0,255,0,100,200,300)`, `\fade`, []bool{true, true, true, true, true, true, true}, `\fade(255,0,255,0,100,200,300)`},
		{`\clip(1,2,3,4)`, `\clip`, []bool{true, true, true, true}, `\clip(1,2,3,4)`},
		{`\clip(m 0 0 l 10 10)`, `\clip`, []bool{false, true}, `\clip(m 0 0 l 10 10)`},
		{`\clip(2,m 0 0 l 10 10)`, `\clip`, []bool{true, true}, `\clip(2,m 0 0 l 10 10)`},
		{`\iclip(m 0 0)`, `\iclip`, []bool{false, true}, `\iclip(m 0 0)`},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			tag := ParseTag(tc.raw)
			if !tag.Valid() || tag.Name != tc.name {
				t.Fatalf("expected valid %s, got %q valid=%v", tc.name, tag.Name, tag.Valid())
			}
			if got := presence(tag); !equalBools(got, tc.present) {
				t.Fatalf("presence = %v, want %v", got, tc.present)
			}
			if got := tag.String(); got != tc.out {
				t.Fatalf("String() = %q, want %q", got, tc.out)
			}
		})
	}
}

func TestLongestPrefixWins(t *testing.T) {
	cases := map[string]string{
		`\fsp5`:      `\fsp`,
		`\fs20`:      `\fs`,
		`\fscx120`:   `\fscx`,
		`\fs+2`:      `\fs+`,
		`\fad(1,2)`:  `\fad`,
		`\an8`:       `\an`,
		`\alpha&H0&`: `\alpha`,
		`\a5`:        `\a`,
		`\bord2`:     `\bord`,
		`\be1`:       `\be`,
		`\blur3`:     `\blur`,
		`\b1`:        `\b`,
		`\kf50`:      `\kf`,
		`\K50`:       `\K`,
		`\frz45`:     `\frz`,
		`\fr45`:      `\fr`,
		`\pbo10`:     `\pbo`,
		`\p1`:        `\p`,
	}
	for raw, want := range cases {
		if got := ParseTag(raw).Name; got != want {
			t.Fatalf("ParseTag(%q).Name = %q, want %q", raw, got, want)
		}
	}
}

func TestInvalidTagIsOpaque(t *testing.T) {
	tag := ParseTag(`\foo(1,2)`)
	if tag.Valid() {
		t.Fatal("expected unknown tag to be invalid")
	}
	if tag.String() != `\foo(1,2)` {
		t.Fatalf("expected verbatim round trip, got %q", tag.String())
	}
	if tag.Param(0) != nil {
		t.Fatal("expected no parameters on invalid tag")
	}
}

func TestTypedAccess(t *testing.T) {
	if n, err := ParseTag(`\1a&H80&`).Param(0).Int(); err != nil || n != 0x80 {
		t.Fatalf("alpha int = %d, %v", n, err)
	}
	if n, _ := ParseTag(`\alpha&HFFF&`).Param(0).Int(); n != 255 {
		t.Fatalf("expected alpha clamp, got %d", n)
	}
	if n, _ := ParseTag(`\alphaZZ`).Param(0).Int(); n != 0 {
		t.Fatalf("expected non-hex alpha to read 0, got %d", n)
	}
	if n, _ := ParseTag(`\b700`).Param(0).Int(); n != 700 {
		t.Fatalf("expected 700, got %d", n)
	}
	if n, _ := ParseTag(`\bfoo`).Param(0).Int(); n != 0 {
		t.Fatalf("expected garbage to read 0, got %d", n)
	}
	if b, _ := ParseTag(`\i1`).Param(0).Bool(); !b {
		t.Fatal("expected \\i1 to be true")
	}
	pos := ParseTag(`\pos(10.5, 20)`)
	if x, _ := pos.Param(0).Float(); x != 10.5 {
		t.Fatalf("expected x 10.5, got %v", x)
	}
	if y, _ := pos.Param(1).Float(); y != 20 {
		t.Fatalf("expected y 20, got %v", y)
	}
	if pos.String() != `\pos(10.5,20)` {
		t.Fatalf("expected trimmed tokens, got %q", pos.String())
	}
	c, err := ParseTag(`\c&H0000FF&`).Param(0).Color()
	if err != nil || c.R != 255 || c.G != 0 || c.B != 0 {
		t.Fatalf("unexpected colour %+v %v", c, err)
	}
}

func TestOmittedParameterErrors(t *testing.T) {
	tag := ParseTag(`\b`)
	if _, err := tag.Param(0).Int(); !errors.Is(err, ErrOmitted) {
		t.Fatalf("expected ErrOmitted, got %v", err)
	}
	if tag.Param(0).IntOr(7) != 7 {
		t.Fatal("expected default for omitted parameter")
	}
	if _, err := ParseTag(`\move(1,2,3,4)`).Param(4).Int(); !errors.Is(err, ErrOmitted) {
		t.Fatalf("expected ErrOmitted for missing time, got %v", err)
	}
	if _, err := ParseTag(`\b1`).Param(0).Block(); !errors.Is(err, ErrWrongType) {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
}

func TestTrailingTextBecomesToken(t *testing.T) {
	if got := tokenize("(1,2)x"); len(got) != 3 || got[2] != "x" {
		t.Fatalf("unexpected tokens %q", got)
	}
	if got := tokenize("(1,(2,3))"); len(got) != 2 || got[1] != "(2,3)" {
		t.Fatalf("expected nested parentheses kept together, got %q", got)
	}
	if got := tokenize(""); got != nil {
		t.Fatalf("expected no tokens, got %q", got)
	}
}

func TestBlockParameterEdits(t *testing.T) {
	tag := ParseTag(`\t(0,500,\fs20\bord2)`)
	nested, err := tag.Param(3).Block()
	if err != nil {
		t.Fatalf("Block returned error: %v", err)
	}
	if len(nested) != 2 || nested[0].Name != `\fs` || nested[1].Name != `\bord` {
		t.Fatalf("unexpected nested tags %v", nested)
	}
	nested[0].Param(0).SetFloat(30)
	if got := tag.String(); got != `\t(0,500,\fs30\bord2)` {
		t.Fatalf("expected nested edit to render, got %q", got)
	}

	clone := tag.Clone()
	cloned, _ := clone.Param(3).Block()
	cloned[1].Param(0).SetFloat(4)
	if got := tag.String(); got != `\t(0,500,\fs30\bord2)` {
		t.Fatalf("clone edit leaked into original: %q", got)
	}
	if got := clone.String(); got != `\t(0,500,\fs30\bord4)` {
		t.Fatalf("unexpected clone rendering %q", got)
	}
}

func TestSetters(t *testing.T) {
	tag := NewTag(`\1a`)
	tag.Param(0).SetInt(300)
	if tag.String() != `\1a&HFF&` {
		t.Fatalf("unexpected alpha rendering %q", tag.String())
	}
	pos := NewTag(`\pos`)
	pos.Param(0).SetFloat(1.23456)
	pos.Param(1).SetFloat(2)
	if pos.String() != `\pos(1.235,2)` {
		t.Fatalf("unexpected pos rendering %q", pos.String())
	}
	if NewTag(`\nope`) != nil {
		t.Fatal("expected nil for unknown tag")
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		2:       "2",
		1.5:     "1.5",
		-0.0001: "0",
		100.125: "100.125",
		-3.25:   "-3.25",
	}
	for in, want := range cases {
		if got := FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
