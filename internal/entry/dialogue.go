package entry

import (
	"math"
	"strconv"
	"strings"

	"subforge/internal/asstime"
	"subforge/internal/override"
)

const dialogueFields = 10

// Dialogue is an event line. Comment lines share the layout and are never
// rendered.
type Dialogue struct {
	Comment bool
	Layer   int
	Start   asstime.Time
	End     asstime.Time
	Style   string
	Actor   string
	Effect  string
	// Margins are left, right, top and bottom overrides; zero means the
	// style's margin.
	Margins [4]int

	text   string
	blocks []override.Block
}

// NewDialogue returns an empty Default-styled line five seconds long.
func NewDialogue() *Dialogue {
	return &Dialogue{
		Style: "Default",
		End:   asstime.FromMillis(5000),
	}
}

// ParseDialogue parses a "Dialogue:" or "Comment:" line. The text field is
// everything after the ninth comma and is kept verbatim.
func ParseDialogue(line string) (*Dialogue, error) {
	d := &Dialogue{}
	rest, ok := strings.CutPrefix(line, "Dialogue:")
	if !ok {
		rest, ok = strings.CutPrefix(line, "Comment:")
		if !ok {
			return nil, &ParseError{Kind: "dialogue", Text: line, Reason: "missing Dialogue: or Comment: prefix"}
		}
		d.Comment = true
	}
	rest = strings.TrimLeft(rest, " ")

	fields := strings.SplitN(rest, ",", dialogueFields)
	if len(fields) != dialogueFields {
		return nil, &ParseError{
			Kind:   "dialogue",
			Text:   line,
			Reason: "expected " + strconv.Itoa(dialogueFields) + " fields, got " + strconv.Itoa(len(fields)),
		}
	}

	f := fieldReader{fields: fields}
	layer := strings.TrimSpace(f.next())
	if !hasFoldPrefix(layer, "marked=") {
		d.Layer, _ = strconv.Atoi(layer)
	}
	d.Start = asstime.Parse(f.next())
	d.End = asstime.Parse(f.next())
	d.Style = strings.TrimSpace(f.next())
	d.Actor = strings.TrimSpace(f.next())
	for i := 0; i < 3; i++ {
		d.Margins[i] = clampMargin(f.int())
	}
	d.Margins[3] = d.Margins[2]
	d.Effect = strings.TrimSpace(f.next())
	d.text = f.next()
	return d, nil
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func (d *Dialogue) Group() Group { return GroupEvents }
func (d *Dialogue) entry()       {}

// Clone returns an independent copy, including any cached blocks.
func (d *Dialogue) Clone() Entry {
	c := *d
	c.blocks = override.CloneBlocks(d.blocks)
	return &c
}

// Data renders the line with centisecond times. Commas in the style, actor
// and effect fields are replaced; line breaks are dropped from the text.
func (d *Dialogue) Data() string { return d.DataAt(asstime.Centiseconds) }

// DataAt renders the line with times at precision p.
func (d *Dialogue) DataAt(p asstime.Precision) string {
	var b strings.Builder
	if d.Comment {
		b.WriteString("Comment: ")
	} else {
		b.WriteString("Dialogue: ")
	}
	b.WriteString(strconv.Itoa(d.Layer))
	b.WriteByte(',')
	b.WriteString(d.Start.Format(p))
	b.WriteByte(',')
	b.WriteString(d.End.Format(p))
	b.WriteByte(',')
	b.WriteString(unsafeField(d.Style))
	b.WriteByte(',')
	b.WriteString(unsafeField(d.Actor))
	for i := 0; i < 3; i++ {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(d.Margins[i]))
	}
	b.WriteByte(',')
	b.WriteString(unsafeField(d.Effect))
	b.WriteByte(',')
	b.WriteString(strings.NewReplacer("\r", "", "\n", "").Replace(d.text))
	return b.String()
}

// Text returns the raw dialogue text including override blocks.
func (d *Dialogue) Text() string { return d.text }

// SetText replaces the text and drops the cached blocks.
func (d *Dialogue) SetText(text string) {
	d.text = text
	d.blocks = nil
}

// Blocks returns the tokenized text, parsing it on first use. Edits made to
// the returned blocks are written back by SetBlocks.
func (d *Dialogue) Blocks() []override.Block {
	if d.blocks == nil {
		d.blocks = override.Tokenize(d.text)
	}
	return d.blocks
}

// SetBlocks replaces the text with the rendering of blocks.
func (d *Dialogue) SetBlocks(blocks []override.Block) {
	d.text = override.Join(blocks)
	d.blocks = blocks
}

// StrippedText returns the visible text without tags, comments or drawings.
func (d *Dialogue) StrippedText() string {
	return override.StrippedText(d.Blocks())
}

// Duration is End minus Start in milliseconds.
func (d *Dialogue) Duration() int {
	return d.End.Sub(d.Start)
}

// Shift moves both times by delta milliseconds.
func (d *Dialogue) Shift(delta int) {
	d.Start = d.Start.Add(delta)
	d.End = d.End.Add(delta)
}

// Scale adjusts positions, sizes, drawings and margins for a change of
// script resolution.
func (d *Dialogue) Scale(sx, sy float64) {
	if sx <= 0 || sy <= 0 {
		return
	}
	aspect := sx / sy
	blocks := d.Blocks()
	override.ProcessParams(blocks, func(_ string, p *override.Param) {
		var factor float64
		switch p.Class {
		case override.ClassAbsoluteSize, override.ClassAbsolutePosY:
			factor = sy
		case override.ClassAbsolutePosX:
			factor = sx
		case override.ClassRelativeSizeX:
			factor = aspect
		case override.ClassDrawing:
			text, _ := p.Text()
			p.SetText(override.ScaleDrawing(text, sx, sy))
			return
		default:
			return
		}
		v, err := p.Float()
		if err != nil {
			return
		}
		if p.Type == override.TypeInt {
			p.SetInt(int(math.Round(v * factor)))
			return
		}
		p.SetFloat(v * factor)
	})
	for _, block := range blocks {
		if drawing, ok := block.(*override.Drawing); ok {
			drawing.Content = override.ScaleDrawing(drawing.Content, sx, sy)
		}
	}
	d.SetBlocks(blocks)

	for i := 0; i < 2; i++ {
		d.Margins[i] = clampMargin(int(math.Round(float64(d.Margins[i]) * sx)))
	}
	for i := 2; i < 4; i++ {
		d.Margins[i] = clampMargin(int(math.Round(float64(d.Margins[i]) * sy)))
	}
}
