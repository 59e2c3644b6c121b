package document

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"subforge/internal/asstime"
	"subforge/internal/entry"
)

// Write renders d in ASS form. Each section gets its header, and Styles and
// Events their Format line, at the first entry of the section. Unknown
// sections carry their own header entries.
func Write(w io.Writer, d *Document) error {
	return WritePrecision(w, d, asstime.Centiseconds)
}

// WritePrecision is Write with dialogue times formatted at precision p.
func WritePrecision(w io.Writer, d *Document, p asstime.Precision) error {
	bw := bufio.NewWriter(w)
	current := entry.Group(-1)
	first := true
	for _, e := range d.All() {
		g := e.Group()
		if g != current || startsUnknownSection(e) {
			if !first {
				bw.WriteString("\n")
			}
			if header := g.Header(); header != "" && g != current {
				bw.WriteString(header)
				bw.WriteString("\n")
				if format := g.FormatLine(); format != "" {
					bw.WriteString(format)
					bw.WriteString("\n")
				}
			}
			current = g
		}
		first = false
		if line, ok := e.(*entry.Dialogue); ok {
			bw.WriteString(line.DataAt(p))
		} else {
			bw.WriteString(e.Data())
		}
		bw.WriteString("\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}

func startsUnknownSection(e entry.Entry) bool {
	g, ok := e.(*entry.Generic)
	return ok && g.Section == entry.GroupUnknown && g.Header
}

// String renders d to a string.
func (d *Document) String() string {
	var b strings.Builder
	_ = Write(&b, d)
	return b.String()
}
