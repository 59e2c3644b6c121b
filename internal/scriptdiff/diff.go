// Package scriptdiff compares two scripts line by line.
package scriptdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"subforge/internal/document"
)

// Op says how a line changed.
type Op int

const (
	Equal Op = iota
	Added
	Removed
)

func (o Op) prefix() string {
	switch o {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a diff.
type Line struct {
	Op   Op
	Text string
}

// Result is the outcome of comparing two scripts.
type Result struct {
	Lines   []Line
	Added   int
	Removed int
}

// Changed reports whether the scripts differ.
func (r Result) Changed() bool { return r.Added > 0 || r.Removed > 0 }

// Documents diffs the written form of two documents.
func Documents(base, head *document.Document) Result {
	return Text(base.String(), head.String())
}

// Text diffs two texts by whole lines.
func Text(base, head string) Result {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(base, head)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var r Result
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Added
		case diffmatchpatch.DiffDelete:
			op = Removed
		}
		for _, text := range splitLines(d.Text) {
			r.Lines = append(r.Lines, Line{Op: op, Text: text})
			switch op {
			case Added:
				r.Added++
			case Removed:
				r.Removed++
			}
		}
	}
	return r
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Format renders r with +/- prefixes. context limits the unchanged lines
// kept around each change; a negative value keeps all of them.
func (r Result) Format(context int) string {
	keep := make([]bool, len(r.Lines))
	for i, l := range r.Lines {
		if l.Op != Equal || context < 0 {
			keep[i] = true
			continue
		}
		for j := max(0, i-context); j <= min(len(r.Lines)-1, i+context); j++ {
			if r.Lines[j].Op != Equal {
				keep[i] = true
				break
			}
		}
	}

	var b strings.Builder
	skipped := false
	for i, l := range r.Lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped && b.Len() > 0 {
			b.WriteString("@@\n")
		}
		skipped = false
		b.WriteString(l.Op.prefix())
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
