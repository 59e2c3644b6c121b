package entry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLine marks a Style or Dialogue line that cannot be parsed.
var ErrMalformedLine = errors.New("malformed line")

// ParseError reports a structurally malformed line. Line is the 1-based
// source line when known.
type ParseError struct {
	Line   int
	Kind   string
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: malformed %s: %s: %q", e.Line, e.Kind, e.Reason, e.Text)
	}
	return fmt.Sprintf("malformed %s: %s: %q", e.Kind, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrMalformedLine }

// ErrorKind classifies parse failures as validation errors.
func (e *ParseError) ErrorKind() string { return "validation" }

// Entry is one line of a script. The concrete types are *Info, *Style,
// *Dialogue, *Attachment and *Generic; callers switch on them exhaustively.
type Entry interface {
	Group() Group
	// Data is the entry as written to a file. Attachments span several lines.
	Data() string
	Clone() Entry
	entry()
}

// Info is a Script Info key/value pair.
type Info struct {
	Key   string
	Value string
}

// ParseInfo splits "Key: Value". Lines without a colon become a key with an
// empty value.
func ParseInfo(line string) *Info {
	key, value, _ := strings.Cut(line, ":")
	return &Info{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)}
}

func (i *Info) Group() Group { return GroupInfo }
func (i *Info) Data() string { return i.Key + ": " + i.Value }
func (i *Info) Clone() Entry { c := *i; return &c }
func (i *Info) entry()       {}

// Generic is a line kept verbatim: comments, and the header and body lines of
// unknown sections.
type Generic struct {
	Section Group
	Raw     string
	// Header marks the [Section] line that opens an unknown section.
	Header bool
}

func (g *Generic) Group() Group { return g.Section }
func (g *Generic) Data() string { return g.Raw }
func (g *Generic) Clone() Entry { c := *g; return &c }
func (g *Generic) entry()       {}
