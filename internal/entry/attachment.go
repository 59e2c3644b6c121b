package entry

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// Attachment payloads use a uuencode variant: the base64 bit layout over
// the 64 characters from '!' to '`', without padding.
var uuencoding = base64.NewEncoding(uuAlphabet()).WithPadding(base64.NoPadding)

func uuAlphabet() string {
	var b strings.Builder
	for c := byte(33); c < 97; c++ {
		b.WriteByte(c)
	}
	return b.String()
}

// PayloadLineLength is the width of encoded payload lines.
const PayloadLineLength = 80

const (
	fontHeader    = "fontname: "
	graphicHeader = "filename: "
)

// Attachment is an embedded font or graphic.
type Attachment struct {
	// Filename is the stored name; fonts may carry an SSA "_<encoding>"
	// suffix before the extension.
	Filename string

	group Group
	lines []string
}

// NewAttachment starts an attachment from its "fontname: " or "filename: "
// header line. It returns nil when line is not a header.
func NewAttachment(line string, group Group) *Attachment {
	name, ok := AttachmentHeader(line)
	if !ok {
		return nil
	}
	return &Attachment{Filename: name, group: group}
}

// AttachmentHeader reports whether line starts an attachment and returns the
// stored filename.
func AttachmentHeader(line string) (string, bool) {
	if name, ok := strings.CutPrefix(line, fontHeader); ok {
		return name, true
	}
	if name, ok := strings.CutPrefix(line, graphicHeader); ok {
		return name, true
	}
	return "", false
}

// ValidPayloadLine reports whether line can be part of an encoded payload.
func ValidPayloadLine(line string) bool {
	if len(line) == 0 || len(line) > PayloadLineLength {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] < 33 || line[i] >= 97 {
			return false
		}
	}
	return true
}

// AttachmentFromBytes encodes data as an attachment. TrueType fonts get the
// "_0" encoding suffix SSA expects in embedded font names.
func AttachmentFromBytes(name string, data []byte, group Group) *Attachment {
	name = filepath.Base(name)
	if group == GroupFonts && strings.EqualFold(filepath.Ext(name), ".ttf") {
		name = name[:len(name)-4] + "_0" + name[len(name)-4:]
	}
	a := &Attachment{Filename: name, group: group}
	encoded := uuencoding.EncodeToString(data)
	for len(encoded) > PayloadLineLength {
		a.lines = append(a.lines, encoded[:PayloadLineLength])
		encoded = encoded[PayloadLineLength:]
	}
	if encoded != "" {
		a.lines = append(a.lines, encoded)
	}
	return a
}

// GroupForFilename picks the section an attachment file belongs in.
func GroupForFilename(name string) Group {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".ttc", ".otf", ".pfb", ".fon":
		return GroupFonts
	default:
		return GroupGraphics
	}
}

// AddData appends one encoded payload line.
func (a *Attachment) AddData(line string) {
	a.lines = append(a.lines, line)
}

func (a *Attachment) Group() Group { return a.group }
func (a *Attachment) entry()       {}

func (a *Attachment) Clone() Entry {
	c := *a
	c.lines = append([]string(nil), a.lines...)
	return &c
}

// Data renders the header and payload lines separated by newlines.
func (a *Attachment) Data() string {
	header := graphicHeader
	if a.group == GroupFonts {
		header = fontHeader
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(a.Filename)
	for _, line := range a.lines {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}

// EncodedSize is the number of payload characters.
func (a *Attachment) EncodedSize() int {
	n := 0
	for _, line := range a.lines {
		n += len(line)
	}
	return n
}

// Bytes decodes the payload. A dangling final character carries fewer than
// eight bits and is dropped.
func (a *Attachment) Bytes() ([]byte, error) {
	payload := strings.Join(a.lines, "")
	if len(payload)%4 == 1 {
		payload = payload[:len(payload)-1]
	}
	data, err := uuencoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode attachment %s: %w", a.Filename, err)
	}
	return data, nil
}

// DisplayName strips the SSA encoding suffix from font names.
func (a *Attachment) DisplayName() string {
	if !strings.EqualFold(filepath.Ext(a.Filename), ".ttf") {
		return a.Filename
	}
	under := strings.LastIndexByte(a.Filename, '_')
	if under < 0 {
		return a.Filename
	}
	return a.Filename[:under] + a.Filename[len(a.Filename)-4:]
}
