package document

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"subforge/internal/entry"
	"subforge/internal/logging"
)

type parseState int

const (
	stateInfo parseState = iota
	stateStyles
	stateEvents
	stateFonts
	stateGraphics
	stateUnknown
)

// Parser builds a Document from script lines fed one at a time. It is a
// state machine keyed on the current section; Fonts and Graphics sections
// switch into attachment accumulation while a payload is being read.
type Parser struct {
	doc      *Document
	logger   *slog.Logger
	state    parseState
	handlers [stateUnknown + 1]func(p *Parser, line string) error
	version  entry.StyleVersion
	legacy   bool
	attach   *entry.Attachment
	lineNo   int

	// counts tracks entries per group so appends land at the end of their
	// section without scanning the document.
	counts [entry.GroupCount]int
}

// NewParser returns a parser that starts in the Script Info section.
func NewParser(logger *slog.Logger) *Parser {
	p := &Parser{
		doc:     New(),
		logger:  logging.NewComponentLogger(logger, "parser"),
		version: entry.StyleV4Plus,
	}
	p.handlers = [...]func(*Parser, string) error{
		stateInfo:     (*Parser).infoLine,
		stateStyles:   (*Parser).styleLine,
		stateEvents:   (*Parser).eventLine,
		stateFonts:    (*Parser).fontLine,
		stateGraphics: (*Parser).graphicLine,
		stateUnknown:  (*Parser).unknownLine,
	}
	return p
}

// Parse reads a whole script. A byte order mark selects the encoding;
// without one the input is read as UTF-8.
func Parse(r io.Reader, logger *slog.Logger) (*Document, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	p := NewParser(logger)
	for scanner.Scan() {
		if err := p.AddLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return p.Finish(), nil
}

// ParseLines builds a Document from already decoded lines.
func ParseLines(lines iter.Seq[string], logger *slog.Logger) (*Document, error) {
	p := NewParser(logger)
	for line := range lines {
		if err := p.AddLine(line); err != nil {
			return nil, err
		}
	}
	return p.Finish(), nil
}

// AddLine feeds the next line. A malformed Style or Dialogue line returns
// a *entry.ParseError carrying the line number; the parser must then be
// discarded.
func (p *Parser) AddLine(line string) error {
	p.lineNo++
	line = strings.TrimSuffix(line, "\r")
	if err := p.addLine(line); err != nil {
		var parseErr *entry.ParseError
		if errors.As(err, &parseErr) && parseErr.Line == 0 {
			parseErr.Line = p.lineNo
		}
		return err
	}
	return nil
}

func (p *Parser) addLine(line string) error {
	if p.attach != nil {
		return p.attachmentLine(line)
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		p.enterSection(trimmed)
		return nil
	}
	return p.handlers[p.state](p, line)
}

func (p *Parser) enterSection(header string) {
	switch cases.Fold().String(header) {
	case "[script info]":
		p.state = stateInfo
	case "[v4 styles]":
		p.state = stateStyles
		p.version = entry.StyleV4
		p.legacy = true
	case "[v4+ styles]":
		p.state = stateStyles
		p.version = entry.StyleV4Plus
	case "[events]":
		p.state = stateEvents
	case "[fonts]":
		p.state = stateFonts
	case "[graphics]":
		p.state = stateGraphics
	default:
		p.state = stateUnknown
		p.logger.Debug("keeping unknown section verbatim",
			logging.String("section", header),
			logging.Int("line", p.lineNo),
		)
		p.append(&entry.Generic{Section: entry.GroupUnknown, Raw: header, Header: true})
	}
}

func (p *Parser) infoLine(line string) error {
	if strings.HasPrefix(line, ";") {
		p.append(&entry.Generic{Section: entry.GroupInfo, Raw: line})
		return nil
	}
	if !strings.Contains(line, ":") {
		p.append(&entry.Generic{Section: entry.GroupInfo, Raw: line})
		return nil
	}
	info := entry.ParseInfo(line)
	if foldEqual(info.Key, "ScriptType") {
		switch cases.Fold().String(info.Value) {
		case "v4.00":
			p.version = entry.StyleV4
			p.legacy = true
		case "v4.00+":
			p.version = entry.StyleV4Plus
		default:
			logging.WarnWithContext(p.logger, "unknown script type, reading styles as v4.00+", "script_type_unknown",
				logging.String("script_type", info.Value),
				logging.Int("line", p.lineNo),
				logging.String(logging.FieldImpact, "legacy v4.00 styles would be misread"),
			)
		}
	}
	p.append(info)
	return nil
}

func (p *Parser) styleLine(line string) error {
	switch {
	case strings.HasPrefix(line, "Format:"):
		return nil
	case strings.HasPrefix(line, "Style:"):
		style, err := entry.ParseStyle(line, p.version)
		if err != nil {
			return err
		}
		p.append(style)
	default:
		p.append(&entry.Generic{Section: entry.GroupStyles, Raw: line})
	}
	return nil
}

func (p *Parser) eventLine(line string) error {
	switch {
	case strings.HasPrefix(line, "Format:"):
		return nil
	case strings.HasPrefix(line, "Dialogue:"), strings.HasPrefix(line, "Comment:"):
		d, err := entry.ParseDialogue(line)
		if err != nil {
			return err
		}
		p.append(d)
	default:
		p.append(&entry.Generic{Section: entry.GroupEvents, Raw: line})
	}
	return nil
}

func (p *Parser) fontLine(line string) error {
	return p.startAttachment(line, entry.GroupFonts)
}

func (p *Parser) graphicLine(line string) error {
	return p.startAttachment(line, entry.GroupGraphics)
}

func (p *Parser) startAttachment(line string, group entry.Group) error {
	if a := entry.NewAttachment(line, group); a != nil {
		p.attach = a
		return nil
	}
	p.logger.Debug("skipping stray attachment section line",
		logging.String("section", group.String()),
		logging.Int("line", p.lineNo),
	)
	return nil
}

// attachmentLine accumulates payload. A short line completes the
// attachment; a line that cannot be payload completes it and is then
// handled normally.
func (p *Parser) attachmentLine(line string) error {
	_, isHeader := entry.AttachmentHeader(line)
	if isHeader || !entry.ValidPayloadLine(line) {
		p.finishAttachment()
		return p.addLine(line)
	}
	p.attach.AddData(line)
	if len(line) < entry.PayloadLineLength {
		p.finishAttachment()
	}
	return nil
}

func (p *Parser) finishAttachment() {
	if p.attach == nil {
		return
	}
	p.append(p.attach)
	p.attach = nil
}

func (p *Parser) unknownLine(line string) error {
	p.append(&entry.Generic{Section: entry.GroupUnknown, Raw: line})
	return nil
}

func (p *Parser) append(e entry.Entry) Handle {
	g := e.Group()
	pos := 0
	for i := 0; i <= int(g); i++ {
		pos += p.counts[i]
	}
	p.counts[g]++
	return p.doc.insertAt(pos, e)
}

// Finish completes parsing and returns the document. Scripts without styles
// get the Default style and scripts without events get one empty line, so
// every document can be rendered. Legacy v4.00 scripts are relabelled
// v4.00+ because their styles were converted while reading.
func (p *Parser) Finish() *Document {
	p.finishAttachment()
	if !hasStyle(p.doc) {
		p.append(entry.DefaultStyle())
	}
	if !hasDialogue(p.doc) {
		p.append(entry.NewDialogue())
	}
	if p.legacy {
		p.doc.SetScriptInfo("ScriptType", "v4.00+")
	}
	p.logger.Debug("parsed script",
		logging.Int("lines", p.lineNo),
		logging.Int("entries", p.doc.Len()),
	)
	doc := p.doc
	p.doc = New()
	p.counts = [entry.GroupCount]int{}
	return doc
}

func hasStyle(d *Document) bool {
	for range d.Styles() {
		return true
	}
	return false
}

func hasDialogue(d *Document) bool {
	for range d.Dialogues() {
		return true
	}
	return false
}
