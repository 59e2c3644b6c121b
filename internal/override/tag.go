package override

import "strings"

// Tag is one override command such as \b1 or \pos(320,240). Tags whose name
// matches no prototype are invalid; their Name holds the raw text so they
// survive a round trip unchanged.
type Tag struct {
	Name   string
	Params []Param
	valid  bool
}

// ParseTag parses raw, which starts with a backslash.
func ParseTag(raw string) *Tag {
	tag := &Tag{}
	tag.SetText(raw)
	return tag
}

// NewTag builds a valid tag with the named prototype and no parameters set.
// It returns nil when name is not a known tag.
func NewTag(name string) *Tag {
	for i := range prototypes {
		if prototypes[i].name == name {
			tag := &Tag{Name: name, valid: true}
			for _, ps := range prototypes[i].params {
				tag.Params = append(tag.Params, newParam(ps.typ, ps.class))
			}
			return tag
		}
	}
	return nil
}

// SetText reparses the tag from raw text. When the parsed tag would render
// to text that parses differently, as with \b (1) or \t), the tag is kept
// invalid with raw as its name so writing it back is stable.
func (t *Tag) SetText(raw string) {
	t.setText(raw)
	if !t.valid {
		return
	}
	rendered := t.String()
	var again Tag
	again.setText(rendered)
	if again.String() != rendered {
		t.Name = raw
		t.Params = nil
		t.valid = false
	}
}

func (t *Tag) setText(raw string) {
	for i := range prototypes {
		if strings.HasPrefix(raw, prototypes[i].name) {
			t.Name = prototypes[i].name
			t.valid = true
			t.parseParams(raw[len(t.Name):], i)
			return
		}
	}
	t.Name = raw
	t.Params = nil
	t.valid = false
}

// Valid reports whether the tag matched a known prototype.
func (t *Tag) Valid() bool { return t.valid }

// Param returns the i-th parameter, or nil when the prototype declares fewer.
func (t *Tag) Param(i int) *Param {
	if i < 0 || i >= len(t.Params) {
		return nil
	}
	return &t.Params[i]
}

// String renders the tag. Tags with more than one declared parameter are
// written with parentheses; omitted parameters are skipped.
func (t *Tag) String() string {
	if !t.valid {
		return t.Name
	}
	var b strings.Builder
	b.WriteString(t.Name)
	paren := len(t.Params) > 1
	if paren {
		b.WriteByte('(')
	}
	first := true
	for i := range t.Params {
		if t.Params[i].omitted {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(t.Params[i].String())
	}
	if paren {
		b.WriteByte(')')
	}
	return b.String()
}

// Clone returns a deep copy, including any parsed nested blocks.
func (t *Tag) Clone() *Tag {
	out := &Tag{Name: t.Name, valid: t.valid}
	if t.Params != nil {
		out.Params = make([]Param, len(t.Params))
		for i := range t.Params {
			out.Params[i] = t.Params[i].clone()
		}
	}
	return out
}

func (t *Tag) parseParams(text string, protoIndex int) {
	tokens := tokenize(text)
	n := len(tokens)

	// With n tokens only parameters whose mask carries bit n-1 are filled.
	var flag uint
	if n > 0 {
		flag = 1 << (n - 1)
	}

	if (t.Name == `\clip` || t.Name == `\iclip`) && n != 4 {
		protoIndex++
	}

	specs := prototypes[protoIndex].params
	t.Params = make([]Param, 0, len(specs))
	next := 0
	for _, ps := range specs {
		param := newParam(ps.typ, ps.class)
		if ps.mask&flag != 0 && next < n {
			param.SetText(tokens[next])
			next++
		}
		t.Params = append(t.Params, param)
	}
}

// tokenize splits the text following a tag name into parameter tokens.
// Without a leading parenthesis the whole text is a single token. Otherwise
// tokens are split on commas at the outermost level; anything after the
// closing parenthesis is kept as a final token.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	if text[0] != '(' {
		return []string{strings.TrimSpace(text)}
	}

	var tokens []string
	i, depth := 0, 1
	for i < len(text) && depth > 0 {
		i++
		start := i
		for i < len(text) && depth > 0 {
			c := text[i]
			if c == ',' && depth == 1 {
				break
			}
			if c == '(' {
				depth++
			} else if c == ')' {
				depth--
				if depth == 0 {
					break
				}
			}
			i++
		}
		tokens = append(tokens, strings.TrimSpace(text[start:min(i, len(text))]))
	}

	if i+1 < len(text) {
		tokens = append(tokens, text[i+1:])
	}
	return tokens
}

// splitTags splits override text at each backslash that is not inside a
// parenthesised argument. Text before the first backslash is a chunk of its
// own.
func splitTags(text string) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	depth, start := 0, 0
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '\\':
			if depth == 0 {
				chunks = append(chunks, text[start:i])
				start = i
			}
		}
	}
	return append(chunks, text[start:])
}

// parseTagList parses every chunk of text as a tag. Chunks that are not a
// known tag become invalid tags holding their raw text.
func parseTagList(text string) []*Tag {
	chunks := splitTags(text)
	tags := make([]*Tag, len(chunks))
	for i, chunk := range chunks {
		tags[i] = ParseTag(chunk)
	}
	return tags
}

// rawTagList keeps every chunk of text verbatim as an invalid tag.
func rawTagList(text string) []*Tag {
	chunks := splitTags(text)
	tags := make([]*Tag, len(chunks))
	for i, chunk := range chunks {
		tags[i] = &Tag{Name: chunk}
	}
	return tags
}

func renderTags(tags []*Tag) string {
	var b strings.Builder
	for _, tag := range tags {
		b.WriteString(tag.String())
	}
	return b.String()
}
