package override

import "strings"

// BlockKind identifies the variant of a Block.
type BlockKind int

const (
	KindPlain BlockKind = iota
	KindDrawing
	KindOverride
	KindComment
)

func (k BlockKind) String() string {
	switch k {
	case KindDrawing:
		return "drawing"
	case KindOverride:
		return "override"
	case KindComment:
		return "comment"
	default:
		return "plain"
	}
}

// Block is one contiguous span of dialogue text.
type Block interface {
	Kind() BlockKind
	// Text is the span as written, without enclosing braces.
	Text() string
	clone() Block
}

// Plain is ordinary visible text.
type Plain struct {
	Content string
}

// Drawing is vector drawing commands rendered while \p is non-zero.
type Drawing struct {
	Content string
	Level   int
}

// Comment is a brace-delimited span without any backslash. It is kept
// verbatim and never rendered.
type Comment struct {
	Content string
}

// Override is a brace-delimited list of tags.
type Override struct {
	Tags []*Tag
}

func (b *Plain) Kind() BlockKind    { return KindPlain }
func (b *Drawing) Kind() BlockKind  { return KindDrawing }
func (b *Comment) Kind() BlockKind  { return KindComment }
func (b *Override) Kind() BlockKind { return KindOverride }

func (b *Plain) Text() string   { return b.Content }
func (b *Drawing) Text() string { return b.Content }
func (b *Comment) Text() string { return b.Content }

func (b *Override) Text() string { return renderTags(b.Tags) }

func (b *Plain) clone() Block   { c := *b; return &c }
func (b *Drawing) clone() Block { c := *b; return &c }
func (b *Comment) clone() Block { c := *b; return &c }

func (b *Override) clone() Block {
	out := &Override{Tags: make([]*Tag, len(b.Tags))}
	for i, tag := range b.Tags {
		out.Tags[i] = tag.Clone()
	}
	return out
}

// ParseOverride parses the interior of an override block. Tags that shift
// parenthesis depth when rewritten would split differently on the next
// parse; such blocks keep every tag as raw text.
func ParseOverride(text string) *Override {
	tags := parseTagList(text)
	rendered := renderTags(tags)
	if renderTags(parseTagList(rendered)) != rendered {
		return &Override{Tags: rawTagList(text)}
	}
	return &Override{Tags: tags}
}

// Tokenize splits dialogue text into blocks. A '{' without a closing '}' is
// ordinary text. Braced text without a backslash is a Comment; other braced
// text is an Override. Text between blocks is Drawing while the most recent
// \p tag is non-zero, otherwise Plain. Empty text yields one empty Plain
// block.
func Tokenize(text string) []Block {
	if text == "" {
		return []Block{&Plain{}}
	}

	var blocks []Block
	drawingLevel := 0
	for cur := 0; cur < len(text); {
		if text[cur] == '{' {
			if end := strings.IndexByte(text[cur:], '}'); end >= 0 {
				end += cur
				work := text[cur+1 : end]
				cur = end + 1
				if work != "" && !strings.Contains(work, `\`) {
					blocks = append(blocks, &Comment{Content: work})
					continue
				}
				block := ParseOverride(work)
				for _, tag := range block.Tags {
					if tag.Name == `\p` && tag.valid {
						drawingLevel = max(tag.Params[0].IntOr(0), 0)
					}
				}
				blocks = append(blocks, block)
				continue
			}
		}

		var work string
		if end := strings.IndexByte(text[cur+1:], '{'); end >= 0 {
			end += cur + 1
			work = text[cur:end]
			cur = end
		} else {
			work = text[cur:]
			cur = len(text)
		}
		if drawingLevel == 0 {
			blocks = append(blocks, &Plain{Content: work})
		} else {
			blocks = append(blocks, &Drawing{Content: work, Level: drawingLevel})
		}
	}
	return blocks
}

// Join renders blocks back into dialogue text, wrapping Override and
// Comment blocks in braces.
func Join(blocks []Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch b := block.(type) {
		case *Override, *Comment:
			sb.WriteByte('{')
			sb.WriteString(b.Text())
			sb.WriteByte('}')
		default:
			sb.WriteString(b.Text())
		}
	}
	return sb.String()
}

// StrippedText concatenates the Plain blocks, dropping tags, comments and
// drawings.
func StrippedText(blocks []Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		if b, ok := block.(*Plain); ok {
			sb.WriteString(b.Content)
		}
	}
	return sb.String()
}

// StripTags returns text with every override block, comment and drawing
// removed.
func StripTags(text string) string {
	return StrippedText(Tokenize(text))
}

// CloneBlocks deep-copies a block list.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.clone()
	}
	return out
}

// ProcessParams calls fn for every present parameter of every valid tag in
// blocks, descending into the nested tags of \t.
func ProcessParams(blocks []Block, fn func(tagName string, param *Param)) {
	for _, block := range blocks {
		if b, ok := block.(*Override); ok {
			processTags(b.Tags, fn)
		}
	}
}

func processTags(tags []*Tag, fn func(string, *Param)) {
	for _, tag := range tags {
		if !tag.valid {
			continue
		}
		for i := range tag.Params {
			param := &tag.Params[i]
			if param.omitted {
				continue
			}
			if param.Type == TypeBlock {
				nested, err := param.Block()
				if err == nil {
					processTags(nested, fn)
				}
				continue
			}
			fn(tag.Name, param)
		}
	}
}
