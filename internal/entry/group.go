package entry

// Group is the script section an entry belongs to. Groups are ordered: a
// document keeps all entries of a group contiguous and the groups in this
// order.
type Group int

const (
	GroupInfo Group = iota
	GroupStyles
	GroupEvents
	GroupFonts
	GroupGraphics
	// GroupUnknown holds sections this package does not understand. They are
	// kept verbatim after every known section.
	GroupUnknown
)

// GroupCount is the number of groups, for per-group tables.
const GroupCount = int(GroupUnknown) + 1

var groupNames = [GroupCount]string{
	GroupInfo:     "info",
	GroupStyles:   "styles",
	GroupEvents:   "events",
	GroupFonts:    "fonts",
	GroupGraphics: "graphics",
	GroupUnknown:  "unknown",
}

func (g Group) String() string {
	if g < 0 || int(g) >= GroupCount {
		return "invalid"
	}
	return groupNames[g]
}

// Header returns the section header written before the group's entries.
// Unknown sections carry their own header line, so it returns "" for them.
func (g Group) Header() string {
	switch g {
	case GroupInfo:
		return "[Script Info]"
	case GroupStyles:
		return "[V4+ Styles]"
	case GroupEvents:
		return "[Events]"
	case GroupFonts:
		return "[Fonts]"
	case GroupGraphics:
		return "[Graphics]"
	default:
		return ""
	}
}

// FormatLine returns the Format: line written after the header, if any.
func (g Group) FormatLine() string {
	switch g {
	case GroupStyles:
		return "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
	case GroupEvents:
		return "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
	default:
		return ""
	}
}
