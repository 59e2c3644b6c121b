package document

import (
	"iter"
	"strconv"

	"golang.org/x/text/cases"

	"subforge/internal/entry"
)

// Default PlayRes used by renderers when a script declares neither value.
const (
	defaultPlayResX = 384
	defaultPlayResY = 288
)

func foldEqual(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// Styles yields the style entries in script order.
func (d *Document) Styles() iter.Seq2[Handle, *entry.Style] {
	return entriesOf[*entry.Style](d)
}

// Dialogues yields the dialogue and comment lines in script order.
func (d *Document) Dialogues() iter.Seq2[Handle, *entry.Dialogue] {
	return entriesOf[*entry.Dialogue](d)
}

// Attachments yields embedded fonts and graphics in script order.
func (d *Document) Attachments() iter.Seq2[Handle, *entry.Attachment] {
	return entriesOf[*entry.Attachment](d)
}

func entriesOf[T entry.Entry](d *Document) iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for h, e := range d.All() {
			if v, ok := e.(T); ok {
				if !yield(h, v) {
					return
				}
			}
		}
	}
}

// Style finds a style by case-insensitive name.
func (d *Document) Style(name string) (*entry.Style, bool) {
	for _, s := range d.Styles() {
		if foldEqual(s.Name, name) {
			return s, true
		}
	}
	return nil, false
}

// StyleNames lists style names in script order.
func (d *Document) StyleNames() []string {
	var names []string
	for _, s := range d.Styles() {
		names = append(names, s.Name)
	}
	return names
}

func (d *Document) findInfo(key string) (Handle, *entry.Info) {
	for h, e := range d.All() {
		if info, ok := e.(*entry.Info); ok && foldEqual(info.Key, key) {
			return h, info
		}
	}
	return Handle{}, nil
}

// ScriptInfo returns the value of the first Script Info key matching key
// case-insensitively.
func (d *Document) ScriptInfo(key string) (string, bool) {
	if _, info := d.findInfo(key); info != nil {
		return info.Value, true
	}
	return "", false
}

// ScriptInfoInt reads a numeric Script Info value, returning def when the key
// is missing or not a number.
func (d *Document) ScriptInfoInt(key string, def int) int {
	value, ok := d.ScriptInfo(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// SetScriptInfo updates key in place, deletes it when value is empty, or
// appends it to the Script Info section.
func (d *Document) SetScriptInfo(key, value string) {
	h, info := d.findInfo(key)
	switch {
	case info != nil && value == "":
		_ = d.Delete(h)
	case info != nil:
		info.Value = value
	case value != "":
		d.InsertLine(&entry.Info{Key: key, Value: value})
	}
}

// PlayRes returns the script resolution. A missing dimension is derived from
// the other assuming 4:3 (5:4 for 1280 wide); with neither set the renderer
// default of 384x288 applies.
func (d *Document) PlayRes() (int, int) {
	x := d.ScriptInfoInt("PlayResX", 0)
	y := d.ScriptInfoInt("PlayResY", 0)
	switch {
	case x <= 0 && y <= 0:
		return defaultPlayResX, defaultPlayResY
	case x <= 0:
		if y == 1024 {
			return 1280, y
		}
		return y * 4 / 3, y
	case y <= 0:
		if x == 1280 {
			return x, 1024
		}
		return x, x * 3 / 4
	}
	return x, y
}

// Resample rescales every style and dialogue line to a new script
// resolution and records it in Script Info.
func (d *Document) Resample(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	oldX, oldY := d.PlayRes()
	sx := float64(width) / float64(oldX)
	sy := float64(height) / float64(oldY)
	for _, s := range d.Styles() {
		s.Scale(sx, sy)
	}
	for _, line := range d.Dialogues() {
		line.Scale(sx, sy)
	}
	d.SetScriptInfo("PlayResX", strconv.Itoa(width))
	d.SetScriptInfo("PlayResY", strconv.Itoa(height))
}

// Default returns a new script with the standard Script Info keys, the
// Default style and one empty line.
func Default() *Document {
	d := New()
	for _, kv := range [][2]string{
		{"Title", "Untitled"},
		{"ScriptType", "v4.00+"},
		{"WrapStyle", "0"},
		{"ScaledBorderAndShadow", "yes"},
		{"PlayResX", "640"},
		{"PlayResY", "480"},
		{"YCbCr Matrix", "None"},
	} {
		d.InsertLine(&entry.Info{Key: kv[0], Value: kv[1]})
	}
	d.InsertLine(entry.DefaultStyle())
	d.InsertLine(entry.NewDialogue())
	return d
}

// Counts returns the number of entries per group.
func (d *Document) Counts() [entry.GroupCount]int {
	var counts [entry.GroupCount]int
	for _, e := range d.All() {
		counts[e.Group()]++
	}
	return counts
}
