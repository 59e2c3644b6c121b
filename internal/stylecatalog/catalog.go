// Package stylecatalog stores named sets of styles as YAML files so they can
// be shared between scripts.
package stylecatalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"subforge/internal/asscolor"
	"subforge/internal/document"
	"subforge/internal/entry"
	"subforge/internal/textutil"
)

const fileExt = ".yaml"

// ErrNotFound is returned when a catalogue file does not exist.
var ErrNotFound = errors.New("style catalogue not found")

// Catalog is a named list of styles.
type Catalog struct {
	Name   string        `yaml:"name"`
	Styles []StyleRecord `yaml:"styles"`
}

// StyleRecord is the YAML form of one style. Colours use the &HAABBGGRR
// notation of style lines.
type StyleRecord struct {
	Name         string  `yaml:"name"`
	Font         string  `yaml:"font"`
	Size         float64 `yaml:"size"`
	Primary      string  `yaml:"primary"`
	Secondary    string  `yaml:"secondary"`
	Outline      string  `yaml:"outline"`
	Shadow       string  `yaml:"shadow"`
	Bold         bool    `yaml:"bold,omitempty"`
	Italic       bool    `yaml:"italic,omitempty"`
	Underline    bool    `yaml:"underline,omitempty"`
	StrikeOut    bool    `yaml:"strikeout,omitempty"`
	ScaleX       float64 `yaml:"scale_x"`
	ScaleY       float64 `yaml:"scale_y"`
	Spacing      float64 `yaml:"spacing,omitempty"`
	Angle        float64 `yaml:"angle,omitempty"`
	BorderStyle  int     `yaml:"border_style"`
	OutlineWidth float64 `yaml:"outline_width"`
	ShadowWidth  float64 `yaml:"shadow_width"`
	Alignment    int     `yaml:"alignment"`
	Margins      Margins `yaml:"margins"`
	Encoding     int     `yaml:"encoding"`
}

// Margins are stored by name rather than position.
type Margins struct {
	Left     int `yaml:"left"`
	Right    int `yaml:"right"`
	Vertical int `yaml:"vertical"`
}

// RecordFromStyle converts s for storage.
func RecordFromStyle(s *entry.Style) StyleRecord {
	return StyleRecord{
		Name:         s.Name,
		Font:         s.Font,
		Size:         s.Size,
		Primary:      s.Primary.AssStyle(),
		Secondary:    s.Secondary.AssStyle(),
		Outline:      s.Outline.AssStyle(),
		Shadow:       s.Shadow.AssStyle(),
		Bold:         s.Bold,
		Italic:       s.Italic,
		Underline:    s.Underline,
		StrikeOut:    s.StrikeOut,
		ScaleX:       s.ScaleX,
		ScaleY:       s.ScaleY,
		Spacing:      s.Spacing,
		Angle:        s.Angle,
		BorderStyle:  s.BorderStyle,
		OutlineWidth: s.OutlineWidth,
		ShadowWidth:  s.ShadowWidth,
		Alignment:    s.Alignment,
		Margins:      Margins{Left: s.Margins[0], Right: s.Margins[1], Vertical: s.Margins[2]},
		Encoding:     s.Encoding,
	}
}

// Style converts r back into a style entry.
func (r StyleRecord) Style() (*entry.Style, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, errors.New("style without a name")
	}
	if r.Alignment < 1 || r.Alignment > 9 {
		return nil, fmt.Errorf("style %q: alignment %d outside 1-9", r.Name, r.Alignment)
	}
	colours := make([]asscolor.Color, 4)
	for i, raw := range []string{r.Primary, r.Secondary, r.Outline, r.Shadow} {
		c, err := asscolor.ParseStrict(raw)
		if err != nil {
			return nil, fmt.Errorf("style %q: %w", r.Name, err)
		}
		colours[i] = c
	}
	return &entry.Style{
		Name:         r.Name,
		Font:         r.Font,
		Size:         r.Size,
		Primary:      colours[0],
		Secondary:    colours[1],
		Outline:      colours[2],
		Shadow:       colours[3],
		Bold:         r.Bold,
		Italic:       r.Italic,
		Underline:    r.Underline,
		StrikeOut:    r.StrikeOut,
		ScaleX:       r.ScaleX,
		ScaleY:       r.ScaleY,
		Spacing:      r.Spacing,
		Angle:        r.Angle,
		BorderStyle:  r.BorderStyle,
		OutlineWidth: r.OutlineWidth,
		ShadowWidth:  r.ShadowWidth,
		Alignment:    r.Alignment,
		Margins:      [4]int{r.Margins.Left, r.Margins.Right, r.Margins.Vertical, r.Margins.Vertical},
		Encoding:     r.Encoding,
	}, nil
}

// FromDocument collects the styles of doc, or only those named in names.
func FromDocument(name string, doc *document.Document, names ...string) (*Catalog, error) {
	c := &Catalog{Name: name}
	for _, s := range doc.Styles() {
		if len(names) > 0 && !slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, s.Name) }) {
			continue
		}
		c.Styles = append(c.Styles, RecordFromStyle(s))
	}
	if len(names) > 0 && len(c.Styles) != len(names) {
		return nil, fmt.Errorf("catalogue %q: some requested styles are not in the script", name)
	}
	return c, nil
}

// Apply copies the catalogue's styles into doc. Styles whose name already
// exists are replaced when overwrite is set and skipped otherwise.
func (c *Catalog) Apply(doc *document.Document, overwrite bool) (added, replaced int, err error) {
	for _, r := range c.Styles {
		s, err := r.Style()
		if err != nil {
			return added, replaced, err
		}
		if existing, ok := doc.Style(s.Name); ok {
			if !overwrite {
				continue
			}
			*existing = *s
			replaced++
			continue
		}
		doc.InsertLine(s)
		added++
	}
	return added, replaced, nil
}

// Path returns the file that stores catalogue name inside dir.
func Path(dir, name string) (string, error) {
	clean := textutil.SanitizeFileName(name)
	if clean == "" || clean == "." || clean == ".." {
		return "", fmt.Errorf("invalid catalogue name %q", name)
	}
	return filepath.Join(dir, clean+fileExt), nil
}

// Save writes c into dir and returns the file path.
func Save(dir string, c *Catalog) (string, error) {
	path, err := Path(dir, c.Name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create catalogue dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode catalogue: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write catalogue: %w", err)
	}
	return path, nil
}

// Load reads catalogue name from dir.
func Load(dir, name string) (*Catalog, error) {
	path, err := Path(dir, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalogue %s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = name
	}
	return &c, nil
}

// List returns the catalogue names stored in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list catalogues: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	slices.Sort(names)
	return names, nil
}
