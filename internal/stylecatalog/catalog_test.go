package stylecatalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subforge/internal/asscolor"
	"subforge/internal/document"
	"subforge/internal/entry"
)

func sampleDoc() *document.Document {
	doc := document.Default()
	sign := entry.DefaultStyle()
	sign.Name = "Sign"
	sign.Primary = asscolor.Color{R: 0x12, G: 0x34, B: 0x56, A: 0x80}
	sign.Bold = true
	sign.Alignment = 8
	sign.Margins = [4]int{1, 2, 3, 3}
	doc.InsertLine(sign)
	return doc
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := FromDocument("anime", sampleDoc())
	if err != nil {
		t.Fatalf("FromDocument failed: %v", err)
	}
	path, err := Save(dir, c)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(dir, "anime.yaml") {
		t.Fatalf("unexpected path %q", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "&H80563412") {
		t.Fatalf("expected ASS colour notation in YAML:\n%s", raw)
	}

	loaded, err := Load(dir, "anime")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Styles) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(loaded.Styles))
	}
	s, err := loaded.Styles[1].Style()
	if err != nil {
		t.Fatalf("Style failed: %v", err)
	}
	if s.Data() != "Style: Sign,Arial,48,&H80563412,&H000000FF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,2,2,8,1,2,3,1" {
		t.Fatalf("unexpected style line %q", s.Data())
	}
}

func TestFromDocumentSubset(t *testing.T) {
	c, err := FromDocument("signs", sampleDoc(), "sign")
	if err != nil {
		t.Fatalf("FromDocument failed: %v", err)
	}
	if len(c.Styles) != 1 || c.Styles[0].Name != "Sign" {
		t.Fatalf("unexpected styles %+v", c.Styles)
	}
	if _, err := FromDocument("signs", sampleDoc(), "Missing"); err == nil {
		t.Fatal("expected error for missing style")
	}
}

func TestApply(t *testing.T) {
	c, err := FromDocument("anime", sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	c.Styles[0].Size = 72

	target := document.Default()
	added, replaced, err := c.Apply(target, false)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if added != 1 || replaced != 0 {
		t.Fatalf("expected 1 added 0 replaced, got %d %d", added, replaced)
	}
	if s, _ := target.Style("Default"); s.Size != 48 {
		t.Fatalf("expected existing style kept, got size %v", s.Size)
	}

	added, replaced, err = c.Apply(target, true)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if added != 0 || replaced != 2 {
		t.Fatalf("expected 0 added 2 replaced, got %d %d", added, replaced)
	}
	if s, _ := target.Style("Default"); s.Size != 72 {
		t.Fatalf("expected style replaced, got size %v", s.Size)
	}
	if err := target.CheckGroups(); err != nil {
		t.Fatalf("group order broken: %v", err)
	}
}

func TestStyleRecordValidation(t *testing.T) {
	good := RecordFromStyle(entry.DefaultStyle())
	tests := []struct {
		name   string
		mutate func(*StyleRecord)
	}{
		{"no name", func(r *StyleRecord) { r.Name = " " }},
		{"bad alignment", func(r *StyleRecord) { r.Alignment = 0 }},
		{"bad colour", func(r *StyleRecord) { r.Outline = "blue" }},
	}
	for _, tc := range tests {
		r := good
		tc.mutate(&r)
		if _, err := r.Style(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadAndList(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if names, err := List(filepath.Join(dir, "absent")); err != nil || names != nil {
		t.Fatalf("expected empty list for absent dir, got %v %v", names, err)
	}
	for _, name := range []string{"zeta", "alpha"} {
		if _, err := Save(dir, &Catalog{Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	names, err := List(dir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if strings.Join(names, ",") != "alpha,zeta" {
		t.Fatalf("unexpected names %v", names)
	}
	if _, err := Path(dir, "  "); err == nil {
		t.Fatal("expected error for blank name")
	}
}
