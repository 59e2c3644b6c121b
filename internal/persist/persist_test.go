package persist_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"subforge/internal/asstime"
	"subforge/internal/document"
	"subforge/internal/entry"
	"subforge/internal/history"
	"subforge/internal/persist"
)

var _ history.Saver = (*persist.Files)(nil)

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "episode.ass")
	files := persist.New(persist.Options{})

	doc := document.Default()
	for _, line := range doc.Dialogues() {
		line.SetText(`{\b1}hi`)
		line.End = asstime.FromMillis(1234)
	}
	if err := files.Save(ctx, path, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := files.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.String() != doc.String() {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", loaded.String(), doc.String())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "0:00:01.23") {
		t.Fatalf("expected centisecond time in output:\n%s", raw)
	}
}

func TestSaveMilliseconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ms.ass")
	files := persist.New(persist.Options{Precision: asstime.Milliseconds})

	doc := document.Default()
	for _, line := range doc.Dialogues() {
		line.End = asstime.FromMillis(1234)
	}
	if err := files.Save(context.Background(), path, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "0:00:01.234") {
		t.Fatalf("expected millisecond time in output:\n%s", raw)
	}
}

func TestSaveKeepsFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private.ass")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	files := persist.New(persist.Options{})
	if err := files.Save(context.Background(), path, document.Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode to be preserved, got %o", info.Mode().Perm())
	}
}

func TestLoadMalformedIsAllOrNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ass")
	script := "[Script Info]\nScriptType: v4.00+\n\n[Events]\nDialogue: 0,0:00:00.00\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := persist.New(persist.Options{}).Load(context.Background(), path)
	if doc != nil {
		t.Fatal("expected no document for malformed script")
	}
	var parseErr *entry.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 5 {
		t.Fatalf("expected parse error on line 5, got %v", err)
	}
	if !errors.Is(err, entry.ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine in chain, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := persist.New(persist.Options{}).Load(context.Background(), filepath.Join(t.TempDir(), "missing.ass"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSaveWaitsForLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.ass")
	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("lock: %v %v", locked, err)
	}
	defer other.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err = persist.New(persist.Options{}).Save(ctx, path, document.Default())
	if !errors.Is(err, persist.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("expected nothing written while locked")
	}
}

func TestLoadAndSaveLeaveNoLockFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	files := persist.New(persist.Options{})
	path := filepath.Join(dir, "ep.ass")
	if err := files.Save(ctx, path, document.Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := files.Load(ctx, path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := files.Load(ctx, filepath.Join(dir, "missing.ass")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "ep.ass" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only ep.ass, got %v", names)
	}
}

func TestLockTimeoutBoundsWait(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.ass")
	if err := os.WriteFile(path, []byte("[Script Info]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := flock.New(path + ".lock")
	if locked, err := other.TryLock(); err != nil || !locked {
		t.Fatalf("lock: %v %v", locked, err)
	}
	defer other.Unlock()

	tests := []struct {
		name    string
		timeout time.Duration
	}{
		{"bounded wait", 100 * time.Millisecond},
		{"no wait", -1},
	}
	for _, tc := range tests {
		files := persist.New(persist.Options{LockTimeout: tc.timeout})
		start := time.Now()
		if _, err := files.Load(context.Background(), path); !errors.Is(err, persist.ErrLocked) {
			t.Fatalf("%s: expected ErrLocked on load, got %v", tc.name, err)
		}
		if err := files.Save(context.Background(), path, document.Default()); !errors.Is(err, persist.ErrLocked) {
			t.Fatalf("%s: expected ErrLocked on save, got %v", tc.name, err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Fatalf("%s: lock wait took %v", tc.name, elapsed)
		}
	}
}

func TestStoreSavesThroughFiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "live.ass")
	files := persist.New(persist.Options{})
	store := history.New(history.Options{SaveOnEveryChange: true, Saver: files})

	doc := document.Default()
	store.Load(doc, path)
	doc.SetScriptInfo("Title", "Saved on change")
	store.Commit(ctx, "retitle", history.KindScriptInfo, history.NoAmend, document.Handle{})

	loaded, err := files.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if title, _ := loaded.ScriptInfo("Title"); title != "Saved on change" {
		t.Fatalf("unexpected title %q", title)
	}
	if store.IsModified() {
		t.Fatal("expected store to be clean after save on change")
	}
}
