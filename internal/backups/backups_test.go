package backups_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subforge/internal/backups"
	"subforge/internal/document"
	"subforge/internal/history"
	"subforge/internal/logging"
	"subforge/internal/testsupport"
)

var _ history.AutoSaver = (*backups.Writer)(nil)

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newWriter(t *testing.T, retain int) (*backups.Writer, *backups.Catalog, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithRetain(retain))
	catalog := testsupport.MustOpenCatalog(t, cfg)
	clock := &tickingClock{t: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)}
	w := backups.NewWriter(catalog, backups.WriterOptions{
		Dir:    cfg.Autosave.Dir,
		Retain: cfg.Autosave.Retain,
		Now:    clock.now,
	})
	return w, catalog, cfg.Autosave.Dir
}

func TestAutoSaveLogsSessionAndScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := testsupport.MustOpenCatalog(t, cfg)
	var buf bytes.Buffer
	w := backups.NewWriter(catalog, backups.WriterOptions{
		Dir:     cfg.Autosave.Dir,
		Session: "session-1",
		Logger:  slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if w.Session() != "session-1" {
		t.Fatalf("expected configured session, got %q", w.Session())
	}

	ctx := logging.WithScript(context.Background(), "/elsewhere.ass")
	if _, err := w.AutoSave(ctx, "/subs/show.ass", document.Default()); err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decode log record: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "backup recorded" || rec[logging.FieldSessionID] != "session-1" ||
		rec[logging.FieldScript] != "/subs/show.ass" || rec[logging.FieldComponent] != "backups" {
		t.Fatalf("unexpected log record %v", rec)
	}
	if size, ok := rec["size_bytes"].(float64); !ok || size <= 0 {
		t.Fatalf("expected size_bytes, got %v", rec["size_bytes"])
	}

	list, err := catalog.List(context.Background(), "/subs/show.ass")
	if err != nil || len(list) != 1 || list[0].SessionID != "session-1" {
		t.Fatalf("expected backup recorded under session-1, got %+v %v", list, err)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 12, 30, 5, 0, time.UTC)
	tests := []struct {
		script string
		want   string
	}{
		{"/subs/Episode 01.ass", "Episode 01.2024-03-09-12-30-05.AUTOSAVE.ass"},
		{"/subs/movie.ssa", "movie.2024-03-09-12-30-05.AUTOSAVE.ass"},
		{"", "Untitled.2024-03-09-12-30-05.AUTOSAVE.ass"},
		{"/subs/what?.ass", "what.2024-03-09-12-30-05.AUTOSAVE.ass"},
	}
	for _, tc := range tests {
		if got := backups.FileName(tc.script, at); got != tc.want {
			t.Fatalf("FileName(%q) = %q, want %q", tc.script, got, tc.want)
		}
	}
}

func TestAutoSaveWritesAndRecords(t *testing.T) {
	ctx := context.Background()
	w, catalog, dir := newWriter(t, 0)

	doc := document.Default()
	doc.SetScriptInfo("Title", "Backed up")
	written, err := w.AutoSave(ctx, "/subs/show.ass", doc)
	if err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	if filepath.Dir(written) != dir || !strings.HasPrefix(filepath.Base(written), "show.2024-03-09-12-00-01") {
		t.Fatalf("unexpected backup path %q", written)
	}

	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(data), "Title: Backed up") {
		t.Fatalf("backup missing document contents:\n%s", data)
	}

	list, err := catalog.List(ctx, "/subs/show.ass")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(list))
	}
	got := list[0]
	if got.BackupPath != written || got.SessionID != w.Session() || got.SizeBytes != int64(len(data)) {
		t.Fatalf("unexpected record %+v", got)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 3, 9, 12, 0, 1, 0, time.UTC)) {
		t.Fatalf("unexpected created time %v", got.CreatedAt)
	}
}

func TestAutoSavePrunesToRetain(t *testing.T) {
	ctx := context.Background()
	w, catalog, _ := newWriter(t, 2)

	var paths []string
	for i := 0; i < 4; i++ {
		p, err := w.AutoSave(ctx, "/subs/show.ass", document.Default())
		if err != nil {
			t.Fatalf("AutoSave failed: %v", err)
		}
		paths = append(paths, p)
	}
	if _, err := w.AutoSave(ctx, "", document.Default()); err != nil {
		t.Fatalf("AutoSave unsaved failed: %v", err)
	}

	list, err := catalog.List(ctx, "/subs/show.ass")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].BackupPath != paths[3] || list[1].BackupPath != paths[2] {
		t.Fatalf("expected newest two backups, got %+v", list)
	}
	for _, old := range paths[:2] {
		if _, err := os.Stat(old); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s to be removed", old)
		}
	}

	unsaved, err := catalog.List(ctx, backups.UnsavedScript)
	if err != nil || len(unsaved) != 1 {
		t.Fatalf("expected unsaved backup to be catalogued separately, got %d %v", len(unsaved), err)
	}
	scripts, err := catalog.Scripts(ctx)
	if err != nil || len(scripts) != 2 {
		t.Fatalf("expected two scripts, got %v %v", scripts, err)
	}
}

func TestPruneAllScripts(t *testing.T) {
	ctx := context.Background()
	w, catalog, _ := newWriter(t, 0)
	for _, script := range []string{"/a.ass", "/a.ass", "/a.ass", "/b.ass", "/b.ass"} {
		if _, err := w.AutoSave(ctx, script, document.Default()); err != nil {
			t.Fatalf("AutoSave failed: %v", err)
		}
	}

	removed, err := catalog.Prune(ctx, "", 1)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if len(removed) != 3 {
		t.Fatalf("expected 3 removed, got %d", len(removed))
	}
	all, err := catalog.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected one backup per script, got %d %v", len(all), err)
	}
}

func TestPruneIgnoresMissingFiles(t *testing.T) {
	ctx := context.Background()
	w, catalog, _ := newWriter(t, 0)
	first, _ := w.AutoSave(ctx, "/a.ass", document.Default())
	if _, err := w.AutoSave(ctx, "/a.ass", document.Default()); err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}
	if err := os.Remove(first); err != nil {
		t.Fatal(err)
	}

	health, err := catalog.Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !health.IntegrityCheck || health.Backups != 2 || health.Scripts != 1 || len(health.MissingFiles) != 1 {
		t.Fatalf("unexpected health %+v", health)
	}

	if _, err := catalog.Prune(ctx, "/a.ass", 1); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	health, err = catalog.Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if health.Backups != 1 || len(health.MissingFiles) != 0 {
		t.Fatalf("unexpected health after prune %+v", health)
	}
}

func TestLatestAndRestore(t *testing.T) {
	ctx := context.Background()
	w, catalog, _ := newWriter(t, 0)

	if _, ok, err := catalog.Latest(ctx, "/a.ass"); err != nil || ok {
		t.Fatalf("expected no backup yet, got %v %v", ok, err)
	}

	doc := document.Default()
	doc.SetScriptInfo("Title", "first")
	if _, err := w.AutoSave(ctx, "/a.ass", doc); err != nil {
		t.Fatal(err)
	}
	doc.SetScriptInfo("Title", "second")
	if _, err := w.AutoSave(ctx, "/a.ass", doc); err != nil {
		t.Fatal(err)
	}

	latest, ok, err := catalog.Latest(ctx, "/a.ass")
	if err != nil || !ok {
		t.Fatalf("Latest failed: %v %v", ok, err)
	}
	dest := filepath.Join(t.TempDir(), "restored.ass")
	if err := backups.Restore(latest, dest); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Title: second") {
		t.Fatalf("expected newest backup restored:\n%s", data)
	}
}

func TestStoreAutoSavesThroughWriter(t *testing.T) {
	ctx := context.Background()
	w, catalog, _ := newWriter(t, 0)
	store := history.New(history.Options{AutoSaver: w})
	doc := document.Default()
	store.Load(doc, "/subs/live.ass")

	if p, err := store.AutoSave(ctx); err != nil || p != "" {
		t.Fatalf("expected unchanged document to skip autosave, got %q %v", p, err)
	}
	doc.SetScriptInfo("Title", "changed")
	store.Commit(ctx, "retitle", history.KindScriptInfo, history.NoAmend, document.Handle{})
	p, err := store.AutoSave(ctx)
	if err != nil || p == "" {
		t.Fatalf("expected autosave, got %q %v", p, err)
	}
	list, err := catalog.List(ctx, "/subs/live.ass")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one catalogued backup, got %d %v", len(list), err)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	catalog, err := backups.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := catalog.Record(ctx, backups.Backup{SessionID: "s", ScriptPath: "/a.ass", BackupPath: "/tmp/a.AUTOSAVE.ass"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := catalog.Record(ctx, backups.Backup{ScriptPath: "/a.ass"}); err == nil {
		t.Fatal("expected error for empty backup path")
	}
	catalog.Close()

	reopened := testsupport.MustOpenCatalog(t, cfg)
	list, err := reopened.List(ctx, "")
	if err != nil || len(list) != 1 || list[0].SessionID != "s" {
		t.Fatalf("unexpected records after reopen: %+v %v", list, err)
	}
	if reopened.Path() != cfg.BackupCatalogPath() {
		t.Fatalf("unexpected path %q", reopened.Path())
	}
}
