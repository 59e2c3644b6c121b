package backups

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"subforge/internal/asstime"
	"subforge/internal/document"
	"subforge/internal/fileutil"
	"subforge/internal/logging"
	"subforge/internal/textutil"
)

// UnsavedScript is the script path recorded for documents without a file.
const UnsavedScript = "(unsaved)"

const (
	autosaveSuffix  = ".AUTOSAVE.ass"
	timestampLayout = "2006-01-02-15-04-05"
	backupFileMode  = 0o644
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	Dir string
	// Retain is the number of backups kept per script; 0 keeps everything.
	Retain    int
	Precision asstime.Precision
	Logger    *slog.Logger
	// Session is recorded with every backup; empty means a new uuid.
	Session string
	// Now overrides the clock used for file names.
	Now func() time.Time
}

// Writer writes autosave files and catalogues them. Every Writer is one
// editing session with its own id.
type Writer struct {
	catalog   *Catalog
	dir       string
	retain    int
	precision asstime.Precision
	session   string
	now       func() time.Time
	logger    *slog.Logger
}

// NewWriter returns a Writer recording into catalog.
func NewWriter(catalog *Catalog, opts WriterOptions) *Writer {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	session := opts.Session
	if session == "" {
		session = uuid.NewString()
	}
	return &Writer{
		catalog:   catalog,
		dir:       opts.Dir,
		retain:    opts.Retain,
		precision: opts.Precision,
		session:   session,
		now:       now,
		logger:    logging.NewComponentLogger(opts.Logger, "backups"),
	}
}

// Session returns the id recorded with every backup from this Writer.
func (w *Writer) Session() string { return w.session }

// FileName returns the autosave file name for scriptPath at t.
func FileName(scriptPath string, t time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	if scriptPath == "" {
		stem = ""
	}
	stem = textutil.SanitizeFileName(stem)
	if stem == "" {
		stem = "Untitled"
	}
	return stem + "." + t.Format(timestampLayout) + autosaveSuffix
}

// AutoSave writes doc into the autosave directory, records it and prunes
// older backups of the same script.
func (w *Writer) AutoSave(ctx context.Context, scriptPath string, doc *document.Document) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create autosave dir: %w", err)
	}
	created := w.now()
	target := filepath.Join(w.dir, FileName(scriptPath, created))

	err := fileutil.WriteFileAtomic(target, backupFileMode, func(out io.Writer) error {
		return document.WritePrecision(out, doc, w.precision)
	})
	if err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("stat backup: %w", err)
	}

	script := scriptPath
	if script == "" {
		script = UnsavedScript
	}
	logger := logging.WithContext(logging.WithSession(logging.WithScript(ctx, script), w.session), w.logger)
	if _, err := w.catalog.Record(ctx, Backup{
		SessionID:  w.session,
		ScriptPath: script,
		BackupPath: target,
		SizeBytes:  info.Size(),
		CreatedAt:  created,
	}); err != nil {
		return target, err
	}
	logger.Debug("backup recorded", logging.String("backup", target), logging.Int64("size_bytes", info.Size()))

	if w.retain > 0 {
		removed, err := w.catalog.Prune(ctx, script, w.retain)
		if err != nil {
			logging.WarnWithContext(logger, "backup pruning failed", "backup_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "older backups were kept"),
			)
		} else if len(removed) > 0 {
			logger.Debug("old backups pruned", logging.Int("removed", len(removed)))
		}
	}
	return target, nil
}

// Restore copies backup b over dest.
func Restore(b Backup, dest string) error {
	if err := fileutil.CopyFileVerified(b.BackupPath, dest); err != nil {
		return fmt.Errorf("restore %s: %w", b.BackupPath, err)
	}
	return nil
}
