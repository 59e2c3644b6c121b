package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"subforge/internal/backups"
	"subforge/internal/document"
	"subforge/internal/history"
	"subforge/internal/logging"
	"subforge/internal/persist"
	"subforge/internal/scriptdiff"
)

var (
	sessionOnce sync.Once
	sessionUUID string
)

// sessionID identifies this process in logs.
func sessionID() string {
	sessionOnce.Do(func() { sessionUUID = uuid.NewString() })
	return sessionUUID
}

// editSession is one load, edit, save cycle over a script.
type editSession struct {
	ctx      context.Context
	store    *history.Store
	files    *persist.Files
	catalog  *backups.Catalog
	original *document.Document
	source   string
	target   string
}

// openEditSession loads path into a history store. When output is set the
// result is written there instead of over the source.
func openEditSession(ctx context.Context, cctx *commandContext, path, output string) (*editSession, error) {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := cctx.loggerValue()
	files := cctx.files()

	// The backup catalogue keys scripts by absolute path.
	if path, err = filepath.Abs(path); err != nil {
		return nil, err
	}
	if output != "" {
		if output, err = filepath.Abs(output); err != nil {
			return nil, err
		}
	}

	ctx = logging.WithSession(logging.WithScript(ctx, path), sessionID())
	doc, err := files.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	opts := history.Options{
		UndoLevels:        cfg.History.UndoLevels,
		SaveOnEveryChange: cfg.History.SaveOnEveryChange,
		Saver:             files,
		Logger:            logger,
	}
	var catalog *backups.Catalog
	if cfg.Autosave.Enabled {
		catalog, err = backups.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, logger), "backup catalogue unavailable", "backup_catalog_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no autosave copy will be kept for this edit"),
			)
		} else {
			opts.AutoSaver = backups.NewWriter(catalog, backups.WriterOptions{
				Dir:       cfg.Autosave.Dir,
				Retain:    cfg.Autosave.Retain,
				Precision: cfg.TimePrecision(),
				Logger:    logger,
				Session:   sessionID(),
			})
		}
	}

	store := history.New(opts)
	store.Load(doc, path)
	if output != "" {
		store.SetPath(output)
	}
	return &editSession{
		ctx:      ctx,
		store:    store,
		files:    files,
		catalog:  catalog,
		original: doc.Clone(),
		source:   path,
	}, nil
}

func (s *editSession) doc() *document.Document { return s.store.Document() }

func (s *editSession) commit(desc string, kind history.CommitKind, amendID int, single document.Handle) int {
	return s.store.Commit(s.ctx, desc, kind, amendID, single)
}

// finish writes the result unless dryRun is set and returns what changed.
// force writes even an unmodified script.
func (s *editSession) finish(dryRun, force bool) (scriptdiff.Result, error) {
	defer s.close()
	s.target = s.store.Path()
	result := scriptdiff.Documents(s.original, s.doc())
	if dryRun {
		return result, nil
	}
	if _, err := s.store.AutoSave(s.ctx); err != nil {
		return result, err
	}
	if force || s.store.IsModified() || s.store.Path() != s.source {
		if err := s.store.Save(s.ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *editSession) close() {
	s.store.Close()
	if s.catalog != nil {
		_ = s.catalog.Close()
	}
}

// reportEdit prints the outcome of an edit command.
func reportEdit(cmd *cobra.Command, s *editSession, result scriptdiff.Result, dryRun bool) {
	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprint(out, colorizeDiff(result.Format(1), shouldColorize(out)))
		fmt.Fprintf(out, "%d added, %d removed (dry run, nothing written)\n", result.Added, result.Removed)
		return
	}
	fmt.Fprintf(out, "Wrote %s (%d added, %d removed)\n", s.target, result.Added, result.Removed)
}
