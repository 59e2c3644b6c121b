package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"subforge/internal/document"
	"subforge/internal/logging"
)

// NoAmend is passed as the amend id when a commit must never coalesce.
const NoAmend = -1

const minUndoLevels = 2

// ErrNoPath is returned by Save when the store has no destination path.
var ErrNoPath = errors.New("no script path")

// Saver writes a document to its file.
type Saver interface {
	Save(ctx context.Context, path string, doc *document.Document) error
}

// AutoSaver writes a backup copy of a document and returns where it went.
type AutoSaver interface {
	AutoSave(ctx context.Context, path string, doc *document.Document) (string, error)
}

// Snapshot is one point in the undo history.
type Snapshot struct {
	Doc         *document.Document
	Description string
	CommitID    int
}

// Change is delivered to listeners after every commit, undo and redo.
type Change struct {
	CommitID    int
	Kind        CommitKind
	Description string
	// Single is the one entry the commit changed, or the zero Handle.
	Single document.Handle
}

// Listener receives committed changes.
type Listener func(Change)

// Options configures a Store.
type Options struct {
	// UndoLevels caps the snapshots kept; values below 2 mean 2.
	UndoLevels int
	// SaveOnEveryChange writes the script through the Saver after each
	// commit once there is something to undo.
	SaveOnEveryChange bool
	Saver             Saver
	AutoSaver         AutoSaver
	Logger            *slog.Logger
}

// Store records snapshots of a live document so edits can be undone and
// redone. The live document is owned by the caller and mutated in place;
// every snapshot owns its own deep copy.
//
// A Store is not safe for concurrent use.
type Store struct {
	doc     *document.Document
	commits []Snapshot
	redo    []Snapshot

	// lastID only grows; commitID follows undo and redo back and forth.
	lastID      int
	commitID    int
	savedID     int
	autosavedID int
	path        string

	levels            int
	saveOnEveryChange bool
	saver             Saver
	autosaver         AutoSaver
	logger            *slog.Logger

	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// New returns a store with no history. Call Load before committing.
func New(opts Options) *Store {
	return &Store{
		levels:            max(opts.UndoLevels, minUndoLevels),
		saveOnEveryChange: opts.SaveOnEveryChange,
		saver:             opts.Saver,
		autosaver:         opts.AutoSaver,
		logger:            logging.NewComponentLogger(opts.Logger, "history"),
	}
}

// Load makes doc the live document and seeds the history with it. path may
// be empty for a script that has never been saved. The seed counts as saved.
func (s *Store) Load(doc *document.Document, path string) {
	s.doc = doc
	s.path = path
	s.redo = nil
	s.lastID++
	s.commitID = s.lastID
	s.commits = []Snapshot{{Doc: doc.Clone(), CommitID: s.commitID}}
	s.savedID = s.commitID
	s.autosavedID = s.commitID
	s.logger.Debug("history seeded", logging.CommitID(s.commitID), logging.Script(path))
	s.notify(Change{CommitID: s.commitID, Kind: KindNew})
}

// Document returns the live document, or nil before Load.
func (s *Store) Document() *document.Document { return s.doc }

// Path returns the destination path used by Save.
func (s *Store) Path() string { return s.path }

// SetPath changes the destination path used by Save.
func (s *Store) SetPath(path string) { s.path = path }

// CommitID returns the id of the state the live document corresponds to.
func (s *Store) CommitID() int { return s.commitID }

// Commit records the current state of the live document and returns the new
// commit id.
//
// When amendID is the id of the previous commit, nothing is on the redo
// stack and that commit has not been saved or autosaved, the commit amends
// the top snapshot instead of pushing a new one. If single names the only
// entry that changed, just that entry is copied into the snapshot.
//
// Without history Commit does nothing and returns the current id.
func (s *Store) Commit(ctx context.Context, desc string, kind CommitKind, amendID int, single document.Handle) int {
	if len(s.commits) == 0 || s.doc == nil {
		return s.commitID
	}
	s.lastID++
	s.commitID = s.lastID
	id := s.commitID

	if id == amendID+1 && len(s.redo) == 0 && id != s.savedID+1 && id != s.autosavedID+1 {
		top := &s.commits[len(s.commits)-1]
		if !s.patchSingle(top, single) {
			top.Doc = s.doc.Clone()
		}
		top.CommitID = id
		top.Description = desc
		logging.WithContext(ctx, s.logger).Debug("commit amended",
			logging.CommitID(id),
			logging.String("description", desc),
			logging.Bool("single", !single.IsZero()),
		)
	} else {
		s.redo = nil
		s.commits = append(s.commits, Snapshot{Doc: s.doc.Clone(), Description: desc, CommitID: id})
		if extra := len(s.commits) - s.levels; extra > 0 {
			s.commits = append([]Snapshot(nil), s.commits[extra:]...)
		}
		logging.WithContext(ctx, s.logger).Debug("commit recorded",
			logging.CommitID(id),
			logging.String("description", desc),
			logging.String("kind", kind.String()),
			logging.Int("depth", len(s.commits)),
		)
	}

	s.notify(Change{CommitID: id, Kind: kind, Description: desc, Single: single})

	if s.saveOnEveryChange && len(s.commits) > 1 && s.path != "" && s.saver != nil {
		if err := s.Save(ctx); err != nil {
			logging.ErrorWithContext(logging.WithContext(logging.WithScript(ctx, s.path), s.logger),
				"save after change failed", "save_on_change_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the script directory is writable"),
			)
		}
	}
	return id
}

// patchSingle copies the entry behind h from the live document into snap.
// It reports false when the entry is not present in both.
func (s *Store) patchSingle(snap *Snapshot, h document.Handle) bool {
	if h.IsZero() {
		return false
	}
	e, ok := s.doc.Get(h)
	if !ok {
		return false
	}
	return snap.Doc.Replace(h, e.Clone()) == nil
}

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo.
func (s *Store) Undo() bool {
	if len(s.commits) <= 1 {
		return false
	}
	top := s.commits[len(s.commits)-1]
	s.commits = s.commits[:len(s.commits)-1]
	s.redo = append(s.redo, top)
	s.restore(s.commits[len(s.commits)-1], "undo")
	return true
}

// Redo reapplies the most recently undone snapshot. It reports false when
// the redo stack is empty.
func (s *Store) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.commits = append(s.commits, top)
	s.restore(top, "redo")
	return true
}

func (s *Store) restore(snap Snapshot, action string) {
	s.commitID = snap.CommitID
	s.doc.Assign(snap.Doc)
	s.logger.Debug(action, logging.CommitID(s.commitID))
	s.notify(Change{CommitID: s.commitID, Kind: KindNew})
}

// UndoDescription describes the change Undo would revert.
func (s *Store) UndoDescription() string {
	if len(s.commits) <= 1 {
		return ""
	}
	return s.commits[len(s.commits)-1].Description
}

// RedoDescription describes the change Redo would reapply.
func (s *Store) RedoDescription() string {
	if len(s.redo) == 0 {
		return ""
	}
	return s.redo[len(s.redo)-1].Description
}

// CanUndo reports whether Undo would do anything.
func (s *Store) CanUndo() bool { return len(s.commits) > 1 }

// CanRedo reports whether Redo would do anything.
func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// Depth returns the number of snapshots held, including the seed.
func (s *Store) Depth() int { return len(s.commits) }

// Snapshots returns the undo history, oldest first. The snapshots are shared
// with the store and must not be modified.
func (s *Store) Snapshots() []Snapshot {
	return append([]Snapshot(nil), s.commits...)
}

// IsModified reports whether the live document differs from the last save.
func (s *Store) IsModified() bool { return s.commitID != s.savedID }

// MarkSaved records that the current state was written to disk.
func (s *Store) MarkSaved() { s.savedID = s.commitID }

// MarkAutosaved records that the current state was backed up.
func (s *Store) MarkAutosaved() { s.autosavedID = s.commitID }

// Save writes the live document through the Saver and marks it saved.
func (s *Store) Save(ctx context.Context) error {
	if s.path == "" {
		return ErrNoPath
	}
	if s.saver == nil {
		return errors.New("save: no saver configured")
	}
	if s.doc == nil {
		return errors.New("save: no document loaded")
	}
	if err := s.saver.Save(ctx, s.path, s.doc); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	s.MarkSaved()
	logging.WithContext(logging.WithScript(ctx, s.path), s.logger).Info("script saved", logging.CommitID(s.commitID))
	return nil
}

// AutoSave writes a backup of the live document when it changed since the
// last backup. It returns the backup path, or "" when nothing was written.
func (s *Store) AutoSave(ctx context.Context) (string, error) {
	if s.autosaver == nil || s.doc == nil || s.commitID == s.autosavedID {
		return "", nil
	}
	written, err := s.autosaver.AutoSave(ctx, s.path, s.doc)
	if err != nil {
		return "", fmt.Errorf("autosave: %w", err)
	}
	s.MarkAutosaved()
	logging.WithContext(logging.WithScript(ctx, s.path), s.logger).Info("script autosaved",
		logging.String("backup", written),
		logging.CommitID(s.commitID),
	)
	return written, nil
}

// Subscribe registers fn for every change and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(c Change) {
	for _, l := range append([]listenerEntry(nil), s.listeners...) {
		l.fn(c)
	}
}

// Close drops the history and the live document. The commit id keeps
// counting so ids stay unique across files.
func (s *Store) Close() {
	s.commits = nil
	s.redo = nil
	s.doc = nil
	s.path = ""
	s.logger.Debug("history closed", logging.CommitID(s.commitID))
}
