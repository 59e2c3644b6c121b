package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"subforge/internal/asstime"
	"subforge/internal/document"
	"subforge/internal/fileutil"
	"subforge/internal/logging"
)

const (
	lockSuffix         = ".lock"
	lockRetryDelay     = 50 * time.Millisecond
	defaultLockTimeout = 2 * time.Second
	maxLockAttempts    = 3
	scriptFileMode     = 0o644
)

// ErrLocked is returned when another process holds the script lock for
// longer than the lock timeout.
var ErrLocked = errors.New("script is locked by another process")

// Options configures Files.
type Options struct {
	// Precision is used for dialogue times on save.
	Precision asstime.Precision
	// LockTimeout bounds the wait for another process's lock. Zero means
	// two seconds; a negative value tries once without waiting.
	LockTimeout time.Duration
	Logger      *slog.Logger
}

// Files loads and saves scripts. A save holds an exclusive lock on
// <script>.lock and removes the lock file afterwards; a load only takes a
// shared lock while such a file exists.
type Files struct {
	precision   asstime.Precision
	lockTimeout time.Duration
	base        *slog.Logger
	logger      *slog.Logger
}

// New returns a Files using opts.
func New(opts Options) *Files {
	timeout := opts.LockTimeout
	if timeout == 0 {
		timeout = defaultLockTimeout
	}
	return &Files{
		precision:   opts.Precision,
		lockTimeout: timeout,
		base:        opts.Logger,
		logger:      logging.NewComponentLogger(opts.Logger, "persist"),
	}
}

// Load parses the script at path. Either the whole script loads or an error
// is returned; a malformed line yields an *entry.ParseError in the chain.
func (f *Files) Load(ctx context.Context, path string) (*document.Document, error) {
	// Without a lock file no save is in progress. The lock is opened
	// without O_CREATE so reading never leaves a file behind.
	lock := flock.New(path+lockSuffix, flock.SetFlag(os.O_RDONLY))
	switch err := f.acquire(ctx, lock.TryRLock, lock.TryRLockContext); {
	case err == nil:
		defer f.release(lock, false)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer file.Close()

	doc, err := document.Parse(file, f.base)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logging.WithContext(logging.WithScript(ctx, path), f.logger).Debug("script loaded", logging.Int("entries", doc.Len()))
	return doc, nil
}

// Save writes doc to path atomically.
func (f *Files) Save(ctx context.Context, path string, doc *document.Document) error {
	start := time.Now()
	lock, err := f.lockForSave(ctx, path+lockSuffix)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.release(lock, true)
	waited := time.Since(start)

	mode := os.FileMode(scriptFileMode)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	err = fileutil.WriteFileAtomic(path, mode, func(w io.Writer) error {
		return document.WritePrecision(w, doc, f.precision)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	logging.WithContext(logging.WithScript(ctx, path), f.logger).Debug("script written",
		logging.String("precision", f.precision.String()),
		logging.Duration("lock_wait", waited),
	)
	return nil
}

// Write renders doc to w at the configured precision without touching disk.
func (f *Files) Write(w io.Writer, doc *document.Document) error {
	return document.WritePrecision(w, doc, f.precision)
}

// lockForSave takes the exclusive lock. A previous holder removes the lock
// file on release, so a lock won on a file that is no longer linked at
// lockPath is dropped and taken again on the new file.
func (f *Files) lockForSave(ctx context.Context, lockPath string) (*flock.Flock, error) {
	for range maxLockAttempts {
		lock := flock.New(lockPath)
		if err := f.acquire(ctx, lock.TryLock, lock.TryLockContext); err != nil {
			return nil, err
		}
		if stillLinked(lock) {
			return lock, nil
		}
		_ = lock.Unlock()
	}
	return nil, ErrLocked
}

// stillLinked compares the locked descriptor with the file at the lock path.
func stillLinked(lock *flock.Flock) bool {
	held, err := lock.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(lock.Path())
	return err == nil && os.SameFile(held, current)
}

// acquire takes the lock, retrying until the lock timeout or ctx ends.
func (f *Files) acquire(ctx context.Context, try func() (bool, error), wait func(context.Context, time.Duration) (bool, error)) error {
	var (
		ok  bool
		err error
	)
	if f.lockTimeout < 0 {
		ok, err = try()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, f.lockTimeout)
		ok, err = wait(waitCtx, lockRetryDelay)
		cancel()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrLocked, err)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// release unlocks. With remove set the lock file is deleted first so no
// stray file is left next to the script.
func (f *Files) release(lock *flock.Flock, remove bool) {
	if remove {
		if err := os.Remove(lock.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Debug("lock file not removed", logging.String("lock", lock.Path()), logging.Error(err))
		}
	}
	if err := lock.Unlock(); err != nil {
		f.logger.Warn("failed to release script lock",
			logging.String("lock", lock.Path()),
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove the stale lock file if no other subforge process is running"),
		)
	}
}
