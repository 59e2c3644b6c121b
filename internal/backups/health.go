package backups

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Health summarises the state of the catalogue and the files it points at.
type Health struct {
	DBPath         string
	Backups        int
	Scripts        int
	MissingFiles   []string
	IntegrityCheck bool
	Error          string
}

// Check pings the database, runs SQLite's integrity check and verifies that
// every catalogued backup still exists on disk.
func (c *Catalog) Check(ctx context.Context) (Health, error) {
	health := Health{DBPath: c.path}
	if c.db == nil {
		return health, errors.New("backup catalogue connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping backup catalogue: %w", err)
	}

	var integrity string
	if err := c.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")

	list, err := c.List(connCtx, "")
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	scripts := make(map[string]struct{})
	for _, b := range list {
		health.Backups++
		scripts[b.ScriptPath] = struct{}{}
		if _, err := os.Stat(b.BackupPath); errors.Is(err, os.ErrNotExist) {
			health.MissingFiles = append(health.MissingFiles, b.BackupPath)
		}
	}
	health.Scripts = len(scripts)
	return health, nil
}
