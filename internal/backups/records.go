package backups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// Backup is one catalogued autosave file.
type Backup struct {
	ID         int64
	SessionID  string
	ScriptPath string
	BackupPath string
	SizeBytes  int64
	CreatedAt  time.Time
}

const backupColumns = "id, session_id, script_path, backup_path, size_bytes, created_at"

func scanBackup(scanner interface{ Scan(dest ...any) error }) (Backup, error) {
	var (
		b          Backup
		createdRaw string
	)
	if err := scanner.Scan(&b.ID, &b.SessionID, &b.ScriptPath, &b.BackupPath, &b.SizeBytes, &createdRaw); err != nil {
		return Backup{}, err
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		b.CreatedAt = created
	}
	return b, nil
}

// Record stores b, replacing any earlier row for the same backup file.
func (c *Catalog) Record(ctx context.Context, b Backup) (Backup, error) {
	if b.BackupPath == "" {
		return Backup{}, errors.New("record backup: empty backup path")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	_, err := c.exec(ctx, `INSERT INTO autosaves (session_id, script_path, backup_path, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(backup_path) DO UPDATE SET
			session_id = excluded.session_id,
			script_path = excluded.script_path,
			size_bytes = excluded.size_bytes,
			created_at = excluded.created_at`,
		b.SessionID, b.ScriptPath, b.BackupPath, b.SizeBytes, b.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Backup{}, fmt.Errorf("record backup: %w", err)
	}
	if err := c.db.QueryRowContext(ctx, "SELECT id FROM autosaves WHERE backup_path = ?", b.BackupPath).Scan(&b.ID); err != nil {
		return Backup{}, fmt.Errorf("read backup id: %w", err)
	}
	return b, nil
}

// List returns backups newest first. An empty scriptPath lists every script.
func (c *Catalog) List(ctx context.Context, scriptPath string) ([]Backup, error) {
	query := "SELECT " + backupColumns + " FROM autosaves"
	var args []any
	if scriptPath != "" {
		query += " WHERE script_path = ?"
		args = append(args, scriptPath)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Latest returns the newest backup of scriptPath.
func (c *Catalog) Latest(ctx context.Context, scriptPath string) (Backup, bool, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+backupColumns+" FROM autosaves WHERE script_path = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		scriptPath,
	)
	b, err := scanBackup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Backup{}, false, nil
	}
	if err != nil {
		return Backup{}, false, fmt.Errorf("latest backup: %w", err)
	}
	return b, true, nil
}

// Scripts returns every script path with at least one backup.
func (c *Catalog) Scripts(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT DISTINCT script_path FROM autosaves ORDER BY script_path")
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, rows.Err()
}

// Prune keeps the newest retain backups of scriptPath and removes the rest
// from disk and catalogue. An empty scriptPath prunes every script. Files
// already gone from disk are dropped silently.
func (c *Catalog) Prune(ctx context.Context, scriptPath string, retain int) ([]Backup, error) {
	scripts := []string{scriptPath}
	if scriptPath == "" {
		var err error
		if scripts, err = c.Scripts(ctx); err != nil {
			return nil, err
		}
	}

	var removed []Backup
	for _, script := range scripts {
		list, err := c.List(ctx, script)
		if err != nil {
			return removed, err
		}
		if len(list) <= retain {
			continue
		}
		for _, b := range list[max(retain, 0):] {
			if err := os.Remove(b.BackupPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return removed, fmt.Errorf("remove backup %s: %w", b.BackupPath, err)
			}
			if _, err := c.exec(ctx, "DELETE FROM autosaves WHERE id = ?", b.ID); err != nil {
				return removed, fmt.Errorf("forget backup %d: %w", b.ID, err)
			}
			removed = append(removed, b)
		}
	}
	return removed, nil
}
