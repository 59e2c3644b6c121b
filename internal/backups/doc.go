// Package backups keeps autosave copies of scripts and the SQLite catalogue
// that indexes them.
//
// Every autosave writes a full script named <stem>.<timestamp>.AUTOSAVE.ass
// into the autosave directory and records it in backups.db together with the
// editing session that produced it. Prune keeps the newest copies per
// script and deletes the rest from both disk and catalogue.
//
// Writer implements history.AutoSaver so a history.Store can back up its
// live document without knowing about files or databases.
package backups
