// Package history implements undo and redo over a live document.
//
// Store keeps a bounded stack of document snapshots, each a deep copy taken
// at a commit. Consecutive edits of the same thing can amend the newest
// snapshot instead of stacking up: the caller passes the id returned by its
// previous commit, and when nothing was saved, autosaved or undone in
// between the two commits collapse into one undo step. Saving always leaves
// a real checkpoint behind.
package history
