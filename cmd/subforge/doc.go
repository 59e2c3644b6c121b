// Package main hosts the subforge CLI entrypoint and command graph.
//
// The Cobra-based command tree loads scripts, inspects them and applies
// whole-script edits (normalize, shift, sort, resample, style import). Every
// edit runs through a history.Store so saving, save-on-change and autosave
// backups follow the same rules an interactive editor would. Configuration
// resolution and logger setup live in commandContext so subcommands only
// deal with their own flags.
package main
