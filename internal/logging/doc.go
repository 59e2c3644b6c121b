// Package logging assembles structured slog loggers for subforge.
//
// It owns the console and JSON handlers, the optional rotating log file, and
// the attribute helpers every package uses so log lines share one shape.
// Warnings carry an event type and an impact next to the message. Core
// packages accept a nil *slog.Logger and fall back to NewNop, so tests and
// library callers never need to build one.
package logging
