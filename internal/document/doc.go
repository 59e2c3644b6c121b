// Package document holds the in-memory model of an ASS/SSA script.
//
// A Document is one ordered sequence of entries grouped into sections
// (Script Info, Styles, Events, Fonts, Graphics, then any unknown sections
// kept verbatim). Every insertion keeps sections contiguous and in that
// order. Entries are addressed by generational Handles, which survive
// Clone and go stale on deletion, so history snapshots and scripting
// callers never hold dangling references.
//
// Parser turns a line source into a Document through a small state machine
// over the section headers; Write renders it back. Loading is all or
// nothing: a malformed Style or Dialogue line aborts the parse with a
// *entry.ParseError and no document.
package document
