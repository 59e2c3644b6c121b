// Package persist reads and writes scripts on disk.
//
// Saves go through a temporary file and a rename so an interrupted write
// never truncates the script, and both loads and saves hold an advisory
// lock on a sibling ".lock" file so two subforge processes cannot
// interleave on the same script. Files implements history.Saver.
package persist
