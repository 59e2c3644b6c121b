// Package asstime models the millisecond timestamps used by ASS/SSA scripts.
//
// Time is an immutable value clamped to the range a script can express
// (0 to 9:59:59.999). Parse is deliberately forgiving: malformed fields read
// as zero so a damaged timestamp never aborts loading a script. Output
// precision is chosen per call through Precision instead of a process-wide
// switch, so the writer (always centiseconds) and interactive views
// (optionally milliseconds) can coexist.
package asstime
