// Package record persists the last-published change signature of each
// package. A record is written only after a fully successful publish, so a
// failed run leaves the previous record intact and the next run retries.
package record
