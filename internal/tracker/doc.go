// Package tracker implements the change-tracking store: it compares freshly
// computed change signatures against persisted publish records to decide
// whether a package can be skipped, and rewrites the record after a
// successful publish.
package tracker
