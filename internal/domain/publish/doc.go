// Package publish holds the core domain types of the publishing pipeline:
// the upload destination, the publishable package and the per-package
// orchestration status.
package publish
