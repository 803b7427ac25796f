// Package checksum computes the two fingerprints the publishing pipeline
// relies on: a content hash of a package directory (contents only, used for
// content-addressed artifact names) and a change signature (modification
// timestamps plus upload destination, used to skip unchanged packages).
package checksum
