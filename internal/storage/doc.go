// Package storage defines the object-store interface the pipeline publishes
// through, and a CLI-backed implementation. The store itself is an external
// collaborator; nothing here interprets object contents.
package storage
