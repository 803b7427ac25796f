package publish

// Status is the per-package state of the publish orchestration.
// Transitions are strictly sequential:
// Pending -> CheckChanged -> {Skipped | Building -> Uploading -> RecordSuccess} -> Done,
// with any failure ending in Failed.
type Status int

const (
	// StatusPending means the package has not been examined yet.
	StatusPending Status = iota
	// StatusCheckChanged means the change signature is being compared
	// against the persisted publish record.
	StatusCheckChanged
	// StatusSkipped means the package is unchanged and its publish was skipped.
	StatusSkipped
	// StatusBuilding means the external build procedure is running.
	StatusBuilding
	// StatusUploading means staged artifacts are being uploaded.
	StatusUploading
	// StatusRecordSuccess means the publish record is being rewritten.
	StatusRecordSuccess
	// StatusDone means the package was fully processed (published or skipped).
	StatusDone
	// StatusFailed is terminal and aborts the whole run.
	StatusFailed
)

// String returns a log-friendly name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCheckChanged:
		return "check-changed"
	case StatusSkipped:
		return "skipped"
	case StatusBuilding:
		return "building"
	case StatusUploading:
		return "uploading"
	case StatusRecordSuccess:
		return "record-success"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
