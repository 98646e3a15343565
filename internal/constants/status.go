package constants

// Status is the outcome of processing one model document in a batch.
type Status string

const (
	// StatusWritten indicates a hardsized document was written.
	StatusWritten Status = "written"

	// StatusSkipped indicates the document had no paired results store.
	StatusSkipped Status = "skipped"

	// StatusFailed indicates processing aborted with an error; nothing was written.
	StatusFailed Status = "failed"
)

// Valid returns true if the status is a recognized value.
func (s Status) Valid() bool {
	switch s {
	case StatusWritten, StatusSkipped, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
