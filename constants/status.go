package constants

// JobStatus is the canonical status for rows in extraction_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusReceived         JobStatus = "RECEIVED"          // upload accepted for inspection
	JobStatusFormatDetected   JobStatus = "FORMAT_DETECTED"   // extension mapped to a format
	JobStatusPreprocessFailed JobStatus = "PREPROCESS_FAILED" // masking failed, original used
	JobStatusTextExtracted    JobStatus = "TEXT_EXTRACTED"    // plain text acquired (may be empty)
	JobStatusFieldsExtracted  JobStatus = "FIELDS_EXTRACTED"  // record assembled
	JobStatusDone             JobStatus = "DONE"              // terminal success
	JobStatusRejected         JobStatus = "REJECTED"          // terminal client-input rejection

	// JobStatusFailed is only ever stored: the request was cancelled before the record was complete.
	JobStatusFailed JobStatus = "FAILED"
)

// IsTerminal reports whether no further transition follows s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusRejected || s == JobStatusFailed
}
