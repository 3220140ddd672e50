package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionJob is one processed upload as stored by the job repository.
type ExtractionJob struct {
	ID           uuid.UUID       `json:"id"`
	Filename     string          `json:"filename"`
	ContentHash  string          `json:"content_hash"`
	Format       string          `json:"format"`
	Status       string          `json:"status"`
	Method       *string         `json:"method,omitempty"`
	Pages        int             `json:"pages"`
	TextLen      int             `json:"text_len"`
	Preprocessed bool            `json:"preprocessed"`
	RecordJSON   json.RawMessage `json:"record,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	ArchiveURI   *string         `json:"archive_uri,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// JobResult carries what Finish stores for a successful job.
type JobResult struct {
	Method       string
	Pages        int
	TextLen      int
	Preprocessed bool
	Record       json.RawMessage
}
