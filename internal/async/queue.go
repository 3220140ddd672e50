package async

import (
	"context"
	"time"
)

// Job is one file waiting for extraction.
type Job struct {
	Path        string
	ContentHash string // hex SHA-256 when already known
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
