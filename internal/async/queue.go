package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for extraction.
type Job struct {
	ID          uuid.UUID
	Document    pipeline.Document
	Image       bool // photographed page rather than a PDF
	SubmittedAt time.Time
}

// NewJob assigns a fresh ID, which also becomes the document's request ID
// when it has none.
func NewJob(doc pipeline.Document, image bool) Job {
	id := uuid.New()
	if doc.RequestID == "" {
		doc.RequestID = id.String()
	}
	return Job{ID: id, Document: doc, Image: image, SubmittedAt: time.Now()}
}

// Result is delivered once per job after processing.
type Result struct {
	Job      Job
	Response pipeline.Response
	Err      error
	Duration time.Duration
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
