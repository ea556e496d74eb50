// Package ingest discovers documents on the local filesystem and submits
// them to the extraction queue.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/async"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	JobID        string
	Format       string
	Deduplicated bool
	HashHex      string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor reads files and enqueues them. Content already submitted during
// the Ingestor's lifetime is skipped, so repeated watcher events for the
// same bytes produce one job.
type Ingestor struct {
	queue    async.Queue
	maxBytes int
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewIngestor(queue async.Queue, maxBytes int, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{queue: queue, maxBytes: maxBytes, logger: logger, seen: map[string]struct{}{}}
}

// IngestPath reads one file and enqueues it as a PDF or image job by extension.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, err
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	out.Format = constants.MapExtToFormat(ext)
	if out.Format == "" {
		return out, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	data, err := ReadFile(abs, i.maxBytes)
	if err != nil {
		return out, err
	}

	sum := sha256.Sum256(data)
	out.HashHex = hex.EncodeToString(sum[:])
	i.mu.Lock()
	_, dup := i.seen[out.HashHex]
	if !dup {
		i.seen[out.HashHex] = struct{}{}
	}
	i.mu.Unlock()
	if dup {
		out.Deduplicated = true
		i.logger.Debug("ingest.duplicate", "path", abs, "sha256", out.HashHex)
		return out, nil
	}

	job := async.NewJob(pipeline.Document{Filename: filepath.Base(abs), Data: data}, out.Format == constants.IMAGE)
	if err := i.queue.Enqueue(ctx, job); err != nil {
		i.mu.Lock()
		delete(i.seen, out.HashHex)
		i.mu.Unlock()
		return out, err
	}
	out.JobID = job.ID.String()
	i.logger.Info("ingest.enqueued", "path", abs, "job_id", out.JobID, "format", out.Format)
	return out, nil
}

// ReadFile reads path, refusing files larger than maxBytes when maxBytes > 0.
func ReadFile(path string, maxBytes int) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrInvalidInput, path)
	}
	if maxBytes > 0 && info.Size() > int64(maxBytes) {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", common.ErrInvalidInput, path, info.Size(), maxBytes)
	}
	return os.ReadFile(path)
}
