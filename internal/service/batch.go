package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/newsmesh/newsgraph/internal/parser"
)

// BatchOptions configures directory ingestion.
type BatchOptions struct {
	// Concurrency sets the number of parallel workers (default 4).
	Concurrency int

	// Progress, when set, receives one event per finished file. Events are
	// delivered from worker goroutines.
	Progress func(BatchEvent)
}

// BatchEvent reports one file's outcome during batch ingestion.
type BatchEvent struct {
	Path      string
	ArticleID string
	Created   bool
	Err       error
	Done      int
	Total     int
}

// BatchResult summarizes a batch ingestion run.
type BatchResult struct {
	FilesProcessed int
	Created        int
	Updated        int
	NewMentions    int
	Errors         []string
}

// IngestDirectory parses and ingests every article file under root using a
// worker pool. Different articles are safe to ingest concurrently since all
// writes are keyed upserts; a file that fails to parse or ingest is recorded
// and skipped, not fatal.
func (e *Engine) IngestDirectory(ctx context.Context, root string, opts BatchOptions) (*BatchResult, error) {
	files, err := parser.FindArticleFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &BatchResult{}, nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var (
		processed   atomic.Int32
		created     atomic.Int32
		updated     atomic.Int32
		newMentions atomic.Int32
		errorsMu    sync.Mutex
		errs        []string
	)

	workChan := make(chan string, len(files))
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for path := range workChan {
				if ctx.Err() != nil {
					return
				}

				event := BatchEvent{Path: path, Total: len(files)}

				parsed, err := parser.ParseFile(path)
				if err != nil {
					errorsMu.Lock()
					errs = append(errs, fmt.Sprintf("%s: %v", path, err))
					errorsMu.Unlock()
					event.Err = err
					event.Done = int(processed.Add(1))
					if opts.Progress != nil {
						opts.Progress(event)
					}
					continue
				}

				e.logger.Debug("processing article file", "worker", workerID, "file", filepath.Base(path))

				result, err := e.IngestDocument(ctx, parsed.Article, parsed.Mentions)
				if err != nil {
					errorsMu.Lock()
					errs = append(errs, fmt.Sprintf("%s: %v", path, err))
					errorsMu.Unlock()
					event.Err = err
				} else {
					event.ArticleID = result.ArticleID
					event.Created = result.Created
					if result.Created {
						created.Add(1)
					} else {
						updated.Add(1)
					}
					newMentions.Add(int32(result.NewMentions))
				}

				event.Done = int(processed.Add(1))
				if opts.Progress != nil {
					opts.Progress(event)
				}
			}
		}(i)
	}

	for _, f := range files {
		workChan <- f
	}
	close(workChan)
	wg.Wait()

	e.logger.Info("batch ingestion complete",
		"files", processed.Load(),
		"created", created.Load(),
		"updated", updated.Load(),
		"errors", len(errs))

	return &BatchResult{
		FilesProcessed: int(processed.Load()),
		Created:        int(created.Load()),
		Updated:        int(updated.Load()),
		NewMentions:    int(newMentions.Load()),
		Errors:         errs,
	}, nil
}
