package task

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit is the concurrency cap used when a batch is run
// with a non-positive limit. The cap is fixed and does not grow with
// the number of items.
const DefaultBatchLimit = 10

// maxFailureSamples bounds the failure details carried in a BatchResult
// so a mostly-failing batch cannot blow up the response size.
const maxFailureSamples = 10

// BatchFailure records one failed item with its reason.
type BatchFailure struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// BatchResult aggregates the outcome of a fan-out batch.
type BatchResult struct {
	Attempted int            `json:"attempted"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

// RunBatch runs fn for every item concurrently under the given cap.
// One item's failure never aborts the batch: every item is attempted
// and its outcome collected. onProgress, if non-nil, is called with the
// number of completed items after each completion, so progress reflects
// completions rather than starts. Callbacks run under the batch lock,
// which serializes them and keeps the delivered counts non-decreasing.
func RunBatch[T any](
	ctx context.Context,
	items []T,
	limit int,
	fn func(ctx context.Context, item T) error,
	onProgress func(completed, total int),
) BatchResult {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	result := BatchResult{Attempted: len(items)}

	var mu sync.Mutex
	completed := 0

	var g errgroup.Group
	g.SetLimit(limit)

	for _, item := range items {
		item := item
		g.Go(func() error {
			err := fn(ctx, item)

			mu.Lock()
			completed++
			if err != nil {
				result.Failed++
				if len(result.Failures) < maxFailureSamples {
					result.Failures = append(result.Failures, BatchFailure{
						Item:   fmt.Sprintf("%v", item),
						Reason: err.Error(),
					})
				}
			} else {
				result.Succeeded++
			}
			if onProgress != nil {
				onProgress(completed, len(items))
			}
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; Wait only fences completion.
	_ = g.Wait()

	return result
}
