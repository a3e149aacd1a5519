package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cube-dp/lease-classifier/internal/entity"
)

// Item is one document queued for batch processing.
type Item struct {
	Name string
	Text string
}

// ItemResult reports one document's outcome. A document that fails does not
// affect any other document in the batch.
type ItemResult struct {
	Name   string
	Result *entity.PipelineResult
	Err    error
}

// ProcessBatch runs the items concurrently, up to limit at a time. Results
// come back in input order; per-item failures are recorded, never
// propagated across items.
func (o *Orchestrator) ProcessBatch(ctx context.Context, items []Item, limit int) []ItemResult {
	if limit <= 0 {
		limit = 4
	}
	results := make([]ItemResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			res, err := o.Process(gctx, item.Name, item.Text)
			results[i] = ItemResult{Name: item.Name, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
