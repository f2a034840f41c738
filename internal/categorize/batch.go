package categorize

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/dailyhill/internal/models"
)

// CategorizeBatch classifies records in parallel. out[i] depends only on
// records[i]. workers <= 0 means runtime.NumCPU().
func (e *Engine) CategorizeBatch(ctx context.Context, records []models.RawRecord, workers int) ([]models.Derived, error) {
	out := make([]models.Derived, len(records))
	if len(records) == 0 {
		return out, nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := (len(records) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%512 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = e.Categorize(records[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
