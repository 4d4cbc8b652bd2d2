package extract

import (
	"context"
	"sync"

	"arktools/internal/discovery"
)

// extractParallel fans files out to a fixed worker pool. Each worker
// processes one file at a time with no shared mutable state beyond the
// read-only configuration; results are merged after all workers finish and
// re-sorted by the caller for determinism.
func (e *Extractor) extractParallel(ctx context.Context, files []discovery.DiscoveredFile) Result {
	jobs := make(chan discovery.DiscoveredFile)

	var mu sync.Mutex
	var result Result
	var wg sync.WaitGroup

	for w := 0; w < e.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				components, errs := e.extractOne(ctx, file)
				mu.Lock()
				result.Components = append(result.Components, components...)
				result.Errors = append(result.Errors, errs...)
				mu.Unlock()
			}
		}()
	}

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		jobs <- file
	}
	close(jobs)
	wg.Wait()

	return result
}
