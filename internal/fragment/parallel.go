package fragment

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/alphafragment/internal/protein"
)

// WorkItem holds a protein ready for fragmentation.
type WorkItem struct {
	Seq     int
	Protein *protein.Protein
}

// WorkResult holds the fragmentation output for a single protein. The
// protein's ledger has already been updated when Err is nil.
type WorkResult struct {
	Seq     int
	Protein *protein.Protein
	Result  *Result
	Err     error
}

// ParallelApply fragments work items using a pool of workers and appends the
// fragments to each protein's ledger. Every protein is owned by exactly one
// worker while it is processed. Results arrive in completion order; use
// OrderedCollect to consume them in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (f *Fragmenter) ParallelApply(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := f.Apply(item.Protein)
				results <- WorkResult{
					Seq:     item.Seq,
					Protein: item.Protein,
					Result:  res,
					Err:     err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// ApplyAll fragments proteins concurrently and returns one result per
// protein in input order. A failure is reported in that protein's result and
// logged; it never stops the others.
func (f *Fragmenter) ApplyAll(proteins []*protein.Protein, workers int) []WorkResult {
	items := make(chan WorkItem, len(proteins))
	for i, p := range proteins {
		items <- WorkItem{Seq: i, Protein: p}
	}
	close(items)

	out := make([]WorkResult, 0, len(proteins))
	_ = OrderedCollect(f.ParallelApply(items, workers), func(r WorkResult) error {
		if r.Err != nil {
			f.logger.Warn("failed to fragment protein",
				zap.String("protein", r.Protein.Name),
				zap.Error(r.Err))
		}
		out = append(out, r)
		return nil
	})
	return out
}
