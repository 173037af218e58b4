package runner

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

type Job func() error

// RunPool executes jobs with at most maxWorkers concurrently. Returns all errors.
func RunPool(maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(maxWorkers)

	for _, job := range jobs {
		g.Go(func() error {
			if err := job(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
