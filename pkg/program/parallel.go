package program

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/inercia/go-llm-programs/pkg/logging"
)

const (
	DefaultNumWorkers = 4
	DefaultMaxErrors  = 10
)

// ErrTooManyErrors is returned when a parallel run exceeds its error budget
var ErrTooManyErrors = errors.New("program: too many failed jobs")

// Job is one module invocation of a parallel run
type Job struct {
	Module Module
	Inputs Inputs
}

// Parallel runs jobs concurrently with a bounded number of workers
type Parallel struct {
	NumWorkers int
	// MaxErrors is the number of failed jobs tolerated before the remaining
	// jobs are cancelled.
	MaxErrors int
	Logger    logging.Logger
}

// Run executes the jobs and returns their predictions in job order. Failed
// jobs leave a nil slot, and their errors are joined in the returned error.
func (p Parallel) Run(ctx context.Context, jobs []Job) ([]*Prediction, error) {
	workers := p.NumWorkers
	if workers <= 0 {
		workers = DefaultNumWorkers
	}
	maxErrors := p.MaxErrors
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	logger := logging.OrNoOp(p.Logger)

	results := make([]*Prediction, len(jobs))
	var (
		mu     sync.Mutex
		errs   []error
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			pred, err := job.Module.Forward(gctx, job.Inputs)
			if err == nil {
				results[i] = pred
				return nil
			}

			logger.Warn("parallel job failed", "job", i, "error", err)
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, fmt.Errorf("job %d: %w", i, err))
			failed++
			if failed > maxErrors {
				return ErrTooManyErrors
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, errors.Join(errs...)
}
