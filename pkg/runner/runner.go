package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/market"
)

// Job is one independent simulation: a configuration plus a factory that
// builds a fresh strategy for it. Strategies are stateful, so jobs must not
// share instances.
type Job struct {
	Name       string
	Config     engine.Config
	Strategy   func() engine.Strategy
	Indicators engine.IndicatorSet
}

// Outcome pairs a job with its finished result or the error that stopped it.
type Outcome struct {
	Job    Job
	Result *engine.Result
	Err    error
}

// Runner executes jobs over a shared candle series, several at a time.
// Candles are read-only and shared across workers; each job gets its own
// simulator.
type Runner struct {
	logger  *zap.Logger
	workers int
}

func New(logger *zap.Logger, workers int) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		logger:  logger,
		workers: workers,
	}
}

// Run executes every job and returns outcomes in job order. A cancelled
// context stops feeding new jobs; jobs already started run to completion.
func (r *Runner) Run(ctx context.Context, candles []market.Candle, jobs []Job) ([]Outcome, error) {

	if len(jobs) == 0 {
		return nil, fmt.Errorf("no jobs to run")
	}

	outcomes := make([]Outcome, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = r.runOne(candles, jobs[i])
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (r *Runner) runOne(candles []market.Candle, job Job) Outcome {

	simulator, err := engine.NewSimulator(r.logger.Named(job.Name), job.Config)
	if err != nil {
		return Outcome{Job: job, Err: fmt.Errorf("job %q: %w", job.Name, err)}
	}

	result, err := simulator.Run(candles, job.Strategy(), job.Indicators)
	if err != nil {
		return Outcome{Job: job, Result: result, Err: fmt.Errorf("job %q: %w", job.Name, err)}
	}
	return Outcome{Job: job, Result: result}
}
