package batch

import (
	"context"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bcdannyboy/optval/pricing"
	"github.com/shirou/gopsutil/cpu"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/zap"
)

const (
	jobBatchSize    = 1000
	resultBatchSize = 1000
)

// Options configure a batch run.
type Options struct {
	// Workers is the pool size; zero uses the logical CPU count.
	Workers int
	// Progress renders a progress bar on ProgressOutput (stderr when nil).
	Progress       bool
	ProgressOutput io.Writer
	Defaults       Defaults
	Logger         *zap.Logger
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Run prices every job and returns results in input order. A failed job does
// not stop the batch; its error is recorded on its result. If ctx is
// cancelled, unpriced jobs carry the context error and Run returns it.
func Run(ctx context.Context, reg *pricing.Registry, jobs []Job, opts Options) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = cpuCount()
	}
	numWorkers = min(numWorkers, max(len(jobs), 1))

	var (
		p   *mpb.Progress
		bar *mpb.Bar
	)
	if opts.Progress && len(jobs) > 0 {
		out := opts.ProgressOutput
		if out == nil {
			out = os.Stderr
		}
		p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(out))
		bar = p.AddBar(int64(len(jobs)),
			mpb.PrependDecorators(
				decor.Name("Pricing"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)
	}

	start := time.Now()
	logger.Info("batch started", zap.Int("jobs", len(jobs)), zap.Int("workers", numWorkers))

	results, processed := processJobs(ctx, reg, jobs, opts.Defaults, numWorkers, bar)
	if p != nil {
		if processed < int64(len(jobs)) {
			bar.Abort(false)
		}
		p.Wait()
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			logger.Warn("job failed", zap.String("id", r.ID), zap.String("error", r.Error))
		}
	}
	logger.Info("batch finished",
		zap.Int64("priced", processed),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, ctx.Err()
}

func processJobs(ctx context.Context, reg *pricing.Registry, jobs []Job, d Defaults, numWorkers int, bar *mpb.Bar) ([]Result, int64) {
	var wg sync.WaitGroup
	jobChan := make(chan indexedJob, min(len(jobs), jobBatchSize))
	resultChan := make(chan indexedResult, resultBatchSize)
	var processed int64

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(ctx, reg, d, jobChan, resultChan, &wg, &processed, bar)
	}

	go func() {
		defer close(jobChan)
		for i, j := range jobs {
			select {
			case jobChan <- indexedJob{index: i, job: j}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, len(jobs))
	done := make([]bool, len(jobs))
	for r := range resultChan {
		results[r.index] = r.result
		done[r.index] = true
	}

	for i, ok := range done {
		if !ok {
			results[i] = cancelled(jobs[i], ctx.Err())
		}
	}
	return results, atomic.LoadInt64(&processed)
}

func worker(ctx context.Context, reg *pricing.Registry, d Defaults, jobs <-chan indexedJob, results chan<- indexedResult, wg *sync.WaitGroup, processed *int64, bar *mpb.Bar) {
	defer wg.Done()
	for j := range jobs {
		if ctx.Err() != nil {
			continue
		}
		results <- indexedResult{index: j.index, result: PriceJob(reg, j.job, d)}
		atomic.AddInt64(processed, 1)
		if bar != nil {
			bar.Increment()
		}
	}
}

func cancelled(job Job, err error) Result {
	if err == nil {
		err = context.Canceled
	}
	return Result{ID: job.ID, Method: job.Market.Method, Option: job.Option.Kind, Error: err.Error(), err: err}
}

func cpuCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
