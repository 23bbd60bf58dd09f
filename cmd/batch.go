package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcdannyboy/optval/batch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		in, out  string
		workers  int
		progress bool
	)

	cmd := &cobra.Command{
		Use:     "batch",
		Short:   "Price a JSON array of jobs",
		Example: `  optval batch --in jobs.json --out results.json`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			jobs, err := readJobs(c, in)
			if err != nil {
				return err
			}

			opts := batch.Options{
				Workers:  a.cfg.Batch.Workers,
				Progress: a.cfg.Batch.Progress,
				Defaults: a.defaults(),
				Logger:   a.logger,
			}
			if c.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if c.Flags().Changed("progress") {
				opts.Progress = progress
			}

			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			results, runErr := batch.Run(ctx, a.registry, jobs, opts)
			if err := writeResults(c, out, results); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			a.logger.Info("results written", zap.String("out", out), zap.Int("count", len(results)))
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&in, "in", "i", "-", "input jobs file, - for stdin")
	fl.StringVarP(&out, "out", "o", "-", "output results file, - for stdout")
	fl.IntVarP(&workers, "workers", "w", 0, "worker count (default from config)")
	fl.BoolVar(&progress, "progress", true, "show a progress bar")

	return cmd
}

func readJobs(c *cobra.Command, path string) ([]batch.Job, error) {
	var r io.Reader = c.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open jobs: %w", err)
		}
		defer f.Close()
		r = f
	}
	return batch.ReadJobs(r)
}

func writeResults(c *cobra.Command, path string, results []batch.Result) error {
	if path == "-" {
		return batch.WriteResults(c.OutOrStdout(), results)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results: %w", err)
	}
	if err := batch.WriteResults(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
