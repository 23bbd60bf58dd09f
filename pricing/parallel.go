package pricing

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFor splits [0, n) into contiguous chunks, one per worker, and waits
// for fn to finish on all of them. Workers only write to their own indices so
// callers can reduce the results in index order afterwards.
func parallelFor(workers, n int, fn func(lo, hi int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
