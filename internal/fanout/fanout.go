// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fanout runs a group of independent tasks and collects a result per
// task. One task's failure never cancels or corrupts its siblings: the caller
// receives every task's error (or nil) in task order and decides what to do
// with each.
package fanout

import "sync"

// Run executes tasks and returns one error slot per task, index-aligned with
// the input. With parallel set, at most workers tasks run at once; otherwise
// tasks run sequentially in order. The two modes produce identical results,
// they differ only in latency. Each task writes only its own slot, so no
// additional synchronization is needed around the result slice.
func Run(parallel bool, workers int, tasks []func() error) []error {
	errs := make([]error, len(tasks))

	if !parallel || workers <= 1 || len(tasks) <= 1 {
		for i, task := range tasks {
			errs[i] = task()
		}
		return errs
	}

	if workers > len(tasks) {
		workers = len(tasks)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func() error) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs[i] = task()
		}(i, task)
	}
	wg.Wait()

	return errs
}
