// Package parallel provides the bounded worker pool used to run independent
// model-training calls side by side. Parallelism is an optimization only:
// callers must not depend on execution order for their results.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across one worker per CPU core and runs fn on each
// (start, end) range.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// RunTasks executes every task on a pool of at most workers goroutines and
// blocks until all of them have finished, on success and failure paths alike.
// workers <= 0 selects one worker per CPU core.
func RunTasks(workers int, tasks []func()) {
	if len(tasks) == 0 {
		return
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var wg sync.WaitGroup
	queue := make(chan func())

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				task()
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)

	wg.Wait()
}
