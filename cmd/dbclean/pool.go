package main

import (
	"context"
	"sync"
	"sync/atomic"
)

// runPool hands ids to workerCount goroutines running work and returns how
// many calls succeeded. It stops handing out ids once ctx is canceled and
// waits for in-flight calls before returning.
func runPool(ctx context.Context, workerCount int, ids []string, work func(context.Context, string) error) int {
	if workerCount <= 0 {
		workerCount = 1
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	var succeeded atomic.Int64

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := work(ctx, id); err == nil {
					succeeded.Add(1)
				}
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case jobs <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return int(succeeded.Load())
}
