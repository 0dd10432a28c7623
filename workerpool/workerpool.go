package workerpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Task is one independent unit of work run by Run.
type Task func(ctx context.Context) error

// Run executes tasks on a pool of at most size goroutines and waits for all of them. The first
// failure cancels the context handed to the remaining tasks and is returned. A panicking task
// counts as a failure.
func Run(ctx context.Context, size int, tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if size <= 0 || size > len(tasks) {
		size = len(tasks)
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return fmt.Errorf("run: unable to create pool: %w", err)
	}
	defer pool.Release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, task := range tasks {
		task := task
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					fail(fmt.Errorf("run: task panicked: %v", p))
				}
			}()
			if runCtx.Err() != nil {
				return
			}
			if err := task(runCtx); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("run: unable to submit task: %w", err))
		}
	}

	wg.Wait()
	if firstErr == nil {
		return ctx.Err()
	}
	return firstErr
}
