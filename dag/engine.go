package dag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Engine executes a callback for every contract of a level plan, level by
// level. Members of one level run concurrently.
type Engine struct {
	// MaxParallel limits concurrent callbacks per level (0 = unlimited).
	MaxParallel int
}

// StepFunc is invoked once per contract key.
type StepFunc func(ctx context.Context, key string) error

// Result holds the outcome of an engine run.
type Result struct {
	Steps    map[string]StepResult
	Duration time.Duration
}

// StepResult holds the outcome of a single step.
type StepResult struct {
	Key      string
	Status   string // "completed" | "failed" | "skipped"
	Duration time.Duration
	Error    error
}

// Run executes fn for every key in levels. When any step of a level fails,
// later levels are skipped and the joined step errors are returned.
func (e *Engine) Run(ctx context.Context, levels [][]string, fn StepFunc) (*Result, error) {
	start := time.Now()
	result := &Result{Steps: make(map[string]StepResult)}

	for i, level := range levels {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		if errs := e.runLevel(ctx, level, fn, result); len(errs) > 0 {
			for _, rest := range levels[i+1:] {
				for _, key := range rest {
					result.Steps[key] = StepResult{Key: key, Status: "skipped"}
				}
			}
			result.Duration = time.Since(start)
			return result, fmt.Errorf("dag: level %d failed: %w", i, errors.Join(errs...))
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (e *Engine) runLevel(ctx context.Context, keys []string, fn StepFunc, result *Result) []error {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)

	sem := make(chan struct{}, e.concurrency(len(keys)))

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			started := time.Now()
			err := fn(ctx, key)
			sr := StepResult{Key: key, Status: "completed", Duration: time.Since(started)}
			if err != nil {
				sr.Status = "failed"
				sr.Error = err
			}

			mu.Lock()
			result.Steps[key] = sr
			if err != nil {
				errs = append(errs, err)
			}
			mu.Unlock()
		}(key)
	}

	wg.Wait()
	return errs
}

func (e *Engine) concurrency(levelSize int) int {
	if e.MaxParallel <= 0 || e.MaxParallel > levelSize {
		return levelSize
	}
	return e.MaxParallel
}
