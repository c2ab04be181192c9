package di

import (
	"context"

	"github.com/kbukum/scopekit/dag"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

// Warm constructs every singleton ahead of first use, dependencies first.
// Independent singletons of one level are built concurrently, bounded by
// WithMaxParallelWarm.
func (c *Container) Warm(ctx context.Context) error {
	if err := c.usable(nil); err != nil {
		return err
	}

	levels, err := dag.BuildLevels(c.graph)
	if err != nil {
		if cycles := dag.FindCycles(c.graph); len(cycles) > 0 {
			return apperrors.CycleDetected(cycles[0].Path)
		}
		return err
	}

	var plan [][]string
	count := 0
	for _, level := range levels {
		var keys []string
		for _, key := range level {
			if c.hasSingleton(Key(key)) {
				keys = append(keys, key)
				count++
			}
		}
		if len(keys) > 0 {
			plan = append(plan, keys)
		}
	}

	engine := &dag.Engine{MaxParallel: c.opts.maxParallelWarm}
	result, err := engine.Run(ctx, plan, func(ctx context.Context, key string) error {
		for _, d := range c.byKey[Key(key)] {
			if d.lifetime != Singleton {
				continue
			}
			if _, err := c.resolveDescriptor(ctx, nil, d, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.logger.WithError(err).Warn("singleton warm-up failed", logger.Fields(logger.FieldOperation, "warm"))
		return err
	}

	c.logger.Info("singletons warmed", logger.Fields(
		logger.FieldCount, count,
		"levels", len(plan),
		logger.FieldDuration, result.Duration.Milliseconds(),
	))
	return nil
}

func (c *Container) hasSingleton(key Key) bool {
	for _, d := range c.byKey[key] {
		if d.lifetime == Singleton {
			return true
		}
	}
	return false
}

