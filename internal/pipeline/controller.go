package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/queue"
)

// Run drains the three stage queues in strict priority order, sync
// first, until the context is cancelled. A sync task always runs before
// any waiting extraction task, and extraction before any waiting rating
// task, so catalog changes propagate before older work is finished.
// It also starts the periodic sync trigger.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("pipeline controller started",
		zap.Duration("sync_interval", c.syncInterval),
		zap.Duration("idle_wait", c.idleWait),
	)

	go c.scheduleSync(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("pipeline controller stopping")
			return ctx.Err()
		default:
		}

		task, err := c.deps.Queue.Dequeue(ctx, queue.Sync)
		if err != nil {
			if werr := c.backoff(ctx, err); werr != nil {
				return werr
			}
			continue
		}
		if task != nil {
			if err := c.runSync(ctx); err != nil {
				c.logger.Error("catalog sync failed", zap.Error(err))
			}
			continue
		}

		task, err = c.deps.Queue.Dequeue(ctx, queue.ResumeProcessing)
		if err != nil {
			if werr := c.backoff(ctx, err); werr != nil {
				return werr
			}
			continue
		}
		if task != nil {
			c.runExtraction(ctx, task)
			continue
		}

		task, err = c.deps.Queue.Dequeue(ctx, queue.Rating)
		if err != nil {
			if werr := c.backoff(ctx, err); werr != nil {
				return werr
			}
			continue
		}
		if task != nil {
			c.runRating(ctx, task)
			continue
		}

		if err := waitFor(ctx, c.idleWait); err != nil {
			c.logger.Info("pipeline controller stopping")
			return err
		}
	}
}

func (c *Controller) backoff(ctx context.Context, err error) error {
	c.logger.Error("popping queued tasks", zap.Error(err))
	return waitFor(ctx, c.errorWait)
}

// scheduleSync enqueues a sync task every syncInterval until the
// context is cancelled. The first sync is not triggered here; callers
// enqueue one at startup if they want an immediate pass.
func (c *Controller) scheduleSync(ctx context.Context) {
	ticker := time.NewTicker(c.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.logger.Info("triggering scheduled sync")
			task := &queue.Task{Kind: queue.KindSync, Source: "scheduler"}
			if err := c.deps.Queue.Enqueue(ctx, queue.Sync, task); err != nil {
				c.logger.Error("enqueueing scheduled sync", zap.Error(err))
			}
		}
	}
}
