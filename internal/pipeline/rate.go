package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/agent"
	"github.com/resumerater/resumerater/internal/logger"
	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

// Eligible reports whether a job's configuration allows its applications
// to be rated. A description that has not been reviewed by a person is
// never sent to the agent.
func Eligible(job *store.Job) bool {
	return job != nil && job.RatingEnabled && job.Description != "" && job.DescriptionManuallyUpdated
}

// runRating sends one application's resume to the agent, parses the
// numeric rating out of the returned summary, and stores both.
func (c *Controller) runRating(ctx context.Context, task *queue.Task) {
	log := logger.WithFields(c.logger, zap.Int(logger.FieldBambooID, task.AppID))
	log.Info("rating application")

	c.transition(ctx, task.AppID, StepRate, StatusInProgress)

	app, err := c.deps.Records.FindApplication(ctx, task.AppID)
	if err != nil {
		log.Error("loading application", zap.Error(err))
		c.transition(ctx, task.AppID, StepRate, StatusError)
		return
	}
	if app == nil || app.ResumeText == "" {
		// Tasks only reach this queue after extraction, so this is a
		// stale or hand-crafted task. Leave the status as is.
		log.Warn("cannot rate application, resume text missing")
		return
	}

	job, err := c.deps.Records.FindJob(ctx, app.JobID)
	if err != nil {
		log.Error("loading job", zap.Int("job_id", app.JobID), zap.Error(err))
		c.transition(ctx, task.AppID, StepRate, StatusError)
		return
	}
	if !Eligible(job) {
		log.Warn("job not eligible for rating", zap.Int("job_id", app.JobID))
		c.transition(ctx, task.AppID, StepRate, StatusSkipped)
		return
	}

	summary, err := c.deps.Scorer.Score(ctx, job.Description, app.ResumeText)
	if err != nil {
		log.Error("scoring application", zap.Error(err))
		c.transition(ctx, task.AppID, StepRate, StatusFailedAgent)
		return
	}

	log.Debug("agent summary", zap.String("summary", logger.TruncateForLog(summary, 200)))

	rating := agent.ParseRating(summary)
	if rating == nil {
		log.Warn("agent summary carries no parseable rating")
	}

	if err := c.deps.Records.SetRating(ctx, task.AppID, summary, rating); err != nil {
		log.Error("storing rating", zap.Error(err))
		c.transition(ctx, task.AppID, StepRate, StatusError)
		return
	}

	c.transition(ctx, task.AppID, StepRate, StatusCompleted)
	if rating != nil {
		log.Info("application rated", zap.Int("rating", *rating))
	}
}
