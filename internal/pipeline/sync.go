package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

// runSync reconciles the upstream catalog into the record store. It
// upserts every job, inserts every unseen application, and enqueues
// extraction work for any application that has a known resume file but
// no extracted text yet. Re-running it is harmless: existing records
// are left alone and already-extracted applications are not re-enqueued.
func (c *Controller) runSync(ctx context.Context) error {
	log := c.logger
	log.Info("starting catalog sync")

	jobs, err := c.deps.Catalog.GetJobs(ctx)
	if err != nil {
		return fmt.Errorf("fetching job catalog: %w", err)
	}

	for _, job := range jobs {
		record := &store.Job{
			BambooID:   job.ID,
			Title:      job.Title,
			Department: job.Department,
			Location:   job.Location,
			Division:   job.Division,
			Status:     job.Status,
			DateOpened: job.DateOpened,
		}
		if err := c.deps.Records.UpsertJob(ctx, record); err != nil {
			return fmt.Errorf("upserting job %d: %w", job.ID, err)
		}
	}
	log.Info("job catalog synced", zap.Int("jobs", len(jobs)))

	apps, err := c.deps.Catalog.GetApplications(ctx)
	if err != nil {
		return fmt.Errorf("fetching application catalog: %w", err)
	}

	enqueued := 0
	for _, app := range apps {
		if err := c.deps.Status.Ensure(ctx, app.ID); err != nil {
			log.Error("ensuring status row", zap.Int("bamboo_id", app.ID), zap.Error(err))
		}

		existing, err := c.deps.Records.FindApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("looking up application %d: %w", app.ID, err)
		}

		resumeFileID := 0
		if existing != nil {
			resumeFileID = existing.ResumeFileID()
		}
		if resumeFileID == 0 {
			// Summary rows rarely carry the resume file id, so fall back
			// to the per-application detail endpoint.
			if app.ResumeFileID != 0 {
				resumeFileID = app.ResumeFileID
			} else if details, derr := c.deps.Catalog.GetApplicationDetails(ctx, app.ID); derr != nil {
				log.Warn("fetching application details", zap.Int("bamboo_id", app.ID), zap.Error(derr))
			} else if details != nil {
				resumeFileID = details.ResumeFileID
			}
		}

		if existing == nil {
			record := &store.Application{
				BambooID:    app.ID,
				JobID:       app.JobID,
				FirstName:   app.Applicant.FirstName,
				LastName:    app.Applicant.LastName,
				Email:       app.Applicant.Email,
				Phone:       app.Applicant.Phone,
				Status:      app.Status,
				DateApplied: app.AppliedDate,
				Details:     map[string]any{},
			}
			if resumeFileID != 0 {
				record.Details[store.DetailResumeFileID] = resumeFileID
			}
			if err := c.deps.Records.InsertApplication(ctx, record); err != nil {
				return fmt.Errorf("inserting application %d: %w", app.ID, err)
			}
			c.transition(ctx, app.ID, StepSync, StatusCompleted)
		} else if existing.ResumeText != "" {
			continue
		}

		if resumeFileID == 0 {
			continue
		}
		task := &queue.Task{Kind: queue.KindExtract, AppID: app.ID, FileID: resumeFileID}
		if err := c.deps.Queue.Enqueue(ctx, queue.ResumeProcessing, task); err != nil {
			return fmt.Errorf("enqueueing extraction for application %d: %w", app.ID, err)
		}
		enqueued++
	}

	log.Info("catalog sync complete",
		zap.Int("applications", len(apps)),
		zap.Int("queued_for_extraction", enqueued),
	)
	return nil
}
