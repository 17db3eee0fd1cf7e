package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/extract"
	"github.com/resumerater/resumerater/internal/logger"
	"github.com/resumerater/resumerater/internal/queue"
)

// runExtraction downloads one resume, extracts its plain text, stores
// it on the application record, and hands the application to the rating
// queue. All failures are terminal for this attempt; the task is not
// re-enqueued here.
func (c *Controller) runExtraction(ctx context.Context, task *queue.Task) {
	log := logger.WithFields(c.logger, zap.Int(logger.FieldBambooID, task.AppID), zap.Int("file_id", task.FileID))
	log.Info("processing resume")

	c.transition(ctx, task.AppID, StepDownload, StatusInProgress)

	file, err := c.deps.Catalog.DownloadFile(ctx, task.FileID)
	if err != nil {
		log.Error("downloading resume", zap.Error(err))
		c.transition(ctx, task.AppID, StepDownload, StatusError)
		return
	}

	var text string
	switch extract.Classify(file.ContentType) {
	case extract.FormatWord:
		text, err = c.deps.Word.Extract(file.Data)
	case extract.FormatPDF:
		text, err = c.deps.PDF.Extract(file.Data)
	default:
		log.Warn("unsupported resume format", zap.String("content_type", file.ContentType))
		c.transition(ctx, task.AppID, StepDownload, FailedFormatStatus(file.ContentType))
		return
	}

	if err != nil || text == "" {
		log.Warn("resume yielded no text", zap.String("content_type", file.ContentType), zap.Error(err))
		c.transition(ctx, task.AppID, StepDownload, StatusFailedParse)
		return
	}

	if err := c.deps.Records.SetResumeText(ctx, task.AppID, text); err != nil {
		log.Error("storing resume text", zap.Error(err))
		c.transition(ctx, task.AppID, StepDownload, StatusError)
		return
	}

	c.transition(ctx, task.AppID, StepDownload, StatusCompleted)
	log.Info("resume text extracted", zap.Int("chars", len(text)))

	next := &queue.Task{Kind: queue.KindRate, AppID: task.AppID}
	if err := c.deps.Queue.Enqueue(ctx, queue.Rating, next); err != nil {
		// The text is stored but the rating task is lost; backfill only
		// re-enqueues applications without text, so mark the stage failed
		// to keep the application visible to the requeue tool.
		log.Error("enqueueing rating task", zap.Error(err))
		c.transition(ctx, task.AppID, StepDownload, StatusError)
	}
}
