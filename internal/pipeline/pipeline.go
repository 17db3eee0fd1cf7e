// Package pipeline is the controller that moves every application through
// the three ordered stages: catalog synchronization, resume extraction,
// and AI rating. Each stage records its progress in the status store and
// broadcasts the transition to subscribers. Stage outcomes are terminal;
// there is no retry policy, and failed work is only re-enqueued by the
// next sync backfill pass or by an operator.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/agent"
	"github.com/resumerater/resumerater/internal/bamboo"
	"github.com/resumerater/resumerater/internal/events"
	"github.com/resumerater/resumerater/internal/extract"
	"github.com/resumerater/resumerater/internal/logger"
	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

const (
	StepSync     = "SYNC"
	StepDownload = "DOWNLOAD"
	StepRate     = "RATE"
)

const (
	StatusCompleted  = "COMPLETED"
	StatusInProgress = "IN_PROGRESS"
	StatusError      = "ERROR"
	StatusSkipped    = "SKIPPED"
	StatusFailedAgent = "FAILED_AGENT"
	StatusFailedParse = "FAILED_PDF_PARSE"

	failedFormatPrefix = "FAILED_FORMAT_"
)

// FailedFormatStatus builds the terminal outcome for an unsupported
// declared content type, e.g. "image/png" -> "FAILED_FORMAT_png".
func FailedFormatStatus(contentType string) string {
	subtype := extract.Subtype(contentType)
	if subtype == "" {
		subtype = "unknown"
	}

	return failedFormatPrefix + subtype
}

// Catalog is the upstream recruiting platform surface the pipeline
// consumes.
type Catalog interface {
	GetJobs(ctx context.Context) ([]*bamboo.JobSummary, error)
	GetApplications(ctx context.Context) ([]*bamboo.ApplicationSummary, error)
	GetApplicationDetails(ctx context.Context, id int) (*bamboo.ApplicationDetails, error)
	DownloadFile(ctx context.Context, fileID int) (*bamboo.File, error)
}

// RecordStore is the job/application record store surface the pipeline
// consumes.
type RecordStore interface {
	UpsertJob(ctx context.Context, job *store.Job) error
	FindJob(ctx context.Context, bambooID int) (*store.Job, error)
	InsertApplication(ctx context.Context, app *store.Application) error
	FindApplication(ctx context.Context, bambooID int) (*store.Application, error)
	SetResumeText(ctx context.Context, bambooID int, text string) error
	SetRating(ctx context.Context, bambooID int, summary string, rating *int) error
}

// StatusStore is the durable per-application pipeline state.
type StatusStore interface {
	Set(ctx context.Context, bambooID int, step, status string) error
	Ensure(ctx context.Context, bambooID int) error
}

// TaskQueue moves task envelopes between pipeline stages.
type TaskQueue interface {
	Enqueue(ctx context.Context, name string, task *queue.Task) error
	Dequeue(ctx context.Context, name string) (*queue.Task, error)
}

// EventPublisher broadcasts status transitions; delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Deps aggregates the collaborators shared across all pipeline stages.
// Construct them once at process start and pass them in; the stages keep
// no ambient global state.
type Deps struct {
	Catalog Catalog
	Records RecordStore
	Status  StatusStore
	Queue   TaskQueue
	Events  EventPublisher
	PDF     extract.TextExtractor
	Word    extract.TextExtractor
	Scorer  agent.Scorer
	Logger  *zap.Logger
}

// Config holds the controller's timing knobs.
type Config struct {
	// SyncInterval is the period of the automatic sync trigger.
	SyncInterval time.Duration
	// IdleWait is how long the dispatcher sleeps when all queues are empty.
	IdleWait time.Duration
}

const (
	defaultSyncInterval = 10 * time.Minute
	defaultIdleWait     = 2 * time.Second
	errorWait           = 5 * time.Second
)

// Controller owns the dispatcher loop and the three stage handlers.
type Controller struct {
	deps   Deps
	logger *zap.Logger

	syncInterval time.Duration
	idleWait     time.Duration
	errorWait    time.Duration
}

func New(cfg Config, deps Deps) *Controller {
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = defaultSyncInterval
	}
	if cfg.IdleWait <= 0 {
		cfg.IdleWait = defaultIdleWait
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		deps:         deps,
		logger:       logger,
		syncInterval: cfg.SyncInterval,
		idleWait:     cfg.IdleWait,
		errorWait:    errorWait,
	}
}

// transition writes a status row and fans the change out to subscribers.
// Neither failure propagates: the status store is retried implicitly by
// the next write, and events are best-effort by contract.
func (c *Controller) transition(ctx context.Context, bambooID int, step, status string) {
	fields := append(logger.TransitionFields(step, status), zap.Int(logger.FieldBambooID, bambooID))

	if err := c.deps.Status.Set(ctx, bambooID, step, status); err != nil {
		c.logger.Error("updating pipeline status", append(fields, zap.Error(err))...)
		return
	}

	if err := c.deps.Events.Publish(ctx, events.Event{BambooID: bambooID, Step: step, Status: status}); err != nil {
		c.logger.Warn("publishing status event", append(fields, zap.Error(err))...)
	}
}

// waitFor blocks for the given duration or until the context is done.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
