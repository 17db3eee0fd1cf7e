package store

import "time"

// Job mirrors an upstream job opening. Description and the two flags are
// editorial state owned by this system: sync never overwrites them once set.
type Job struct {
	BambooID                  int       `bson:"bambooId" json:"bambooId"`
	Title                     string    `bson:"title" json:"title"`
	Department                string    `bson:"department,omitempty" json:"department,omitempty"`
	Location                  string    `bson:"location,omitempty" json:"location,omitempty"`
	Division                  string    `bson:"division,omitempty" json:"division,omitempty"`
	Status                    string    `bson:"status,omitempty" json:"status,omitempty"`
	DateOpened                string    `bson:"dateOpened,omitempty" json:"dateOpened,omitempty"`
	Description               string    `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionManuallyUpdated bool     `bson:"descriptionManuallyUpdated" json:"descriptionManuallyUpdated"`
	RatingEnabled             bool      `bson:"ratingEnabled" json:"ratingEnabled"`
	CreatedAt                 time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt                 time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Application mirrors an upstream application. JobID is a weak reference to
// Job.BambooID, looked up by value. Details is an opaque bag of upstream
// fields; the resume file id lives there once discovered.
type Application struct {
	BambooID    int            `bson:"bambooId" json:"bambooId"`
	JobID       int            `bson:"jobId" json:"jobId"`
	FirstName   string         `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string         `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email       string         `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string         `bson:"phone,omitempty" json:"phone,omitempty"`
	DateApplied string         `bson:"dateApplied,omitempty" json:"dateApplied,omitempty"`
	Status      string         `bson:"status,omitempty" json:"status,omitempty"`
	ResumeText  string         `bson:"resumeText,omitempty" json:"resumeText,omitempty"`
	AISummary   string         `bson:"aiSummary,omitempty" json:"aiSummary,omitempty"`
	AIRating    *int           `bson:"aiRating,omitempty" json:"aiRating,omitempty"`
	Details     map[string]any `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// DetailResumeFileID is the details key holding the resume file id.
const DetailResumeFileID = "resumeFileId"

// ResumeFileID returns the resume file id recorded in Details, or zero when
// unknown. Numeric detail values may arrive as any numeric type after a
// JSON or BSON round trip.
func (a *Application) ResumeFileID() int {
	if a == nil || a.Details == nil {
		return 0
	}

	switch v := a.Details[DetailResumeFileID].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// PipelineStatus is one row of the durable status store: the most recent
// stage and outcome recorded for an application.
type PipelineStatus struct {
	BambooID  int       `json:"bambooId"`
	Step      string    `json:"step"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedAt time.Time `json:"createdAt"`
}
