// Package store holds the two systems of record: MongoDB collections for
// jobs and applications, and a Postgres table for per-application pipeline
// status. The two are updated independently and are only eventually
// consistent; the sync stage's backfill scan reconciles them.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	jobsCollection         = "jobs"
	applicationsCollection = "applications"
)

// Records is the MongoDB-backed record store for jobs and applications.
type Records struct {
	jobs *mongo.Collection
	apps *mongo.Collection
}

func NewRecords(db *mongo.Database) *Records {
	return &Records{
		jobs: db.Collection(jobsCollection),
		apps: db.Collection(applicationsCollection),
	}
}

// UpsertJob reconciles one upstream job into the record store, matched by
// bamboo id. Only catalog fields are written on update; editorial fields
// (description, descriptionManuallyUpdated) are never touched, and the
// rating flags are seeded on first insert only.
func (r *Records) UpsertJob(ctx context.Context, job *Job) error {
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"title":      job.Title,
			"department": job.Department,
			"location":   job.Location,
			"division":   job.Division,
			"status":     job.Status,
			"dateOpened": job.DateOpened,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"bambooId":                   job.BambooID,
			"ratingEnabled":              true,
			"descriptionManuallyUpdated": false,
			"createdAt":                  now,
		},
	}

	_, err := r.jobs.UpdateOne(ctx, bson.M{"bambooId": job.BambooID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert job %d: %w", job.BambooID, err)
	}

	return nil
}

// FindJob returns the job with the given bamboo id, or nil when absent.
func (r *Records) FindJob(ctx context.Context, bambooID int) (*Job, error) {
	var job Job
	err := r.jobs.FindOne(ctx, bson.M{"bambooId": bambooID}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job %d: %w", bambooID, err)
	}

	return &job, nil
}

// ListJobs returns all jobs, most recently opened first.
func (r *Records) ListJobs(ctx context.Context) ([]*Job, error) {
	cursor, err := r.jobs.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "dateOpened", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	var jobs []*Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	return jobs, nil
}

// UpdateJobEditorial applies an editorial change to a job: setting the
// description also marks it manually updated, which gates the rating stage.
// Returns the updated job, or nil when no job matches.
func (r *Records) UpdateJobEditorial(ctx context.Context, bambooID int, description *string, ratingEnabled *bool) (*Job, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if description != nil {
		set["description"] = *description
		set["descriptionManuallyUpdated"] = true
	}
	if ratingEnabled != nil {
		set["ratingEnabled"] = *ratingEnabled
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var job Job
	err := r.jobs.FindOneAndUpdate(ctx, bson.M{"bambooId": bambooID}, bson.M{"$set": set}, opts).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update job %d: %w", bambooID, err)
	}

	return &job, nil
}

// InsertApplication creates the record for a newly discovered application.
// The bamboo id is unique: discovering the same application twice is the
// caller's signal to skip insertion.
func (r *Records) InsertApplication(ctx context.Context, app *Application) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	if _, err := r.apps.InsertOne(ctx, app); err != nil {
		return fmt.Errorf("insert application %d: %w", app.BambooID, err)
	}

	return nil
}

// FindApplication returns the application with the given bamboo id, or nil
// when absent.
func (r *Records) FindApplication(ctx context.Context, bambooID int) (*Application, error) {
	var app Application
	err := r.apps.FindOne(ctx, bson.M{"bambooId": bambooID}).Decode(&app)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find application %d: %w", bambooID, err)
	}

	return &app, nil
}

// ListApplicationsByJob returns the applications referencing the given job
// bamboo id, best rated first.
func (r *Records) ListApplicationsByJob(ctx context.Context, jobID int) ([]*Application, error) {
	cursor, err := r.apps.Find(ctx, bson.M{"jobId": jobID}, options.Find().SetSort(bson.D{{Key: "aiRating", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list applications for job %d: %w", jobID, err)
	}

	var apps []*Application
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}

	return apps, nil
}

// SetResumeText stores the extracted resume text on an application.
func (r *Records) SetResumeText(ctx context.Context, bambooID int, text string) error {
	update := bson.M{"$set": bson.M{"resumeText": text, "updatedAt": time.Now().UTC()}}
	if _, err := r.apps.UpdateOne(ctx, bson.M{"bambooId": bambooID}, update); err != nil {
		return fmt.Errorf("set resume text for %d: %w", bambooID, err)
	}

	return nil
}

// SetRating stores the raw agent response and the normalized rating. A nil
// rating stores the summary only, leaving any previous rating untouched.
func (r *Records) SetRating(ctx context.Context, bambooID int, summary string, rating *int) error {
	set := bson.M{"aiSummary": summary, "updatedAt": time.Now().UTC()}
	if rating != nil {
		set["aiRating"] = *rating
	}

	if _, err := r.apps.UpdateOne(ctx, bson.M{"bambooId": bambooID}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("set rating for %d: %w", bambooID, err)
	}

	return nil
}
