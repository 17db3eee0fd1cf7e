package pipeline

import (
	"context"
	"testing"

	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

func eligibleJob(bambooID int) *store.Job {
	return &store.Job{
		BambooID:                   bambooID,
		Title:                      "Backend Engineer",
		Description:                "Build services in Go.",
		DescriptionManuallyUpdated: true,
		RatingEnabled:              true,
	}
}

func TestEligible(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(job *store.Job)
		expected bool
	}{
		{"fully configured", func(job *store.Job) {}, true},
		{"rating disabled", func(job *store.Job) { job.RatingEnabled = false }, false},
		{"empty description", func(job *store.Job) { job.Description = "" }, false},
		{"description never reviewed", func(job *store.Job) { job.DescriptionManuallyUpdated = false }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := eligibleJob(7)
			tc.mutate(job)
			if got := Eligible(job); got != tc.expected {
				t.Fatalf("Eligible = %v, expected %v", got, tc.expected)
			}
		})
	}

	if Eligible(nil) {
		t.Fatal("a missing job must not be eligible")
	}
}

func TestRunRatingStoresSummaryAndRating(t *testing.T) {
	f := newFixture()
	f.records.jobs[7] = eligibleJob(7)
	seedApplication(f, 42, 7)
	f.records.apps[42].ResumeText = "ten years of Go"
	f.scorer.summary = "Strong candidate. Rating: 8/10"

	c := f.controller(Config{})
	c.runRating(context.Background(), &queue.Task{Kind: queue.KindRate, AppID: 42})

	app := f.records.apps[42]
	if app.AISummary != "Strong candidate. Rating: 8/10" {
		t.Fatalf("unexpected summary: %q", app.AISummary)
	}
	if app.AIRating == nil || *app.AIRating != 4 {
		t.Fatalf("rating = %v, expected 4", app.AIRating)
	}
	f.mustStatus(t, 42, StepRate, StatusCompleted)

	if f.scorer.lastJobDesc != "Build services in Go." || f.scorer.lastResume != "ten years of Go" {
		t.Fatalf("scorer received %q / %q", f.scorer.lastJobDesc, f.scorer.lastResume)
	}
}

func TestRunRatingSkipsIneligibleJobs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *fixture)
	}{
		{"job missing", func(f *fixture) { delete(f.records.jobs, 7) }},
		{"rating disabled", func(f *fixture) { f.records.jobs[7].RatingEnabled = false }},
		{"empty description", func(f *fixture) { f.records.jobs[7].Description = "" }},
		{"description never reviewed", func(f *fixture) { f.records.jobs[7].DescriptionManuallyUpdated = false }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.records.jobs[7] = eligibleJob(7)
			seedApplication(f, 42, 7)
			f.records.apps[42].ResumeText = "resume"
			tc.mutate(f)

			c := f.controller(Config{})
			c.runRating(context.Background(), &queue.Task{AppID: 42})

			if f.scorer.calls != 0 {
				t.Fatal("scorer must not be invoked for an ineligible job")
			}
			f.mustStatus(t, 42, StepRate, StatusSkipped)
			if f.records.apps[42].AIRating != nil {
				t.Fatal("no rating should be stored for a skipped application")
			}
		})
	}
}

func TestRunRatingAgentFailure(t *testing.T) {
	f := newFixture()
	f.records.jobs[7] = eligibleJob(7)
	seedApplication(f, 42, 7)
	f.records.apps[42].ResumeText = "resume"
	f.scorer.err = errTest

	c := f.controller(Config{})
	c.runRating(context.Background(), &queue.Task{AppID: 42})

	f.mustStatus(t, 42, StepRate, StatusFailedAgent)
	if f.records.apps[42].AISummary != "" {
		t.Fatal("no summary should be stored when the agent fails")
	}
}

func TestRunRatingStoreFailure(t *testing.T) {
	f := newFixture()
	f.records.jobs[7] = eligibleJob(7)
	seedApplication(f, 42, 7)
	f.records.apps[42].ResumeText = "resume"
	f.records.ratingErr = errTest

	c := f.controller(Config{})
	c.runRating(context.Background(), &queue.Task{AppID: 42})

	f.mustStatus(t, 42, StepRate, StatusError)
}

func TestRunRatingMissingResumeText(t *testing.T) {
	f := newFixture()
	f.records.jobs[7] = eligibleJob(7)
	seedApplication(f, 42, 7)

	c := f.controller(Config{})
	c.runRating(context.Background(), &queue.Task{AppID: 42})

	if f.scorer.calls != 0 {
		t.Fatal("scorer must not be invoked without resume text")
	}
	f.mustStatus(t, 42, StepRate, StatusInProgress)
}

func TestRunRatingSummaryWithoutRating(t *testing.T) {
	f := newFixture()
	f.records.jobs[7] = eligibleJob(7)
	seedApplication(f, 42, 7)
	f.records.apps[42].ResumeText = "resume"
	f.scorer.summary = "Looks promising overall."

	c := f.controller(Config{})
	c.runRating(context.Background(), &queue.Task{AppID: 42})

	app := f.records.apps[42]
	if app.AISummary != "Looks promising overall." {
		t.Fatalf("unexpected summary: %q", app.AISummary)
	}
	if app.AIRating != nil {
		t.Fatalf("rating = %v, expected none", app.AIRating)
	}
	f.mustStatus(t, 42, StepRate, StatusCompleted)
}
