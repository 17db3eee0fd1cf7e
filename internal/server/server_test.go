package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

type stubRecords struct {
	jobs map[int]*store.Job
	apps map[int]*store.Application

	updatedID          int
	updatedDescription *string
	updatedRating      *bool
}

func (s *stubRecords) ListJobs(ctx context.Context) ([]*store.Job, error) {
	var jobs []*store.Job
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (s *stubRecords) FindJob(ctx context.Context, bambooID int) (*store.Job, error) {
	return s.jobs[bambooID], nil
}

func (s *stubRecords) UpdateJobEditorial(ctx context.Context, bambooID int, description *string, ratingEnabled *bool) (*store.Job, error) {
	job := s.jobs[bambooID]
	if job == nil {
		return nil, nil
	}
	s.updatedID = bambooID
	s.updatedDescription = description
	s.updatedRating = ratingEnabled
	if description != nil {
		job.Description = *description
		job.DescriptionManuallyUpdated = true
	}
	if ratingEnabled != nil {
		job.RatingEnabled = *ratingEnabled
	}
	return job, nil
}

func (s *stubRecords) ListApplicationsByJob(ctx context.Context, jobID int) ([]*store.Application, error) {
	var apps []*store.Application
	for _, app := range s.apps {
		if app.JobID == jobID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (s *stubRecords) FindApplication(ctx context.Context, bambooID int) (*store.Application, error) {
	return s.apps[bambooID], nil
}

type stubStatus struct {
	rows map[int]*store.PipelineStatus
}

func (s *stubStatus) Get(ctx context.Context, bambooID int) (*store.PipelineStatus, error) {
	return s.rows[bambooID], nil
}

type stubTrigger struct {
	tasks []*queue.Task
}

func (s *stubTrigger) Enqueue(ctx context.Context, name string, task *queue.Task) error {
	task.ID = "task-1"
	s.tasks = append(s.tasks, task)
	return nil
}

func newTestServer() (*Server, *stubRecords, *stubStatus, *stubTrigger) {
	records := &stubRecords{
		jobs: map[int]*store.Job{
			7: {BambooID: 7, Title: "Backend Engineer", RatingEnabled: true},
		},
		apps: map[int]*store.Application{
			42: {BambooID: 42, JobID: 7, FirstName: "Dana"},
		},
	}
	status := &stubStatus{rows: map[int]*store.PipelineStatus{
		42: {BambooID: 42, Step: "RATE", Status: "COMPLETED"},
	}}
	trigger := &stubTrigger{}
	return New(nil, records, status, trigger), records, status, trigger
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetJob(t *testing.T) {
	s, _, _, _ := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/jobs/7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var job store.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if job.BambooID != 7 || job.Title != "Backend Engineer" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestGetJobNotFound(t *testing.T) {
	s, _, _, _ := newTestServer()

	if rec := doRequest(t, s, http.MethodGet, "/api/jobs/999", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected 404", rec.Code)
	}
}

func TestGetJobInvalidID(t *testing.T) {
	s, _, _, _ := newTestServer()

	if rec := doRequest(t, s, http.MethodGet, "/api/jobs/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rec.Code)
	}
}

func TestUpdateJob(t *testing.T) {
	s, records, _, _ := newTestServer()

	body := []byte(`{"description": "Build services in Go.", "ratingEnabled": false}`)
	rec := doRequest(t, s, http.MethodPut, "/api/jobs/7", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}

	if records.updatedID != 7 {
		t.Fatalf("updated job %d, expected 7", records.updatedID)
	}
	if records.updatedDescription == nil || *records.updatedDescription != "Build services in Go." {
		t.Fatalf("description not forwarded: %v", records.updatedDescription)
	}
	if records.updatedRating == nil || *records.updatedRating != false {
		t.Fatalf("ratingEnabled not forwarded: %v", records.updatedRating)
	}

	var job store.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !job.DescriptionManuallyUpdated {
		t.Fatal("updated job must be flagged as manually reviewed")
	}
}

func TestUpdateJobRejectsEmptyBody(t *testing.T) {
	s, _, _, _ := newTestServer()

	if rec := doRequest(t, s, http.MethodPut, "/api/jobs/7", []byte(`{}`)); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rec.Code)
	}
}

func TestListApplicants(t *testing.T) {
	s, _, _, _ := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/jobs/7/applicants", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var apps []*store.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &apps); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(apps) != 1 || apps[0].BambooID != 42 {
		t.Fatalf("unexpected applicants: %+v", apps)
	}
}

func TestGetApplicantStatus(t *testing.T) {
	s, _, _, _ := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/applicants/42/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var status store.PipelineStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.Step != "RATE" || status.Status != "COMPLETED" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestGetApplicantStatusNotFound(t *testing.T) {
	s, _, _, _ := newTestServer()

	if rec := doRequest(t, s, http.MethodGet, "/api/applicants/999/status", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected 404", rec.Code)
	}
}

func TestTriggerSync(t *testing.T) {
	s, _, _, trigger := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/sync", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, expected 202", rec.Code)
	}

	if len(trigger.tasks) != 1 {
		t.Fatalf("expected 1 queued task, got %d", len(trigger.tasks))
	}
	task := trigger.tasks[0]
	if task.Kind != queue.KindSync || task.Source != "api" {
		t.Fatalf("unexpected task: %+v", task)
	}
}
