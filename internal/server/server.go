// Package server exposes the read API over the record and status stores,
// plus the editorial endpoints recruiters use to prepare jobs for rating
// and to trigger a sync on demand. It never writes pipeline state itself;
// the only mutation besides job editorial fields is pushing a sync task.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

// RecordReader is the record-store surface the API serves from.
type RecordReader interface {
	ListJobs(ctx context.Context) ([]*store.Job, error)
	FindJob(ctx context.Context, bambooID int) (*store.Job, error)
	UpdateJobEditorial(ctx context.Context, bambooID int, description *string, ratingEnabled *bool) (*store.Job, error)
	ListApplicationsByJob(ctx context.Context, jobID int) ([]*store.Application, error)
	FindApplication(ctx context.Context, bambooID int) (*store.Application, error)
}

// StatusReader looks up the durable pipeline state for one application.
type StatusReader interface {
	Get(ctx context.Context, bambooID int) (*store.PipelineStatus, error)
}

// SyncTrigger pushes tasks onto the pipeline queues.
type SyncTrigger interface {
	Enqueue(ctx context.Context, name string, task *queue.Task) error
}

type Server struct {
	records RecordReader
	status  StatusReader
	queue   SyncTrigger
	logger  *zap.Logger
}

func New(logger *zap.Logger, records RecordReader, status StatusReader, trigger SyncTrigger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{records: records, status: status, queue: trigger, logger: logger}
}

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Put("/jobs/{id}", s.handleUpdateJob)
		r.Get("/jobs/{id}/applicants", s.handleListApplicants)
		r.Get("/applicants/{id}", s.handleGetApplicant)
		r.Get("/applicants/{id}/status", s.handleGetApplicantStatus)
		r.Post("/sync", s.handleTriggerSync)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.records.ListJobs(r.Context())
	if err != nil {
		s.internalError(w, "listing jobs", err)
		return
	}
	if jobs == nil {
		jobs = []*store.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	job, err := s.records.FindJob(r.Context(), id)
	if err != nil {
		s.internalError(w, "loading job", err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type updateJobRequest struct {
	Description   *string `json:"description"`
	RatingEnabled *bool   `json:"ratingEnabled"`
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == nil && req.RatingEnabled == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	job, err := s.records.UpdateJobEditorial(r.Context(), id, req.Description, req.RatingEnabled)
	if err != nil {
		s.internalError(w, "updating job", err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListApplicants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	apps, err := s.records.ListApplicationsByJob(r.Context(), id)
	if err != nil {
		s.internalError(w, "listing applicants", err)
		return
	}
	if apps == nil {
		apps = []*store.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleGetApplicant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	app, err := s.records.FindApplication(r.Context(), id)
	if err != nil {
		s.internalError(w, "loading applicant", err)
		return
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "applicant not found")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleGetApplicantStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	status, err := s.status.Get(r.Context(), id)
	if err != nil {
		s.internalError(w, "loading applicant status", err)
		return
	}
	if status == nil {
		writeError(w, http.StatusNotFound, "no pipeline status for applicant")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	task := &queue.Task{Kind: queue.KindSync, Source: "api"}
	if err := s.queue.Enqueue(r.Context(), queue.Sync, task); err != nil {
		s.internalError(w, "enqueueing sync", err)
		return
	}

	s.logger.Info("sync requested via api")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "taskId": task.ID})
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
