package bamboo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	c := New(zap.NewNop(), "acme", "key")
	c.APIURL = baseURL
	c.FilesURL = baseURL + "/files"
	return c
}

func TestGetJobsNormalizesLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("expected basic auth header")
		}
		fmt.Fprint(w, `[
			{"id": 7, "jobOpeningName": "Backend Engineer", "status": {"id": 1, "label": "Open"}, "department": "Engineering", "dateOpened": "2025-01-10"},
			{"id": 8, "title": {"label": "Designer"}, "status": "Draft"}
		]`)
	}))
	defer srv.Close()

	jobs, err := newTestClient(srv.URL).GetJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	if jobs[0].ID != 7 || jobs[0].Title != "Backend Engineer" {
		t.Fatalf("unexpected first job: %+v", jobs[0])
	}
	if jobs[0].Status != "Open" {
		t.Fatalf("expected status label to be flattened, got %q", jobs[0].Status)
	}
	if jobs[1].Title != "Designer" {
		t.Fatalf("expected title label fallback, got %q", jobs[1].Title)
	}
	if jobs[1].Status != "Draft" {
		t.Fatalf("expected plain string status, got %q", jobs[1].Status)
	}
}

func TestGetApplicationsFollowsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"page": 1, "totalPages": 2, "applications": [
				{"id": 42, "appliedDate": "2025-02-01", "status": {"label": "New"},
				 "applicant": {"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"},
				 "job": {"id": 7}}
			]}`)
		case "2":
			fmt.Fprint(w, `{"page": 2, "totalPages": 2, "applications": [
				{"id": 43, "status": "Reviewed", "applicant": {"firstName": "Alan"}, "job": {"id": 8}}
			]}`)
		default:
			t.Errorf("unexpected page: %s", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	apps, err := newTestClient(srv.URL).GetApplications(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(apps) != 2 {
		t.Fatalf("expected 2 applications across pages, got %d", len(apps))
	}

	first := apps[0]
	if first.ID != 42 || first.JobID != 7 {
		t.Fatalf("unexpected ids: %+v", first)
	}
	if first.Applicant.FirstName != "Ada" || first.Applicant.Email != "ada@example.com" {
		t.Fatalf("unexpected applicant: %+v", first.Applicant)
	}
	if first.Status != "New" {
		t.Fatalf("expected status label, got %q", first.Status)
	}

	if apps[1].Status != "Reviewed" {
		t.Fatalf("expected plain status, got %q", apps[1].Status)
	}
}

func TestGetApplicationDetailsFindsResumeFileID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		expect int
	}{
		{
			name:   "top level id",
			body:   `{"id": 42, "resumeFileId": 900}`,
			expect: 900,
		},
		{
			name:   "nested original resume",
			body:   `{"id": 42, "originalResume": {"id": 901}}`,
			expect: 901,
		},
		{
			name:   "no resume known",
			body:   `{"id": 42}`,
			expect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			details, err := newTestClient(srv.URL).GetApplicationDetails(context.Background(), 42)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if details.ResumeFileID != tt.expect {
				t.Fatalf("expected file id %d, got %d", tt.expect, details.ResumeFileID)
			}
		})
	}
}

func TestDownloadFileReturnsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/900" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	file, err := newTestClient(srv.URL).DownloadFile(context.Background(), 900)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if file.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type: %q", file.ContentType)
	}
	if string(file.Data) != "%PDF-1.4" {
		t.Fatalf("unexpected data: %q", file.Data)
	}
}

func TestGetJobsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GetJobs(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
