package bamboo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// JobSummary is one upstream job opening as it appears in the catalog
// listing. Label fields are already normalized to plain strings.
type JobSummary struct {
	ID         int
	Title      string
	Department string
	Location   string
	Division   string
	Status     string
	DateOpened string
}

// Applicant holds the identity fields nested under an application summary.
type Applicant struct {
	FirstName string `mapstructure:"firstName"`
	LastName  string `mapstructure:"lastName"`
	Email     string `mapstructure:"email"`
	Phone     string `mapstructure:"phone"`
}

// ApplicationSummary is one upstream application from the catalog listing.
// The short listing usually omits the resume file id; it is discovered via
// GetApplicationDetails.
type ApplicationSummary struct {
	ID           int
	JobID        int
	AppliedDate  string
	Status       string
	Applicant    Applicant
	ResumeFileID int
}

// ApplicationDetails is the extended record for a single application.
type ApplicationDetails struct {
	ResumeFileID int
	Raw          map[string]any
}

type applicationRaw struct {
	ID           int       `mapstructure:"id"`
	AppliedDate  string    `mapstructure:"appliedDate"`
	Status       any       `mapstructure:"status"`
	ResumeFileID int       `mapstructure:"resumeFileId"`
	Applicant    Applicant `mapstructure:"applicant"`
	Job          struct {
		ID int `mapstructure:"id"`
	} `mapstructure:"job"`
}

type applicationsResponse struct {
	Applications []map[string]any `json:"applications"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"totalPages"`
}

// GetJobs fetches the full job catalog.
func (c *Client) GetJobs(ctx context.Context) ([]*JobSummary, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, c.APIURL+"/jobs", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}

	jobs := make([]*JobSummary, 0, len(raw))
	for _, item := range raw {
		title := stringValue(item["jobOpeningName"])
		if title == "" {
			title = labelString(item["title"])
		}

		jobs = append(jobs, &JobSummary{
			ID:         intValue(item["id"]),
			Title:      title,
			Department: labelString(item["department"]),
			Location:   labelString(item["location"]),
			Division:   labelString(item["division"]),
			Status:     labelString(item["status"]),
			DateOpened: stringValue(item["dateOpened"]),
		})
	}

	return jobs, nil
}

// GetApplications fetches application summaries, following pagination to
// exhaustion.
func (c *Client) GetApplications(ctx context.Context) ([]*ApplicationSummary, error) {
	var all []*ApplicationSummary

	page := 1
	for {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("perPage", perPage)

		var resp applicationsResponse
		if err := c.getJSON(ctx, c.APIURL+"/applications", q, &resp); err != nil {
			return nil, fmt.Errorf("fetch applications page %d: %w", page, err)
		}

		for _, item := range resp.Applications {
			app, err := decodeApplicationSummary(item)
			if err != nil {
				return nil, fmt.Errorf("decode application: %w", err)
			}
			all = append(all, app)
		}

		if resp.TotalPages == 0 || page >= resp.TotalPages {
			break
		}

		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", page, resp.TotalPages),
		))
		page++
	}

	return all, nil
}

// GetApplicationDetails fetches the extended record for one application,
// which may carry the resume file id the short listing omits.
func (c *Client) GetApplicationDetails(ctx context.Context, id int) (*ApplicationDetails, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("%s/applications/%d", c.APIURL, id), nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch application %d details: %w", id, err)
	}

	fileID := intValue(raw["resumeFileId"])
	if fileID == 0 {
		if original, ok := raw["originalResume"].(map[string]any); ok {
			fileID = intValue(original["id"])
		}
	}

	return &ApplicationDetails{ResumeFileID: fileID, Raw: raw}, nil
}

func decodeApplicationSummary(item map[string]any) (*ApplicationSummary, error) {
	var raw applicationRaw
	if err := mapstructure.Decode(item, &raw); err != nil {
		return nil, err
	}

	return &ApplicationSummary{
		ID:           raw.ID,
		JobID:        raw.Job.ID,
		AppliedDate:  raw.AppliedDate,
		Status:       labelString(raw.Status),
		Applicant:    raw.Applicant,
		ResumeFileID: raw.ResumeFileID,
	}, nil
}

// labelString normalizes upstream label fields, which arrive either as a
// plain string or as an object with a "label" key.
func labelString(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case map[string]any:
		return stringValue(typed["label"])
	default:
		return ""
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func intValue(v any) int {
	switch typed := v.(type) {
	case int:
		return typed
	case float64:
		return int(typed)
	case string:
		n, _ := strconv.Atoi(typed)
		return n
	default:
		return 0
	}
}
