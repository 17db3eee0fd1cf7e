// Package bamboo is a thin client for the BambooHR applicant tracking API:
// catalog listings, per-application detail, and resume file download. Only
// the fields the pipeline consumes are decoded; everything else stays in
// opaque maps.
package bamboo

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	gatewayURLFormat = "https://api.bamboohr.com/api/gateway.php/%s/v1/applicant_tracking"
	filesURLFormat   = "https://%s.bamboohr.com/api/v1/files"
	userAgent        = "resumerater (pipeline controller)"
	// Max value for listing page size.
	perPage = "100"
)

type Client struct {
	apiKey string
	logger *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	// APIURL and FilesURL are overridable for tests.
	APIURL   string
	FilesURL string
}

func New(logger *zap.Logger, companyDomain, apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent: userAgent,
		APIURL:    fmt.Sprintf(gatewayURLFormat, companyDomain),
		FilesURL:  fmt.Sprintf(filesURLFormat, companyDomain),
	}
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	// BambooHR uses the API key as a basic-auth user with any password.
	token := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":x"))
	req.Header.Set("Authorization", "Basic "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}
