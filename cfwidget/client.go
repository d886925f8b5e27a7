package cfwidget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"curseforge-badges/config"
)

const (
	defaultBaseURL = "https://api.cfwidget.com"
	defaultTimeout = 10 * time.Second

	// cfwidget occasionally returns multi-megabyte descriptions; cap what we
	// keep so a payload growth upstream cannot balloon our cache.
	maxDescriptionLen = 5000
)

// ErrProjectNotFound means the upstream API has no project with the given ID.
var ErrProjectNotFound = errors.New("project not found")

// UpstreamError wraps any non-404 failure talking to the cfwidget API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Body)
	}
	return fmt.Sprintf("upstream request failed: status %d, body: %s", e.StatusCode, e.Body)
}

// Client handles communication with the cfwidget.com API.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a new cfwidget API client using the provided configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.UserAgent == "" {
		// Should be handled by LoadConfig default, but double-check
		return nil, fmt.Errorf("USERAGENT is not configured")
	}

	baseURL := cfg.UpstreamURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		BaseURL:   baseURL,
		UserAgent: cfg.UserAgent,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// GetProject retrieves a project by its CurseForge project ID. Only the
// fields declared on Project survive decoding; everything else the upstream
// sends is dropped.
func (c *Client) GetProject(ctx context.Context, projectID int) (*Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%d", c.BaseURL, projectID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProjectNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var project Project
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("failed to decode json response: %v", err)}
	}

	if runes := []rune(project.Description); len(runes) > maxDescriptionLen {
		project.Description = string(runes[:maxDescriptionLen])
	}

	return &project, nil
}
