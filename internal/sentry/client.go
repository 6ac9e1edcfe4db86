// Package sentry is a best-effort client for the Sentry Replays API. It
// issues single requests with no retry policy; callers decide how to
// surface failures.
package sentry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultBaseURL is the public Sentry API root.
const DefaultBaseURL = "https://sentry.io/api/0"

// Config holds client settings, loadable from the environment.
type Config struct {
	AuthToken string `env:"SENTRY_AUTH_TOKEN"`
	OrgSlug   string `env:"SENTRY_ORG_SLUG"`
	BaseURL   string `env:"SENTRY_BASE_URL" envDefault:"https://sentry.io/api/0"`
}

// LoadConfig reads client configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

type Client struct {
	authToken string
	orgSlug   string
	baseURL   string
	httpc     *http.Client
}

// NewClient validates the config and builds a client. Token and org slug
// are required; base URL defaults to the public Sentry API.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AuthToken == "" {
		return nil, errors.New("auth token required (set SENTRY_AUTH_TOKEN)")
	}
	if cfg.OrgSlug == "" {
		return nil, errors.New("organization slug required (set SENTRY_ORG_SLUG)")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		authToken: cfg.AuthToken,
		orgSlug:   cfg.OrgSlug,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// OrgSlug returns the organization the client is bound to.
func (c *Client) OrgSlug() string {
	return c.orgSlug
}

// ListOptions filters and pages a replay listing. Zero values fall back to
// the API defaults (statsPeriod 7d, 50 per page).
type ListOptions struct {
	Projects    []int
	Environment string
	StatsPeriod string // e.g. "1d", "7d", "30d"; used when Start/End unset
	Start       string // ISO8601 or epoch seconds
	End         string
	Query       string // e.g. "error_count:>0"
	Sort        string
	PerPage     int
	Cursor      string
	Fields      []string
}

// ListResult is one page of raw replay records plus pagination cursors.
type ListResult struct {
	Data     []map[string]any
	Next     string
	Previous string
}

// ListReplays fetches one page of replays for the organization.
func (c *Client) ListReplays(ctx context.Context, opts ListOptions) (*ListResult, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/replays/", c.baseURL, c.orgSlug)

	params := url.Values{}
	if opts.Start != "" && opts.End != "" {
		params.Set("start", opts.Start)
		params.Set("end", opts.End)
	} else {
		statsPeriod := opts.StatsPeriod
		if statsPeriod == "" {
			statsPeriod = "7d"
		}
		params.Set("statsPeriod", statsPeriod)
	}
	for _, project := range opts.Projects {
		params.Add("project", strconv.Itoa(project))
	}
	if opts.Environment != "" {
		params.Set("environment", opts.Environment)
	}
	if opts.Query != "" {
		params.Set("query", opts.Query)
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	perPage := opts.PerPage
	if perPage == 0 {
		perPage = 50
	}
	params.Set("per_page", strconv.Itoa(perPage))
	if opts.Cursor != "" {
		params.Set("cursor", opts.Cursor)
	}
	for _, field := range opts.Fields {
		params.Add("field", field)
	}

	var payload struct {
		Data []map[string]any `json:"data"`
	}
	header, err := c.get(ctx, endpoint+"?"+params.Encode(), &payload)
	if err != nil {
		return nil, err
	}

	next, previous := parseLinkHeader(header.Get("Link"))
	return &ListResult{Data: payload.Data, Next: next, Previous: previous}, nil
}

// GetReplayDetails fetches the full record for one replay.
func (c *Client) GetReplayDetails(ctx context.Context, replayID string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/replays/%s/", c.baseURL, c.orgSlug, url.PathEscape(replayID))
	var payload map[string]any
	if _, err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetReplayEvents fetches the event stream for a replay. The endpoint is
// not available on every Sentry deployment; a 404 yields an empty list,
// not an error.
func (c *Client) GetReplayEvents(ctx context.Context, replayID string) ([]map[string]any, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/replays/%s/events/", c.baseURL, c.orgSlug, url.PathEscape(replayID))

	var payload []map[string]any
	_, err := c.get(ctx, endpoint, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			log.Printf("Events endpoint not available for replay %s", replayID)
			return []map[string]any{}, nil
		}
		return nil, err
	}
	return payload, nil
}

// FetchAll follows next cursors across up to maxPages pages and returns the
// concatenated raw records.
func (c *Client) FetchAll(ctx context.Context, maxPages int, opts ListOptions) ([]map[string]any, error) {
	var all []map[string]any

	for page := 0; page < maxPages; page++ {
		result, err := c.ListReplays(ctx, opts)
		if err != nil {
			return nil, err
		}
		if len(result.Data) == 0 {
			break
		}
		all = append(all, result.Data...)
		log.Printf("Fetched page %d, total replays: %d", page+1, len(all))

		if result.Next == "" {
			break
		}
		opts.Cursor = result.Next
	}
	return all, nil
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sentry API request failed: status %d (%s)", e.StatusCode, e.URL)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: endpoint}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.Header, nil
}

// parseLinkHeader extracts next/previous pagination cursors from a Link
// header of the form `<url>; rel="next", <url>; rel="previous"`.
func parseLinkHeader(header string) (next, previous string) {
	if header == "" {
		return "", ""
	}
	for _, link := range strings.Split(header, ",") {
		parts := strings.SplitN(link, ";", 2)
		if len(parts) != 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(parts[0]), "<>")
		rel := parts[1]

		cursor := cursorParam(target)
		if cursor == "" {
			continue
		}
		switch {
		case strings.Contains(rel, `rel="next"`):
			next = cursor
		case strings.Contains(rel, `rel="previous"`):
			previous = cursor
		}
	}
	return next, previous
}

func cursorParam(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Query().Get("cursor")
}
