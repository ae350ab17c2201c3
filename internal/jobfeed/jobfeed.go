// Package jobfeed fetches external job listings from the Adzuna search API.
package jobfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"placement/internal/logger"
	"placement/internal/metrics"
)

const descriptionLimit = 300

// Job is an external listing normalized to the placement shape.
type Job struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

type Config struct {
	AppID      string
	AppKey     string
	Country    string
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
	CacheTTL   time.Duration
}

// Client queries Adzuna. A nil cache disables caching.
type Client struct {
	cfg   Config
	http  *http.Client
	cache *redis.Client
}

func New(cfg Config, cache *redis.Client) *Client {
	if cfg.Country == "" {
		cfg.Country = "in"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.adzuna.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, cache: cache}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.AppID != "" && c.cfg.AppKey != ""
}

// Search never fails: missing credentials or any upstream problem yields an empty slice.
func (c *Client) Search(ctx context.Context, query, location string) []Job {
	if !c.Enabled() {
		metrics.JobFetches.WithLabelValues("disabled").Inc()
		return []Job{}
	}
	key := c.cacheKey(query, location)
	if jobs, ok := c.cached(ctx, key); ok {
		metrics.JobFetches.WithLabelValues("cache_hit").Inc()
		return jobs
	}

	jobs, err := c.fetch(ctx, query, location)
	if err != nil {
		logger.From(ctx).Warn("job feed fetch failed", "query", query, "location", location, "err", err)
		metrics.JobFetches.WithLabelValues("error").Inc()
		return []Job{}
	}
	metrics.JobFetches.WithLabelValues("ok").Inc()
	c.store(ctx, key, jobs)
	return jobs
}

type searchResponse struct {
	Results []struct {
		ID          remoteID `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		RedirectURL string   `json:"redirect_url"`
		Company     *struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location *struct {
			DisplayName string `json:"display_name"`
		} `json:"location"`
	} `json:"results"`
}

// remoteID accepts ids sent either as strings or as numbers.
type remoteID string

func (r *remoteID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = remoteID(s)
		return nil
	}
	if string(b) == "null" {
		*r = ""
		return nil
	}
	*r = remoteID(string(b))
	return nil
}

func (c *Client) fetch(ctx context.Context, query, location string) ([]Job, error) {
	params := url.Values{}
	params.Set("app_id", c.cfg.AppID)
	params.Set("app_key", c.cfg.AppKey)
	params.Set("what", query)
	params.Set("where", location)
	params.Set("results_per_page", strconv.Itoa(c.cfg.MaxResults))
	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/1?%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Country), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adzuna status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode adzuna: %w", err)
	}
	jobs := make([]Job, 0, len(payload.Results))
	for _, r := range payload.Results {
		j := Job{
			ID:          "api-" + string(r.ID),
			Company:     "Unknown",
			Role:        r.Title,
			Description: truncate(r.Description, descriptionLimit),
			Link:        r.RedirectURL,
		}
		if r.Company != nil && r.Company.DisplayName != "" {
			j.Company = r.Company.DisplayName
		}
		if r.Location != nil {
			j.Location = r.Location.DisplayName
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
