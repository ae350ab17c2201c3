package jobfeed

import (
	"context"
	"encoding/json"
	"strings"
)

func (c *Client) cacheKey(query, location string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return "jobfeed:" + c.cfg.Country + ":" + norm(query) + ":" + norm(location)
}

// cached and store ignore redis failures; the feed works without a cache.
func (c *Client) cached(ctx context.Context, key string) ([]Job, bool) {
	if c.cache == nil || c.cfg.CacheTTL <= 0 {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var jobs []Job
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, false
	}
	return jobs, true
}

func (c *Client) store(ctx context.Context, key string, jobs []Job) {
	if c.cache == nil || c.cfg.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(jobs)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key, raw, c.cfg.CacheTTL).Err()
}
