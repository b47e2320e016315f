// Package recommender wraps the external similarity index. The engine
// treats it as an opaque ranking oracle: profile text in, ranked mission
// ids out, with an exclusion filter so already-assigned missions are never
// offered again.
package recommender

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNoMatchFound = errors.New("no matching missions found")

type Config struct {
	BaseURL string        `json:"baseUrl"`
	Timeout time.Duration `json:"timeout"`
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		http:    &http.Client{},
	}
}

type searchRequest struct {
	Text       string   `json:"text"`
	Limit      int      `json:"limit"`
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
}

type searchHit struct {
	MissionID uuid.UUID `json:"mission_id"`
	Score     float64   `json:"score"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

// Recommend returns up to count mission ids ranked most-to-least relevant
// to contextText. Excluded ids never appear in the result; a zero-hit
// answer from the index surfaces as ErrNoMatchFound rather than an empty
// success.
func (c *Client) Recommend(ctx context.Context, contextText string, count int, excluded []uuid.UUID) ([]uuid.UUID, error) {
	if count <= 0 {
		return nil, errors.New("count must be positive")
	}

	excludeIDs := make([]string, len(excluded))
	for i, id := range excluded {
		excludeIDs[i] = id.String()
	}

	body, err := json.Marshal(searchRequest{
		Text:       contextText,
		Limit:      count,
		ExcludeIDs: excludeIDs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode search request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build search request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "similarity index request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("similarity index returned %d: %s",
			resp.StatusCode, string(payload))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errors.Wrap(err, "failed to decode search response")
	}

	if len(sr.Results) == 0 {
		return nil, ErrNoMatchFound
	}

	excludedSet := make(map[uuid.UUID]struct{}, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = struct{}{}
	}

	// The index already filters, but a misbehaving deployment must not be
	// able to hand back duplicates or excluded missions.
	seen := make(map[uuid.UUID]struct{}, len(sr.Results))
	ids := make([]uuid.UUID, 0, len(sr.Results))
	for _, hit := range sr.Results {
		if _, ok := excludedSet[hit.MissionID]; ok {
			continue
		}
		if _, ok := seen[hit.MissionID]; ok {
			continue
		}
		seen[hit.MissionID] = struct{}{}
		ids = append(ids, hit.MissionID)
	}

	if len(ids) == 0 {
		return nil, ErrNoMatchFound
	}
	if len(ids) > count {
		ids = ids[:count]
	}

	return ids, nil
}
