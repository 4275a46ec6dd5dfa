// Package youtube fetches video statistics from the YouTube Data API in
// batches of up to MaxBatchSize ids per request.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/pkg/httpretry"
)

// ErrMissingAPIKey is returned when FetchStats is called without a key.
var ErrMissingAPIKey = errors.New("youtube: missing API key")

// Client calls the videos endpoint of the YouTube Data API.
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a client. Zero values select the public API root, a 15s
// timeout, and no retries.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout,
		}, cfg.MaxRetries),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// FetchStats returns statistics for up to MaxBatchSize video ids in one call.
// Ids the API does not return are absent from the map.
func (c *Client) FetchStats(ctx context.Context, ids []string, apiKey string) (map[string]domain.MetricStats, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(ids) == 0 {
		return map[string]domain.MetricStats{}, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("youtube: %d ids exceeds batch limit of %d", len(ids), MaxBatchSize)
	}

	q := url.Values{}
	q.Set("part", "statistics,snippet")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiErrorMessage(body))
	}

	var list videoListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make(map[string]domain.MetricStats, len(list.Items))
	for _, item := range list.Items {
		out[item.ID] = domain.MetricStats{
			Views:    parseCount(item.Statistics.ViewCount),
			Likes:    parseCount(item.Statistics.LikeCount),
			Comments: parseCount(item.Statistics.CommentCount),
			Creator:  item.Snippet.ChannelTitle,
			PostedAt: item.Snippet.PublishedAt,
		}
	}
	return out, nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// stripURL drops the request URL from transport errors so the API key in
// the query string never reaches callers.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func apiErrorMessage(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
