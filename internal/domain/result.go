package domain

import "time"

// RawRow is one spreadsheet data row keyed by its header text. Values are
// strings, numbers, time.Time, or nil for blank cells.
type RawRow map[string]any

// NormalizedRow is a validated input row ready for metric fetching.
// URL always starts with "http" and Platform is one of SupportedPlatforms.
type NormalizedRow struct {
	Platform   Platform
	URL        string
	Creator    string
	CampaignID string
	Notes      string
	// PostedAt is the raw sheet value; it is parsed only after fetching.
	PostedAt any
	// RowNumber is the 1-based position among the loaded data rows.
	RowNumber int
}

// MetricStats is what a fetcher returns for one post.
type MetricStats struct {
	Views    int64
	Likes    int64
	Comments int64
	Creator  string
	// PostedAt is an ISO-8601 timestamp string, or empty when unknown.
	PostedAt string
}

// EnrichedResult is a normalized row combined with its fetched metrics.
type EnrichedResult struct {
	Platform       Platform   `json:"platform"`
	URL            string     `json:"url"`
	Creator        string     `json:"creator,omitempty"`
	CampaignID     string     `json:"campaign_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	PostedAt       *time.Time `json:"posted_at"`
	Views          int64      `json:"views"`
	Likes          int64      `json:"likes"`
	Comments       int64      `json:"comments"`
	EngagementRate float64    `json:"engagement_rate"`
}

// StoredResult is a persisted result row, unique by URL.
type StoredResult struct {
	ID int64 `json:"id" db:"id"`
	EnrichedResult
	FetchedAt time.Time `json:"fetched_at" db:"fetched_at"`
}
