package api

import (
	"math"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
)

// resultItem is the JSON shape of a stored result. Optional text fields are
// null when empty and engagement_rate is rounded to two decimals.
type resultItem struct {
	ID             int64   `json:"id"`
	Platform       string  `json:"platform"`
	URL            string  `json:"url"`
	Creator        *string `json:"creator"`
	CampaignID     *string `json:"campaign_id"`
	PostedAt       *string `json:"posted_at"`
	Views          int64   `json:"views"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	EngagementRate float64 `json:"engagement_rate"`
	Notes          *string `json:"notes"`
	FetchedAt      *string `json:"fetched_at"`
}

func toItem(r domain.StoredResult) resultItem {
	return resultItem{
		ID:             r.ID,
		Platform:       string(r.Platform),
		URL:            r.URL,
		Creator:        optional(r.Creator),
		CampaignID:     optional(r.CampaignID),
		PostedAt:       isoTime(r.PostedAt),
		Views:          r.Views,
		Likes:          r.Likes,
		Comments:       r.Comments,
		EngagementRate: math.Round(r.EngagementRate*100) / 100,
		Notes:          optional(r.Notes),
		FetchedAt:      isoTime(&r.FetchedAt),
	}
}

func toItems(rows []domain.StoredResult) []resultItem {
	items := make([]resultItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, toItem(r))
	}
	return items
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isoTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
