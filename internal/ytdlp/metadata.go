package ytdlp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
)

// ParseMetadata reads the first JSON object yt-dlp printed and maps it to
// MetricStats. Counts fall back through alternative field names and default
// to zero. The post time comes from the epoch "timestamp" field, else from
// an eight-digit "upload_date", else stays empty.
func ParseMetadata(data []byte) (domain.MetricStats, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var info map[string]any
	if err := dec.Decode(&info); err != nil {
		return domain.MetricStats{}, fmt.Errorf("decode extractor output: %w", err)
	}

	return domain.MetricStats{
		Views:    firstCount(info, "view_count", "views"),
		Likes:    firstCount(info, "like_count", "likes"),
		Comments: firstCount(info, "comment_count", "comments"),
		Creator:  firstString(info, "uploader", "channel"),
		PostedAt: postedAt(info),
	}, nil
}

// firstCount returns the first non-zero numeric value among keys.
func firstCount(info map[string]any, keys ...string) int64 {
	for _, k := range keys {
		if n, ok := toInt(info[k]); ok && n != 0 {
			if n < 0 {
				return 0
			}
			return n
		}
	}
	return 0
}

func firstString(info map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := info[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func postedAt(info map[string]any) string {
	if ts, ok := toInt(info["timestamp"]); ok && ts != 0 {
		return time.Unix(ts, 0).UTC().Format(time.RFC3339)
	}

	var date string
	switch v := info["upload_date"].(type) {
	case string:
		date = v
	case json.Number:
		date = v.String()
	}
	if len(date) != 8 {
		return ""
	}
	t, err := time.Parse("20060102", date)
	if err != nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
