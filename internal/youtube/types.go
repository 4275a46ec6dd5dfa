package youtube

import "time"

// DefaultBaseURL is the YouTube Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// MaxBatchSize is the largest number of ids the videos endpoint accepts per call.
const MaxBatchSize = 50

// Config configures the statistics client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID         string          `json:"id"`
	Statistics videoStatistics `json:"statistics"`
	Snippet    videoSnippet    `json:"snippet"`
}

// Counts are decimal strings; hidden counters are omitted entirely.
type videoStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

type videoSnippet struct {
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
