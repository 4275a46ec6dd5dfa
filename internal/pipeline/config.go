package pipeline

import (
	"github.com/ignite/kol-metrics/internal/config"
	"github.com/ignite/kol-metrics/internal/youtube"
	"github.com/ignite/kol-metrics/internal/ytdlp"
)

// NewFromConfig builds a Pipeline backed by the YouTube Data API client and
// the yt-dlp extractor.
func NewFromConfig(cfg *config.Config) *Pipeline {
	stats := youtube.NewClient(youtube.Config{
		BaseURL:    cfg.YouTube.BaseURL,
		Timeout:    cfg.YouTube.Timeout(),
		MaxRetries: cfg.YouTube.MaxRetries,
	})
	extractor := ytdlp.New(ytdlp.Config{
		Binary:             cfg.Extractor.Binary,
		SocketTimeout:      cfg.Extractor.SocketTimeout(),
		Retries:            cfg.Extractor.Retries,
		UserAgent:          cfg.Extractor.UserAgent,
		InstagramSessionID: cfg.Extractor.InstagramSessionID,
		Timeout:            cfg.Extractor.Timeout(),
		RequestsPerSecond:  cfg.Extractor.RequestsPerSecond,
	})
	return New(stats, extractor).WithChunkSize(cfg.YouTube.BatchSize)
}
