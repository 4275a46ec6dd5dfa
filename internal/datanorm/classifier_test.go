package datanorm

import (
	"testing"

	"github.com/ignite/kol-metrics/internal/domain"
)

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want domain.Platform
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", domain.PlatformYouTube},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", domain.PlatformYouTube},
		{"upper case host", "HTTPS://WWW.YOUTUBE.COM/shorts/abc", domain.PlatformYouTube},
		{"instagram reel", "https://www.instagram.com/reel/Cxyz/", domain.PlatformInstagram},
		{"tiktok video", "https://www.tiktok.com/@user/video/123", domain.PlatformTikTok},
		{"unknown host", "https://twitter.com/x/status/1", ""},
		{"first match wins", "https://youtube.com/redirect?q=instagram.com", domain.PlatformYouTube},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyURL(tt.url); got != tt.want {
				t.Errorf("ClassifyURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
