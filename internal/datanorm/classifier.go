package datanorm

import (
	"strings"

	"github.com/ignite/kol-metrics/internal/domain"
)

// hostKeywords maps URL fragments to platforms. Order matters: the first
// matching fragment wins.
var hostKeywords = []struct {
	fragment string
	platform domain.Platform
}{
	{"youtube.com", domain.PlatformYouTube},
	{"youtu.be", domain.PlatformYouTube},
	{"instagram.com", domain.PlatformInstagram},
	{"tiktok.com", domain.PlatformTikTok},
}

// ClassifyURL infers the platform from a post URL by case-insensitive
// substring match. It returns "" when no platform is recognized.
func ClassifyURL(url string) domain.Platform {
	lower := strings.ToLower(url)
	for _, kw := range hostKeywords {
		if strings.Contains(lower, kw.fragment) {
			return kw.platform
		}
	}
	return ""
}
