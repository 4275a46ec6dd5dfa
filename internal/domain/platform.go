package domain

// Platform identifies the social network a post URL belongs to.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// FetchStrategy is the way metrics are retrieved for a platform.
type FetchStrategy int

const (
	// StrategyBatch groups many posts into one request to an official API.
	StrategyBatch FetchStrategy = iota
	// StrategySingle retrieves one post at a time through the generic extractor.
	StrategySingle
)

// SupportedPlatforms lists platforms in the order the pipeline processes them.
var SupportedPlatforms = []Platform{PlatformYouTube, PlatformInstagram, PlatformTikTok}

// ParsePlatform returns the platform named by s, which must already be
// lowercase and trimmed. The second result is false for unknown names.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(s) {
	case PlatformYouTube, PlatformInstagram, PlatformTikTok:
		return Platform(s), true
	}
	return "", false
}

// Strategy reports how metrics are fetched for p.
func (p Platform) Strategy() FetchStrategy {
	if p == PlatformYouTube {
		return StrategyBatch
	}
	return StrategySingle
}

func (p Platform) String() string { return string(p) }
