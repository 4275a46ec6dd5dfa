package pipeline

import "math"

// EngagementRate returns (likes+comments)/views as a percentage rounded to
// two decimals, or 0 when views is not positive.
func EngagementRate(views, likes, comments int64) float64 {
	if views <= 0 {
		return 0
	}
	rate := float64(likes+comments) / float64(views) * 100
	return math.Round(rate*100) / 100
}
