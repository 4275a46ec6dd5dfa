package youtube

import "regexp"

// videoIDPattern finds the id after the usual URL markers. Ids are eleven
// characters today; longer runs are accepted in case that ever changes.
var videoIDPattern = regexp.MustCompile(`(?:v=|/videos/|embed/|youtu\.be/|/shorts/)([A-Za-z0-9_-]{11,})`)

// ExtractVideoID returns the video id embedded in a YouTube URL. The second
// result is false when no id can be found.
func ExtractVideoID(url string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
