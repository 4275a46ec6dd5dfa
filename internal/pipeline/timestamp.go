package pipeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ResolveTimestamp converts a sheet or API value to a UTC time. Strings are
// parsed free-form, numbers are Unix epoch seconds, and time values are
// converted as-is. Values without a zone are taken as UTC. Blank or
// unparseable input yields nil.
func ResolveTimestamp(v any) *time.Time {
	var t time.Time
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		t = val
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		t = *val
	case int64:
		t = time.Unix(val, 0)
	case int:
		t = time.Unix(int64(val), 0)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		sec, frac := math.Modf(val)
		t = time.Unix(int64(sec), int64(frac*1e9))
	case string:
		parsed, ok := parseDateString(val)
		if !ok {
			return nil
		}
		t = parsed
	default:
		parsed, ok := parseDateString(fmt.Sprint(val))
		if !ok {
			return nil
		}
		t = parsed
	}
	t = t.UTC()
	return &t
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
