package datanorm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// stringify renders a cell value as text. nil becomes "".
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}

// cleanText trims string values; non-string values are rendered as text
// untouched. Blank or missing values yield "".
func cleanText(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return stringify(v)
}

func isBlank(v any) bool {
	return strings.TrimSpace(stringify(v)) == ""
}
