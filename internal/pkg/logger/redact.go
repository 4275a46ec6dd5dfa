package logger

import (
	"regexp"
	"strings"
)

var sensitiveKeys = []string{"key", "token", "secret", "password", "session", "cookie"}

// Matches credentials embedded in URLs, cookies and headers, e.g.
// "?key=AIza..." or "sessionid=abc;".
var embeddedSecret = regexp.MustCompile(`(?i)\b(key|api_key|token|sessionid)=([^&;\s"]+)`)

// RedactSecret masks a credential for safe logging, keeping at most the
// first two characters: "AIzaSyD..." -> "AI***". Short values are fully masked.
func RedactSecret(s string) string {
	if len(s) > 6 {
		return s[:2] + "***"
	}
	return "***"
}

func redactValue(key, val string) string {
	lk := strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if strings.Contains(lk, k) {
			return RedactSecret(val)
		}
	}
	return embeddedSecret.ReplaceAllStringFunc(val, func(m string) string {
		parts := embeddedSecret.FindStringSubmatch(m)
		return parts[1] + "=" + RedactSecret(parts[2])
	})
}
