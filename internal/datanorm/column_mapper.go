package datanorm

import (
	"sort"
	"strings"

	"github.com/ignite/kol-metrics/internal/domain"
)

// CanonicalField is a normalized column name recognized in uploads.
type CanonicalField string

const (
	FieldURL        CanonicalField = "url"
	FieldPlatform   CanonicalField = "platform"
	FieldCreator    CanonicalField = "creator"
	FieldCampaignID CanonicalField = "campaign_id"
	FieldPostedAt   CanonicalField = "posted_at"
	FieldNotes      CanonicalField = "notes"
)

// normalizeHeader lowercases and trims a raw header name.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// MapColumns re-keys a raw row by normalized header name. When two headers
// normalize to the same name a non-blank value is kept over a blank one;
// between two non-blank values the header sorting last wins. Rows from
// tabular.Load never collide because the loader keeps only the rightmost
// of such headers.
func MapColumns(raw domain.RawRow) map[CanonicalField]any {
	headers := make([]string, 0, len(raw))
	for k := range raw {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	mapped := make(map[CanonicalField]any, len(raw))
	for _, k := range headers {
		v := raw[k]
		key := CanonicalField(normalizeHeader(k))
		if prev, ok := mapped[key]; ok && isBlank(v) && !isBlank(prev) {
			continue
		}
		mapped[key] = v
	}
	return mapped
}
