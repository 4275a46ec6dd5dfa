package datanorm

import (
	"strings"

	"github.com/ignite/kol-metrics/internal/domain"
)

const noRowsReason = "no recognizable platform or link found"

// Normalize validates raw rows and keeps those with an http(s) URL on a
// supported platform. RowNumber records each row's 1-based position in the
// input, counting dropped rows too. posted_at is passed through unparsed.
func Normalize(rows []domain.RawRow) ([]domain.NormalizedRow, error) {
	var out []domain.NormalizedRow

	for i, raw := range rows {
		row := MapColumns(raw)

		url := strings.TrimSpace(stringify(row[FieldURL]))
		if url == "" || !strings.HasPrefix(strings.ToLower(url), "http") {
			continue
		}

		platform := ClassifyURL(url)
		if name := strings.ToLower(strings.TrimSpace(stringify(row[FieldPlatform]))); name != "" {
			platform = domain.Platform(name)
		}
		if _, ok := domain.ParsePlatform(string(platform)); !ok {
			continue
		}

		out = append(out, domain.NormalizedRow{
			Platform:   platform,
			URL:        url,
			Creator:    cleanText(row[FieldCreator]),
			CampaignID: cleanText(row[FieldCampaignID]),
			Notes:      cleanText(row[FieldNotes]),
			PostedAt:   row[FieldPostedAt],
			RowNumber:  i + 1,
		})
	}

	if len(out) == 0 {
		return nil, &domain.EmptyInputError{Reason: noRowsReason}
	}
	return out, nil
}
