// Package tabular turns uploaded spreadsheet bytes into header-keyed rows.
//
// Two formats are recognized by file extension: UTF-8 CSV (an optional byte
// order mark is ignored) and Office Open XML workbooks (.xlsx), of which only
// the active sheet is read. Anything else is rejected with
// *domain.UnsupportedFormatError.
package tabular

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/ignite/kol-metrics/internal/domain"
)

const emptyFileReason = "uploaded file is empty"

// Load parses data according to the extension of filename and returns one
// RawRow per data row, in sheet order. The first record is the header.
func Load(data []byte, filename string) ([]domain.RawRow, error) {
	var (
		rows []domain.RawRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = loadCSV(bytes.NewReader(data))
	case ".xlsx":
		rows, err = loadXLSX(bytes.NewReader(data))
	default:
		return nil, &domain.UnsupportedFormatError{Filename: filename}
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.EmptyInputError{Reason: emptyFileReason}
	}
	return rows, nil
}

// zipRow pairs header names with cell values. Missing trailing cells become
// nil and cells beyond the header are ignored. Headers equal after trimming
// and lowercasing ("URL", "url ") count as repeats; only the rightmost is
// kept, under its own spelling.
func zipRow(headers []string, cells []any) domain.RawRow {
	row := make(domain.RawRow, len(headers))
	seen := make(map[string]string, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if prev, ok := seen[key]; ok {
			delete(row, prev)
		}
		seen[key] = h

		var v any
		if i < len(cells) {
			v = cells[i]
		}
		row[h] = v
	}
	return row
}
