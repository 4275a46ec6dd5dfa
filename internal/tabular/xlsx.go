package tabular

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/xuri/excelize/v2"
)

func loadXLSX(r io.Reader) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(grid) == 0 {
		return nil, &domain.EmptyInputError{Reason: emptyFileReason}
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]domain.RawRow, 0, len(grid)-1)
	for r, record := range grid[1:] {
		cells := make([]any, len(record))
		for c, raw := range record {
			// Sheet rows are 1-based and the header occupies row 1.
			cells[c] = cellValue(f, sheet, c+1, r+2, raw)
		}
		rows = append(rows, zipRow(headers, cells))
	}
	return rows, nil
}

// cellValue converts a raw cell into a typed value: nil for blanks, bool,
// time.Time for date-formatted numbers, int64 or float64 for other numbers,
// and string for everything else.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1"
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t.UTC()
		}
		return raw
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if isDateCell(f, sheet, ref) {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return t
			}
		}
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	default:
		return raw
	}
}

func isDateCell(f *excelize.File, sheet, ref string) bool {
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return isBuiltinDateFormat(style.NumFmt)
}

// isBuiltinDateFormat reports whether id is one of the predefined number
// formats that render dates or times (ECMA-376 18.8.30 plus the CJK set).
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode inspects a custom format code for date or time tokens,
// ignoring quoted literals, escaped characters, and bracketed sections.
func isDateFormatCode(code string) bool {
	var (
		b         strings.Builder
		inQuote   bool
		inBracket bool
		escaped   bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ydhs")
}
