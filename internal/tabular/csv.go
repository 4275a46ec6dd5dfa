package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ignite/kol-metrics/internal/domain"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func loadCSV(r io.Reader) ([]domain.RawRow, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.EmptyInputError{Reason: emptyFileReason}
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []domain.RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = v
		}
		rows = append(rows, zipRow(header, cells))
	}
	return rows, nil
}
