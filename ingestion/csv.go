package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrEmptyFile is returned for files without even a header row.
var ErrEmptyFile = errors.New("csv file is empty")

// ReadCSV parses comma-separated text where the first record is the header
// row. Rows shorter than the header are padded with blanks, longer rows keep
// only the named columns. When the same header name appears twice the first
// occurrence wins.
func ReadCSV(r io.Reader) (headers []string, rows []RawRow, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err = reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read csv header row: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read csv row %d: %w", len(rows)+2, err)
		}

		row := make(RawRow, len(headers))
		for i, header := range headers {
			if _, ok := row[header]; ok {
				continue
			}
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}
