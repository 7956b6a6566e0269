// Package ingestion turns arbitrary glucose log CSV exports into typed,
// time-ordered reading series. Column names are matched to semantic roles
// by exact alias lookup with substring fallbacks, then every row is coerced
// into a Reading or dropped. Nothing here holds state between uploads.
package ingestion

import "io"

// Result is the complete outcome of ingesting one uploaded file.
type Result struct {
	Headers     []string
	Roles       ColumnRoles
	Series      ReadingSeries
	DroppedRows int
}

// Ingest runs the full pipeline for one CSV stream: parse, resolve column
// roles, build the series. The error is either a read failure, an
// UnresolvedColumnsError or an EmptySeriesError; no partial result is ever
// returned alongside an error.
func Ingest(r io.Reader) (*Result, error) {
	headers, rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	roles, err := ResolveColumns(headers)
	if err != nil {
		return nil, err
	}

	built, err := BuildSeries(rows, roles)
	if err != nil {
		return nil, err
	}

	return &Result{
		Headers:     headers,
		Roles:       roles,
		Series:      built.Series,
		DroppedRows: built.DroppedRows,
	}, nil
}
