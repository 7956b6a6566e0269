package ingestion

import (
	"fmt"
	"strings"
)

// UnresolvedColumnsError is returned when the header row does not contain a
// resolvable Timestamp and/or Glucose column. It carries the full original
// header list so callers can show it to the user or offer manual selection.
type UnresolvedColumnsError struct {
	Missing []Role
	Headers []string
}

func (e *UnresolvedColumnsError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, role := range e.Missing {
		missing[i] = string(role)
	}
	return fmt.Sprintf(
		"unable to resolve required column role(s) %s from headers [%s]",
		strings.Join(missing, ", "), strings.Join(e.Headers, ", "),
	)
}

// EmptySeriesError is returned when every row of an upload fails timestamp or
// glucose coercion. The upload has no usable data and must be rejected.
type EmptySeriesError struct {
	TotalRows int
}

func (e *EmptySeriesError) Error() string {
	return fmt.Sprintf("no valid readings after parsing timestamps and glucose values (%d row(s) dropped)", e.TotalRows)
}
