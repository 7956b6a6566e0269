package ingestion

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RawRow is one unparsed CSV line keyed by column name. Rows only exist
// during ingestion and are never mutated.
type RawRow map[string]string

// Reading is a single coerced data point of an upload.
type Reading struct {
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
	Glucose      float64   `bson:"glucose" json:"glucose"`
	InsulinTotal float64   `bson:"insulinTotal" json:"insulinTotal"`
}

// ReadingSeries is an ordered series of readings, non-decreasing by timestamp.
type ReadingSeries []Reading

// BuildResult is the outcome of turning raw rows into a series. DroppedRows
// counts rows discarded because the timestamp or glucose cell did not parse.
type BuildResult struct {
	Series      ReadingSeries
	DroppedRows int
}

// Timestamp layouts tried in order. A date concatenated with a time cell
// ends up in one of these shapes as well.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006/01/02 15:04",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006 3:04 PM",
	"2006-01-02 3:04 PM",
	"2006-01-02",
}

// BuildSeries converts raw rows into a time-ordered ReadingSeries using the
// resolved roles. Rows whose timestamp or glucose cell fails coercion are
// dropped individually; ties in the final stable sort keep their original
// relative order. Returns EmptySeriesError when no row survives.
func BuildSeries(rows []RawRow, roles ColumnRoles) (BuildResult, error) {
	result := BuildResult{
		Series: make(ReadingSeries, 0, len(rows)),
	}

	for _, row := range rows {
		reading, ok := buildReading(row, roles)
		if !ok {
			result.DroppedRows++
			continue
		}
		result.Series = append(result.Series, reading)
	}

	if len(result.Series) == 0 {
		return BuildResult{}, &EmptySeriesError{TotalRows: len(rows)}
	}

	sort.SliceStable(result.Series, func(i, j int) bool {
		return result.Series[i].Timestamp.Before(result.Series[j].Timestamp)
	})

	return result, nil
}

func buildReading(row RawRow, roles ColumnRoles) (Reading, bool) {
	var rawTimestamp string
	if roles.TimestampIsSplit() {
		rawTimestamp = row[roles.DateColumn] + " " + row[roles.TimeColumn]
	} else {
		rawTimestamp = row[roles.Timestamp]
	}

	timestamp, ok := parseTimestamp(rawTimestamp)
	if !ok {
		return Reading{}, false
	}

	glucose, ok := parseGlucose(row[roles.Glucose])
	if !ok {
		return Reading{}, false
	}

	return Reading{
		Timestamp:    timestamp,
		Glucose:      glucose,
		InsulinTotal: sumInsulin(row, roles.Insulin),
	}, true
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseGlucose accepts finite, non-negative numbers only.
func parseGlucose(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, false
	}
	return value, true
}

// sumInsulin totals all matched insulin columns. Blank, unparseable and
// negative cells count as 0, so the total is always >= 0.
func sumInsulin(row RawRow, columns []string) float64 {
	var total float64
	for _, column := range columns {
		value, err := strconv.ParseFloat(strings.TrimSpace(row[column]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			continue
		}
		total += value
	}
	return total
}
