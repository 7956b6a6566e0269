package ingestion

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"
)

// Role is a semantic meaning assigned to one or more CSV columns.
type Role string

const (
	RoleTimestamp Role = "Timestamp"
	RoleGlucose   Role = "Glucose"
	RoleInsulin   Role = "InsulinDose"
)

// Exact alias lists are tried in order before any substring fallback kicks in.
// These are the header spellings observed in real exports (mySugr, Glooko,
// hand-edited spreadsheets).
var (
	timestampAliases = []string{
		"datetime",
		"timestamp",
		"date time",
		"time stamp",
	}

	glucoseAliases = []string{
		"blood sugar measurement (mg/dl)",
		"blood glucose (mg/dl)",
		"blood glucose",
		"glucose (mg/dl)",
		"glucose value",
		"glucose",
		"bg",
		"measurement",
	}
)

// ColumnRoles maps semantic roles to the source column names of one upload.
// Column names are kept exactly as they appear in the file. The zero value
// means nothing resolved. Immutable once returned by ResolveColumns.
type ColumnRoles struct {
	// Timestamp is the single combined date-time column, or empty when the
	// timestamp is derived from a separate Date and Time column pair.
	Timestamp  string   `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
	DateColumn string   `bson:"dateColumn,omitempty" json:"dateColumn,omitempty"`
	TimeColumn string   `bson:"timeColumn,omitempty" json:"timeColumn,omitempty"`
	Glucose    string   `bson:"glucose,omitempty" json:"glucose,omitempty"`
	Insulin    []string `bson:"insulin,omitempty" json:"insulin,omitempty"`
}

// TimestampIsSplit reports whether the timestamp is derived from a
// (date column, time column) pair instead of a single column.
func (r ColumnRoles) TimestampIsSplit() bool {
	return r.Timestamp == "" && r.DateColumn != "" && r.TimeColumn != ""
}

func (r ColumnRoles) timestampResolved() bool {
	return r.Timestamp != "" || r.TimestampIsSplit()
}

var folder = cases.Fold()

// normalizeHeader produces the form used for matching. Display code keeps
// the original spelling.
func normalizeHeader(h string) string {
	return strings.TrimSpace(folder.String(h))
}

// ResolveColumns maps the raw header row of an upload to semantic roles.
// Pure function of the header list; resolving the same headers twice yields
// identical roles. Returns UnresolvedColumnsError when the Timestamp or
// Glucose role cannot be satisfied.
func ResolveColumns(headers []string) (ColumnRoles, error) {
	normalized := make([]string, len(headers))
	byNormalized := make(map[string]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
		if _, ok := byNormalized[normalized[i]]; !ok {
			byNormalized[normalized[i]] = h
		}
	}

	roles := ColumnRoles{}
	claimed := mapset.NewThreadUnsafeSet[string]()

	// Glucose: exact aliases first, in priority order.
	for _, alias := range glucoseAliases {
		if original, ok := byNormalized[alias]; ok {
			roles.Glucose = original
			claimed.Add(alias)
			break
		}
	}
	if roles.Glucose == "" {
		for i, lc := range normalized {
			if (strings.Contains(lc, "glucose") || strings.Contains(lc, "sugar") || strings.Contains(lc, "measurement")) &&
				!strings.Contains(lc, "insulin") {
				roles.Glucose = headers[i]
				claimed.Add(lc)
				break
			}
		}
	}

	// Timestamp: a single combined column wins over a split pair.
	for _, alias := range timestampAliases {
		if original, ok := byNormalized[alias]; ok {
			roles.Timestamp = original
			claimed.Add(alias)
			break
		}
	}
	if roles.Timestamp == "" {
		dateCol, dateNorm := findSplitColumn(headers, normalized, claimed, "date", "updated", "timezone")
		timeCol, timeNorm := findSplitColumn(headers, normalized, claimed, "time", "zone")
		if dateCol != "" && timeCol != "" && dateNorm != timeNorm {
			roles.DateColumn = dateCol
			roles.TimeColumn = timeCol
			claimed.Add(dateNorm)
			claimed.Add(timeNorm)
		}
	}

	// Insulin is multi-valued: every header mentioning insulin contributes.
	seen := mapset.NewThreadUnsafeSet[string]()
	for i, lc := range normalized {
		if strings.Contains(lc, "insulin") && !seen.Contains(lc) {
			roles.Insulin = append(roles.Insulin, headers[i])
			seen.Add(lc)
		}
	}

	var missing []Role
	if !roles.timestampResolved() {
		missing = append(missing, RoleTimestamp)
	}
	if roles.Glucose == "" {
		missing = append(missing, RoleGlucose)
	}
	if len(missing) > 0 {
		return ColumnRoles{}, &UnresolvedColumnsError{
			Missing: missing,
			Headers: headers,
		}
	}

	return roles, nil
}

// findSplitColumn returns the last column whose normalized name equals needle,
// or contains needle without any of the excluded substrings. Columns already
// claimed by another role are skipped.
func findSplitColumn(headers, normalized []string, claimed mapset.Set[string], needle string, excluded ...string) (string, string) {
	var column, norm string
	for i, lc := range normalized {
		if claimed.Contains(lc) {
			continue
		}
		if lc == needle {
			column, norm = headers[i], lc
			continue
		}
		if strings.Contains(lc, needle) && !containsAny(lc, excluded) {
			column, norm = headers[i], lc
		}
	}
	return column, norm
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
