// Package metrics derives numbers from a reading series. Every function is
// a pure function of its inputs; nothing is cached and nothing is mutated.
package metrics

import (
	"errors"
	"math"
	"time"

	"github.com/glucolog-org/coach/ingestion"
)

// Conventional time-in-range band in mg/dL.
const (
	DefaultLowTarget  = 70.0
	DefaultHighTarget = 180.0
)

// ErrEmptyInput is returned by derivations that are undefined for an empty
// series. A series produced by ingestion is never empty, so hitting this
// indicates a caller bug.
var ErrEmptyInput = errors.New("metrics: reading series is empty")

// MeanGlucose returns the arithmetic mean of all glucose values.
func MeanGlucose(series ingestion.ReadingSeries) (float64, error) {
	if len(series) == 0 {
		return 0, ErrEmptyInput
	}
	var sum float64
	for _, reading := range series {
		sum += reading.Glucose
	}
	return sum / float64(len(series)), nil
}

// LatestGlucose returns the glucose value of the most recent reading. The
// series is sorted ascending, so this is the last element.
func LatestGlucose(series ingestion.ReadingSeries) (float64, error) {
	if len(series) == 0 {
		return 0, ErrEmptyInput
	}
	return series[len(series)-1].Glucose, nil
}

// TimeInRange returns the percentage of readings with low <= glucose <= high.
// An empty series yields 0 rather than propagating a division by zero.
func TimeInRange(series ingestion.ReadingSeries, low, high float64) float64 {
	if len(series) == 0 {
		return 0
	}
	count := 0
	for _, reading := range series {
		if reading.Glucose >= low && reading.Glucose <= high {
			count++
		}
	}
	return 100 * float64(count) / float64(len(series))
}

// EstimatedHbA1c converts a mean glucose in mg/dL to an estimated HbA1c
// percentage using the ADA eAG approximation (eAG = 28.7 * A1c - 46.7).
// The formula is meaningless for non-physiological inputs and is applied
// without bounds checking; callers sanity-check their own means.
func EstimatedHbA1c(meanGlucose float64) float64 {
	return (meanGlucose + 46.7) / 28.7
}

// StandardDeviation returns the population standard deviation of the glucose
// values, or 0 for fewer than two readings.
func StandardDeviation(series ingestion.ReadingSeries) float64 {
	if len(series) < 2 {
		return 0
	}
	mean, _ := MeanGlucose(series)
	var sum float64
	for _, reading := range series {
		d := reading.Glucose - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(series)))
}

// DailyAverage is the mean glucose of one calendar day.
type DailyAverage struct {
	Date    time.Time `json:"date"`
	Average float64   `json:"average"`
	Count   int       `json:"count"`
}

// DailyAverages groups readings by calendar day and averages each day,
// returned in ascending date order. The series is already sorted, so days
// come out in first-seen order.
func DailyAverages(series ingestion.ReadingSeries) []DailyAverage {
	var days []DailyAverage
	index := map[time.Time]int{}
	for _, reading := range series {
		day := reading.Timestamp.Truncate(24 * time.Hour)
		i, ok := index[day]
		if !ok {
			i = len(days)
			index[day] = i
			days = append(days, DailyAverage{Date: day})
		}
		days[i].Average += reading.Glucose
		days[i].Count++
	}
	for i := range days {
		days[i].Average /= float64(days[i].Count)
	}
	return days
}

// Summary bundles the derived values reported for one series. Recomputed
// from the series on every call, never persisted.
type Summary struct {
	TotalReadings      int       `json:"totalReadings"`
	FirstReadingTime   time.Time `json:"firstReadingTime"`
	LastReadingTime    time.Time `json:"lastReadingTime"`
	MeanGlucose        float64   `json:"meanGlucose"`
	LatestGlucose      float64   `json:"latestGlucose"`
	StandardDeviation  float64   `json:"standardDeviation"`
	TimeInRangePercent float64   `json:"timeInRangePercent"`
	EstimatedHbA1c     float64   `json:"estimatedHbA1c"`
}

// Summarize computes the full summary with the given time-in-range band.
func Summarize(series ingestion.ReadingSeries, low, high float64) (Summary, error) {
	mean, err := MeanGlucose(series)
	if err != nil {
		return Summary{}, err
	}
	latest, err := LatestGlucose(series)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalReadings:      len(series),
		FirstReadingTime:   series[0].Timestamp,
		LastReadingTime:    series[len(series)-1].Timestamp,
		MeanGlucose:        mean,
		LatestGlucose:      latest,
		StandardDeviation:  StandardDeviation(series),
		TimeInRangePercent: TimeInRange(series, low, high),
		EstimatedHbA1c:     EstimatedHbA1c(mean),
	}, nil
}
