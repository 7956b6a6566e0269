// Package reports renders the derived values of an upload into an XLSX
// workbook for download. The report consumes plain labeled numbers; it never
// computes anything itself.
package reports

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"

	"github.com/glucolog-org/coach/uploads"
)

const (
	SheetNameSummary       = "Summary"
	SheetNameDailyAverages = "Daily Averages"
	SheetNameReadings      = "Readings"

	TimestampFormat = "2006-01-02 15:04"
	DateFormat      = "2006-01-02"
)

type Report struct {
	upload  *uploads.Upload
	metrics uploads.Metrics
	dose    *uploads.DoseSuggestion
}

// NewReport builds a report for one upload. dose is optional; when nil the
// suggested dose section is omitted.
func NewReport(upload *uploads.Upload, metrics uploads.Metrics, dose *uploads.DoseSuggestion) Report {
	return Report{
		upload:  upload,
		metrics: metrics,
		dose:    dose,
	}
}

func (r Report) Generate() (*xlsx.File, error) {
	report := xlsx.NewFile()

	components := []func(report *xlsx.File) error{
		r.addSummarySheet,
		r.addDailyAveragesSheet,
		r.addReadingsSheet,
	}
	for _, fn := range components {
		if err := fn(report); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (r Report) addSummarySheet(report *xlsx.File) error {
	sh, err := report.AddSheet(SheetNameSummary)
	if err != nil {
		return err
	}

	sh.AddRow().AddCell().SetValue("GLUCOSE COACH REPORT")
	addLabeledValue(sh, "Generated", time.Now().Format(TimestampFormat))
	addLabeledValue(sh, "Report Code", r.upload.ReportCode)
	addLabeledValue(sh, "Tracking Id", uuid.NewString())
	addLabeledValue(sh, "Source File", r.upload.Filename)
	sh.AddRow()

	summary := r.metrics.Summary
	addLabeledValue(sh, "Readings", summary.TotalReadings)
	addLabeledValue(sh, "First Reading", summary.FirstReadingTime.Format(TimestampFormat))
	addLabeledValue(sh, "Last Reading", summary.LastReadingTime.Format(TimestampFormat))
	addLabeledValue(sh, "Dropped Rows", r.upload.DroppedRows)
	sh.AddRow()

	addLabeledValue(sh, "Average Glucose (mg/dL)", formatUnits(summary.MeanGlucose))
	addLabeledValue(sh, "Latest Glucose (mg/dL)", fmt.Sprintf("%.0f", summary.LatestGlucose))
	addLabeledValue(sh, "Standard Deviation (mg/dL)", formatUnits(summary.StandardDeviation))
	addLabeledValue(sh, "Time In Range (%)", fmt.Sprintf("%.1f", summary.TimeInRangePercent))
	addLabeledValue(sh, "Estimated HbA1c (%)", fmt.Sprintf("%.1f", summary.EstimatedHbA1c))
	sh.AddRow()

	addLabeledValue(sh, "Diet Guidance", string(r.metrics.Guidance.Level))
	addLabeledValue(sh, "", r.metrics.Guidance.Advice)

	if r.dose != nil {
		sh.AddRow()
		sh.AddRow().AddCell().SetValue("INSULIN SUGGESTION")
		addLabeledValue(sh, "Current Glucose (mg/dL)", fmt.Sprintf("%.0f", r.dose.CurrentGlucose))
		addLabeledValue(sh, "Target Glucose (mg/dL)", fmt.Sprintf("%.0f", r.dose.TargetGlucose))
		addLabeledValue(sh, "Sensitivity Factor (mg/dL per unit)", formatUnits(r.dose.InsulinSensitivityFactor))
		addLabeledValue(sh, "Correction (units)", fmt.Sprintf("%.1f", r.dose.CorrectionUnits))
		addLabeledValue(sh, "Carb Bolus (units)", fmt.Sprintf("%.1f", r.dose.CarbBolusUnits))
		addLabeledValue(sh, "Total Suggested (units)", fmt.Sprintf("%.1f", r.dose.TotalUnits))
	}

	return nil
}

func (r Report) addDailyAveragesSheet(report *xlsx.File) error {
	sh, err := report.AddSheet(SheetNameDailyAverages)
	if err != nil {
		return err
	}

	currentRow := sh.AddRow()
	currentRow.AddCell().SetValue("Date")
	currentRow.AddCell().SetValue("Average Glucose (mg/dL)")
	currentRow.AddCell().SetValue("Readings")

	for _, day := range r.metrics.DailyAverages {
		currentRow = sh.AddRow()
		currentRow.AddCell().SetValue(day.Date.Format(DateFormat))
		currentRow.AddCell().SetValue(formatUnits(day.Average))
		currentRow.AddCell().SetValue(day.Count)
	}

	return nil
}

func (r Report) addReadingsSheet(report *xlsx.File) error {
	sh, err := report.AddSheet(SheetNameReadings)
	if err != nil {
		return err
	}

	currentRow := sh.AddRow()
	currentRow.AddCell().SetValue("Timestamp")
	currentRow.AddCell().SetValue("Glucose (mg/dL)")
	currentRow.AddCell().SetValue("Insulin (units)")

	for _, reading := range r.upload.Readings {
		currentRow = sh.AddRow()
		currentRow.AddCell().SetValue(reading.Timestamp.Format(TimestampFormat))
		currentRow.AddCell().SetValue(formatUnits(reading.Glucose))
		currentRow.AddCell().SetValue(formatUnits(reading.InsulinTotal))
	}

	return nil
}

func addLabeledValue(sh *xlsx.Sheet, label string, value interface{}) {
	currentRow := sh.AddRow()
	currentRow.AddCell().SetValue(label)
	currentRow.AddCell().SetValue(value)
}

func formatUnits(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
