package command

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/glucolog-org/coach/config"
	"github.com/glucolog-org/coach/ingestion"
	"github.com/glucolog-org/coach/metrics"
	"github.com/glucolog-org/coach/reports"
	"github.com/glucolog-org/coach/uploads"
)

var reportPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.csv>",
	Short: "Ingest a local glucose log CSV",
	Long:  "The ingest command parses a CSV file, prints the derived metrics and optionally writes the XLSX report. Nothing is persisted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ingestFile(args[0])
	},
}

func ingestFile(path string) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := ingestion.Ingest(file)
	if err != nil {
		return err
	}

	summary, err := metrics.Summarize(result.Series, cfg.LowGlucoseThreshold, cfg.HighGlucoseThreshold)
	if err != nil {
		return err
	}
	guidance := metrics.GuidanceFor(summary.LatestGlucose)

	fmt.Printf("Readings: %d (dropped %d rows)\n", summary.TotalReadings, result.DroppedRows)
	fmt.Printf("Range: %s .. %s\n", summary.FirstReadingTime.Format(reports.TimestampFormat), summary.LastReadingTime.Format(reports.TimestampFormat))
	fmt.Printf("Average Glucose: %.2f mg/dL\n", summary.MeanGlucose)
	fmt.Printf("Latest Glucose: %.0f mg/dL\n", summary.LatestGlucose)
	fmt.Printf("Standard Deviation: %.2f mg/dL\n", summary.StandardDeviation)
	fmt.Printf("Time In Range (%.0f-%.0f): %.1f%%\n", cfg.LowGlucoseThreshold, cfg.HighGlucoseThreshold, summary.TimeInRangePercent)
	fmt.Printf("Estimated HbA1c: %.1f%%\n", summary.EstimatedHbA1c)
	fmt.Printf("Guidance: %s\n", guidance.Advice)

	if reportPath == "" {
		return nil
	}

	upload := &uploads.Upload{
		Filename:    filepath.Base(path),
		ReportCode:  "LOCAL",
		Headers:     result.Headers,
		Roles:       result.Roles,
		Readings:    result.Series,
		DroppedRows: result.DroppedRows,
		CreatedTime: time.Now(),
	}
	uploadMetrics := uploads.Metrics{
		Summary:       summary,
		DailyAverages: metrics.DailyAverages(result.Series),
		Guidance:      guidance,
	}

	workbook, err := reports.NewReport(upload, uploadMetrics, nil).Generate()
	if err != nil {
		return err
	}
	if err := workbook.Save(reportPath); err != nil {
		return err
	}

	fmt.Printf("Report written to %s\n", reportPath)
	return nil
}

func init() {
	ingestCmd.Flags().StringVarP(&reportPath, "report", "r", "", "Write the XLSX report to this path")
	rootCmd.AddCommand(ingestCmd)
}
