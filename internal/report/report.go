// Package report renders detection results for terminal and machine
// consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
)

// RenderJSON writes results as indented JSON.
func RenderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderText writes a single provider's detection result as an aligned
// text report.
func RenderText(w io.Writer, result *anomaly.DetectionResult) error {
	fmt.Fprintf(w, "Provider: %s\n", result.Provider)
	fmt.Fprintf(w, "Anomalies: %d\n", result.TotalAnomalies)

	if result.TotalAnomalies == 0 {
		fmt.Fprintln(w, "No anomalies detected.")
		return nil
	}

	fmt.Fprintf(w, "By severity: %s\n", severityLine(result.BySeverity))
	fmt.Fprintf(w, "By method: %s\n", methodLine(result.ByMethod))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCOST\tEXPECTED\tMETHOD\tSEVERITY\tDEVIATION")
	for _, a := range result.Anomalies {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%s\t%s\n",
			a.Date.Format("2006-01-02"),
			a.ObservedCost,
			floatOrDash(a.ExpectedCost, "%.2f"),
			a.Method,
			a.Severity,
			floatOrDash(a.DeviationPercent, "%+.1f%%"),
		)
	}
	return tw.Flush()
}

// RenderTextAll writes a fleet summary followed by each provider's
// report, in provider order.
func RenderTextAll(w io.Writer, results map[string]*anomaly.DetectionResult) error {
	providers := make([]string, 0, len(results))
	total := 0
	for provider, result := range results {
		providers = append(providers, provider)
		total += result.TotalAnomalies
	}
	sort.Strings(providers)

	fmt.Fprintf(w, "Providers: %d, anomalies: %d\n\n", len(providers), total)

	for i, provider := range providers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := RenderText(w, results[provider]); err != nil {
			return err
		}
	}
	return nil
}

func severityLine(counts map[anomaly.Severity]int) string {
	return fmt.Sprintf("high=%d medium=%d low=%d",
		counts[anomaly.SeverityHigh],
		counts[anomaly.SeverityMedium],
		counts[anomaly.SeverityLow])
}

func methodLine(counts map[anomaly.Method]int) string {
	methods := make([]string, 0, len(counts))
	for m := range counts {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)

	line := ""
	for i, m := range methods {
		if i > 0 {
			line += " "
		}
		line += fmt.Sprintf("%s=%d", m, counts[anomaly.Method(m)])
	}
	return line
}

func floatOrDash(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
