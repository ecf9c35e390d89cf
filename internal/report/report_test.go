package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
)

func sampleResult() *anomaly.DetectionResult {
	expected := 100.0
	deviation := 200.0

	result := anomaly.EmptyResult("aws")
	result.Anomalies = []anomaly.Anomaly{
		{
			Date:             time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			ObservedCost:     300,
			ExpectedCost:     &expected,
			Method:           anomaly.MethodTrend,
			Severity:         anomaly.SeverityHigh,
			DeviationPercent: &deviation,
			TrendDirection:   anomaly.DirectionIncrease,
		},
		{
			Date:         time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
			ObservedCost: 180,
			Method:       anomaly.MethodOutlierModel,
			Severity:     anomaly.SeverityMedium,
			OutlierScore: -0.4,
		},
	}
	result.TotalAnomalies = 2
	result.ByMethod[anomaly.MethodTrend] = 1
	result.ByMethod[anomaly.MethodOutlierModel] = 1
	result.BySeverity[anomaly.SeverityHigh] = 1
	result.BySeverity[anomaly.SeverityMedium] = 1
	return result
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, sampleResult()); err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Provider: aws",
		"Anomalies: 2",
		"high=1 medium=1 low=0",
		"outlier_model=1 trend=1",
		"2025-06-16",
		"300.00",
		"+200.0%",
		"2025-06-20",
		"-",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderText() output missing %q\n%s", want, out)
		}
	}
}

func TestRenderTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, anomaly.EmptyResult("gcp")); err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No anomalies detected.") {
		t.Errorf("RenderText() output = %q, want empty-result notice", buf.String())
	}
}

func TestRenderTextAll(t *testing.T) {
	results := map[string]*anomaly.DetectionResult{
		"aws": sampleResult(),
		"gcp": anomaly.EmptyResult("gcp"),
	}

	var buf bytes.Buffer
	if err := RenderTextAll(&buf, results); err != nil {
		t.Fatalf("RenderTextAll() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Providers: 2, anomalies: 2") {
		t.Errorf("RenderTextAll() missing fleet summary\n%s", out)
	}
	awsIdx := strings.Index(out, "Provider: aws")
	gcpIdx := strings.Index(out, "Provider: gcp")
	if awsIdx == -1 || gcpIdx == -1 || awsIdx > gcpIdx {
		t.Errorf("RenderTextAll() providers not in sorted order\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	var decoded anomaly.DetectionResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("RenderJSON() produced invalid JSON: %v", err)
	}
	if decoded.Provider != "aws" || decoded.TotalAnomalies != 2 {
		t.Errorf("RenderJSON() round-trip = %+v, want provider aws with 2 anomalies", decoded)
	}
}
