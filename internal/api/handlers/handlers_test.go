package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/costwatch/costwatch/internal/api/handlers"
	"github.com/costwatch/costwatch/internal/api/router"
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/services"
	"github.com/costwatch/costwatch/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	ts := store.New()

	costService := services.NewCostService(ts, nil, log)
	anomalyService := services.NewAnomalyService(ts, nil, log, services.DefaultDetectionConfig())

	handler := router.New(router.Config{
		Logger:           log,
		HealthHandler:    handlers.NewHealthHandler(nil, log),
		CostHandler:      handlers.NewCostHandler(costService, 42, log),
		DetectionHandler: handlers.NewDetectionHandler(anomalyService, nil, log),
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest(%s %s) error = %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, env
}

// ingestBody builds a valid ingest payload with one provider and
// consecutive daily dates starting 2025-06-02.
func ingestBody(provider string, costs []float64) string {
	dates := make([]string, len(costs))
	for i := range costs {
		dates[i] = fmt.Sprintf("2025-06-%02d", 2+i)
	}
	payload := map[string]any{
		"dates": dates,
		"costs": map[string][]float64{provider: costs},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	status, env := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if status != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want %d", status, http.StatusOK)
	}
	if !env.Success {
		t.Error("GET /healthz success = false, want true")
	}
}

func TestReadyzWithoutDatabase(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doRequest(t, srv, http.MethodGet, "/readyz", "")
	if status != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want %d", status, http.StatusOK)
	}
}

func TestIngestAndGetSeries(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/costs/",
		ingestBody("aws", []float64{100, 102, 99, 101, 100}))
	if status != http.StatusOK {
		t.Fatalf("POST /api/v1/costs status = %d, want %d", status, http.StatusOK)
	}

	status, env := doRequest(t, srv, http.MethodGet, "/api/v1/costs/aws", "")
	if status != http.StatusOK {
		t.Fatalf("GET /api/v1/costs/aws status = %d, want %d", status, http.StatusOK)
	}

	var series struct {
		Provider string `json:"provider"`
		Points   []struct {
			Cost float64 `json:"cost"`
		} `json:"points"`
	}
	if err := json.Unmarshal(env.Data, &series); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if series.Provider != "aws" {
		t.Errorf("series provider = %q, want %q", series.Provider, "aws")
	}
	if len(series.Points) != 5 {
		t.Errorf("series points = %d, want 5", len(series.Points))
	}
}

func TestUpdateProviderSeries(t *testing.T) {
	srv := newTestServer(t)

	body := `{"dates":["2025-06-02","2025-06-03","2025-06-04"],"costs":[10,11,12]}`
	status, _ := doRequest(t, srv, http.MethodPut, "/api/v1/costs/gcp", body)
	if status != http.StatusOK {
		t.Fatalf("PUT /api/v1/costs/gcp status = %d, want %d", status, http.StatusOK)
	}

	status, _ = doRequest(t, srv, http.MethodGet, "/api/v1/costs/gcp", "")
	if status != http.StatusOK {
		t.Errorf("GET after PUT status = %d, want %d", status, http.StatusOK)
	}
}

func TestGetSeriesUnknownProvider(t *testing.T) {
	srv := newTestServer(t)

	status, env := doRequest(t, srv, http.MethodGet, "/api/v1/costs/unknown", "")
	if status != http.StatusNotFound {
		t.Errorf("GET unknown provider status = %d, want %d", status, http.StatusNotFound)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want code NOT_FOUND", env.Error)
	}
}

func TestIngestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing dates", `{"costs":{"aws":[1,2]}}`},
		{"bad date format", `{"dates":["06/02/2025"],"costs":{"aws":[1]}}`},
		{"length mismatch", `{"dates":["2025-06-02"],"costs":{"aws":[1,2]}}`},
		{"negative cost", `{"dates":["2025-06-02"],"costs":{"aws":[-5]}}`},
	}

	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, srv, http.MethodPost, "/api/v1/costs/", tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
			}
			if env.Success {
				t.Error("success = true, want false")
			}
		})
	}
}

func TestIngestSample(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/costs/sample?days=30", "")
	if status != http.StatusOK {
		t.Fatalf("POST /api/v1/costs/sample status = %d, want %d", status, http.StatusOK)
	}

	_, env := doRequest(t, srv, http.MethodGet, "/api/v1/costs/", "")
	var data struct {
		Providers []string `json:"providers"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode providers: %v", err)
	}
	if len(data.Providers) != 4 {
		t.Errorf("providers = %v, want 4 entries", data.Providers)
	}
}

func TestIngestSampleInvalidDays(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/costs/sample?days=abc", "")
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
	}
}

func TestDetectProvider(t *testing.T) {
	srv := newTestServer(t)

	costs := make([]float64, 28)
	for i := range costs {
		costs[i] = 100
	}
	costs[14] = 400

	if status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/costs/", ingestBody("aws", costs)); status != http.StatusOK {
		t.Fatalf("ingest status = %d, want %d", status, http.StatusOK)
	}

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/detect/aws", "")
	if status != http.StatusOK {
		t.Fatalf("POST /api/v1/detect/aws status = %d, want %d", status, http.StatusOK)
	}

	var result anomaly.DetectionResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Provider != "aws" {
		t.Errorf("result provider = %q, want %q", result.Provider, "aws")
	}
	if result.TotalAnomalies == 0 {
		t.Error("TotalAnomalies = 0, want at least one for a 4x spike")
	}
}

func TestDetectUnknownProviderReturnsEmptyResult(t *testing.T) {
	srv := newTestServer(t)

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/detect/unknown", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}

	var result anomaly.DetectionResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.TotalAnomalies != 0 {
		t.Errorf("TotalAnomalies = %d, want 0", result.TotalAnomalies)
	}
}

func TestDetectAll(t *testing.T) {
	srv := newTestServer(t)

	if status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/costs/sample?days=90", ""); status != http.StatusOK {
		t.Fatal("sample ingest failed")
	}

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/detect/", "")
	if status != http.StatusOK {
		t.Fatalf("POST /api/v1/detect status = %d, want %d", status, http.StatusOK)
	}

	var results map[string]anomaly.DetectionResult
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("results = %d providers, want 4", len(results))
	}
}

func TestAnomaliesWithoutStorage(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doRequest(t, srv, http.MethodGet, "/api/v1/anomalies/", "")
	if status != http.StatusNotFound {
		t.Errorf("GET /api/v1/anomalies status = %d, want %d", status, http.StatusNotFound)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
