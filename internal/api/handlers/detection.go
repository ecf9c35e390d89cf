package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	apperrors "github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/utils"
)

// DetectionHandler handles detection runs and anomaly queries
type DetectionHandler struct {
	anomalyService anomaly.Service
	repo           anomaly.Repository
	logger         *logger.Logger
}

// NewDetectionHandler creates a new detection handler. repo may be nil
// when the server runs without persistence; the anomaly listing endpoints
// then return 404.
func NewDetectionHandler(anomalyService anomaly.Service, repo anomaly.Repository, log *logger.Logger) *DetectionHandler {
	return &DetectionHandler{
		anomalyService: anomalyService,
		repo:           repo,
		logger:         log,
	}
}

// Detect runs the detection pipeline for one provider.
func (h *DetectionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	result, err := h.anomalyService.Detect(r.Context(), provider)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, result)
}

// DetectAll runs the detection pipeline for every ingested provider.
func (h *DetectionHandler) DetectAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.anomalyService.DetectAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, results)
}

// List returns persisted anomalies, filterable by provider, method and
// severity query parameters.
func (h *DetectionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		utils.WriteError(w, apperrors.NotFound("anomaly storage"))
		return
	}

	q := r.URL.Query()
	filter := anomaly.Filter{
		Provider: q.Get("provider"),
		Method:   q.Get("method"),
		Severity: q.Get("severity"),
	}

	anomalies, err := h.repo.List(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, apperrors.DatabaseError("failed to list anomalies", err))
		return
	}

	params := utils.ParsePaginationParams(r)
	start, end := params.PageBounds(len(anomalies))

	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"total":     len(anomalies),
		"page":      params.Page,
		"page_size": params.PageSize,
		"anomalies": anomalies[start:end],
	})
}

// Summary returns persisted anomaly counts grouped by severity.
func (h *DetectionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		utils.WriteError(w, apperrors.NotFound("anomaly storage"))
		return
	}

	counts, err := h.repo.CountBySeverity(r.Context())
	if err != nil {
		utils.WriteError(w, apperrors.DatabaseError("failed to count anomalies", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"by_severity": counts,
	})
}
