package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/costwatch/costwatch/internal/domain/cost"
	apperrors "github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/utils"
	"github.com/costwatch/costwatch/internal/providers"
	"github.com/costwatch/costwatch/internal/services"
)

// CostHandler handles cost series ingestion and retrieval
type CostHandler struct {
	costService *services.CostService
	seed        int64
	logger      *logger.Logger
}

// NewCostHandler creates a new cost handler
func NewCostHandler(costService *services.CostService, seed int64, log *logger.Logger) *CostHandler {
	return &CostHandler{
		costService: costService,
		seed:        seed,
		logger:      log,
	}
}

type ingestRequest struct {
	Dates []string             `json:"dates"`
	Costs map[string][]float64 `json:"costs"`
}

// Ingest accepts per-provider daily costs over a shared date axis and
// replaces the providers' stored series.
func (h *CostHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.BadRequest("invalid JSON body"))
		return
	}
	if len(req.Dates) == 0 || len(req.Costs) == 0 {
		utils.WriteError(w, apperrors.BadRequest("dates and costs are required"))
		return
	}

	dates := make([]time.Time, len(req.Dates))
	for i, d := range req.Dates {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			utils.WriteError(w, apperrors.ValidationError("invalid date", map[string]string{"date": d}))
			return
		}
		dates[i] = parsed
	}

	series := make(map[string][]cost.Point, len(req.Costs))
	for provider, costs := range req.Costs {
		if len(costs) != len(dates) {
			utils.WriteError(w, apperrors.ValidationError("cost array length does not match dates", map[string]string{
				"provider": provider,
			}))
			return
		}
		points := make([]cost.Point, len(costs))
		for i, c := range costs {
			points[i] = cost.Point{Date: dates[i], Cost: c}
		}
		series[provider] = points
	}

	total, err := h.costService.Ingest(r.Context(), "api", series)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"ingested_points": total,
		"providers":       len(series),
	})
}

// IngestSample generates deterministic sample data and ingests it.
func (h *CostHandler) IngestSample(w http.ResponseWriter, r *http.Request) {
	days := 90
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 3650 {
			utils.WriteError(w, apperrors.BadRequest("days must be an integer between 1 and 3650"))
			return
		}
		days = n
	}

	total, err := h.costService.Ingest(r.Context(), "sample", providers.GenerateSample(days, h.seed))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"ingested_points": total,
		"days":            days,
	})
}

type updateRequest struct {
	Dates []string  `json:"dates"`
	Costs []float64 `json:"costs"`
}

// Update replaces a single provider's series.
func (h *CostHandler) Update(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperrors.BadRequest("invalid JSON body"))
		return
	}
	if len(req.Dates) == 0 || len(req.Dates) != len(req.Costs) {
		utils.WriteError(w, apperrors.BadRequest("dates and costs must be non-empty and the same length"))
		return
	}

	points := make([]cost.Point, len(req.Dates))
	for i, d := range req.Dates {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			utils.WriteError(w, apperrors.ValidationError("invalid date", map[string]string{"date": d}))
			return
		}
		points[i] = cost.Point{Date: parsed, Cost: req.Costs[i]}
	}

	total, err := h.costService.Ingest(r.Context(), "api", map[string][]cost.Point{provider: points})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"provider":        provider,
		"ingested_points": total,
	})
}

// List returns the providers with an ingested series.
func (h *CostHandler) List(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"providers": h.costService.Providers(),
	})
}

// Get returns the stored series for one provider.
func (h *CostHandler) Get(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	series, ok := h.costService.Series(provider)
	if !ok {
		utils.WriteError(w, apperrors.NotFound("cost series"))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, series)
}

// writeServiceError unwraps AppErrors from the service layer and falls
// back to a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, apperrors.Internal("internal error", err))
}
