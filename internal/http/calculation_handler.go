package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/logger"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

// columnNameTimeout bounds the regulation lookup used to label verdict columns.
const columnNameTimeout = 2 * time.Second

// CalculationHandler serves stateless migration calculations.
type CalculationHandler struct {
	estimator   service.MigrationEstimator
	regulations service.RegulationService
}

// NewCalculationHandler creates a CalculationHandler. regulations may be nil, in which case
// verdict columns carry ids only.
func NewCalculationHandler(estimator service.MigrationEstimator, regulations service.RegulationService) *CalculationHandler {
	if estimator == nil {
		estimator = service.NewMigrationEstimator()
	}
	return &CalculationHandler{estimator: estimator, regulations: regulations}
}

// Calculate handles POST /api/v1/calculations requests.
//
// @Summary      Calculate migration values
// @Description  Computes M = (Q × A × Lp × D) / F for every substance and classifies it against each regulation limit. A verdict is pass only when M is strictly below the limit; a missing limit yields unknown.
// @Tags         Calculations
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.CalculateRequest true "Parameters and substances"
// @Success      200 {object} dto.SuccessResponse{data=dto.CalculationResponse} "Calculation results"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      422 {object} dto.ErrorResponse "Invalid packaging parameters or nothing to calculate"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/v1/calculations [post]
func (h *CalculationHandler) Calculate(c *gin.Context) {
	req, ok := bindAndValidate[dto.CalculateRequest](c)
	if !ok {
		return
	}

	params := req.EffectiveParameters()
	substances := req.ToSubstances()
	if !service.IsReady(params, substances) {
		if err := params.Validate(); err != nil {
			respondError(c, err)
			return
		}
		respondError(c, service.ErrNotReady)
		return
	}

	columns := regulationColumns(req.Regulations)
	if len(columns) == 0 {
		columns = service.RegulationColumns(substances)
	}
	columns = nameColumns(c.Request.Context(), h.regulations, columns)

	results, err := h.estimator.Estimate(params, substances, columns)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionCalculate, "Migration calculation requested", map[string]any{
		"substances":  len(substances),
		"regulations": len(columns),
		"case":        string(req.Case),
	})

	NewResponseBuilder(c).SuccessOK(dto.CalculationResponse{
		Case:       caseOrDefault(req.Case),
		Parameters: params,
		Columns:    columns,
		Results:    results,
	})
}

// Readiness handles POST /api/v1/calculations/readiness requests.
//
// @Summary      Check calculation readiness
// @Description  Reports whether every packaging parameter is positive and at least one substance has a name and a contamination above zero.
// @Tags         Calculations
// @Accept       json
// @Produce      json
// @Param        request body dto.CalculateRequest true "Parameters and substances"
// @Success      200 {object} dto.SuccessResponse{data=dto.ReadinessResponse} "Readiness"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Security     BearerAuth
// @Router       /api/v1/calculations/readiness [post]
func (h *CalculationHandler) Readiness(c *gin.Context) {
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	ready := service.IsReady(req.EffectiveParameters(), req.ToSubstances())
	NewResponseBuilder(c).SuccessOK(dto.ReadinessResponse{Ready: ready})
}

func caseOrDefault(c model.CalculationCase) model.CalculationCase {
	if c == "" {
		return model.CaseKnownContactAndWeight
	}
	return c
}

func regulationColumns(ids []model.RegulationID) []model.RegulationColumn {
	columns := make([]model.RegulationColumn, 0, len(ids))
	for _, id := range ids {
		columns = append(columns, model.RegulationColumn{ID: id})
	}
	return columns
}

// nameColumns fills the regulation names of columns. Lookup failures leave the ids unlabeled.
func nameColumns(ctx context.Context, regulations service.RegulationService, columns []model.RegulationColumn) []model.RegulationColumn {
	if regulations == nil || len(columns) == 0 {
		return columns
	}

	ids := make([]model.RegulationID, 0, len(columns))
	for _, col := range columns {
		ids = append(ids, col.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, columnNameTimeout)
	defer cancel()

	named, err := regulations.Columns(ctx, ids)
	if err != nil {
		log := logger.Logger()
		log.Warn().Err(err).Msg("Failed to resolve regulation names")
		return columns
	}
	return named
}

// labelResults copies column names onto the verdicts of results.
func labelResults(results []model.CalculationResult, columns []model.RegulationColumn) []model.CalculationResult {
	names := make(map[model.RegulationID]string, len(columns))
	for _, col := range columns {
		if col.Name != "" {
			names[col.ID] = col.Name
		}
	}
	if len(names) == 0 {
		return results
	}
	for i := range results {
		for j := range results[i].Verdicts {
			if name, ok := names[results[i].Verdicts[j].RegulationID]; ok {
				results[i].Verdicts[j].RegulationName = name
			}
		}
	}
	return results
}
