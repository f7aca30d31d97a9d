package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

// SessionHandler exposes the calculation workflow: case selection, data entry and results.
type SessionHandler struct {
	store       service.SessionStore
	chemicals   service.ChemicalService
	regulations service.RegulationService
}

// NewSessionHandler creates a SessionHandler. chemicals and regulations may be nil when the
// catalog is disabled; reference selection then answers 503.
func NewSessionHandler(store service.SessionStore, chemicals service.ChemicalService, regulations service.RegulationService) *SessionHandler {
	return &SessionHandler{store: store, chemicals: chemicals, regulations: regulations}
}

// callerID is the authenticated user id, or empty when the route is served without JWT auth.
func callerID(c *gin.Context) string {
	if identity, ok := middleware.IdentityFromContext(c); ok {
		return identity.UserID
	}
	return ""
}

// session loads the session named by the :id path parameter. It writes the error response
// and returns nil when the session is missing or belongs to another caller. Foreign sessions
// answer 404 like expired ones.
func (h *SessionHandler) session(c *gin.Context) *service.CalculationSession {
	sess, err := h.store.Get(c.Param("id"))
	if err == nil && !sess.OwnedBy(callerID(c)) {
		err = fmt.Errorf("%w: %s", service.ErrSessionNotFound, c.Param("id"))
	}
	if err != nil {
		respondError(c, err)
		return nil
	}
	return sess
}

func substanceID(c *gin.Context) (model.SubstanceID, bool) {
	id, err := strconv.ParseUint(c.Param("substanceId"), 10, 64)
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return 0, false
	}
	return model.SubstanceID(id), true
}

// Create handles POST /api/v1/sessions requests.
//
// @Summary      Start a calculation session
// @Description  Creates a session at step 1 with A=600, Lp=0.1, D=1, F=1000 and one empty substance with Q=1.
// @Tags         Sessions
// @Produce      json
// @Success      201 {object} dto.SuccessResponse{data=service.SessionSnapshot} "New session"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/v1/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	sess, err := h.store.Create()
	if err != nil {
		respondError(c, err)
		return
	}
	sess.SetOwner(callerID(c))
	NewResponseBuilder(c).SuccessCreated(sess.Snapshot())
}

// Get handles GET /api/v1/sessions/:id requests.
//
// @Summary      Get a calculation session
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} dto.SuccessResponse{data=service.SessionSnapshot} "Session state"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	if sess := h.session(c); sess != nil {
		NewResponseBuilder(c).SuccessOK(sess.Snapshot())
	}
}

// Delete handles DELETE /api/v1/sessions/:id requests.
//
// @Summary      Discard a calculation session
// @Tags         Sessions
// @Param        id path string true "Session id"
// @Success      204 "Session discarded"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if sess := h.session(c); sess != nil {
		h.store.Delete(sess.ID())
		c.Status(http.StatusNoContent)
	}
}

// SetCase handles PUT /api/v1/sessions/:id/case requests.
//
// @Summary      Select the calculation case
// @Description  The unknown contact and weight case sets A=600 and F=1000 and locks both. Switching back keeps the current values.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session id"
// @Param        request body dto.SetCaseRequest true "Calculation case"
// @Success      200 {object} dto.SuccessResponse{data=service.SessionSnapshot} "Session state"
// @Failure      400 {object} dto.ErrorResponse "Unknown case"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/case [put]
func (h *SessionHandler) SetCase(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	req, ok := bindAndValidate[dto.SetCaseRequest](c)
	if !ok {
		return
	}
	if err := sess.SetCase(req.Case); err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(sess.Snapshot())
}

// UpdateParameters handles PATCH /api/v1/sessions/:id/parameters requests.
//
// @Summary      Edit packaging parameters
// @Description  Omitted fields are kept. Changing a locked field returns 409; resending its current value is accepted.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session id"
// @Param        request body dto.UpdateParametersRequest true "Parameter patch"
// @Success      200 {object} dto.SuccessResponse{data=service.SessionSnapshot} "Session state"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Failure      409 {object} dto.ErrorResponse "Parameter locked by the selected case"
// @Failure      422 {object} dto.ErrorResponse "Invalid parameters"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/parameters [patch]
func (h *SessionHandler) UpdateParameters(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	req, ok := bindAndValidate[dto.UpdateParametersRequest](c)
	if !ok {
		return
	}
	err := sess.SetParameters(service.ParametersPatch{
		ContactSurfaceArea: req.ContactSurfaceArea,
		Thickness:          req.Thickness,
		Density:            req.Density,
		FoodWeight:         req.FoodWeight,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(sess.Snapshot())
}

// AddSubstance handles POST /api/v1/sessions/:id/substances requests.
//
// @Summary      Add an empty substance
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      201 {object} dto.SuccessResponse{data=model.Substance} "New substance"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/substances [post]
func (h *SessionHandler) AddSubstance(c *gin.Context) {
	if sess := h.session(c); sess != nil {
		NewResponseBuilder(c).SuccessCreated(sess.AddSubstance())
	}
}

// UpdateSubstance handles PATCH /api/v1/sessions/:id/substances/:substanceId requests.
//
// @Summary      Edit a substance
// @Description  Manual edits keep any reference limits already attached to the substance.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session id"
// @Param        substanceId path int true "Substance id"
// @Param        request body dto.UpdateSubstanceRequest true "Substance patch"
// @Success      200 {object} dto.SuccessResponse{data=model.Substance} "Updated substance"
// @Failure      404 {object} dto.ErrorResponse "Session or substance not found"
// @Failure      422 {object} dto.ErrorResponse "Negative contamination"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/substances/{substanceId} [patch]
func (h *SessionHandler) UpdateSubstance(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	id, ok := substanceID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[dto.UpdateSubstanceRequest](c)
	if !ok {
		return
	}
	sub, err := sess.UpdateSubstance(id, service.SubstancePatch{
		Name:          req.Name,
		CASNumber:     req.CASNumber,
		Contamination: req.Contamination,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(sub)
}

// RemoveSubstance handles DELETE /api/v1/sessions/:id/substances/:substanceId requests.
//
// @Summary      Remove a substance
// @Description  Removing the last substance leaves one fresh empty entry.
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Param        substanceId path int true "Substance id"
// @Success      200 {object} dto.SuccessResponse{data=service.SessionSnapshot} "Session state"
// @Failure      404 {object} dto.ErrorResponse "Session or substance not found"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/substances/{substanceId} [delete]
func (h *SessionHandler) RemoveSubstance(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	id, ok := substanceID(c)
	if !ok {
		return
	}
	if err := sess.RemoveSubstance(id); err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(sess.Snapshot())
}

// SelectReference handles PUT /api/v1/sessions/:id/substances/:substanceId/reference requests.
//
// @Summary      Use a catalog chemical for a substance
// @Description  Replaces name, CAS number and regulation limits with the chemical's. Contamination is kept.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session id"
// @Param        substanceId path int true "Substance id"
// @Param        request body dto.SelectReferenceRequest true "Catalog chemical"
// @Success      200 {object} dto.SuccessResponse{data=model.Substance} "Updated substance"
// @Failure      404 {object} dto.ErrorResponse "Session, substance or chemical not found"
// @Failure      503 {object} dto.ErrorResponse "Catalog unavailable"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/substances/{substanceId}/reference [put]
func (h *SessionHandler) SelectReference(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	id, ok := substanceID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[dto.SelectReferenceRequest](c)
	if !ok {
		return
	}
	if h.chemicals == nil {
		respondError(c, service.ErrRepositoryNotConfigured)
		return
	}

	chemical, err := h.chemicals.Get(c.Request.Context(), req.ChemicalID)
	if err != nil {
		respondError(c, err)
		return
	}
	sub, err := sess.SelectReference(id, chemical.ReferenceSubstance())
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(sub)
}

// SetColumns handles PUT /api/v1/sessions/:id/columns requests.
//
// @Summary      Choose regulation columns
// @Description  Fixes the regulations results are classified against. An empty list restores the union of the substances' regulations.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session id"
// @Param        request body dto.SetColumnsRequest true "Regulation ids"
// @Success      200 {object} dto.SuccessResponse{data=service.SessionSnapshot} "Session state"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/columns [put]
func (h *SessionHandler) SetColumns(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	req, ok := bindAndValidate[dto.SetColumnsRequest](c)
	if !ok {
		return
	}
	sess.SetColumns(nameColumns(c.Request.Context(), h.regulations, regulationColumns(req.Regulations)))
	NewResponseBuilder(c).SuccessOK(sess.Snapshot())
}

// Readiness handles GET /api/v1/sessions/:id/readiness requests.
//
// @Summary      Check session readiness
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} dto.SuccessResponse{data=dto.ReadinessResponse} "Readiness"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/readiness [get]
func (h *SessionHandler) Readiness(c *gin.Context) {
	if sess := h.session(c); sess != nil {
		NewResponseBuilder(c).SuccessOK(dto.ReadinessResponse{Ready: sess.Ready()})
	}
}

// Calculate handles POST /api/v1/sessions/:id/calculate requests.
//
// @Summary      Calculate the session
// @Description  Runs the estimator, stores the results and moves the session to step 3.
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} dto.SuccessResponse{data=dto.CalculationResponse} "Calculation results"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Failure      422 {object} dto.ErrorResponse "Session not ready or invalid parameters"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/calculate [post]
func (h *SessionHandler) Calculate(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	results, err := sess.Calculate()
	if err != nil {
		respondError(c, err)
		return
	}

	snap := sess.Snapshot()
	middleware.Audit(c, model.ActionCalculate, "Migration calculation requested", map[string]any{
		"session_id": snap.ID,
		"substances": len(snap.Substances),
		"case":       string(snap.Case),
	})
	NewResponseBuilder(c).SuccessOK(h.response(c, snap, results))
}

// Results handles GET /api/v1/sessions/:id/results requests.
//
// @Summary      Get session results
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} dto.SuccessResponse{data=dto.CalculationResponse} "Last results"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Failure      409 {object} dto.ErrorResponse "Session not calculated"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/results [get]
func (h *SessionHandler) Results(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	results, err := sess.Results()
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(h.response(c, sess.Snapshot(), results))
}

// Export handles GET /api/v1/sessions/:id/export requests.
//
// @Summary      Export session results
// @Description  Streams the last results as CSV or XLSX.
// @Tags         Sessions
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Session id"
// @Param        format query string false "csv or xlsx" Enums(csv, xlsx) default(csv)
// @Success      200 {file} file "Results table"
// @Failure      400 {object} dto.ErrorResponse "Unsupported format"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Failure      409 {object} dto.ErrorResponse "Session not calculated"
// @Security     BearerAuth
// @Router       /api/v1/sessions/{id}/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	sess := h.session(c)
	if sess == nil {
		return
	}
	results, err := sess.Results()
	if err != nil {
		respondError(c, err)
		return
	}

	columns := nameColumns(c.Request.Context(), h.regulations, sess.Columns())
	table := service.ExportTable(labelResults(results, columns), columns)

	middleware.Audit(c, model.ActionExport, "Calculation results exported", map[string]any{
		"session_id": sess.ID(),
		"format":     string(format),
	})
	writeTable(c, "migration-results", format, table)
}

func (h *SessionHandler) response(c *gin.Context, snap service.SessionSnapshot, results []model.CalculationResult) dto.CalculationResponse {
	columns := nameColumns(c.Request.Context(), h.regulations, h.columnsOf(snap, results))
	return dto.CalculationResponse{
		Case:       snap.Case,
		Parameters: snap.Parameters,
		Columns:    columns,
		Results:    labelResults(results, columns),
	}
}

func (h *SessionHandler) columnsOf(snap service.SessionSnapshot, results []model.CalculationResult) []model.RegulationColumn {
	if len(snap.Columns) > 0 {
		return snap.Columns
	}
	if len(results) == 0 {
		return []model.RegulationColumn{}
	}
	columns := make([]model.RegulationColumn, 0, len(results[0].Verdicts))
	for _, v := range results[0].Verdicts {
		columns = append(columns, model.RegulationColumn{ID: v.RegulationID, Name: v.RegulationName})
	}
	return columns
}

// writeTable renders table into a buffer so a writer failure still yields a clean error response.
func writeTable(c *gin.Context, name string, format service.ExportFormat, table service.Table) {
	var buf bytes.Buffer
	if err := service.WriteTable(&buf, format, table); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().UTC().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
