package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

// AdminHandler serves catalog maintenance and the activity history.
type AdminHandler struct {
	chemicals   service.ChemicalService
	regulations service.RegulationService
	history     service.HistoryService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(chemicals service.ChemicalService, regulations service.RegulationService, history service.HistoryService) *AdminHandler {
	return &AdminHandler{chemicals: chemicals, regulations: regulations, history: history}
}

// actor names the caller in catalog audit fields.
func actor(c *gin.Context) string {
	if identity, ok := middleware.IdentityFromContext(c); ok && identity.Email != "" {
		return identity.Email
	}
	return "system"
}

// CreateChemical handles POST /api/v1/admin/chemicals requests.
//
// @Summary      Create a chemical
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body dto.ChemicalRequest true "Chemical"
// @Success      201 {object} dto.SuccessResponse{data=model.Chemical} "Created chemical"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      403 {object} dto.ErrorResponse "Forbidden"
// @Failure      409 {object} dto.ErrorResponse "CAS number already in the catalog"
// @Security     BearerAuth
// @Router       /api/v1/admin/chemicals [post]
func (h *AdminHandler) CreateChemical(c *gin.Context) {
	req, ok := bindAndValidate[dto.ChemicalRequest](c)
	if !ok {
		return
	}

	chemical := req.ToModel()
	if err := h.chemicals.Create(c.Request.Context(), chemical, actor(c)); err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionCreateChemical, "Chemical created", map[string]any{
		"chemical_id": chemical.ID.Hex(),
		"name":        chemical.Name,
		"cas_number":  chemical.CASNumber,
	})
	NewResponseBuilder(c).SuccessCreated(chemical)
}

// UpdateChemical handles PATCH /api/v1/admin/chemicals/:id requests.
//
// @Summary      Update a chemical
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Chemical id"
// @Param        request body dto.UpdateChemicalRequest true "Fields to change"
// @Success      200 {object} dto.SuccessResponse{data=model.Chemical} "Updated chemical"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      404 {object} dto.ErrorResponse "Chemical not found"
// @Failure      409 {object} dto.ErrorResponse "CAS number already in the catalog"
// @Security     BearerAuth
// @Router       /api/v1/admin/chemicals/{id} [patch]
func (h *AdminHandler) UpdateChemical(c *gin.Context) {
	req, ok := bindAndValidate[dto.UpdateChemicalRequest](c)
	if !ok {
		return
	}

	chemical, err := h.chemicals.Update(c.Request.Context(), c.Param("id"), service.ChemicalPatch{
		Name:       req.Name,
		CASNumber:  req.CASNumber,
		Status:     req.Status,
		RiskLevel:  req.RiskLevel,
		Categories: req.Categories,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionUpdateChemical, "Chemical updated", map[string]any{
		"chemical_id": chemical.ID.Hex(),
		"name":        chemical.Name,
	})
	NewResponseBuilder(c).SuccessOK(chemical)
}

// DeleteChemical handles DELETE /api/v1/admin/chemicals/:id requests.
//
// @Summary      Delete a chemical
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Chemical id"
// @Success      200 {object} dto.SuccessResponse{data=model.Chemical} "Deleted chemical"
// @Failure      404 {object} dto.ErrorResponse "Chemical not found"
// @Security     BearerAuth
// @Router       /api/v1/admin/chemicals/{id} [delete]
func (h *AdminHandler) DeleteChemical(c *gin.Context) {
	chemical, err := h.chemicals.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionDeleteChemical, "Chemical deleted", map[string]any{
		"chemical_id": chemical.ID.Hex(),
		"name":        chemical.Name,
	})
	NewResponseBuilder(c).SuccessOK(chemical)
}

// SetLimit handles PUT /api/v1/admin/chemicals/:id/limits/:regulationId requests.
//
// @Summary      Set a specific migration limit
// @Description  Adds or replaces the SML of the chemical under the regulation. Zero is a valid limit.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Chemical id"
// @Param        regulationId path string true "Regulation id"
// @Param        request body dto.SetLimitRequest true "Limit in mg/kg"
// @Success      200 {object} dto.SuccessResponse{data=model.Chemical} "Updated chemical"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      404 {object} dto.ErrorResponse "Chemical or regulation not found"
// @Security     BearerAuth
// @Router       /api/v1/admin/chemicals/{id}/limits/{regulationId} [put]
func (h *AdminHandler) SetLimit(c *gin.Context) {
	req, ok := bindAndValidate[dto.SetLimitRequest](c)
	if !ok {
		return
	}

	regulationID := model.RegulationID(c.Param("regulationId"))
	chemical, err := h.chemicals.SetLimit(c.Request.Context(), c.Param("id"), regulationID, *req.SML, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionSetLimit, "Specific migration limit set", map[string]any{
		"chemical_id":   chemical.ID.Hex(),
		"regulation_id": regulationID,
		"sml":           *req.SML,
	})
	NewResponseBuilder(c).SuccessOK(chemical)
}

// RemoveLimit handles DELETE /api/v1/admin/chemicals/:id/limits/:regulationId requests.
//
// @Summary      Remove a specific migration limit
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Chemical id"
// @Param        regulationId path string true "Regulation id"
// @Success      200 {object} dto.SuccessResponse{data=model.Chemical} "Updated chemical"
// @Failure      404 {object} dto.ErrorResponse "Chemical or limit not found"
// @Security     BearerAuth
// @Router       /api/v1/admin/chemicals/{id}/limits/{regulationId} [delete]
func (h *AdminHandler) RemoveLimit(c *gin.Context) {
	regulationID := model.RegulationID(c.Param("regulationId"))
	chemical, err := h.chemicals.RemoveLimit(c.Request.Context(), c.Param("id"), regulationID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionRemoveLimit, "Specific migration limit removed", map[string]any{
		"chemical_id":   chemical.ID.Hex(),
		"regulation_id": regulationID,
	})
	NewResponseBuilder(c).SuccessOK(chemical)
}

// CreateRegulation handles POST /api/v1/admin/regulations requests.
//
// @Summary      Create a regulation
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body dto.RegulationRequest true "Regulation"
// @Success      201 {object} dto.SuccessResponse{data=model.Regulation} "Created regulation"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      409 {object} dto.ErrorResponse "Regulation id already exists"
// @Security     BearerAuth
// @Router       /api/v1/admin/regulations [post]
func (h *AdminHandler) CreateRegulation(c *gin.Context) {
	req, ok := bindAndValidate[dto.RegulationRequest](c)
	if !ok {
		return
	}

	regulation := req.ToModel()
	if err := h.regulations.Create(c.Request.Context(), regulation); err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionCreateReg, "Regulation created", map[string]any{
		"regulation_id": regulation.ID,
		"name":          regulation.Name,
		"actor":         actor(c),
	})
	NewResponseBuilder(c).SuccessCreated(regulation)
}

// UpdateRegulation handles PATCH /api/v1/admin/regulations/:id requests.
//
// @Summary      Update a regulation
// @Description  Returns both versions and a text patch of the description.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Regulation id"
// @Param        request body dto.UpdateRegulationRequest true "Fields to change"
// @Success      200 {object} dto.SuccessResponse{data=service.RegulationChange} "Change"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      404 {object} dto.ErrorResponse "Regulation not found"
// @Security     BearerAuth
// @Router       /api/v1/admin/regulations/{id} [patch]
func (h *AdminHandler) UpdateRegulation(c *gin.Context) {
	req, ok := bindAndValidate[dto.UpdateRegulationRequest](c)
	if !ok {
		return
	}

	change, err := h.regulations.Update(c.Request.Context(), model.RegulationID(c.Param("id")), service.RegulationPatch{
		Name:          req.Name,
		Country:       req.Country,
		Region:        req.Region,
		Description:   req.Description,
		Link:          req.Link,
		Categories:    req.Categories,
		UpdateDetails: req.UpdateDetails,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	fields := map[string]any{
		"regulation_id": change.Current.ID,
		"actor":         actor(c),
	}
	if change.DescriptionPatch != "" {
		fields["description_patch"] = change.DescriptionPatch
	}
	middleware.Audit(c, model.ActionUpdateReg, "Regulation updated", fields)
	NewResponseBuilder(c).SuccessOK(change)
}

// DeleteRegulation handles DELETE /api/v1/admin/regulations/:id requests.
//
// @Summary      Delete a regulation
// @Description  Also strips the regulation's limits from every chemical.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Regulation id"
// @Success      200 {object} dto.SuccessResponse{data=dto.DeleteRegulationResponse} "Deleted regulation"
// @Failure      404 {object} dto.ErrorResponse "Regulation not found"
// @Security     BearerAuth
// @Router       /api/v1/admin/regulations/{id} [delete]
func (h *AdminHandler) DeleteRegulation(c *gin.Context) {
	regulation, stripped, err := h.regulations.Delete(c.Request.Context(), model.RegulationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionDeleteReg, "Regulation deleted", map[string]any{
		"regulation_id":   regulation.ID,
		"limits_stripped": stripped,
		"actor":           actor(c),
	})
	NewResponseBuilder(c).SuccessOK(dto.DeleteRegulationResponse{Regulation: *regulation, LimitsStripped: stripped})
}

// FeatureRegulation handles PUT /api/v1/admin/regulations/:id/featured requests.
//
// @Summary      Feature or unfeature a regulation
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Regulation id"
// @Param        request body dto.FeatureRequest true "Featured flag"
// @Success      200 {object} dto.SuccessResponse{data=model.Regulation} "Regulation"
// @Failure      404 {object} dto.ErrorResponse "Regulation not found"
// @Security     BearerAuth
// @Router       /api/v1/admin/regulations/{id}/featured [put]
func (h *AdminHandler) FeatureRegulation(c *gin.Context) {
	req, ok := bindAndValidate[dto.FeatureRequest](c)
	if !ok {
		return
	}

	regulation, err := h.regulations.SetFeatured(c.Request.Context(), model.RegulationID(c.Param("id")), *req.Featured)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionFeatureReg, "Regulation featured flag changed", map[string]any{
		"regulation_id": regulation.ID,
		"featured":      regulation.Featured,
	})
	NewResponseBuilder(c).SuccessOK(regulation)
}

// historyQuery reads the history filters from the query string.
func historyQuery(c *gin.Context) (service.HistoryQuery, bool) {
	q := service.HistoryQuery{
		Scope:  model.ActivityScope(c.Query("scope")),
		Action: c.Query("action"),
		UserID: c.Query("user_id"),
	}

	for name, dst := range map[string]**time.Time{"from": &q.From, "to": &q.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			NewResponseBuilder(c).ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidHistoryQuery,
				map[string]string{name: "must be an RFC 3339 timestamp"}, fmt.Errorf("%w: %s", service.ErrInvalidHistoryQuery, name))
			return q, false
		}
		*dst = &t
	}

	var ok bool
	if q.Limit, ok = queryInt(c, "limit"); !ok {
		return q, false
	}
	if q.Skip, ok = queryInt(c, "skip"); !ok {
		return q, false
	}
	return q, true
}

// History handles GET /api/v1/admin/history requests.
//
// @Summary      Activity history
// @Description  Lists audit entries newest first. The admin scope holds catalog writes, the user scope holds logins, searches, calculations and exports.
// @Tags         Admin
// @Produce      json
// @Param        scope query string false "Scope" Enums(admin, user)
// @Param        action query string false "Action type"
// @Param        user_id query string false "User id"
// @Param        from query string false "RFC 3339 start"
// @Param        to query string false "RFC 3339 end"
// @Param        limit query int false "Page size (default 50, max 1000)"
// @Param        skip query int false "Offset"
// @Success      200 {object} dto.SuccessResponse{data=service.HistoryPage} "History page"
// @Failure      400 {object} dto.ErrorResponse "Invalid history query"
// @Security     BearerAuth
// @Router       /api/v1/admin/history [get]
func (h *AdminHandler) History(c *gin.Context) {
	q, ok := historyQuery(c)
	if !ok {
		return
	}
	page, err := h.history.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(page)
}

// ExportHistory handles GET /api/v1/admin/history/export requests.
//
// @Summary      Export the activity history
// @Tags         Admin
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format query string false "File format" Enums(csv, xlsx)
// @Param        scope query string false "Scope" Enums(admin, user)
// @Param        from query string false "RFC 3339 start"
// @Param        to query string false "RFC 3339 end"
// @Success      200 {file} file "History table"
// @Failure      400 {object} dto.ErrorResponse "Invalid history query or format"
// @Security     BearerAuth
// @Router       /api/v1/admin/history/export [get]
func (h *AdminHandler) ExportHistory(c *gin.Context) {
	format, err := service.ParseExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	if err != nil {
		respondError(c, err)
		return
	}
	q, ok := historyQuery(c)
	if !ok {
		return
	}
	if q.Limit == 0 {
		q.Limit = service.MaxHistoryLimit
	}

	page, err := h.history.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionExport, "Activity history exported", map[string]any{
		"format":  string(format),
		"entries": len(page.Entries),
	})
	writeTable(c, "history", format, service.HistoryTable(page.Entries))
}
