package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/service"
)

var errBadQuery = errors.New("invalid query parameter")

// CatalogHandler serves the read side of the chemical and regulation catalogs.
type CatalogHandler struct {
	chemicals   service.ChemicalService
	regulations service.RegulationService
	lookup      service.SubstanceLookup
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(chemicals service.ChemicalService, regulations service.RegulationService, lookup service.SubstanceLookup) *CatalogHandler {
	return &CatalogHandler{chemicals: chemicals, regulations: regulations, lookup: lookup}
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		NewResponseBuilder(c).ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidRequest,
			map[string]string{name: "must be a non-negative integer"}, errBadQuery)
		return 0, false
	}
	return v, true
}

// queryList collects a repeatable, comma separated query parameter.
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Lookup handles GET /api/v1/substances requests.
//
// @Summary      Find reference substances
// @Description  Matches a case-insensitive substring of the chemical name or a partial CAS number. An empty fragment lists the catalog up to the limit.
// @Tags         Substances
// @Produce      json
// @Param        q query string false "Name or CAS fragment"
// @Param        limit query int false "Maximum rows (default 20, max 100)"
// @Success      200 {object} dto.SuccessResponse{data=[]model.ReferenceSubstance} "Reference substances"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      503 {object} dto.ErrorResponse "Catalog unavailable"
// @Security     BearerAuth
// @Router       /api/v1/substances [get]
func (h *CatalogHandler) Lookup(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	if h.lookup == nil {
		respondError(c, service.ErrRepositoryNotConfigured)
		return
	}

	refs, err := h.lookup.Find(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(refs)
}

// SearchChemicals handles GET /api/v1/chemicals requests.
//
// @Summary      Search chemicals
// @Description  Filters the catalog by name or CAS fragment, status, category and country. The country filter keeps chemicals with a limit under one of that country's regulations.
// @Tags         Chemicals
// @Produce      json
// @Param        q query string false "Name or CAS fragment"
// @Param        status query string false "Status" Enums(allowed, restricted, prohibited, unknown)
// @Param        category query []string false "Categories (any of)" collectionFormat(multi)
// @Param        country query string false "Country"
// @Param        limit query int false "Page size (default 20, max 100)"
// @Param        skip query int false "Offset"
// @Success      200 {object} dto.SuccessResponse{data=dto.PageResponse} "Matching chemicals"
// @Failure      400 {object} dto.ErrorResponse "Bad request"
// @Failure      503 {object} dto.ErrorResponse "Catalog unavailable"
// @Security     BearerAuth
// @Router       /api/v1/chemicals [get]
func (h *CatalogHandler) SearchChemicals(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	skip, ok := queryInt(c, "skip")
	if !ok {
		return
	}
	status := model.ChemicalStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		NewResponseBuilder(c).ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidRequest,
			map[string]string{"status": "must be one of allowed, restricted, prohibited, unknown"}, errBadQuery)
		return
	}
	if limit <= 0 {
		limit = service.DefaultLookupLimit
	}
	limit = min(limit, service.MaxLookupLimit)

	page, err := h.chemicals.Search(c.Request.Context(), service.ChemicalQuery{
		ChemicalFilter: model.ChemicalFilter{
			Query:      c.Query("q"),
			Status:     status,
			Categories: queryList(c, "category"),
			Limit:      limit,
			Skip:       skip,
		},
		Country: c.Query("country"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.Audit(c, model.ActionSearch, "Chemical catalog searched", map[string]any{
		"query":   c.Query("q"),
		"country": c.Query("country"),
		"results": len(page.Items),
	})
	NewResponseBuilder(c).SuccessOK(dto.PageResponse{Items: page.Items, Total: page.Total, Limit: limit, Skip: skip})
}

// GetChemical handles GET /api/v1/chemicals/:id requests.
//
// @Summary      Get a chemical
// @Tags         Chemicals
// @Produce      json
// @Param        id path string true "Chemical id"
// @Success      200 {object} dto.SuccessResponse{data=model.Chemical} "Chemical"
// @Failure      404 {object} dto.ErrorResponse "Chemical not found"
// @Security     BearerAuth
// @Router       /api/v1/chemicals/{id} [get]
func (h *CatalogHandler) GetChemical(c *gin.Context) {
	chemical, err := h.chemicals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(chemical)
}

func regulationFilter(c *gin.Context) model.RegulationFilter {
	updatedOnly, _ := strconv.ParseBool(c.Query("updated_only"))
	return model.RegulationFilter{
		Country:     c.Query("country"),
		Query:       c.Query("q"),
		Categories:  queryList(c, "category"),
		UpdatedOnly: updatedOnly,
	}
}

// ListRegulations handles GET /api/v1/regulations requests.
//
// @Summary      List regulations
// @Tags         Regulations
// @Produce      json
// @Param        country query string false "Country"
// @Param        category query []string false "Categories (any of)" collectionFormat(multi)
// @Param        q query string false "Name or description fragment"
// @Param        updated_only query bool false "Only regulations with update details"
// @Success      200 {object} dto.SuccessResponse{data=[]model.Regulation} "Regulations"
// @Failure      503 {object} dto.ErrorResponse "Catalog unavailable"
// @Security     BearerAuth
// @Router       /api/v1/regulations [get]
func (h *CatalogHandler) ListRegulations(c *gin.Context) {
	regs, err := h.regulations.List(c.Request.Context(), regulationFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(regs)
}

// RegulationsByCountry handles GET /api/v1/regulations/by-country requests.
//
// @Summary      Regulations grouped by country
// @Tags         Regulations
// @Produce      json
// @Param        category query []string false "Categories (any of)" collectionFormat(multi)
// @Param        q query string false "Name or description fragment"
// @Param        updated_only query bool false "Only regulations with update details"
// @Success      200 {object} dto.SuccessResponse{data=[]model.CountryRegulations} "Groups sorted by country"
// @Failure      503 {object} dto.ErrorResponse "Catalog unavailable"
// @Security     BearerAuth
// @Router       /api/v1/regulations/by-country [get]
func (h *CatalogHandler) RegulationsByCountry(c *gin.Context) {
	groups, err := h.regulations.ByCountry(c.Request.Context(), regulationFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(groups)
}

// FeaturedRegulations handles GET /api/v1/regulations/featured requests.
//
// @Summary      Featured regulations
// @Tags         Regulations
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=[]model.Regulation} "Featured regulations"
// @Failure      503 {object} dto.ErrorResponse "Catalog unavailable"
// @Security     BearerAuth
// @Router       /api/v1/regulations/featured [get]
func (h *CatalogHandler) FeaturedRegulations(c *gin.Context) {
	regs, err := h.regulations.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(regs)
}

// GetRegulation handles GET /api/v1/regulations/:id requests.
//
// @Summary      Get a regulation
// @Description  Includes description_html, the description rendered from Markdown.
// @Tags         Regulations
// @Produce      json
// @Param        id path string true "Regulation id"
// @Success      200 {object} dto.SuccessResponse{data=service.RegulationDetail} "Regulation"
// @Failure      404 {object} dto.ErrorResponse "Regulation not found"
// @Security     BearerAuth
// @Router       /api/v1/regulations/{id} [get]
func (h *CatalogHandler) GetRegulation(c *gin.Context) {
	detail, err := h.regulations.Get(c.Request.Context(), model.RegulationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.Audit(c, model.ActionView, "Regulation viewed", map[string]any{"regulation_id": detail.ID})
	NewResponseBuilder(c).SuccessOK(detail)
}

// RegulationChemicals handles GET /api/v1/regulations/:id/chemicals requests.
//
// @Summary      Chemicals limited by a regulation
// @Tags         Regulations
// @Produce      json
// @Param        id path string true "Regulation id"
// @Success      200 {object} dto.SuccessResponse{data=[]model.Chemical} "Chemicals"
// @Failure      404 {object} dto.ErrorResponse "Regulation not found"
// @Security     BearerAuth
// @Router       /api/v1/regulations/{id}/chemicals [get]
func (h *CatalogHandler) RegulationChemicals(c *gin.Context) {
	id := model.RegulationID(c.Param("id"))
	if _, err := h.regulations.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	chemicals, err := h.chemicals.ForRegulation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(chemicals)
}
