package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/partsledger/backend/internal/application/catalog"
)

// CatalogHandler handles part and location master data endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	parts := rg.Group("/parts")
	{
		parts.POST("", h.CreatePart)
		parts.GET("", h.ListParts)
		parts.GET("/:id", h.GetPart)
		parts.PUT("/:id/cost", h.UpdatePartCost)
		parts.DELETE("/:id", h.DeactivatePart)
	}

	locations := rg.Group("/locations")
	{
		locations.POST("", h.CreateLocation)
		locations.GET("", h.ListLocations)
		locations.GET("/:id", h.GetLocation)
		locations.DELETE("/:id", h.DeactivateLocation)
	}
}

// CreatePart creates a new catalog part
func (h *CatalogHandler) CreatePart(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req catalogapp.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	part, err := h.catalogService.CreatePart(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, part)
}

// ListParts lists catalog parts
func (h *CatalogHandler) ListParts(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var filter catalogapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.ListParts(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetPart retrieves one part by ID
func (h *CatalogHandler) GetPart(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	partID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid part ID format")
		return
	}

	part, err := h.catalogService.GetPart(c.Request.Context(), companyID, partID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, part)
}

// UpdatePartCost changes the catalog fallback cost of a part
func (h *CatalogHandler) UpdatePartCost(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	partID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid part ID format")
		return
	}

	var req catalogapp.UpdatePartCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	part, err := h.catalogService.UpdatePartCost(c.Request.Context(), companyID, partID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, part)
}

// DeactivatePart soft-disables a part
func (h *CatalogHandler) DeactivatePart(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	partID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid part ID format")
		return
	}

	if err := h.catalogService.DeactivatePart(c.Request.Context(), companyID, partID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"deactivated": true})
}

// CreateLocation creates a new stock location
func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req catalogapp.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	location, err := h.catalogService.CreateLocation(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, location)
}

// ListLocations lists stock locations
func (h *CatalogHandler) ListLocations(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var filter catalogapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.ListLocations(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetLocation retrieves one location by ID
func (h *CatalogHandler) GetLocation(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	location, err := h.catalogService.GetLocation(c.Request.Context(), companyID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, location)
}

// DeactivateLocation soft-disables a location
func (h *CatalogHandler) DeactivateLocation(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	if err := h.catalogService.DeactivateLocation(c.Request.Context(), companyID, locationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"deactivated": true})
}
