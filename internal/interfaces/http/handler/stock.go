package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/partsledger/backend/internal/application/ledger"
)

// StockLedgerHandler handles stock movement and ledger API endpoints
type StockLedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.StockLedgerService
}

// NewStockLedgerHandler creates a new StockLedgerHandler
func NewStockLedgerHandler(ledgerService *ledgerapp.StockLedgerService) *StockLedgerHandler {
	return &StockLedgerHandler{
		ledgerService: ledgerService,
	}
}

// RegisterRoutes registers stock ledger routes
func (h *StockLedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/adjust", h.Adjust)
		stock.POST("/transfer", h.Transfer)
		stock.POST("/reserve", h.Reserve)
		stock.POST("/release", h.Release)
		stock.POST("/count", h.Count)

		stock.GET("/balances", h.ListBalances)
		stock.GET("/balances/lookup", h.GetBalance)
		stock.GET("/balances/:id", h.GetBalanceByID)
		stock.GET("/ledger", h.ListEntries)
		stock.GET("/ledger/reference/:reference", h.GetEntriesByReference)
		stock.GET("/ledger/:id", h.GetEntry)
		stock.GET("/locations/:id/value", h.GetLocationValue)
	}
}

// Adjust applies one stock movement to a part at a location
func (h *StockLedgerHandler) Adjust(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ledgerapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.UserID == nil {
		req.UserID = getUserID(c)
	}

	resp, err := h.ledgerService.AdjustStock(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Transfer moves stock between two locations atomically
func (h *StockLedgerHandler) Transfer(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ledgerapp.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.UserID == nil {
		req.UserID = getUserID(c)
	}

	resp, err := h.ledgerService.Transfer(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Reserve earmarks available stock without moving it
func (h *StockLedgerHandler) Reserve(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ledgerapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balance, err := h.ledgerService.ReserveStock(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// Release returns reserved stock to available
func (h *StockLedgerHandler) Release(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ledgerapp.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balance, err := h.ledgerService.ReleaseReservedStock(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// Count records a physical stock count
func (h *StockLedgerHandler) Count(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ledgerapp.StockCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.UserID == nil {
		req.UserID = getUserID(c)
	}

	resp, err := h.ledgerService.PerformStockCount(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetBalance looks up the balance for one (part, location) pair
func (h *StockLedgerHandler) GetBalance(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	partID, err := uuid.Parse(c.Query("part_id"))
	if err != nil {
		h.BadRequest(c, "Invalid part ID format")
		return
	}
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), companyID, partID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// GetBalanceByID retrieves one balance row by ID
func (h *StockLedgerHandler) GetBalanceByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	balanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid balance ID format")
		return
	}

	balance, err := h.ledgerService.GetBalanceByID(c.Request.Context(), companyID, balanceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// ListBalances lists stock balances with optional filtering
func (h *StockLedgerHandler) ListBalances(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var filter ledgerapp.BalanceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ListBalances(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListEntries lists ledger history with optional filtering
func (h *StockLedgerHandler) ListEntries(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var filter ledgerapp.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ListEntries(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetEntry retrieves one ledger entry by ID
func (h *StockLedgerHandler) GetEntry(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), companyID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// GetEntriesByReference retrieves entries sharing a reference string
func (h *StockLedgerHandler) GetEntriesByReference(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	entries, err := h.ledgerService.GetEntriesByReference(c.Request.Context(), companyID, c.Param("reference"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetLocationValue reports the total on-hand value at a location
func (h *StockLedgerHandler) GetLocationValue(c *gin.Context) {
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

	value, err := h.ledgerService.GetLocationValue(c.Request.Context(), companyID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, value)
}
