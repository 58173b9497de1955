package handler

import (
	apptrade "github.com/farmops/backend/internal/application/trade"
	"github.com/farmops/backend/internal/domain/shared/valueobject"
	"github.com/farmops/backend/internal/interfaces/http/dto"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles catalog item endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *apptrade.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *apptrade.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Create handles POST /api/v1/catalog-items
func (h *CatalogHandler) Create(c *gin.Context) {
	var input apptrade.CreateCatalogItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err, "Invalid catalog item payload")
		return
	}

	view, err := h.catalogService.Create(c.Request.Context(), middleware.GetAuthorization(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// Get handles GET /api/v1/catalog-items/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	view, err := h.catalogService.Get(c.Request.Context(), middleware.GetAuthorization(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// List handles GET /api/v1/catalog-items
func (h *CatalogHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	page, err := h.catalogService.List(c.Request.Context(), middleware.GetAuthorization(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// updatePriceRequest is the body of a price update
type updatePriceRequest struct {
	ListPrice decimal.Decimal `json:"list_price" binding:"required"`
	Currency  string          `json:"currency"`
}

// UpdatePrice handles PUT /api/v1/catalog-items/:id/price
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, "Invalid price payload")
		return
	}

	currency := valueobject.DefaultCurrency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	price, err := valueobject.NewMoney(req.ListPrice, currency)
	if err != nil {
		h.BadRequest(c, "Invalid price")
		return
	}

	view, err := h.catalogService.UpdatePrice(c.Request.Context(), middleware.GetAuthorization(c), id, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// setActiveRequest is the body of an activation toggle
type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive handles PUT /api/v1/catalog-items/:id/active
func (h *CatalogHandler) SetActive(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, "Invalid activation payload")
		return
	}

	view, err := h.catalogService.SetActive(c.Request.Context(), middleware.GetAuthorization(c), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

func (h *CatalogHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid catalog item ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid catalog item ID")
		return uuid.Nil, false
	}
	return id, true
}
