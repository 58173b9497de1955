package handler

import (
	"time"

	apptrade "github.com/farmops/backend/internal/application/trade"
	"github.com/farmops/backend/internal/interfaces/http/dto"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader lets a client retry a create without risking a
// duplicate order
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *apptrade.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /api/v1/orders, the composite order write
func (h *OrderHandler) Create(c *gin.Context) {
	var input apptrade.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err, "Invalid order payload")
		return
	}
	input.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	view, err := h.orderService.Create(c.Request.Context(), middleware.GetAuthorization(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	view, err := h.orderService.Get(c.Request.Context(), middleware.GetAuthorization(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	page, err := h.orderService.List(c.Request.Context(), middleware.GetAuthorization(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Confirm handles POST /api/v1/orders/:id/confirm
func (h *OrderHandler) Confirm(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	view, err := h.orderService.Confirm(c.Request.Context(), middleware.GetAuthorization(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// fulfillRequest is the body of a fulfill call
type fulfillRequest struct {
	DeliveredAt *time.Time `json:"delivered_at"`
}

// Fulfill handles POST /api/v1/orders/:id/fulfill
func (h *OrderHandler) Fulfill(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req fulfillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err, "Invalid fulfill payload")
			return
		}
	}
	deliveredAt := time.Now()
	if req.DeliveredAt != nil {
		deliveredAt = *req.DeliveredAt
	}

	view, err := h.orderService.Fulfill(c.Request.Context(), middleware.GetAuthorization(c), id, deliveredAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Cancel handles POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	view, err := h.orderService.Cancel(c.Request.Context(), middleware.GetAuthorization(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

func (h *OrderHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}
