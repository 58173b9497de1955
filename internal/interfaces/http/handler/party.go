package handler

import (
	appparty "github.com/farmops/backend/internal/application/party"
	"github.com/farmops/backend/internal/domain/party"
	"github.com/farmops/backend/internal/interfaces/http/dto"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartyHandler handles party endpoints
type PartyHandler struct {
	BaseHandler
	partyService *appparty.Service
}

// NewPartyHandler creates a new party handler
func NewPartyHandler(partyService *appparty.Service) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

// Create handles POST /api/v1/parties
func (h *PartyHandler) Create(c *gin.Context) {
	var input appparty.CreatePartyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err, "Invalid party payload")
		return
	}

	view, err := h.partyService.Create(c.Request.Context(), middleware.GetAuthorization(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// Get handles GET /api/v1/parties/:id
func (h *PartyHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	view, err := h.partyService.Get(c.Request.Context(), middleware.GetAuthorization(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// List handles GET /api/v1/parties?role_type=...
func (h *PartyHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	roleType := party.RoleType(c.Query("role_type"))
	page, err := h.partyService.ListByRoleType(c.Request.Context(), middleware.GetAuthorization(c), roleType, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AddRole handles POST /api/v1/parties/:id/roles
func (h *PartyHandler) AddRole(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var input appparty.RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err, "Invalid role payload")
		return
	}

	view, err := h.partyService.AddRole(c.Request.Context(), middleware.GetAuthorization(c), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// UpdateRoleMetadata handles PUT /api/v1/parties/:id/roles/:type/metadata
func (h *PartyHandler) UpdateRoleMetadata(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var metadata party.RoleMetadata
	if err := c.ShouldBindJSON(&metadata); err != nil {
		h.BindError(c, err, "Invalid metadata payload")
		return
	}

	roleType := party.RoleType(c.Param("type"))
	view, err := h.partyService.UpdateRoleMetadata(c.Request.Context(), middleware.GetAuthorization(c), id, roleType, metadata)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// AddContact handles POST /api/v1/parties/:id/contacts
func (h *PartyHandler) AddContact(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var input appparty.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err, "Invalid contact payload")
		return
	}

	view, err := h.partyService.AddContact(c.Request.Context(), middleware.GetAuthorization(c), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// SetPrimaryContact handles PUT /api/v1/parties/:id/contacts/:contactId/primary
func (h *PartyHandler) SetPrimaryContact(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	contactID, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	view, err := h.partyService.SetPrimaryContact(c.Request.Context(), middleware.GetAuthorization(c), id, contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Archive handles DELETE /api/v1/parties/:id
func (h *PartyHandler) Archive(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.partyService.Archive(c.Request.Context(), middleware.GetAuthorization(c), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListLegacyCustomers handles GET /api/v1/customers, the flat view older
// integrations consume
func (h *PartyHandler) ListLegacyCustomers(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	page, err := h.partyService.ListLegacyCustomers(c.Request.Context(), middleware.GetAuthorization(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *PartyHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid party ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return uuid.Nil, false
	}
	return id, true
}
