package handler

import (
	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MembershipHandler handles farm membership endpoints
type MembershipHandler struct {
	BaseHandler
	membershipService *appidentity.MembershipService
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(membershipService *appidentity.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// Grant handles POST /api/v1/memberships
func (h *MembershipHandler) Grant(c *gin.Context) {
	var input appidentity.GrantMembershipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err, "Invalid membership payload")
		return
	}

	info, err := h.membershipService.Grant(c.Request.Context(), middleware.GetAuthorization(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// Revoke handles DELETE /api/v1/memberships/:userId
func (h *MembershipHandler) Revoke(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.membershipService.Revoke(c.Request.Context(), middleware.GetAuthorization(c), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// changeRoleRequest is the body of a role change
type changeRoleRequest struct {
	Role identity.MembershipRole `json:"role" binding:"required"`
}

// ChangeRole handles PUT /api/v1/memberships/:userId/role
func (h *MembershipHandler) ChangeRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, "Invalid role payload")
		return
	}

	info, err := h.membershipService.ChangeRole(c.Request.Context(), middleware.GetAuthorization(c), userID, req.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// List handles GET /api/v1/memberships
func (h *MembershipHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	infos, err := h.membershipService.ListForFarm(c.Request.Context(), middleware.GetAuthorization(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, infos)
}
