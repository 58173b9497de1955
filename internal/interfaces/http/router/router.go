package router

import (
	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/infrastructure/config"
	"github.com/farmops/backend/internal/infrastructure/logger"
	"github.com/farmops/backend/internal/interfaces/http/handler"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the router wires up
type Handlers struct {
	Auth       *handler.AuthHandler
	Party      *handler.PartyHandler
	Order      *handler.OrderHandler
	Catalog    *handler.CatalogHandler
	Membership *handler.MembershipHandler
	Health     *handler.HealthHandler
}

// Setup builds the gin engine with all middleware and routes. Every
// route under /api/v1 except auth passes through the access guard, so a
// handler can rely on an Authorization being present in the context.
func Setup(cfg *config.Config, log *zap.Logger, guard *appidentity.AccessGuard, h Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(cfg.HTTP),
	)

	engine.GET("/healthz", h.Health.Liveness)
	engine.GET("/readyz", h.Health.Readiness)

	api := engine.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/register", h.Auth.Register)
	}

	guarded := api.Group("")
	guarded.Use(middleware.Guard(guard))

	parties := guarded.Group("/parties")
	{
		parties.POST("", middleware.RequireRole(guard, identity.RoleMember), h.Party.Create)
		parties.GET("", h.Party.List)
		parties.GET("/:id", h.Party.Get)
		parties.DELETE("/:id", middleware.RequireRole(guard, identity.RoleManager), h.Party.Archive)
		parties.POST("/:id/roles", middleware.RequireRole(guard, identity.RoleMember), h.Party.AddRole)
		parties.PUT("/:id/roles/:type/metadata", middleware.RequireRole(guard, identity.RoleMember), h.Party.UpdateRoleMetadata)
		parties.POST("/:id/contacts", middleware.RequireRole(guard, identity.RoleMember), h.Party.AddContact)
		parties.PUT("/:id/contacts/:contactId/primary", middleware.RequireRole(guard, identity.RoleMember), h.Party.SetPrimaryContact)
	}

	// flat customer view kept for older integrations
	guarded.GET("/customers", h.Party.ListLegacyCustomers)

	orders := guarded.Group("/orders")
	{
		orders.POST("", middleware.RequireRole(guard, identity.RoleMember), h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/confirm", middleware.RequireRole(guard, identity.RoleMember), h.Order.Confirm)
		orders.POST("/:id/fulfill", middleware.RequireRole(guard, identity.RoleMember), h.Order.Fulfill)
		orders.POST("/:id/cancel", middleware.RequireRole(guard, identity.RoleMember), h.Order.Cancel)
	}

	catalog := guarded.Group("/catalog-items")
	{
		catalog.POST("", middleware.RequireRole(guard, identity.RoleManager), h.Catalog.Create)
		catalog.GET("", h.Catalog.List)
		catalog.GET("/:id", h.Catalog.Get)
		catalog.PUT("/:id/price", middleware.RequireRole(guard, identity.RoleManager), h.Catalog.UpdatePrice)
		catalog.PUT("/:id/active", middleware.RequireRole(guard, identity.RoleManager), h.Catalog.SetActive)
	}

	memberships := guarded.Group("/memberships")
	memberships.Use(middleware.RequireRole(guard, identity.RoleOwner))
	{
		memberships.POST("", h.Membership.Grant)
		memberships.GET("", h.Membership.List)
		memberships.DELETE("/:userId", h.Membership.Revoke)
		memberships.PUT("/:userId/role", h.Membership.ChangeRole)
	}

	return engine
}
