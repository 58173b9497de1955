package middleware

import (
	"errors"
	"strings"

	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/logger"
	"github.com/farmops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const (
	// FarmIDHeader is the tenant selector. It names which farm the caller
	// wants to act in; whether they may is decided by the guard.
	FarmIDHeader = "X-Farm-ID"

	authorizationKey = "authorization"
	bearerPrefix     = "Bearer "
)

// BearerToken extracts the bearer token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}

// Guard authorizes every request through the access guard: credential
// from the Authorization header, farm from the X-Farm-ID header. The
// resulting Authorization is stored in the request context and is the
// only place downstream handlers may take the farm ID from.
func Guard(guard *appidentity.AccessGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, _ := BearerToken(c)

		authz, err := guard.Authorize(c.Request.Context(), appidentity.AuthorizeInput{
			Credential:     credential,
			TenantSelector: c.GetHeader(FarmIDHeader),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(authorizationKey, authz)

		log := logger.FromContext(c.Request.Context())
		ctx, log := logger.WithUserID(c.Request.Context(), log, authz.UserID.String())
		ctx, _ = logger.WithFarmID(ctx, log, authz.FarmID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole rejects requests whose authorization ranks below the
// required membership role. Must run after Guard.
func RequireRole(guard *appidentity.AccessGuard, required identity.MembershipRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := GetAuthorization(c)
		if err := guard.RequireRole(authz, required); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// GetAuthorization returns the request's authorization, or nil when the
// guard has not run
func GetAuthorization(c *gin.Context) *appidentity.Authorization {
	if v, ok := c.Get(authorizationKey); ok {
		if authz, ok := v.(*appidentity.Authorization); ok {
			return authz
		}
	}
	return nil
}

func abortWithError(c *gin.Context, err error) {
	requestID := c.GetString(RequestIDHeader)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.CodeInternal),
		dto.NewErrorResponseWithRequestID(dto.CodeInternal, "An unexpected error occurred", requestID))
}
