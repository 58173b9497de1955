package handler

import (
	"errors"
	"net/http"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/trade"
	"github.com/farmops/backend/internal/interfaces/http/dto"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDHeader); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.CodeBadRequest, message, getRequestID(c)))
}

// BindError sends a 400 response for a failed request binding, with
// per-field detail when the validator produced any
func (h *BaseHandler) BindError(c *gin.Context, err error, message string) {
	h.BadRequest(c, middleware.BindingMessage(err, message))
}

// HandleError converts service errors to HTTP responses. Integrity
// validation failures carry their full violation list; unknown error
// types are reported as an opaque internal error so storage details
// never leak to clients.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var valErr *trade.ValidationError
	if errors.As(err, &valErr) {
		details := make([]dto.ViolationDetail, 0, len(valErr.Violations))
		for _, v := range valErr.Violations {
			details = append(details, dto.ViolationDetail{
				Field:    v.Field,
				Rule:     v.Rule,
				Expected: v.Expected,
				Actual:   v.Actual,
			})
		}
		c.JSON(http.StatusUnprocessableEntity,
			dto.NewValidationErrorResponse("Order validation failed", requestID, details))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.CodeInternal, "An unexpected error occurred", requestID))
}

// listFilter converts query parameters into a storage filter
func listFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter, nil
}
