package dto

import (
	"net/http"
	"strings"
)

// Error codes carried on the wire. These are the domain error codes
// verbatim; the transport layer only decides the HTTP status.
const (
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeTenantRequired      = "TENANT_REQUIRED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeConflict            = "CONFLICT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeDuplicateActor      = "DUPLICATE_ACTOR"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeInvalidState        = "INVALID_STATE"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInternal            = "INTERNAL"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
//
// The three authorization outcomes map to three distinct statuses on
// purpose: 401 tells the client to re-authenticate, 400 TENANT_REQUIRED
// tells it to pick a farm, 403 tells it the farm refused. Conflating
// them would make those client behaviors indistinguishable.
var errorCodeHTTPStatus = map[string]int{
	CodeUnauthenticated: http.StatusUnauthorized,
	CodeTenantRequired:  http.StatusBadRequest,
	CodeForbidden:       http.StatusForbidden,

	CodeNotFound:            http.StatusNotFound,
	CodeAlreadyExists:       http.StatusConflict,
	CodeConflict:            http.StatusConflict,
	CodeConcurrencyConflict: http.StatusConflict,
	CodeDuplicateActor:      http.StatusConflict,

	CodeValidationFailed: http.StatusUnprocessableEntity,
	CodeInvalidState:     http.StatusUnprocessableEntity,

	CodeInvalidInput: http.StatusBadRequest,
	CodeBadRequest:   http.StatusBadRequest,

	CodeInternal: http.StatusInternalServerError,

	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes
// not in the table fall back by prefix: INVALID_* reads as bad input,
// ALREADY_* as conflict, anything else as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	if strings.HasPrefix(code, "ALREADY_") {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
