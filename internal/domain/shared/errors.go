package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors.
//
// Authorization failures come in three distinct kinds so that clients can
// behave differently: re-authenticate (UNAUTHENTICATED), pick a farm
// (TENANT_REQUIRED), or show access-denied (FORBIDDEN). A cross-tenant
// lookup deliberately reports NOT_FOUND, never FORBIDDEN, so callers cannot
// probe which farms a record exists in.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConflict            = NewDomainError("CONFLICT", "Resource state conflict, retry with fresh data")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthenticated     = NewDomainError("UNAUTHENTICATED", "Authentication required")
	ErrTenantRequired      = NewDomainError("TENANT_REQUIRED", "Farm identification required")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrDuplicateActor      = NewDomainError("DUPLICATE_ACTOR", "A party with this contact already holds a conflicting role in this farm")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInternal            = NewDomainError("INTERNAL", "Internal error")
)
