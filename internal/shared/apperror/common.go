package apperror

import "net/http"

// Sentinels shared by middleware and handlers. Feature packages declare
// their own in <feature>/errors.
var (
	ErrInternal     = New(CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)
	ErrUnauthorized = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)
	ErrForbidden    = New(CodeForbidden, "You do not have permission to access this resource", http.StatusForbidden)
)
