package httputil

// Machine-readable error codes returned alongside error messages.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeMissingAuth        = "missing_auth"
	CodeTokenExpired       = "token_expired"
	CodeInvalidToken       = "invalid_token"
	CodeTokenRevoked       = "token_revoked"
	CodeStaffRequired      = "staff_required"
	CodeNotFound           = "not_found"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternalError      = "internal_error"
)
