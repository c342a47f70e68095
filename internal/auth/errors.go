package auth

import "errors"

// Code is the stable machine-readable token attached to every gateway
// rejection. The set is closed: the dispatcher switches over it exhaustively
// when shaping responses.
type Code string

const (
	CodeNoCredential      Code = "AUTH_REQUIRED"
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"
	CodeCredentialRevoked Code = "CREDENTIAL_REVOKED"
	CodeTenantRequired    Code = "TENANT_ID_REQUIRED"
	CodeTenantMismatch    Code = "TENANT_MISMATCH"
	CodeTenantNotFound    Code = "TENANT_NOT_FOUND"
	CodeTenantInactive    Code = "TENANT_INACTIVE"
	CodeInsufficientScope Code = "INSUFFICIENT_SCOPE"
	CodeRateLimited       Code = "RATE_LIMIT_EXCEEDED"
)

// Error is a gateway rejection. Matching is by identity (errors.Is against the
// sentinels below) or by extracting the Code with errors.As.
type Error struct {
	Code Code
	msg  string
}

func (e *Error) Error() string { return e.msg }

var (
	ErrNoCredential      = &Error{Code: CodeNoCredential, msg: "auth: no credential supplied"}
	ErrInvalidCredential = &Error{Code: CodeInvalidCredential, msg: "auth: credential invalid"}
	ErrCredentialRevoked = &Error{Code: CodeCredentialRevoked, msg: "auth: credential revoked"}
	ErrTenantRequired    = &Error{Code: CodeTenantRequired, msg: "auth: tenant id required"}
	ErrTenantMismatch    = &Error{Code: CodeTenantMismatch, msg: "auth: tenant mismatch"}
	ErrTenantNotFound    = &Error{Code: CodeTenantNotFound, msg: "auth: tenant not found"}
	ErrTenantInactive    = &Error{Code: CodeTenantInactive, msg: "auth: tenant inactive"}
	ErrInsufficientScope = &Error{Code: CodeInsufficientScope, msg: "auth: insufficient scope"}
	ErrRateLimited       = &Error{Code: CodeRateLimited, msg: "auth: rate limit exceeded"}
)

// ErrNotFound is returned by stores when a record is absent. Distinct from the
// rejection set above: stores report facts, the resolver decides the code.
var ErrNotFound = errors.New("auth: not found")
