package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"erpgate.dev/internal/audit"
	"erpgate.dev/internal/auth"
)

// Error tokens outside the auth rejection set.
const (
	tokenNotFound       = "NOT_FOUND"
	tokenItemNotFound   = "ITEM_NOT_FOUND"
	tokenInvalidPayload = "INVALID_PAYLOAD"
	tokenInternal       = "INTERNAL"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type dataBody struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData wraps a successful payload in the data envelope.
func writeData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, dataBody{Data: v})
}

// writeErrorToken emits the failure envelope. The token is the only detail a
// caller ever sees; everything else stays in the logs.
func writeErrorToken(w http.ResponseWriter, r *http.Request, code int, token string) {
	writeJSON(w, code, errorBody{
		Error:     token,
		RequestID: audit.RequestIDFromContext(r.Context()),
	})
}

// statusForCode maps every auth rejection to its transport status. The switch
// is exhaustive over the closed code set; an unknown code would indicate a
// new variant that this mapping must learn about, so it maps to 500.
func statusForCode(code auth.Code) int {
	switch code {
	case auth.CodeNoCredential, auth.CodeInvalidCredential, auth.CodeCredentialRevoked:
		return http.StatusUnauthorized
	case auth.CodeTenantRequired:
		return http.StatusBadRequest
	case auth.CodeTenantMismatch, auth.CodeTenantInactive, auth.CodeInsufficientScope:
		return http.StatusForbidden
	case auth.CodeTenantNotFound:
		return http.StatusNotFound
	case auth.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// reject terminates the request with the envelope for err. Auth rejections
// keep their token; anything else is an opaque INTERNAL.
func reject(w http.ResponseWriter, r *http.Request, err error) {
	var ge *auth.Error
	if errors.As(err, &ge) {
		writeErrorToken(w, r, statusForCode(ge.Code), string(ge.Code))
		return
	}
	writeErrorToken(w, r, http.StatusInternalServerError, tokenInternal)
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	// Unknown fields are ignored; clients ship extra metadata freely.
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}
