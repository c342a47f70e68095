// Package audit emits append-only JSON audit events for authorization
// decisions and write operations, enriched from request context.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/obs"
)

type requestIDContextKey struct{}

// WithRequestID attaches the request identifier to the context for audit
// logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext extracts the audit request id from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit entry enriched with request id and principal
// identity. Raw credentials never appear here.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		entry["principal"] = p.Identity()
		if p.TenantID != "" {
			entry["tenant_id"] = p.TenantID
		}
	}
	if len(fields) > 0 {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		entry["fields"] = copied
	} else {
		entry["fields"] = map[string]any{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
