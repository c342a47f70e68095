package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/obs"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	logger.SetFlags(0)
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = auth.ContextWithPrincipal(ctx, auth.Principal{
		Kind:     auth.KindAPIKey,
		TenantID: "acme",
		KeyID:    "key-9",
	})

	if err := LogEvent(ctx, "crm.customer.create", map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["event"] != "crm.customer.create" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["principal"] != "key:key-9" {
		t.Fatalf("unexpected principal: %v", entry["principal"])
	}
	if entry["tenant_id"] != "acme" {
		t.Fatalf("unexpected tenant: %v", entry["tenant_id"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["name"] != "Ada" {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}
