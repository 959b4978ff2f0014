package netutil

import (
	"strings"
	"testing"
)

func TestDecodeResponse(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := DecodeResponse(strings.NewReader(`{"name":"v2.8.0"}`), &out); err != nil {
		t.Fatalf("DecodeResponse error: %v", err)
	}
	if out.Name != "v2.8.0" {
		t.Errorf("Name = %q, want v2.8.0", out.Name)
	}
}

func TestDecodeResponse_Invalid(t *testing.T) {
	var out map[string]any
	if err := DecodeResponse(strings.NewReader(`not json`), &out); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(strings.NewReader("  rate limited \n")); got != "rate limited" {
		t.Errorf("ErrorBody() = %q", got)
	}

	long := strings.Repeat("x", maxErrorBody*2)
	got := ErrorBody(strings.NewReader(long))
	if !strings.HasSuffix(got, "...") || len(got) != maxErrorBody+3 {
		t.Errorf("ErrorBody() length = %d, want truncated", len(got))
	}
}
