package claude

import (
	"strings"
	"testing"
)

func TestParseResponseSuccess(t *testing.T) {
	res := parseResponse([]byte(`{"type": "result", "subtype": "success", "is_error": false, "result": "{\"path\": \"r.md\"}"}`))
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Output != `{"path": "r.md"}` {
		t.Errorf("unexpected output: %s", res.Output)
	}
}

func TestParseResponseExecutionError(t *testing.T) {
	res := parseResponse([]byte(`{"type": "result", "subtype": "error_during_execution", "is_error": true, "result": "tool call rejected"}`))
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Unparseable {
		t.Error("an execution error is not an unparseable response")
	}
	if res.Error == nil || !strings.Contains(res.Error.Error(), "tool call rejected") {
		t.Errorf("error cause not surfaced: %v", res.Error)
	}
}

func TestParseResponseUnparseable(t *testing.T) {
	res := parseResponse([]byte("Execution interrupted"))
	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.Unparseable {
		t.Error("undecodable envelope must be flagged unparseable")
	}
	// The raw output is preserved for diagnosis.
	if res.Output != "Execution interrupted" {
		t.Errorf("raw output lost: %s", res.Output)
	}
}

func TestParseResponseErrorWithoutResult(t *testing.T) {
	res := parseResponse([]byte(`{"type": "result", "subtype": "error_max_turns", "is_error": true}`))
	if res.Success || res.Unparseable {
		t.Fatalf("expected plain failure, got %+v", res)
	}
	if res.Error == nil || !strings.Contains(res.Error.Error(), "error_max_turns") {
		t.Errorf("subtype not surfaced: %v", res.Error)
	}
}
