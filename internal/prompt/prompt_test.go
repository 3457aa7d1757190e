package prompt

import (
	"strings"
	"testing"
)

func TestResearch(t *testing.T) {
	p := Research("offline sync layer", "")
	if !strings.Contains(p, "offline sync layer") {
		t.Error("topic missing from prompt")
	}
	if !strings.Contains(p, `{"path":`) {
		t.Error("response envelope instruction missing")
	}
	if strings.Contains(p, "Additional Context") {
		t.Error("empty context should not add a section")
	}

	p = Research("offline sync layer", "target: mobile clients")
	if !strings.Contains(p, "Additional Context") || !strings.Contains(p, "mobile clients") {
		t.Error("additional context not included")
	}
}

func TestPlanning(t *testing.T) {
	p := Planning(".groundwork/research/sync.md", "")
	if !strings.Contains(p, ".groundwork/research/sync.md") {
		t.Error("research path missing from prompt")
	}
	if !strings.Contains(p, `{"path":`) {
		t.Error("response envelope instruction missing")
	}
}

func TestDecompose(t *testing.T) {
	p := Decompose("plans/plan.md", ".groundwork/phases")
	if !strings.Contains(p, "plans/plan.md") {
		t.Error("plan path missing from prompt")
	}
	if !strings.Contains(p, ".groundwork/phases") {
		t.Error("phases directory missing from prompt")
	}
	if !strings.Contains(p, `{"phase_files":`) {
		t.Error("response envelope instruction missing")
	}
}
