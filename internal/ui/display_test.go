package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3 * time.Second, "3s"},
		{59 * time.Second, "59s"},
		{72 * time.Second, "1m12s"},
		{10 * time.Minute, "10m0s"},
		{450 * time.Millisecond, "0s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%s) = %s, expected %s", tt.d, got, tt.want)
		}
	}
}

func TestDisplayWrites(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf)

	d.Infof("resuming run %s\n", "run-1")
	d.Successf("done\n")
	d.Errorf("failed\n")

	out := buf.String()
	for _, want := range []string{"resuming run run-1", "done", "failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryBox(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf)

	d.Summary(true, "Run run-1 complete", "Epic gw-1 with 3 phase issue(s) created")

	out := buf.String()
	if !strings.Contains(out, "Run run-1 complete") {
		t.Errorf("summary line missing:\n%s", out)
	}
	if !strings.Contains(out, "phase issue(s)") {
		t.Errorf("detail line missing:\n%s", out)
	}
}
