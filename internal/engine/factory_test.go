package engine

import (
	"context"
	"testing"
)

type stubEngine struct{ name string }

func (s *stubEngine) Name() string                                 { return s.name }
func (s *stubEngine) Invoke(ctx context.Context, pr string) Result { return Result{Success: true} }

func TestRegisterAndNew(t *testing.T) {
	RegisterEngine("stub", func() Engine { return &stubEngine{name: "stub"} })

	eng, err := New("stub")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if eng.Name() != "stub" {
		t.Errorf("unexpected engine: %s", eng.Name())
	}

	// Lookup is case-insensitive.
	if _, err := New("STUB"); err != nil {
		t.Errorf("case-insensitive lookup failed: %v", err)
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("nonexistent"); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
}
