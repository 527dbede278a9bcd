package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

func TestGeneratorRejectsZeroCount(t *testing.T) {
	des := &fakeDesigner{candidates: []core.Candidate{{Sequence: "MKVA", Score: 0.9}}}
	gen := NewGenerator(des, logging.NewNop())

	_, err := gen.Execute(context.Background(), core.GenerateInput{Prompt: "a binder", Count: 0}, core.DefaultSettings())
	if err == nil {
		t.Fatal("expected validation error for zero count")
	}
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr.Category != core.ErrCatValidation {
		t.Fatalf("expected validation category, got %v", err)
	}
	if des.calls != 0 {
		t.Fatalf("designer called %d times for invalid input", des.calls)
	}
}

func TestGeneratorRejectsCountAboveMaximum(t *testing.T) {
	des := &fakeDesigner{}
	gen := NewGenerator(des, logging.NewNop())

	_, err := gen.Execute(context.Background(), core.GenerateInput{Prompt: "a binder", Count: core.MaxCandidateCount + 1}, core.DefaultSettings())
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr.Category != core.ErrCatValidation {
		t.Fatalf("expected validation category, got %v", err)
	}
	if des.calls != 0 {
		t.Fatalf("designer called %d times for invalid input", des.calls)
	}
}
