package core

import "testing"

func TestStageOrdering(t *testing.T) {
	stages := AllStages()
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	for i, s := range stages {
		if StageOrder(s) != i {
			t.Fatalf("stage %s has order %d, expected %d", s, StageOrder(s), i)
		}
	}
	if StageOrder("bogus") != -1 {
		t.Fatalf("unknown stage should have order -1")
	}
}

func TestNextStage(t *testing.T) {
	if NextStage(StageRefine) != StageGenerate {
		t.Fatalf("refine should advance to generate")
	}
	if NextStage(StageGenerate) != StagePredict {
		t.Fatalf("generate should advance to predict")
	}
	if NextStage(StagePredict) != "" {
		t.Fatalf("predict is the final stage")
	}
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage("generate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StageGenerate {
		t.Fatalf("expected generate, got %s", s)
	}
	if _, err := ParseStage("fold"); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
}

func TestStageStatusTerminal(t *testing.T) {
	if StageStatusIdle.Terminal() || StageStatusPending.Terminal() || StageStatusRunning.Terminal() {
		t.Fatalf("non-terminal status reported terminal")
	}
	if !StageStatusCompleted.Terminal() || !StageStatusFailed.Terminal() {
		t.Fatalf("terminal status not reported terminal")
	}
}
