package core

import "fmt"

// Stage represents one unit of the protein design pipeline.
type Stage string

const (
	// StageRefine is the first stage where the user's design idea is
	// rewritten by an LLM into a detailed generator prompt.
	StageRefine Stage = "refine"

	// StageGenerate is the second stage where candidate protein
	// sequences are produced from the effective prompt.
	StageGenerate Stage = "generate"

	// StagePredict is the final stage where the selected sequence is
	// folded into a 3D structure and optionally relaxed.
	StagePredict Stage = "predict"
)

// AllStages returns all stages in execution order.
// The ordering Refine < Generate < Predict is an invariant of the
// auto-chain: triggers are always drained in this order.
func AllStages() []Stage {
	return []Stage{StageRefine, StageGenerate, StagePredict}
}

// StageOrder returns the numeric order of a stage (0-indexed),
// or -1 for an unknown stage.
func StageOrder(s Stage) int {
	switch s {
	case StageRefine:
		return 0
	case StageGenerate:
		return 1
	case StagePredict:
		return 2
	default:
		return -1
	}
}

// NextStage returns the stage following the given stage.
// Returns empty string if the stage is the last one.
func NextStage(s Stage) Stage {
	switch s {
	case StageRefine:
		return StageGenerate
	case StageGenerate:
		return StagePredict
	default:
		return ""
	}
}

// ValidStage checks if a stage value is one of the known stages.
func ValidStage(s Stage) bool {
	return StageOrder(s) >= 0
}

// ParseStage converts a string to a Stage with validation.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if !ValidStage(st) {
		return "", ErrValidation("STAGE_INVALID", fmt.Sprintf("invalid stage: %s", s))
	}
	return st, nil
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Description returns a human-readable description of the stage.
func (s Stage) Description() string {
	switch s {
	case StageRefine:
		return "Refine the design idea into a detailed generator prompt"
	case StageGenerate:
		return "Generate scored candidate protein sequences"
	case StagePredict:
		return "Predict and relax the 3D structure of the selected sequence"
	default:
		return "Unknown stage"
	}
}

// StageStatus represents the execution state of a single stage.
type StageStatus string

const (
	StageStatusIdle      StageStatus = "idle"
	StageStatusPending   StageStatus = "pending"
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// Terminal returns true if the status ends an invocation. A failed
// stage may still be retried by a fresh manual trigger.
func (s StageStatus) Terminal() bool {
	return s == StageStatusCompleted || s == StageStatusFailed
}
