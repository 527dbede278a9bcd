package core

import "strings"

// StageInput is the data a stage consumes. Inputs validate before any
// external call is made; an invalid input blocks the trigger without
// mutating session state.
type StageInput interface {
	InputStage() Stage
	Validate() error
}

// RefineInput carries the free-text design idea for the refine stage.
type RefineInput struct {
	Prompt string
}

func (RefineInput) InputStage() Stage { return StageRefine }

// Validate checks that the prompt is non-empty.
func (in RefineInput) Validate() error {
	if strings.TrimSpace(in.Prompt) == "" {
		return ErrValidation("PROMPT_REQUIRED", "please enter a prompt first")
	}
	return nil
}

// GenerateInput carries the effective prompt and requested candidate
// count for the generate stage.
type GenerateInput struct {
	Prompt string
	Count  int
}

func (GenerateInput) InputStage() Stage { return StageGenerate }

// Validate checks the prompt and candidate count.
func (in GenerateInput) Validate() error {
	if strings.TrimSpace(in.Prompt) == "" {
		return ErrValidation("PROMPT_REQUIRED", "prompt cannot be empty")
	}
	if in.Count < 1 {
		return ErrValidation("COUNT_INVALID", "number of sequences must be at least 1")
	}
	if in.Count > MaxCandidateCount {
		return ErrValidation("COUNT_INVALID", "number of sequences exceeds the maximum")
	}
	return nil
}

// PredictInput carries the single sequence to fold.
type PredictInput struct {
	Sequence string
}

func (PredictInput) InputStage() Stage { return StagePredict }

// Validate checks that the sequence is non-empty.
func (in PredictInput) Validate() error {
	if strings.TrimSpace(in.Sequence) == "" {
		return ErrValidation("SEQUENCE_REQUIRED", "sequence cannot be empty")
	}
	return nil
}

// MaxCandidateCount caps how many sequences one generate call may request.
const MaxCandidateCount = 100
