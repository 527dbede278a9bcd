package workflow

import (
	"context"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

// Refiner runs the prompt refinement stage.
type Refiner struct {
	generator core.TextGenerator
	logger    *logging.Logger
}

// NewRefiner creates a new refiner.
func NewRefiner(generator core.TextGenerator, logger *logging.Logger) *Refiner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Refiner{generator: generator, logger: logger.WithStage(core.StageRefine.String())}
}

// Stage implements Executor.
func (r *Refiner) Stage() core.Stage { return core.StageRefine }

// Execute sends the design idea to the text-generation collaborator
// and returns the refined prompt.
func (r *Refiner) Execute(ctx context.Context, in core.StageInput, _ core.Settings) (core.StageOutput, error) {
	input, ok := in.(core.RefineInput)
	if !ok {
		return nil, core.ErrInternal("refine executor received wrong input type")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	r.logger.Info("refining prompt", "prompt_length", len(input.Prompt))

	refined, err := r.generator.Refine(ctx, []string{input.Prompt})
	if err != nil {
		r.logger.Warn("prompt refinement failed", "error", err)
		return nil, err
	}

	r.logger.Info("prompt refined",
		"original_length", len(input.Prompt),
		"refined_length", len(refined),
	)
	return core.RefinedText{Text: refined}, nil
}
