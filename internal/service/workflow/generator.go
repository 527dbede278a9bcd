package workflow

import (
	"context"
	"errors"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

// Generator runs the sequence generation stage.
type Generator struct {
	designer core.SequenceDesigner
	logger   *logging.Logger
}

// NewGenerator creates a new generator.
func NewGenerator(designer core.SequenceDesigner, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{designer: designer, logger: logger.WithStage(core.StageGenerate.String())}
}

// Stage implements Executor.
func (g *Generator) Stage() core.Stage { return core.StageGenerate }

// Execute requests candidates from the sequence-design collaborator.
// Input validation happens before any external call: a zero count never
// reaches the wire. Failures return an empty candidate set alongside
// the error so the caller can store "no results" instead of leaving a
// stale set behind.
func (g *Generator) Execute(ctx context.Context, in core.StageInput, settings core.Settings) (core.StageOutput, error) {
	input, ok := in.(core.GenerateInput)
	if !ok {
		return nil, core.ErrInternal("generate executor received wrong input type")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	g.logger.Info("generating sequences", "count", input.Count, "prompt_length", len(input.Prompt))

	rows, err := g.designer.Design(ctx, input.Prompt, input.Count)
	if err != nil {
		var domErr *core.DomainError
		if errors.As(err, &domErr) {
			g.logger.Warn("sequence generation failed", "category", domErr.Category, "error", err)
		} else {
			g.logger.Warn("sequence generation failed", "error", err)
		}
		return core.SequenceCandidates{Set: core.NewCandidateSet(nil)}, err
	}

	set := core.NewCandidateSet(rows)
	if top, ok := set.Top(); ok {
		g.logger.Info("sequences generated", "count", set.Len(), "top_score", top.Score)
	}
	return core.SequenceCandidates{Set: set}, nil
}
