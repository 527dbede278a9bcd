package workflow

import (
	"context"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

// Predictor runs the structure prediction stage: fold the selected
// sequence, then best-effort relaxation.
type Predictor struct {
	folder  core.Folder
	relaxer core.Relaxer
	logger  *logging.Logger
}

// NewPredictor creates a new predictor. The relaxer may be nil when no
// relaxation collaborator is configured.
func NewPredictor(folder core.Folder, relaxer core.Relaxer, logger *logging.Logger) *Predictor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Predictor{folder: folder, relaxer: relaxer, logger: logger.WithStage(core.StagePredict.String())}
}

// Stage implements Executor.
func (p *Predictor) Stage() core.Stage { return core.StagePredict }

// Execute folds the sequence and relaxes the result. A folding failure
// fails the stage: no structure is stored and relaxation is never
// attempted. A relaxation failure degrades gracefully: the raw
// structure is kept, the prediction is marked degraded, and the stage
// still succeeds.
func (p *Predictor) Execute(ctx context.Context, in core.StageInput, settings core.Settings) (core.StageOutput, error) {
	input, ok := in.(core.PredictInput)
	if !ok {
		return nil, core.ErrInternal("predict executor received wrong input type")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p.logger.Info("fetching structure", "sequence_length", len(input.Sequence))

	raw, err := p.folder.Fold(ctx, input.Sequence)
	if err != nil {
		p.logger.Warn("structure prediction failed", "error", err)
		return nil, err
	}

	prediction := core.StructurePrediction{Raw: raw}

	if p.relaxer == nil {
		prediction.Degraded = true
		prediction.DegradedReason = "no relaxation collaborator configured"
		return prediction, nil
	}

	relaxed, relaxErr := p.relaxer.Relax(ctx, raw, settings.Relax)
	if relaxErr != nil {
		prediction.Degraded = true
		prediction.DegradedReason = core.UserMessage(relaxErr)
		p.logger.Warn("relaxation skipped, keeping raw structure", "reason", prediction.DegradedReason)
		return prediction, nil
	}

	prediction.Relaxed = relaxed
	p.logger.Info("structure relaxed", "raw_bytes", len(raw), "relaxed_bytes", len(relaxed))
	return prediction, nil
}
