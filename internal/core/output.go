package core

// StageOutput is the polymorphic result of a stage execution.
type StageOutput interface {
	// OutputStage identifies which stage produced the output.
	OutputStage() Stage
}

// RefinedText is the output of the refine stage: a single generator-ready
// prompt string distilled from the user's design idea.
type RefinedText struct {
	Text string `json:"text"`
}

func (RefinedText) OutputStage() Stage { return StageRefine }

// SequenceCandidates is the output of the generate stage.
type SequenceCandidates struct {
	Set CandidateSet `json:"set"`
}

func (SequenceCandidates) OutputStage() Stage { return StageGenerate }

// StructurePrediction is the output of the predict stage. Raw holds the
// folded structure as opaque PDB text. Relaxed is only ever set after Raw
// was fetched successfully; a relaxation failure leaves Relaxed empty,
// keeps Raw intact and marks the prediction degraded.
type StructurePrediction struct {
	Raw            string `json:"raw"`
	Relaxed        string `json:"relaxed,omitempty"`
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

func (StructurePrediction) OutputStage() Stage { return StagePredict }

// HasRelaxed reports whether a relaxed variant is available.
func (p StructurePrediction) HasRelaxed() bool {
	return p.Relaxed != ""
}

// Best returns the preferred structure variant: relaxed when requested
// and available, raw otherwise.
func (p StructurePrediction) Best(preferRelaxed bool) string {
	if preferRelaxed && p.Relaxed != "" {
		return p.Relaxed
	}
	return p.Raw
}
