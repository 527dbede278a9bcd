package core

import "context"

// TextGenerator is the port for the prompt-refinement collaborator.
// Implementations send the user's messages plus a fixed system
// instruction to an LLM and return the single refined prompt string.
// Streaming transports must accumulate the complete reply before
// returning; partial chunks are not independently meaningful.
type TextGenerator interface {
	Refine(ctx context.Context, userMessages []string) (string, error)
}

// SequenceDesigner is the port for the sequence-generation collaborator.
// Implementations return parsed candidates in arrival order; the caller
// applies the canonical score ordering.
type SequenceDesigner interface {
	Design(ctx context.Context, prompt string, count int) ([]Candidate, error)
}

// Folder is the port for the structure-folding collaborator. The
// returned structure is opaque PDB text.
type Folder interface {
	Fold(ctx context.Context, sequence string) (string, error)
}

// Relaxer is the port for the optional relaxation collaborator.
// Available reports whether the collaborator is installed; absence is a
// recoverable condition, never fatal to the predict stage.
type Relaxer interface {
	Available() bool
	Relax(ctx context.Context, pdb string, settings RelaxSettings) (string, error)
}
