// Package workflow implements the pipeline state machine: stage
// executors wrapping each collaborator, the controller that drains
// pending triggers in stage order, and the session lifecycle manager.
package workflow

import (
	"context"

	"github.com/universa-bio/origin/internal/core"
)

// Executor runs one pipeline stage behind a uniform contract. Every
// failure path resolves to a typed *core.DomainError; executors never
// panic and never write to the result store themselves.
type Executor interface {
	// Stage identifies which stage this executor runs.
	Stage() core.Stage

	// Execute consumes a validated input and the session settings and
	// produces the stage output.
	Execute(ctx context.Context, in core.StageInput, settings core.Settings) (core.StageOutput, error)
}
