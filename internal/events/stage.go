package events

import "github.com/universa-bio/origin/internal/core"

// Stage lifecycle event types.
const (
	TypeStagePending   = "stage.pending"
	TypeStageStarted   = "stage.started"
	TypeStageCompleted = "stage.completed"
	TypeStageDegraded  = "stage.degraded"
	TypeStageFailed    = "stage.failed"
	TypeWorkflowReset  = "workflow.reset"
)

// StageEvent reports a stage status change within a session.
type StageEvent struct {
	BaseEvent
	Stage   core.Stage `json:"stage"`
	Message string     `json:"message,omitempty"`
}

// NewStagePending creates a stage.pending event.
func NewStagePending(sessionID string, stage core.Stage) StageEvent {
	return StageEvent{BaseEvent: NewBaseEvent(TypeStagePending, sessionID), Stage: stage}
}

// NewStageStarted creates a stage.started event.
func NewStageStarted(sessionID string, stage core.Stage) StageEvent {
	return StageEvent{BaseEvent: NewBaseEvent(TypeStageStarted, sessionID), Stage: stage}
}

// NewStageCompleted creates a stage.completed event.
func NewStageCompleted(sessionID string, stage core.Stage) StageEvent {
	return StageEvent{BaseEvent: NewBaseEvent(TypeStageCompleted, sessionID), Stage: stage}
}

// NewStageDegraded creates a stage.degraded event. The stage succeeded
// but an optional sub-step (relaxation) was skipped or failed.
func NewStageDegraded(sessionID string, stage core.Stage, reason string) StageEvent {
	return StageEvent{
		BaseEvent: NewBaseEvent(TypeStageDegraded, sessionID),
		Stage:     stage,
		Message:   reason,
	}
}

// NewStageFailed creates a stage.failed event.
func NewStageFailed(sessionID string, stage core.Stage, message string) StageEvent {
	return StageEvent{
		BaseEvent: NewBaseEvent(TypeStageFailed, sessionID),
		Stage:     stage,
		Message:   message,
	}
}

// ResetEvent reports a workflow reset within a session.
type ResetEvent struct {
	BaseEvent
}

// NewWorkflowReset creates a workflow.reset event.
func NewWorkflowReset(sessionID string) ResetEvent {
	return ResetEvent{BaseEvent: NewBaseEvent(TypeWorkflowReset, sessionID)}
}
