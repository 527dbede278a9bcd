package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/events"
	"github.com/universa-bio/origin/internal/logging"
)

// StageReport summarizes one executor invocation performed by a drain
// pass. Error carries the user-facing message for a failed stage.
type StageReport struct {
	Stage    core.Stage       `json:"stage"`
	Status   core.StageStatus `json:"status"`
	Error    string           `json:"error,omitempty"`
	Degraded bool             `json:"degraded,omitempty"`
}

// Controller owns one session's stage state machine. A trigger marks a
// stage pending; Drain consumes pending flags in fixed stage order,
// executes each stage exactly once per mark, and decides after each
// success whether the auto-chain advances. All methods are safe for
// concurrent use, but stages never execute concurrently within one
// session: Drain holds the run lock for the entire pass.
type Controller struct {
	session   *core.Session
	store     *core.ResultStore
	triggers  *core.TriggerSet
	executors map[core.Stage]Executor
	bus       *events.Bus
	logger    *logging.Logger

	mu        sync.Mutex
	runMu     sync.Mutex
	status    map[core.Stage]core.StageStatus
	lastError map[core.Stage]string
}

// NewController creates a controller for a session.
func NewController(session *core.Session, store *core.ResultStore, executors []Executor, bus *events.Bus, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	byStage := make(map[core.Stage]Executor, len(executors))
	for _, e := range executors {
		byStage[e.Stage()] = e
	}
	status := make(map[core.Stage]core.StageStatus, len(core.AllStages()))
	for _, s := range core.AllStages() {
		status[s] = core.StageStatusIdle
	}
	return &Controller{
		session:   session,
		store:     store,
		triggers:  core.NewTriggerSet(),
		executors: byStage,
		bus:       bus,
		logger:    logger.WithSession(session.ID),
		status:    status,
		lastError: make(map[core.Stage]string),
	}
}

// Session returns the controller's session. For single-goroutine
// wiring only (tests, CLI setup before a drain); concurrent callers
// use SessionSnapshot and the mutating methods below.
func (c *Controller) Session() *core.Session { return c.session }

// SessionSnapshot returns a copy of the session that is safe to read
// while a drain runs. The stage-selection map is copied so the caller
// never aliases live state.
func (c *Controller) SessionSnapshot() core.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := *c.session
	snap.SelectedStages = make(map[core.Stage]bool, len(c.session.SelectedStages))
	for stage, selected := range c.session.SelectedStages {
		snap.SelectedStages[stage] = selected
	}
	return snap
}

// SelectStage adds or removes a stage from the workspace.
func (c *Controller) SelectStage(stage core.Stage, selected bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.SelectStage(stage, selected)
}

// StageSelected reports whether a stage is part of the workspace.
func (c *Controller) StageSelected(stage core.Stage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.StageSelected(stage)
}

// SetAutoMode switches the auto-chain on or off.
func (c *Controller) SetAutoMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.AutoMode = on
}

// UpdateSettings replaces the session settings after validation.
func (c *Controller) UpdateSettings(settings core.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.UpdateSettings(settings)
}

// SetPrompt records the user's design idea.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.SetPrompt(prompt)
}

// SelectSequence overrides the sequence the predict stage consumes.
func (c *Controller) SelectSequence(sequence string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.SelectSequence(sequence)
}

// DisplaySettings returns the session's display settings.
func (c *Controller) DisplaySettings() core.DisplaySettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Settings.Display
}

// Store returns the controller's result store.
func (c *Controller) Store() *core.ResultStore { return c.store }

// Status returns the current status of a stage.
func (c *Controller) Status(stage core.Stage) core.StageStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status[stage]
}

// LastError returns the user-facing message of the stage's last
// failure, empty if the last invocation succeeded.
func (c *Controller) LastError(stage core.Stage) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError[stage]
}

// Trigger marks a stage pending after validating its input. An invalid
// input blocks the trigger without mutating any state. A failed stage
// re-enters pending through a fresh call here.
func (c *Controller) Trigger(stage core.Stage) error {
	if _, ok := c.executors[stage]; !ok {
		return core.ErrValidation("STAGE_INVALID", "unknown stage: "+stage.String())
	}
	if err := c.inputFor(stage).Validate(); err != nil {
		return err
	}
	c.markPending(stage)
	return nil
}

// Drain consumes pending triggers in fixed stage order until none
// remain, executing each stage and advancing the auto-chain on
// success. Pending flags produced mid-pass (by the auto-chain) are
// honored within the same pass. Returns one report per invocation.
func (c *Controller) Drain(ctx context.Context) []StageReport {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	var reports []StageReport
	for {
		stage, ok := c.triggers.Take()
		if !ok {
			break
		}
		// The pending flag is already cleared: even if execution
		// schedules further triggers, this mark fires exactly once.
		reports = append(reports, c.runStage(ctx, stage))
	}
	return reports
}

// TriggerAndDrain is the manual-button path: validate, mark, drain.
func (c *Controller) TriggerAndDrain(ctx context.Context, stage core.Stage) ([]StageReport, error) {
	if err := c.Trigger(stage); err != nil {
		return nil, err
	}
	return c.Drain(ctx), nil
}

// Reset forces all stages to idle, clears pending triggers, stage
// outputs and workflow inputs. SelectedStages, AutoMode and Settings
// are untouched.
func (c *Controller) Reset() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.triggers.ClearAll()
	c.store.ClearAll()

	c.mu.Lock()
	c.session.ResetWorkflowData()
	for _, s := range core.AllStages() {
		c.status[s] = core.StageStatusIdle
	}
	c.lastError = make(map[core.Stage]string)
	c.mu.Unlock()

	c.publish(events.NewWorkflowReset(c.session.ID))
	c.logger.Info("workflow reset")
}

func (c *Controller) runStage(ctx context.Context, stage core.Stage) StageReport {
	c.setStatus(stage, core.StageStatusRunning)
	c.publish(events.NewStageStarted(c.session.ID, stage))

	input := c.inputFor(stage)
	c.mu.Lock()
	settings := c.session.Settings
	c.mu.Unlock()
	output, err := c.executors[stage].Execute(ctx, input, settings)
	if err != nil && !isEmptyResult(err) {
		// A generate failure still stores the (empty) set the executor
		// returned, so readers see "no results" rather than stale data.
		if output != nil {
			c.store.Set(stage, output)
		}
		msg := core.UserMessage(err)
		c.setFailure(stage, msg)
		c.publish(events.NewStageFailed(c.session.ID, stage, msg))
		c.logger.Warn("stage failed", "stage", stage, "error", err)
		return StageReport{Stage: stage, Status: core.StageStatusFailed, Error: msg}
	}

	c.store.Set(stage, output)
	c.setStatus(stage, core.StageStatusCompleted)
	c.publish(events.NewStageCompleted(c.session.ID, stage))

	report := StageReport{Stage: stage, Status: core.StageStatusCompleted}
	if p, ok := output.(core.StructurePrediction); ok && p.Degraded {
		report.Degraded = true
		c.publish(events.NewStageDegraded(c.session.ID, stage, p.DegradedReason))
	}

	c.afterSuccess(stage, output)
	return report
}

// afterSuccess applies post-completion effects and the auto-chain
// rule: the next stage goes pending iff auto mode is on and the next
// stage is selected. An empty candidate set blocks the advance so
// predict never runs with a stale or empty sequence.
func (c *Controller) afterSuccess(stage core.Stage, output core.StageOutput) {
	c.mu.Lock()
	if sc, ok := output.(core.SequenceCandidates); ok {
		if top, ok := sc.Set.Top(); ok {
			c.session.SelectedSequence = top.Sequence
		}
	}
	next := core.NextStage(stage)
	advance := next != "" &&
		c.session.AutoMode && c.session.StageSelected(next) &&
		c.advanceAllowed(output)
	c.mu.Unlock()

	if advance {
		c.markPending(next)
	}
}

func (c *Controller) advanceAllowed(output core.StageOutput) bool {
	if sc, ok := output.(core.SequenceCandidates); ok && sc.Set.Empty() {
		c.logger.Info("empty candidate set blocks auto-advance")
		return false
	}
	return true
}

// inputFor derives a stage's input from the session and store. The
// generate stage uses the refined prompt when one exists, the raw
// prompt otherwise.
func (c *Controller) inputFor(stage core.Stage) core.StageInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch stage {
	case core.StageRefine:
		return core.RefineInput{Prompt: c.session.Prompt}
	case core.StageGenerate:
		return core.GenerateInput{
			Prompt: c.effectivePrompt(),
			Count:  c.session.Settings.Generate.NumSequences,
		}
	case core.StagePredict:
		return core.PredictInput{Sequence: c.session.SelectedSequence}
	default:
		return core.RefineInput{}
	}
}

// effectivePrompt returns the refined prompt if present, the raw
// prompt otherwise. Called with c.mu held.
func (c *Controller) effectivePrompt() string {
	if rt, ok := c.store.RefinedText(); ok && rt.Text != "" {
		return rt.Text
	}
	return c.session.Prompt
}

func (c *Controller) markPending(stage core.Stage) {
	c.triggers.Mark(stage)
	c.setStatus(stage, core.StageStatusPending)
	c.publish(events.NewStagePending(c.session.ID, stage))
}

func (c *Controller) setStatus(stage core.Stage, status core.StageStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[stage] = status
	if status != core.StageStatusFailed {
		delete(c.lastError, stage)
	}
}

func (c *Controller) setFailure(stage core.Stage, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[stage] = core.StageStatusFailed
	c.lastError[stage] = msg
}

func (c *Controller) publish(ev events.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

// isEmptyResult distinguishes "the generator parsed zero rows" from a
// transport failure. An empty result completes the stage with an empty
// set; it only blocks the auto-advance.
func isEmptyResult(err error) bool {
	var domErr *core.DomainError
	return errors.As(err, &domErr) && domErr.Category == core.ErrCatEmptyResult
}
