package core

import "sync"

// ResultStore holds the latest output of each pipeline stage, keyed by
// stage. Set is atomic from the caller's perspective: a reader never
// observes a half-written candidate set or structure prediction. There
// is no implicit coupling between stages' stored outputs; the workflow
// controller alone decides how one stage's output feeds the next.
type ResultStore struct {
	mu      sync.RWMutex
	outputs map[Stage]StageOutput
}

// NewResultStore creates an empty result store.
func NewResultStore() *ResultStore {
	return &ResultStore{outputs: make(map[Stage]StageOutput)}
}

// Get returns the stored output for a stage, if any.
func (s *ResultStore) Get(stage Stage) (StageOutput, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.outputs[stage]
	return out, ok
}

// Set stores the output for a stage, replacing any previous value.
func (s *ResultStore) Set(stage Stage, out StageOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[stage] = out
}

// Clear removes the stored output for a stage.
func (s *ResultStore) Clear(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.outputs, stage)
}

// ClearAll removes all stored outputs.
func (s *ResultStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = make(map[Stage]StageOutput)
}

// RefinedText returns the refine stage output, if present.
func (s *ResultStore) RefinedText() (RefinedText, bool) {
	out, ok := s.Get(StageRefine)
	if !ok {
		return RefinedText{}, false
	}
	rt, ok := out.(RefinedText)
	return rt, ok
}

// Candidates returns the generate stage output, if present.
func (s *ResultStore) Candidates() (SequenceCandidates, bool) {
	out, ok := s.Get(StageGenerate)
	if !ok {
		return SequenceCandidates{}, false
	}
	sc, ok := out.(SequenceCandidates)
	return sc, ok
}

// Prediction returns the predict stage output, if present.
func (s *ResultStore) Prediction() (StructurePrediction, bool) {
	out, ok := s.Get(StagePredict)
	if !ok {
		return StructurePrediction{}, false
	}
	sp, ok := out.(StructurePrediction)
	return sp, ok
}
