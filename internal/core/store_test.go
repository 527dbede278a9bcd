package core

import (
	"sync"
	"testing"
)

func TestResultStore_SetGetClear(t *testing.T) {
	store := NewResultStore()

	if _, ok := store.Get(StageRefine); ok {
		t.Fatalf("empty store should have no refine output")
	}

	store.Set(StageRefine, RefinedText{Text: "a detailed prompt"})
	rt, ok := store.RefinedText()
	if !ok || rt.Text != "a detailed prompt" {
		t.Fatalf("unexpected refine output: %+v %v", rt, ok)
	}

	store.Clear(StageRefine)
	if _, ok := store.RefinedText(); ok {
		t.Fatalf("refine output should be cleared")
	}
}

func TestResultStore_ReplaceIsWholesale(t *testing.T) {
	store := NewResultStore()
	store.Set(StageGenerate, SequenceCandidates{Set: NewCandidateSet([]Candidate{
		{ID: 1, Score: 0.9, Sequence: "MAA"},
		{ID: 2, Score: 0.8, Sequence: "MBB"},
	})})
	store.Set(StageGenerate, SequenceCandidates{Set: NewCandidateSet([]Candidate{
		{ID: 3, Score: 0.7, Sequence: "MCC"},
	})})

	sc, ok := store.Candidates()
	if !ok || sc.Set.Len() != 1 || sc.Set.Candidates[0].ID != 3 {
		t.Fatalf("regeneration must replace the whole set, got %+v", sc)
	}
}

func TestResultStore_ClearAll(t *testing.T) {
	store := NewResultStore()
	store.Set(StageRefine, RefinedText{Text: "x"})
	store.Set(StagePredict, StructurePrediction{Raw: "ATOM"})
	store.ClearAll()
	for _, s := range AllStages() {
		if _, ok := store.Get(s); ok {
			t.Fatalf("stage %s output survived ClearAll", s)
		}
	}
}

func TestResultStore_ConcurrentReaders(t *testing.T) {
	store := NewResultStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Set(StagePredict, StructurePrediction{Raw: "ATOM"})
				if p, ok := store.Prediction(); ok && p.Raw == "" {
					t.Errorf("observed half-written prediction")
					return
				}
			}
		}()
	}
	wg.Wait()
}
