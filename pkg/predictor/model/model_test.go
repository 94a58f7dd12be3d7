package model

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

func TestFrequencyVoteWeightedBySimilarity(t *testing.T) {
	state := &FrequencyState{}
	query := map[string]any{"device": "linux", "timeOfDay": "morning"}

	// two examples matching the query exactly, one sharing no values
	state.Train(map[string]any{"device": "linux", "timeOfDay": "morning"}, "X")
	state.Train(map[string]any{"device": "linux", "timeOfDay": "morning"}, "X")
	state.Train(map[string]any{"device": "ios", "timeOfDay": "night"}, "Y")

	prediction, ok := state.Predict(query)
	if !ok {
		t.Fatalf("expected a prediction")
	}
	if prediction.Value != "X" {
		t.Fatalf("got %q, want X", prediction.Value)
	}
	if prediction.Confidence != 1 {
		t.Fatalf("both votes went to X, confidence should be 1, got %v", prediction.Confidence)
	}
}

func TestFrequencyVoteBelowThresholdReturnsNothing(t *testing.T) {
	state := &FrequencyState{}
	state.Train(map[string]any{"device": "ios", "timeOfDay": "night"}, "Y")

	if _, ok := state.Predict(map[string]any{"device": "linux", "timeOfDay": "morning"}); ok {
		t.Fatalf("no example clears the 0.7 threshold, expected no prediction")
	}
}

func TestContextSimilarity(t *testing.T) {
	a := map[string]any{"x": 1, "y": "b", "z": true}
	b := map[string]any{"x": 1, "y": "c", "w": 0}
	// shared keys x,y; only x matches
	if got := ContextSimilarity(a, b); got != 0.5 {
		t.Fatalf("similarity: got %v, want 0.5", got)
	}
	if got := ContextSimilarity(a, map[string]any{"q": 1}); got != 0 {
		t.Fatalf("disjoint contexts must score 0, got %v", got)
	}
}

func TestLinearScoreDotProduct(t *testing.T) {
	state := &LinearState{}
	state.Train(nil, "ignored")

	// numeric values sorted by key: a=2, b=4 → 2*0.5 + 4*0.3 = 2.2
	prediction, ok := state.Predict(map[string]any{"b": 4.0, "a": 2.0, "label": "text"})
	if !ok {
		t.Fatalf("expected a prediction")
	}
	if prediction.Value != "2.2" {
		t.Fatalf("got %q, want 2.2", prediction.Value)
	}
}

func TestLinearScoreUntrainedReturnsNothing(t *testing.T) {
	state := &LinearState{}
	if _, ok := state.Predict(map[string]any{"a": 1.0}); ok {
		t.Fatalf("untrained linear model must not predict")
	}
}

func TestMarkovMostFrequentSuccessor(t *testing.T) {
	state := NewMarkovState()
	for _, label := range []string{"go north", "go south", "go north"} {
		state.Train(label)
	}

	prediction, ok := state.Predict("go", nil)
	if !ok {
		t.Fatalf("expected a prediction")
	}
	if prediction.Value != "north" {
		t.Fatalf("got %q, want north (2 occurrences beats 1)", prediction.Value)
	}
	if len(prediction.Alternatives) != 1 || prediction.Alternatives[0] != "south" {
		t.Fatalf("alternatives: %v", prediction.Alternatives)
	}
}

func TestMarkovUnknownSourceReturnsNothing(t *testing.T) {
	state := NewMarkovState()
	state.Train("go north")

	if _, ok := state.Predict("teleport", nil); ok {
		t.Fatalf("unseen transition source must yield nothing")
	}
}

func TestMarkovStarterIsUniformOverDistinctStarters(t *testing.T) {
	state := NewMarkovState()
	// "go" appears twice as a starter but competes evenly with "walk"
	for _, label := range []string{"go north", "go south", "walk east"} {
		state.Train(label)
	}

	seen := make(map[string]bool)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 64; i++ {
		prediction, ok := state.Predict("", rng)
		if !ok {
			t.Fatalf("expected a starter pick")
		}
		seen[prediction.Value] = true
		if prediction.Confidence != 0.5 {
			t.Fatalf("uniform over 2 distinct starters, confidence should be 0.5, got %v",
				prediction.Confidence)
		}
	}
	if !seen["go"] || !seen["walk"] {
		t.Fatalf("both starters should appear over 64 draws, saw %v", seen)
	}
}

func TestNearestNeighborTopOne(t *testing.T) {
	state := &NearestState{}
	state.Train(map[string]any{"hour": 9.0, "filled": 2.0}, "morning-value")
	state.Train(map[string]any{"hour": 22.0, "filled": 5.0}, "night-value")

	prediction, ok := state.Predict(map[string]any{"hour": 10.0, "filled": 2.0}, 3)
	if !ok {
		t.Fatalf("expected a prediction")
	}
	if prediction.Value != "morning-value" {
		t.Fatalf("got %q, want morning-value", prediction.Value)
	}
	if len(prediction.Alternatives) != 1 || prediction.Alternatives[0] != "night-value" {
		t.Fatalf("alternatives: %v", prediction.Alternatives)
	}
}

func TestNearestNeighborMissingKeysTreatedAsZero(t *testing.T) {
	state := &NearestState{}
	state.Train(map[string]any{"a": 3.0}, "far")
	state.Train(map[string]any{}, "near")

	prediction, ok := state.Predict(map[string]any{"b": 0.0}, 1)
	if !ok {
		t.Fatalf("expected a prediction")
	}
	if prediction.Value != "near" {
		t.Fatalf("empty example is distance 0 from an all-zero query, got %q", prediction.Value)
	}
}

func TestKindForField(t *testing.T) {
	cases := map[form.FieldKind]Kind{
		form.FieldKindSelect:  KindFrequencyVote,
		form.FieldKindEmail:   KindFrequencyVote,
		form.FieldKindNumber:  KindLinearScore,
		form.FieldKindText:    KindMarkovChain,
		form.FieldKindGeneric: KindNearestNeighbor,
	}
	for fieldKind, want := range cases {
		if got := KindForField(fieldKind); got != want {
			t.Fatalf("%q: got %q, want %q", fieldKind, got, want)
		}
	}
}

func TestModelStateRoundTripsThroughJSON(t *testing.T) {
	m := New(KindMarkovChain)
	m.Train(nil, "go north")
	m.Train(nil, "go south")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Model
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	prediction, ok := restored.Predict(nil, "go", nil)
	if !ok || prediction.Value != "north" {
		t.Fatalf("restored model should predict north, got %v ok=%v", prediction, ok)
	}
}
