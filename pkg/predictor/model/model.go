// Package model implements the per-field predictive models as a tagged
// variant: frequency voting for categorical fields, a linear scorer for
// numeric fields, a first-order Markov text predictor for free text, and a
// nearest-neighbor fallback for everything else. Each variant holds only the
// plain serializable state its own predict needs, and dispatch runs through
// a pure function per variant so state round-trips through JSON untouched.
package model

import (
	"math/rand"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

// Kind tags the model variant serving a field.
type Kind string

const (
	KindFrequencyVote   Kind = "frequency-vote"
	KindLinearScore     Kind = "linear-score"
	KindMarkovChain     Kind = "markov-chain"
	KindNearestNeighbor Kind = "nearest-neighbor"
)

// Example is one stored training observation: the feature context it was
// seen in and the label the user chose.
type Example struct {
	Context map[string]any `json:"context"`
	Label   string         `json:"label"`
}

// Prediction is a single ranked model answer.
type Prediction struct {
	Value        string   `json:"value"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// Model is the tagged variant. Exactly one state pointer matching Kind is
// non-nil; a Model is owned by the single field it serves and never shared.
type Model struct {
	Kind      Kind            `json:"kind"`
	Frequency *FrequencyState `json:"frequency,omitempty"`
	Linear    *LinearState    `json:"linear,omitempty"`
	Markov    *MarkovState    `json:"markov,omitempty"`
	Nearest   *NearestState   `json:"nearest,omitempty"`
}

// New creates an empty model of the given kind.
func New(kind Kind) *Model {
	m := &Model{Kind: kind}
	switch kind {
	case KindFrequencyVote:
		m.Frequency = &FrequencyState{}
	case KindLinearScore:
		m.Linear = &LinearState{}
	case KindMarkovChain:
		m.Markov = NewMarkovState()
	default:
		m.Kind = KindNearestNeighbor
		m.Nearest = &NearestState{}
	}
	return m
}

// KindForField selects the variant for a field kind: categorical fields
// vote, numeric fields score, free-text fields run the Markov chain, and
// everything else falls back to nearest-neighbor.
func KindForField(kind form.FieldKind) Kind {
	switch kind {
	case form.FieldKindSelect, form.FieldKindEmail, form.FieldKindPhone, form.FieldKindDate:
		return KindFrequencyVote
	case form.FieldKindNumber:
		return KindLinearScore
	case form.FieldKindText, form.FieldKindAddress:
		return KindMarkovChain
	default:
		return KindNearestNeighbor
	}
}

// Train records one observation, dispatching on the variant.
func (m *Model) Train(context map[string]any, label string) {
	switch m.Kind {
	case KindFrequencyVote:
		m.Frequency.Train(context, label)
	case KindLinearScore:
		m.Linear.Train(context, label)
	case KindMarkovChain:
		m.Markov.Train(label)
	default:
		m.Nearest.Train(context, label)
	}
}

// Predict serves a ranked prediction for the query context. Partial carries
// any partial input the user has typed (the Markov variant consumes it);
// rng backs the Markov starter pick. The boolean is false when the variant
// has nothing to say for this query.
func (m *Model) Predict(context map[string]any, partial string, rng *rand.Rand) (Prediction, bool) {
	switch m.Kind {
	case KindFrequencyVote:
		return m.Frequency.Predict(context)
	case KindLinearScore:
		return m.Linear.Predict(context)
	case KindMarkovChain:
		return m.Markov.Predict(partial, rng)
	default:
		return m.Nearest.Predict(context, 3)
	}
}
