// Package smartform is the top-level facade for the on-device form
// prediction core. It re-exports the public surface from pkg/ so hosts can
// depend on a single import for the common flow: construct a Predictor,
// feed it completed submissions through Learn, and pull ranked predictions
// and suggestions as the user types.
package smartform

import (
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/feature"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/predictor"
)

// Predictor is the orchestrator owning all learned state.
type Predictor = predictor.Predictor

// Prediction is a ranked value prediction.
type Prediction = predictor.Prediction

// LearnInput is one completed submission plus its injected ambient signals.
type LearnInput = predictor.LearnInput

// State is the serializable snapshot handed to the persistence collaborator.
type State = predictor.State

// Option customises a Predictor at construction time.
type Option = predictor.Option

// FieldDescriptor identifies a field and its declared constraints.
type FieldDescriptor = form.FieldDescriptor

// FieldKind is the field kind enum.
type FieldKind = form.FieldKind

// FormSnapshot is the read-only form state consumed at prediction time.
type FormSnapshot = form.FormSnapshot

// SubmissionRecord is one completed field-to-value map.
type SubmissionRecord = form.SubmissionRecord

// Env carries the injected platform string, clock, and caller overrides.
type Env = feature.Env

// New constructs a Predictor applying any provided options.
func New(options ...Option) *Predictor {
	return predictor.New(options...)
}

// Convenience re-exports of the predictor options.
var (
	WithCacheCapacity   = predictor.WithCacheCapacity
	WithMaxSuggestions  = predictor.WithMaxSuggestions
	WithPrivacyBudget   = predictor.WithPrivacyBudget
	WithEpsilonPerLearn = predictor.WithEpsilonPerLearn
	WithRandSeed        = predictor.WithRandSeed
	WithSanitizer       = predictor.WithSanitizer
	WithPersistHandoff  = predictor.WithPersistHandoff
)
