package predictor

import (
	"math/rand"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/feature"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/privacy"
)

// Option customises a Predictor at construction time.
type Option func(*Predictor)

// WithCacheCapacity bounds the prediction cache. Values below one fall back
// to the default capacity.
func WithCacheCapacity(capacity int) Option {
	return func(p *Predictor) {
		p.cache = newPredictionCache(capacity)
	}
}

// WithMaxSuggestions caps the list returned by Suggestions.
func WithMaxSuggestions(max int) Option {
	return func(p *Predictor) {
		if max > 0 {
			p.maxSuggestions = max
		}
	}
}

// WithPrivacyBudget sets the total epsilon available before learning
// degrades to unprotected pass-through.
func WithPrivacyBudget(total float64) Option {
	return func(p *Predictor) {
		p.budget = privacy.NewBudgetManager(total)
	}
}

// WithEpsilonPerLearn sets how much budget each Learn call requests.
func WithEpsilonPerLearn(epsilon float64) Option {
	return func(p *Predictor) {
		if epsilon > 0 {
			p.epsilon = epsilon
		}
	}
}

// WithRandSeed fixes the random source, making noise and Markov starter
// picks deterministic for tests.
func WithRandSeed(seed int64) Option {
	return func(p *Predictor) {
		p.rng = rand.New(rand.NewSource(seed))
		p.noiser = privacy.NewNoiser(p.rng)
	}
}

// WithExtractor injects a custom feature extractor, for callers supplying
// their own keyword table.
func WithExtractor(extractor *feature.Extractor) Option {
	return func(p *Predictor) {
		p.extractor = extractor
	}
}

// WithSanitizer toggles HTML sanitization of incoming values. On by
// default; hosts feeding pre-cleaned values can switch it off.
func WithSanitizer(enabled bool) Option {
	return func(p *Predictor) {
		p.sanitize = enabled
	}
}

// WithPersistHandoff registers a callback invoked with the exported state
// after every Learn, the hook the external persistence collaborator plugs
// into. The core itself performs no storage I/O.
func WithPersistHandoff(handoff func(State)) Option {
	return func(p *Predictor) {
		p.persist = handoff
	}
}
