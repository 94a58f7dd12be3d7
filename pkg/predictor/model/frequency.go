package model

import "sort"

// contextSimilarityThreshold is the minimum shared-key match fraction an
// example needs to take part in the vote.
const contextSimilarityThreshold = 0.7

// FrequencyState stores (context, label) pairs for categorical fields.
type FrequencyState struct {
	Examples []Example `json:"examples,omitempty"`
}

// Train appends the observation. Examples are append-only; eviction is the
// persistence collaborator's concern.
func (s *FrequencyState) Train(context map[string]any, label string) {
	s.Examples = append(s.Examples, Example{Context: cloneContext(context), Label: label})
}

// Predict collects every stored example whose similarity to the query
// clears the threshold, then votes weighted by similarity sum. The boolean
// is false when no example qualifies.
func (s *FrequencyState) Predict(query map[string]any) (Prediction, bool) {
	weights := make(map[string]float64)
	total := 0.0
	for _, example := range s.Examples {
		sim := ContextSimilarity(query, example.Context)
		if sim < contextSimilarityThreshold {
			continue
		}
		weights[example.Label] += sim
		total += sim
	}
	if len(weights) == 0 {
		return Prediction{}, false
	}

	labels := make([]string, 0, len(weights))
	for label := range weights {
		labels = append(labels, label)
	}
	// ties break toward the lexically earlier label for determinism
	sort.Slice(labels, func(i, j int) bool {
		if weights[labels[i]] != weights[labels[j]] {
			return weights[labels[i]] > weights[labels[j]]
		}
		return labels[i] < labels[j]
	})

	best := labels[0]
	alternatives := labels[1:]
	if len(alternatives) > 5 {
		alternatives = alternatives[:5]
	}
	return Prediction{
		Value:        best,
		Confidence:   weights[best] / total,
		Alternatives: alternatives,
	}, true
}

// ContextSimilarity is the fraction of matching keys among keys present in
// both contexts. Contexts with no shared keys score zero.
func ContextSimilarity(a, b map[string]any) float64 {
	shared := 0
	matching := 0
	for key, valueA := range a {
		valueB, ok := b[key]
		if !ok {
			continue
		}
		shared++
		if valuesEqual(valueA, valueB) {
			matching++
		}
	}
	if shared == 0 {
		return 0
	}
	return float64(matching) / float64(shared)
}

func valuesEqual(a, b any) bool {
	if fa, okA := toFloat(a); okA {
		if fb, okB := toFloat(b); okB {
			return fa == fb
		}
	}
	return a == b
}

func cloneContext(context map[string]any) map[string]any {
	out := make(map[string]any, len(context))
	for k, v := range context {
		out[k] = v
	}
	return out
}
