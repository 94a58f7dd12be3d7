package model

import (
	"math"
	"sort"
)

// NearestState stores examples for the generic fallback model.
type NearestState struct {
	Examples []Example `json:"examples,omitempty"`
}

// Train appends the observation.
func (s *NearestState) Train(context map[string]any, label string) {
	s.Examples = append(s.Examples, Example{Context: cloneContext(context), Label: label})
}

// Predict ranks stored examples by Euclidean distance over the union of
// feature keys (missing keys contribute as zero) and returns the nearest
// example's label. k bounds the alternatives surfaced alongside the answer,
// but only the top-1 label decides the value; multi-neighbor majority is an
// open extension point.
func (s *NearestState) Predict(query map[string]any, k int) (Prediction, bool) {
	if len(s.Examples) == 0 {
		return Prediction{}, false
	}
	if k < 1 {
		k = 1
	}

	type neighbor struct {
		label    string
		distance float64
	}
	neighbors := make([]neighbor, 0, len(s.Examples))
	for _, example := range s.Examples {
		neighbors = append(neighbors, neighbor{
			label:    example.Label,
			distance: euclidean(query, example.Context),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].distance != neighbors[j].distance {
			return neighbors[i].distance < neighbors[j].distance
		}
		return neighbors[i].label < neighbors[j].label
	})

	alternatives := make([]string, 0, k)
	for _, n := range neighbors[1:] {
		if len(alternatives) == k-1 || len(alternatives) == 5 {
			break
		}
		if n.label != neighbors[0].label && !contains(alternatives, n.label) {
			alternatives = append(alternatives, n.label)
		}
	}

	return Prediction{
		Value:        neighbors[0].label,
		Confidence:   1 / (1 + neighbors[0].distance),
		Alternatives: alternatives,
	}, true
}

// euclidean measures distance over the union of keys; values missing on one
// side count as zero, and non-numeric values contribute zero when equal and
// one when different.
func euclidean(a, b map[string]any) float64 {
	keys := make(map[string]bool, len(a)+len(b))
	for key := range a {
		keys[key] = true
	}
	for key := range b {
		keys[key] = true
	}

	sum := 0.0
	for key := range keys {
		fa, okA := numericOrZero(a[key])
		fb, okB := numericOrZero(b[key])
		if okA || okB {
			diff := fa - fb
			sum += diff * diff
			continue
		}
		if a[key] != b[key] {
			sum++
		}
	}
	return math.Sqrt(sum)
}

func numericOrZero(value any) (float64, bool) {
	if value == nil {
		return 0, true
	}
	return toFloat(value)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
