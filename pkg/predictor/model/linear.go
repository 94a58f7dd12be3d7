package model

import (
	"sort"
	"strconv"
)

// defaultCoefficients is the fixed example vector the trainer installs. No
// least-squares fit is performed; this is a documented placeholder for a
// real regression, kept so the numeric path exercises the same plumbing.
var defaultCoefficients = []float64{0.5, 0.3, 0.2}

// LinearState holds the coefficient vector for numeric fields.
type LinearState struct {
	Coefficients []float64 `json:"coefficients,omitempty"`
	Observed     int       `json:"observed,omitempty"`
}

// Train fixes the coefficients to the constant example vector and counts
// the observation so confidence can reflect sample size.
func (s *LinearState) Train(_ map[string]any, _ string) {
	if len(s.Coefficients) == 0 {
		s.Coefficients = append([]float64(nil), defaultCoefficients...)
	}
	s.Observed++
}

// Predict computes the dot product of the query's numeric values (in sorted
// key order) against the coefficients, truncated to the shorter of the two
// vectors.
func (s *LinearState) Predict(query map[string]any) (Prediction, bool) {
	if len(s.Coefficients) == 0 || s.Observed == 0 {
		return Prediction{}, false
	}

	values := numericValues(query)
	n := len(values)
	if len(s.Coefficients) < n {
		n = len(s.Coefficients)
	}
	score := 0.0
	for i := 0; i < n; i++ {
		score += values[i] * s.Coefficients[i]
	}

	return Prediction{
		Value:      strconv.FormatFloat(score, 'f', -1, 64),
		Confidence: 0.5,
	}, true
}

// numericValues extracts the query's numeric values in sorted key order so
// the dot product is deterministic.
func numericValues(query map[string]any) []float64 {
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([]float64, 0, len(keys))
	for _, key := range keys {
		if f, ok := toFloat(query[key]); ok {
			values = append(values, f)
		}
	}
	return values
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
