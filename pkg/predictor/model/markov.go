package model

import (
	"math/rand"
	"sort"
	"strings"
)

// MarkovState is a first-order word transition table with a starter-word
// set. Starter selection is uniform over distinct starters while transition
// selection is frequency-weighted; the asymmetry is part of the contract
// and must not be "fixed" silently.
type MarkovState struct {
	Transitions map[string]map[string]int `json:"transitions,omitempty"`
	Starters    map[string]bool           `json:"starters,omitempty"`
}

// NewMarkovState creates an empty transition table.
func NewMarkovState() *MarkovState {
	return &MarkovState{
		Transitions: make(map[string]map[string]int),
		Starters:    make(map[string]bool),
	}
}

// Train folds one historical label string into the transition counts.
func (s *MarkovState) Train(label string) {
	words := strings.Fields(label)
	if len(words) == 0 {
		return
	}
	if s.Transitions == nil {
		s.Transitions = make(map[string]map[string]int)
	}
	if s.Starters == nil {
		s.Starters = make(map[string]bool)
	}

	s.Starters[words[0]] = true
	for i := 0; i+1 < len(words); i++ {
		next := s.Transitions[words[i]]
		if next == nil {
			next = make(map[string]int)
			s.Transitions[words[i]] = next
		}
		next[words[i+1]]++
	}
}

// Predict returns the next word. With no partial input it picks a random
// starter, uniform over distinct starters. With partial input it takes the
// last whitespace-separated word and returns its most frequent successor,
// or an empty value when that word was never seen as a transition source.
func (s *MarkovState) Predict(partial string, rng *rand.Rand) (Prediction, bool) {
	words := strings.Fields(partial)
	if len(words) == 0 {
		starters := make([]string, 0, len(s.Starters))
		for starter := range s.Starters {
			starters = append(starters, starter)
		}
		if len(starters) == 0 {
			return Prediction{}, false
		}
		sort.Strings(starters)
		pick := starters[0]
		if rng != nil {
			pick = starters[rng.Intn(len(starters))]
		}
		return Prediction{Value: pick, Confidence: 1 / float64(len(starters))}, true
	}

	last := words[len(words)-1]
	successors := s.Transitions[last]
	if len(successors) == 0 {
		return Prediction{}, false
	}

	ranked := make([]string, 0, len(successors))
	total := 0
	for word, count := range successors {
		ranked = append(ranked, word)
		total += count
	}
	// most frequent first; ties break toward the lexically earlier word
	sort.Slice(ranked, func(i, j int) bool {
		if successors[ranked[i]] != successors[ranked[j]] {
			return successors[ranked[i]] > successors[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	alternatives := ranked[1:]
	if len(alternatives) > 5 {
		alternatives = alternatives[:5]
	}
	return Prediction{
		Value:        ranked[0],
		Confidence:   float64(successors[ranked[0]]) / float64(total),
		Alternatives: alternatives,
	}, true
}
