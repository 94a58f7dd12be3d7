package predictor

import (
	"time"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/graph"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/predictor/model"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/profile"
)

// TrainingExample is one observed value for a field. The per-field lists
// are append-only; the core never evicts them.
type TrainingExample struct {
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// PatternState bundles the discovered relationship and profile state.
type PatternState struct {
	Nodes     []graph.Node    `json:"nodes,omitempty"`
	Edges     []graph.Edge    `json:"edges,omitempty"`
	Relations graph.Relations `json:"relations"`
	Profile   profile.Profile `json:"profile"`
}

// BudgetState is the exported privacy budget counters.
type BudgetState struct {
	Total float64 `json:"total"`
	Used  float64 `json:"used"`
}

// State is the plain serializable structure handed to and received from the
// external persistence collaborator. The core never performs storage I/O
// itself.
type State struct {
	TrainingData map[string][]TrainingExample `json:"trainingData"`
	Models       map[string]*model.Model      `json:"models,omitempty"`
	Patterns     PatternState                 `json:"patterns"`
	Budget       BudgetState                  `json:"budget"`
}
