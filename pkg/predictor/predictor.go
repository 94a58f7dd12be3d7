// Package predictor composes the learning-and-prediction pipeline: feature
// extraction, privacy processing, relationship discovery, profile
// aggregation, per-field models, and the bounded prediction cache. One
// Predictor instance exclusively owns all mutable state it creates and is
// not safe for concurrent use; hosts needing concurrency serialize calls
// through an external queue.
package predictor

import (
	"math/rand"
	"strings"
	"time"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/feature"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/graph"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/predictor/model"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/privacy"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/profile"
)

// Prediction sources, reported so hosts can style suggestions accordingly.
const (
	SourceTrainingData = "training-data"
	SourceGeneric      = "generic"
	SourceUnknown      = "unknown"
)

// genericConfidence is the fixed low confidence attached to fallback
// predictions when a field has no usable training data.
const genericConfidence = 0.25

// Prediction is the ranked answer returned to the host.
type Prediction struct {
	Value        string   `json:"value"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives,omitempty"`
	Source       string   `json:"source"`
}

// LearnInput carries one completed submission plus the injected ambient
// signals captured with it. Order is the fill order when the host tracked
// one; it feeds the temporal relation miner.
type LearnInput struct {
	Record   form.SubmissionRecord
	Order    []string
	When     time.Time
	Platform string
}

// Predictor is the orchestrator. Construct with New; the zero value is not
// usable.
type Predictor struct {
	extractor *feature.Extractor
	graph     *graph.Graph
	budget    *privacy.BudgetManager
	noiser    *privacy.Noiser
	rng       *rand.Rand
	cache     *predictionCache

	models       map[string]*model.Model
	trainingData map[string][]TrainingExample
	fieldKinds   map[string]form.FieldKind
	sessions     []profile.Session
	relations    graph.Relations
	baseProfile  profile.Profile
	userProfile  profile.Profile

	maxSuggestions int
	epsilon        float64
	sanitize       bool
	persist        func(State)
}

// New constructs a Predictor applying any provided options. Missing pieces
// are initialised with the built-in defaults so callers can start with a
// single constructor call.
func New(options ...Option) *Predictor {
	p := &Predictor{
		graph:          graph.New(),
		models:         make(map[string]*model.Model),
		trainingData:   make(map[string][]TrainingExample),
		fieldKinds:     make(map[string]form.FieldKind),
		relations:      emptyRelations(),
		maxSuggestions: 5,
		epsilon:        0.1,
		sanitize:       true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.extractor == nil {
		p.extractor = feature.NewExtractor()
	}
	if p.budget == nil {
		p.budget = privacy.NewBudgetManager(1.0)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.noiser == nil {
		p.noiser = privacy.NewNoiser(p.rng)
	}
	if p.cache == nil {
		p.cache = newPredictionCache(defaultCacheCapacity)
	}
	return p
}

// RegisterField records a field's declared kind so the right model variant
// serves it. Fields seen only through Learn get a kind inferred from their
// name.
func (p *Predictor) RegisterField(desc form.FieldDescriptor) {
	p.fieldKinds[desc.Name] = form.NormalizeKind(string(desc.Kind))
	p.graph.AddNode(desc.Name, p.fieldKinds[desc.Name])
}

// Learn pushes one completed submission through privacy processing, the
// relationship graph, the profile builder, and the per-field models. All
// effects are applied synchronously before Learn returns, so a Predict
// issued afterwards observes them. An exhausted privacy budget degrades to
// unprotected pass-through rather than failing the call.
func (p *Predictor) Learn(input LearnInput) {
	if len(input.Record) == 0 {
		return
	}

	record := input.Record
	if p.sanitize {
		record = record.Clone()
		for name, value := range record {
			record[name] = privacy.SanitizeValue(value)
		}
	}

	granted := p.budget.Consume(p.epsilon)
	protected := p.noiser.Protect(record, granted)

	session := graph.Session{Record: protected, Order: input.Order}
	mergeRelations(&p.relations, p.graph.Discover([]graph.Session{session}))

	p.sessions = append(p.sessions, profile.Session{
		Record: protected,
		Hour:   input.When.Hour(),
		Device: feature.DeviceClass(input.Platform),
	})
	p.userProfile = profile.Merge(p.baseProfile, profile.Aggregate(p.sessions))

	p.trainFields(protected, input)

	if p.persist != nil {
		p.persist(p.ExportState())
	}
}

// trainFields appends training examples and refreshes each field's model,
// creating models lazily the first time a field is seen.
func (p *Predictor) trainFields(record form.SubmissionRecord, input LearnInput) {
	snapshot := snapshotFromRecord(record, input.Order)
	env := feature.Env{Platform: input.Platform, Now: input.When}

	for name, value := range record {
		if strings.TrimSpace(value) == "" {
			continue
		}
		p.trainingData[name] = append(p.trainingData[name], TrainingExample{
			Value:     value,
			Timestamp: input.When,
		})

		m, ok := p.models[name]
		if !ok {
			m = model.New(model.KindForField(p.kindOf(name)))
			p.models[name] = m
		}
		desc := form.FieldDescriptor{Name: name, Kind: p.kindOf(name)}
		bundle := p.extractor.Extract(desc, snapshot, env)
		m.Train(bundle.Flatten(), value)
	}
}

// Predict produces a ranked value prediction for a field given the current
// snapshot and injected environment. A field without usable training data
// resolves to the generic fallback with low fixed confidence, never an
// error.
func (p *Predictor) Predict(field form.FieldDescriptor, snapshot form.FormSnapshot, env feature.Env) Prediction {
	bundle := p.extractor.Extract(field, snapshot, env)
	key := cacheKey(field.Name, bundle.CacheKey())
	if cached, ok := p.cache.get(key); ok {
		return cached
	}

	prediction := p.infer(field, snapshot, bundle)
	p.cache.set(key, prediction)
	return prediction
}

func (p *Predictor) infer(field form.FieldDescriptor, snapshot form.FormSnapshot, bundle feature.Bundle) Prediction {
	m, ok := p.models[field.Name]
	if !ok {
		return p.genericFallback(field)
	}

	partial := field.CurrentValue
	if partial == "" {
		if state, present := snapshot.Fields[field.Name]; present {
			partial = state.Value
		}
	}

	answer, ok := m.Predict(bundle.Flatten(), partial, p.rng)
	if !ok {
		return p.genericFallback(field)
	}

	alternatives := answer.Alternatives
	if len(alternatives) > 5 {
		alternatives = alternatives[:5]
	}
	return Prediction{
		Value:        answer.Value,
		Confidence:   clamp01(answer.Confidence),
		Alternatives: alternatives,
		Source:       SourceTrainingData,
	}
}

// genericFallback serves the missing-data path: a profile-informed guess
// where one applies, otherwise an empty value, always at the fixed low
// confidence.
func (p *Predictor) genericFallback(field form.FieldDescriptor) Prediction {
	value := ""
	lower := strings.ToLower(field.Name)
	switch {
	case strings.Contains(lower, "name") && len(p.userProfile.PreferredNames) > 0:
		value = p.userProfile.PreferredNames[0]
	case strings.Contains(lower, "city") && p.userProfile.PreferredLocation != "":
		value, _, _ = strings.Cut(p.userProfile.PreferredLocation, "-")
	}

	source := SourceGeneric
	if value == "" {
		source = SourceUnknown
	}
	return Prediction{Value: value, Confidence: genericConfidence, Source: source}
}

// Suggestions returns stored values for the field whose prefix matches the
// partial input, in insertion order, capped at the configured maximum.
// Matching is case-insensitive; returned values keep their stored casing.
func (p *Predictor) Suggestions(fieldName, partial string) []string {
	examples := p.trainingData[fieldName]
	if len(examples) == 0 {
		return nil
	}

	prefix := strings.ToLower(partial)
	seen := make(map[string]bool, len(examples))
	var out []string
	for _, example := range examples {
		if seen[example.Value] {
			continue
		}
		seen[example.Value] = true
		if prefix != "" && !strings.HasPrefix(strings.ToLower(example.Value), prefix) {
			continue
		}
		out = append(out, example.Value)
		if len(out) == p.maxSuggestions {
			break
		}
	}
	return out
}

// Profile returns the current aggregated user profile snapshot.
func (p *Predictor) Profile() profile.Profile {
	return p.userProfile
}

// Relations returns the cumulative discovered relations.
func (p *Predictor) Relations() graph.Relations {
	return p.relations
}

// BudgetRemaining reports the unconsumed privacy budget.
func (p *Predictor) BudgetRemaining() float64 {
	return p.budget.Remaining()
}

// ResetBudget zeroes the consumed privacy budget. Explicit operator action
// only.
func (p *Predictor) ResetBudget() {
	p.budget.Reset()
}

// ExportState snapshots everything the persistence collaborator needs.
func (p *Predictor) ExportState() State {
	nodes, edges := p.graph.Export()
	training := make(map[string][]TrainingExample, len(p.trainingData))
	for name, examples := range p.trainingData {
		training[name] = append([]TrainingExample(nil), examples...)
	}
	models := make(map[string]*model.Model, len(p.models))
	for name, m := range p.models {
		models[name] = m
	}
	return State{
		TrainingData: training,
		Models:       models,
		Patterns: PatternState{
			Nodes:     nodes,
			Edges:     edges,
			Relations: p.relations,
			Profile:   p.userProfile,
		},
		Budget: BudgetState{Total: p.budget.Total(), Used: p.budget.Used()},
	}
}

// ImportState replaces the predictor's learned state with a previously
// exported snapshot. The cache starts cold. The imported profile becomes
// the baseline that later submissions refine rather than replace.
func (p *Predictor) ImportState(state State) {
	p.trainingData = make(map[string][]TrainingExample, len(state.TrainingData))
	for name, examples := range state.TrainingData {
		p.trainingData[name] = append([]TrainingExample(nil), examples...)
	}

	p.models = make(map[string]*model.Model, len(state.Models))
	for name, m := range state.Models {
		if m != nil {
			p.models[name] = m
		}
	}

	p.graph = graph.New()
	p.graph.Restore(state.Patterns.Nodes, state.Patterns.Edges)
	p.relations = normalizeRelations(state.Patterns.Relations)
	p.baseProfile = state.Patterns.Profile
	p.userProfile = state.Patterns.Profile
	p.budget.Restore(state.Budget.Total, state.Budget.Used)
	p.cache = newPredictionCache(p.cache.capacity)
}

func (p *Predictor) kindOf(name string) form.FieldKind {
	if kind, ok := p.fieldKinds[name]; ok {
		return kind
	}
	return inferKind(name)
}

// inferKind guesses a field kind from its name for fields never registered
// through a descriptor.
func inferKind(name string) form.FieldKind {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "email"):
		return form.FieldKindEmail
	case strings.Contains(lower, "phone"), strings.Contains(lower, "mobile"), strings.Contains(lower, "tel"):
		return form.FieldKindPhone
	case strings.Contains(lower, "date"), strings.Contains(lower, "birth"):
		return form.FieldKindDate
	case strings.Contains(lower, "amount"), strings.Contains(lower, "age"),
		strings.Contains(lower, "income"), strings.Contains(lower, "quantity"):
		return form.FieldKindNumber
	case strings.Contains(lower, "address"):
		return form.FieldKindAddress
	case strings.Contains(lower, "url"), strings.Contains(lower, "website"):
		return form.FieldKindURL
	default:
		return form.FieldKindText
	}
}

// snapshotFromRecord reconstructs a filled snapshot from a submission so
// learn-time feature contexts share keys with predict-time ones.
func snapshotFromRecord(record form.SubmissionRecord, order []string) form.FormSnapshot {
	fields := make(map[string]form.FieldState, len(record))
	for name, value := range record {
		fields[name] = form.FieldState{Value: value}
	}
	return form.FormSnapshot{Fields: fields, Order: order}
}

func mergeRelations(into *graph.Relations, from graph.Relations) {
	for key, count := range from.Cooccurrence {
		into.Cooccurrence[key] += count
	}
	for key, count := range from.Temporal {
		into.Temporal[key] += count
	}
	for key, count := range from.ValueDependencies {
		into.ValueDependencies[key] += count
	}
}

// normalizeRelations fills any nil counter map so imported snapshots are
// always safe to merge into.
func normalizeRelations(relations graph.Relations) graph.Relations {
	if relations.Cooccurrence == nil {
		relations.Cooccurrence = make(map[string]int)
	}
	if relations.Temporal == nil {
		relations.Temporal = make(map[string]int)
	}
	if relations.ValueDependencies == nil {
		relations.ValueDependencies = make(map[string]int)
	}
	return relations
}

func emptyRelations() graph.Relations {
	return graph.Relations{
		Cooccurrence:      make(map[string]int),
		Temporal:          make(map[string]int),
		ValueDependencies: make(map[string]int),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
