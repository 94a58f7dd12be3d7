// Package feature turns a field plus a form snapshot into the flat feature
// bundle the per-field models consume. Every group is computed with simple,
// explainable rules; there are no learned feature weights and no numeric
// normalization beyond identity.
package feature

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

// Env carries the ambient signals the extractor is not allowed to read on
// its own: the platform string, the current time, and any caller overrides
// layered last into the context group.
type Env struct {
	Platform  string
	Now       time.Time
	Overrides map[string]any
}

// Bundle is the extracted feature set, split into four independent groups.
type Bundle struct {
	FormContext FormContext `json:"formContext"`
	Behavior    Behavior    `json:"behavior"`
	Semantic    Semantic    `json:"semantic"`
	Context     Context     `json:"context"`
}

// FormContext describes the state of the surrounding form.
type FormContext struct {
	FilledFields   []string           `json:"filledFields"`
	FillOrder      []string           `json:"fillOrder"`
	FocusDurations map[string]float64 `json:"focusDurations"`
}

// Behavior describes per-field typing behaviour. Correction pattern and
// hesitation need keystroke-level tracking that lives outside this core, so
// they are fixed to their unknown values.
type Behavior struct {
	TypingSpeed       float64 `json:"typingSpeed"`
	CorrectionPattern string  `json:"correctionPattern"`
	HesitationMillis  float64 `json:"hesitationMillis"`
}

// Semantic describes what the field appears to mean.
type Semantic struct {
	Category             string  `json:"category"`
	ExpectedFormat       string  `json:"expectedFormat"`
	RelationshipStrength float64 `json:"relationshipStrength"`
}

// Context describes the device and moment of the request.
type Context struct {
	DeviceClass string         `json:"deviceClass"`
	TimeOfDay   string         `json:"timeOfDay"`
	DayOfWeek   string         `json:"dayOfWeek"`
	Overrides   map[string]any `json:"overrides,omitempty"`
}

// Extractor computes feature bundles. Safe to reuse across calls; it holds
// only the keyword table.
type Extractor struct {
	keywords *KeywordTable
}

// NewExtractor creates an Extractor with the embedded keyword table.
func NewExtractor() *Extractor {
	return &Extractor{keywords: DefaultKeywordTable()}
}

// NewExtractorWithKeywords creates an Extractor with a caller-supplied
// keyword table, falling back to the embedded one when nil.
func NewExtractorWithKeywords(table *KeywordTable) *Extractor {
	if table == nil {
		return NewExtractor()
	}
	return &Extractor{keywords: table}
}

// Extract computes the bundle for one field against a snapshot and the
// injected environment.
func (e *Extractor) Extract(field form.FieldDescriptor, snapshot form.FormSnapshot, env Env) Bundle {
	return Bundle{
		FormContext: e.formContext(snapshot, env.Now),
		Behavior:    e.behavior(field, snapshot, env.Now),
		Semantic:    e.semantic(field, snapshot),
		Context:     e.contextGroup(env),
	}
}

func (e *Extractor) formContext(snapshot form.FormSnapshot, now time.Time) FormContext {
	ctx := FormContext{FocusDurations: make(map[string]float64)}
	for _, name := range snapshot.Names() {
		state := snapshot.Fields[name]
		if strings.TrimSpace(state.Value) != "" {
			ctx.FilledFields = append(ctx.FilledFields, name)
		}
		// fill order: focused or already non-empty, in declaration order
		if state.Focused || strings.TrimSpace(state.Value) != "" {
			ctx.FillOrder = append(ctx.FillOrder, name)
		}
		if state.FocusStart != nil {
			elapsed := now.Sub(*state.FocusStart).Seconds()
			if elapsed > 0 {
				ctx.FocusDurations[name] = elapsed
			}
		}
	}
	return ctx
}

func (e *Extractor) behavior(field form.FieldDescriptor, snapshot form.FormSnapshot, now time.Time) Behavior {
	behavior := Behavior{CorrectionPattern: "unknown"}
	state, ok := snapshot.Fields[field.Name]
	if ok && state.FocusStart != nil {
		minutes := now.Sub(*state.FocusStart).Minutes()
		if minutes > 0 {
			behavior.TypingSpeed = float64(len(state.Value)) / minutes
		}
	}
	return behavior
}

func (e *Extractor) semantic(field form.FieldDescriptor, snapshot form.FormSnapshot) Semantic {
	category := e.keywords.Categorize(field.Name)
	if category == "" {
		category = kindCategory(field.Kind)
	}

	strength := 0.0
	for name, state := range snapshot.Fields {
		if name == field.Name || strings.TrimSpace(state.Value) == "" {
			continue
		}
		if sim := jaccard(field.Name, name); sim > strength {
			strength = sim
		}
	}

	return Semantic{
		Category:             category,
		ExpectedFormat:       expectedFormat(field),
		RelationshipStrength: strength,
	}
}

func (e *Extractor) contextGroup(env Env) Context {
	return Context{
		DeviceClass: DeviceClass(env.Platform),
		TimeOfDay:   TimeOfDay(env.Now.Hour()),
		DayOfWeek:   env.Now.Weekday().String(),
		Overrides:   env.Overrides,
	}
}

// Flatten produces the flat map the models and cache key consume. Caller
// overrides are layered last and win on key collisions.
func (b Bundle) Flatten() map[string]any {
	flat := map[string]any{
		"form.filledCount":           len(b.FormContext.FilledFields),
		"form.fillOrder":             strings.Join(b.FormContext.FillOrder, ","),
		"behavior.typingSpeed":       b.Behavior.TypingSpeed,
		"behavior.correctionPattern": b.Behavior.CorrectionPattern,
		"behavior.hesitationMillis":  b.Behavior.HesitationMillis,
		"semantic.category":          b.Semantic.Category,
		"semantic.expectedFormat":    b.Semantic.ExpectedFormat,
		"semantic.relationStrength":  b.Semantic.RelationshipStrength,
		"context.deviceClass":        b.Context.DeviceClass,
		"context.timeOfDay":          b.Context.TimeOfDay,
		"context.dayOfWeek":          b.Context.DayOfWeek,
	}
	for _, name := range b.FormContext.FilledFields {
		flat["form.filled."+name] = true
	}
	for name, duration := range b.FormContext.FocusDurations {
		flat["form.focus."+name] = duration
	}
	for key, value := range b.Context.Overrides {
		flat[key] = value
	}
	return flat
}

// CacheKey serialises the bundle deterministically for cache keying.
func (b Bundle) CacheKey() string {
	flat := b.Flatten()
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, key := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%s=%v", key, flat[key])
	}
	return sb.String()
}

// DeviceClass categorises a platform signal string.
func DeviceClass(platform string) string {
	lower := strings.ToLower(platform)
	switch {
	case strings.Contains(lower, "android"):
		return "android"
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ios"):
		return "ios"
	case strings.Contains(lower, "windows"):
		return "windows"
	case strings.Contains(lower, "mac"), strings.Contains(lower, "darwin"):
		return "mac"
	case strings.Contains(lower, "linux"):
		return "linux"
	default:
		return "desktop"
	}
}

// TimeOfDay buckets an hour into morning/afternoon/evening/night.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

func kindCategory(kind form.FieldKind) string {
	switch kind {
	case form.FieldKindEmail, form.FieldKindPhone, form.FieldKindText:
		return "personal"
	case form.FieldKindDate:
		return "temporal"
	case form.FieldKindNumber:
		return "financial"
	case form.FieldKindAddress:
		return "location"
	default:
		return "generic"
	}
}

func expectedFormat(field form.FieldDescriptor) string {
	switch field.Kind {
	case form.FieldKindEmail:
		return "local@domain"
	case form.FieldKindPhone:
		return "+0 000 000 0000"
	case form.FieldKindDate:
		return "yyyy-mm-dd"
	case form.FieldKindNumber:
		return "decimal"
	case form.FieldKindURL:
		return "https://host/path"
	}
	lower := strings.ToLower(field.Name)
	switch {
	case strings.Contains(lower, "zip"), strings.Contains(lower, "postal"):
		return "00000"
	case strings.Contains(lower, "year"):
		return "yyyy"
	default:
		return "free-form"
	}
}

// jaccard computes character-set similarity between two field names.
func jaccard(a, b string) float64 {
	setA := charSet(a)
	setB := charSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for r := range setA {
		if setB[r] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range strings.ToLower(s) {
		set[r] = true
	}
	return set
}
