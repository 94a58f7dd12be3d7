package predictor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/feature"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

var learnTime = time.Date(2025, time.March, 12, 9, 15, 0, 0, time.UTC)

func learnCity(p *Predictor, city string, when time.Time) {
	p.Learn(LearnInput{
		Record:   form.SubmissionRecord{"city": city},
		Order:    []string{"city"},
		When:     when,
		Platform: "linux",
	})
}

func TestSuggestionsPrefixFilterInsertionOrder(t *testing.T) {
	p := New(WithRandSeed(1))
	for _, city := range []string{"Boston", "Bogota", "Denver"} {
		learnCity(p, city, learnTime)
	}

	got := p.Suggestions("city", "Bo")
	want := []string{"Boston", "Bogota"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suggestions (-want +got):\n%s", diff)
	}
}

func TestSuggestionsRespectsMax(t *testing.T) {
	p := New(WithRandSeed(1), WithMaxSuggestions(2))
	for _, city := range []string{"Boston", "Bogota", "Bologna", "Boulder"} {
		learnCity(p, city, learnTime)
	}

	if got := p.Suggestions("city", "Bo"); len(got) != 2 {
		t.Fatalf("expected the configured max of 2, got %v", got)
	}
}

func TestSuggestionsUnknownFieldIsEmpty(t *testing.T) {
	p := New(WithRandSeed(1))
	if got := p.Suggestions("nothing", "x"); got != nil {
		t.Fatalf("expected nil for an untrained field, got %v", got)
	}
}

func TestPredictObservesPrecedingLearn(t *testing.T) {
	p := New(WithRandSeed(1))
	learnCity(p, "Boston", learnTime)

	field := form.FieldDescriptor{Name: "city", Kind: form.FieldKindText}
	got := p.Predict(field, form.FormSnapshot{}, feature.Env{Platform: "linux", Now: learnTime})

	if got.Value != "Boston" {
		t.Fatalf("prediction should reflect the completed learn, got %+v", got)
	}
	if got.Source != SourceTrainingData {
		t.Fatalf("source should be training data, got %q", got.Source)
	}
	if got.Confidence < 0 || got.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", got.Confidence)
	}
}

func TestPredictMissingDataFallsBack(t *testing.T) {
	p := New(WithRandSeed(1))

	field := form.FieldDescriptor{Name: "favorite_color", Kind: form.FieldKindText}
	got := p.Predict(field, form.FormSnapshot{}, feature.Env{Now: learnTime})

	if got.Source != SourceUnknown {
		t.Fatalf("expected the unknown fallback, got %q", got.Source)
	}
	if got.Confidence < 0.2 || got.Confidence > 0.3 {
		t.Fatalf("fallback confidence must sit in [0.2, 0.3], got %v", got.Confidence)
	}
}

func TestPredictGenericFallbackUsesProfile(t *testing.T) {
	p := New(WithRandSeed(1))
	p.Learn(LearnInput{
		Record: form.SubmissionRecord{"first_name": "Ada", "last_name": "Lovelace"},
		When:   learnTime,
	})

	// a name-like field never trained on its own still gets a profile guess
	field := form.FieldDescriptor{Name: "display_name", Kind: form.FieldKindText}
	got := p.Predict(field, form.FormSnapshot{}, feature.Env{Now: learnTime})

	if got.Source != SourceGeneric {
		t.Fatalf("expected the generic source, got %q", got.Source)
	}
	if got.Value != "Ada Lovelace" {
		t.Fatalf("expected the preferred name, got %q", got.Value)
	}
	if got.Confidence != genericConfidence {
		t.Fatalf("expected fixed confidence %v, got %v", genericConfidence, got.Confidence)
	}
}

func TestPredictCachesIdenticalRequests(t *testing.T) {
	p := New(WithRandSeed(1))
	learnCity(p, "Boston", learnTime)

	field := form.FieldDescriptor{Name: "city", Kind: form.FieldKindText}
	env := feature.Env{Platform: "linux", Now: learnTime}

	first := p.Predict(field, form.FormSnapshot{}, env)
	second := p.Predict(field, form.FormSnapshot{}, env)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("identical requests must hit the cache (-first +second):\n%s", diff)
	}
	if p.cache.len() != 1 {
		t.Fatalf("expected one cache entry, got %d", p.cache.len())
	}
}

func TestBudgetRemainingNonIncreasingAcrossLearns(t *testing.T) {
	p := New(WithRandSeed(1), WithPrivacyBudget(0.5), WithEpsilonPerLearn(0.2))

	previous := p.BudgetRemaining()
	for i := 0; i < 5; i++ {
		learnCity(p, "Boston", learnTime)
		remaining := p.BudgetRemaining()
		if remaining < 0 {
			t.Fatalf("budget went negative: %v", remaining)
		}
		if remaining > previous {
			t.Fatalf("budget increased from %v to %v", previous, remaining)
		}
		previous = remaining
	}

	// learning still works after exhaustion, as unprotected pass-through
	learnCity(p, "Bogota", learnTime)
	if got := p.Suggestions("city", "Bo"); len(got) != 2 {
		t.Fatalf("exhausted budget must not block learning, got %v", got)
	}

	p.ResetBudget()
	if p.BudgetRemaining() != 0.5 {
		t.Fatalf("reset should restore the full budget, got %v", p.BudgetRemaining())
	}
}

func TestLearnFeedsRelationsAndProfile(t *testing.T) {
	p := New(WithRandSeed(1))
	p.Learn(LearnInput{
		Record: form.SubmissionRecord{
			"username":   "ada",
			"email":      "ada@example.com",
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"city":       "Boston",
			"state":      "MA",
		},
		Order:    []string{"username", "email", "first_name", "last_name", "city", "state"},
		When:     learnTime,
		Platform: "linux",
	})

	relations := p.Relations()
	if relations.Cooccurrence["email-username"] != 1 || relations.Cooccurrence["username-email"] != 1 {
		t.Fatalf("co-occurrence should be symmetric, got %v", relations.Cooccurrence)
	}
	if relations.Temporal["username->email"] != 1 {
		t.Fatalf("temporal counter missing, got %v", relations.Temporal)
	}
	if relations.ValueDependencies["email-contains-username"] != 1 {
		t.Fatalf("value dependency missing, got %v", relations.ValueDependencies)
	}

	user := p.Profile()
	if len(user.PreferredNames) != 1 || user.PreferredNames[0] != "Ada Lovelace" {
		t.Fatalf("profile names: %v", user.PreferredNames)
	}
	if user.PreferredLocation != "Boston-MA" {
		t.Fatalf("profile location: %q", user.PreferredLocation)
	}
	if user.PreferredHour != 9 {
		t.Fatalf("profile hour: %d", user.PreferredHour)
	}
	if user.PreferredDevice != "linux" {
		t.Fatalf("profile device: %q", user.PreferredDevice)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	p := New(WithRandSeed(1))
	learnCity(p, "Boston", learnTime)
	learnCity(p, "Boston", learnTime)
	learnCity(p, "Bogota", learnTime)

	state := p.ExportState()

	// the state must survive plain JSON serialization, since the external
	// persistence collaborator only sees serialized bytes
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	var decoded State
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}

	restored := New(WithRandSeed(1))
	restored.ImportState(decoded)

	if diff := cmp.Diff(p.Suggestions("city", "Bo"), restored.Suggestions("city", "Bo")); diff != "" {
		t.Fatalf("suggestions after import (-want +got):\n%s", diff)
	}
	if restored.BudgetRemaining() != p.BudgetRemaining() {
		t.Fatalf("budget after import: got %v, want %v",
			restored.BudgetRemaining(), p.BudgetRemaining())
	}

	field := form.FieldDescriptor{Name: "city", Kind: form.FieldKindText}
	env := feature.Env{Platform: "linux", Now: learnTime}
	if got := restored.Predict(field, form.FormSnapshot{}, env); got.Source != SourceTrainingData {
		t.Fatalf("restored models should serve predictions, got %+v", got)
	}
}

func TestImportStateToleratesNullRelationMaps(t *testing.T) {
	// older snapshots serialize untouched counter maps as null
	payload := []byte(`{
		"trainingData": {"city": [{"value": "Boston", "timestamp": "2025-03-12T09:15:00Z"}]},
		"patterns": {
			"relations": {
				"cooccurrence": {"city-state": 2, "state-city": 2},
				"temporal": null,
				"valueDependencies": null
			},
			"profile": {}
		},
		"budget": {"total": 1, "used": 0.1}
	}`)
	var decoded State
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}

	p := New(WithRandSeed(1))
	p.ImportState(decoded)

	p.Learn(LearnInput{
		Record: form.SubmissionRecord{"city": "Boston", "state": "MA"},
		Order:  []string{"city", "state"},
		When:   learnTime,
	})

	relations := p.Relations()
	if relations.Cooccurrence["city-state"] != 3 {
		t.Fatalf("co-occurrence should accumulate onto imported counters, got %v", relations.Cooccurrence)
	}
	if relations.Temporal["city->state"] != 1 {
		t.Fatalf("temporal counter missing after import, got %v", relations.Temporal)
	}
}

func TestImportedProfileSurvivesLaterLearns(t *testing.T) {
	p := New(WithRandSeed(1))
	p.Learn(LearnInput{
		Record:   form.SubmissionRecord{"first_name": "Ada", "last_name": "Lovelace"},
		Order:    []string{"first_name", "last_name"},
		When:     learnTime,
		Platform: "linux",
	})

	restored := New(WithRandSeed(1))
	restored.ImportState(p.ExportState())
	restored.Learn(LearnInput{
		Record: form.SubmissionRecord{"city": "Boston", "state": "MA"},
		Order:  []string{"city", "state"},
		When:   learnTime,
	})

	user := restored.Profile()
	if len(user.PreferredNames) != 1 || user.PreferredNames[0] != "Ada Lovelace" {
		t.Fatalf("imported names should survive later learns, got %v", user.PreferredNames)
	}
	if user.PreferredLocation != "Boston-MA" {
		t.Fatalf("fresh sessions should still refine the profile, got %q", user.PreferredLocation)
	}
}

func TestRegisterFieldSelectsVariant(t *testing.T) {
	p := New(WithRandSeed(1))
	p.RegisterField(form.FieldDescriptor{Name: "country", Kind: form.FieldKindSelect})

	p.Learn(LearnInput{
		Record: form.SubmissionRecord{"country": "Chile"},
		When:   learnTime,
	})

	if p.models["country"].Kind != "frequency-vote" {
		t.Fatalf("registered select field should vote, got %q", p.models["country"].Kind)
	}
}
