// smartform-cli is an interactive trainer and prediction shell for the
// form prediction core. Learned state is persisted through the SQLite
// store between runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/joho/godotenv"

	smartform "github.com/AGitCalledHangFeng/smart-form-predictor"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/feature"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/storage/sqlitestore"
)

func main() {
	// .env is optional; environment variables win when both are present
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("SMARTFORM_DB", "smartform.db"), "state database path")
	profileID := flag.String("profile", envOr("SMARTFORM_PROFILE", "default"), "profile id to load")
	flag.Parse()

	store, err := sqlitestore.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	predictor := smartform.New(
		smartform.WithMaxSuggestions(envInt("SMARTFORM_MAX_SUGGESTIONS", 5)),
		smartform.WithPrivacyBudget(envFloat("SMARTFORM_BUDGET", 1.0)),
		smartform.WithPersistHandoff(func(state smartform.State) {
			if err := store.Save(*profileID, state); err != nil {
				fmt.Fprintf(os.Stderr, "persist state: %v\n", err)
			}
		}),
	)

	if state, found, err := store.Load(*profileID); err != nil {
		log.Fatalf("load state: %v", err)
	} else if found {
		predictor.ImportState(state)
		fmt.Printf("loaded profile %q\n", *profileID)
	}

	for {
		var action string
		prompt := &survey.Select{
			Message: "Action:",
			Options: []string{"learn a submission", "predict a field", "suggestions", "show profile", "quit"},
		}
		if err := survey.AskOne(prompt, &action); err != nil {
			return
		}

		switch action {
		case "learn a submission":
			learnLoop(predictor)
		case "predict a field":
			predictOnce(predictor)
		case "suggestions":
			suggestOnce(predictor)
		case "show profile":
			fmt.Printf("%+v\nbudget remaining: %.2f\n", predictor.Profile(), predictor.BudgetRemaining())
		default:
			return
		}
	}
}

// learnLoop prompts field=value pairs until a blank line, then feeds the
// record to the predictor.
func learnLoop(predictor *smartform.Predictor) {
	record := form.SubmissionRecord{}
	var order []string
	for {
		var entry string
		if err := survey.AskOne(&survey.Input{
			Message: "field=value (blank to finish):",
		}, &entry); err != nil {
			return
		}
		entry = strings.TrimSpace(entry)
		if entry == "" {
			break
		}
		name, value, found := strings.Cut(entry, "=")
		if !found {
			fmt.Println("expected field=value")
			continue
		}
		name = strings.TrimSpace(name)
		record[name] = strings.TrimSpace(value)
		order = append(order, name)
	}
	if len(record) == 0 {
		return
	}

	predictor.Learn(smartform.LearnInput{
		Record:   record,
		Order:    order,
		When:     time.Now(),
		Platform: runtime.GOOS,
	})
	fmt.Printf("learned %d fields\n", len(record))
}

func predictOnce(predictor *smartform.Predictor) {
	var name string
	if err := survey.AskOne(&survey.Input{Message: "field name:"}, &name); err != nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	prediction := predictor.Predict(
		form.FieldDescriptor{Name: name, Kind: form.FieldKindText},
		form.FormSnapshot{},
		feature.Env{Platform: runtime.GOOS, Now: time.Now()},
	)
	fmt.Printf("value: %q (confidence %.2f, source %s)\n",
		prediction.Value, prediction.Confidence, prediction.Source)
	if len(prediction.Alternatives) > 0 {
		fmt.Printf("alternatives: %s\n", strings.Join(prediction.Alternatives, ", "))
	}
}

func suggestOnce(predictor *smartform.Predictor) {
	var name, partial string
	if err := survey.AskOne(&survey.Input{Message: "field name:"}, &name); err != nil {
		return
	}
	if err := survey.AskOne(&survey.Input{Message: "partial value:"}, &partial); err != nil {
		return
	}

	suggestions := predictor.Suggestions(strings.TrimSpace(name), strings.TrimSpace(partial))
	if len(suggestions) == 0 {
		fmt.Println("no suggestions")
		return
	}
	for _, suggestion := range suggestions {
		fmt.Printf("  %s\n", suggestion)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
