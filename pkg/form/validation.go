package form

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Result captures a validation outcome. Warnings carry non-fatal signals,
// such as a malformed pattern that was skipped rather than enforced.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// RuleFunc is a caller-supplied validation rule. Returning an error marks the
// value invalid with the error text as the message.
type RuleFunc func(value string) error

// Rules stores named custom validation rules registered by the caller.
type Rules struct {
	rules map[string]RuleFunc
}

// NewRules creates an empty rule registry.
func NewRules() *Rules {
	return &Rules{rules: make(map[string]RuleFunc)}
}

// Register adds a named rule. A nil rule is a hard error raised to the
// caller immediately; duplicate names overwrite the previous rule.
func (r *Rules) Register(name string, rule RuleFunc) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("form: rule name is required")
	}
	if rule == nil {
		return fmt.Errorf("form: rule %q is not callable", name)
	}
	r.rules[name] = rule
	return nil
}

// Apply runs every registered rule against the value, collecting failures
// into the result. Rules run in name order for deterministic output.
func (r *Rules) Apply(value string, result *Result) {
	if r == nil || len(r.rules) == 0 || result == nil {
		return
	}
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.rules[name](value); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
		}
	}
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ().-]{7,20}$`)

// Validate checks a value against the descriptor's declared constraints and
// the format implied by its kind. A malformed regex pattern is treated as
// "validation passes" with a warning appended, never as an error.
func Validate(desc FieldDescriptor, value string) Result {
	result := Result{Valid: true}

	trimmed := strings.TrimSpace(value)
	if desc.Required && trimmed == "" {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("field %q is required", desc.Name))
		return result
	}
	if trimmed == "" {
		return result
	}

	if desc.MinLength > 0 && len(value) < desc.MinLength {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("field %q is shorter than %d characters", desc.Name, desc.MinLength))
	}
	if desc.MaxLength > 0 && len(value) > desc.MaxLength {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("field %q is longer than %d characters", desc.Name, desc.MaxLength))
	}

	if desc.Pattern != "" {
		re, err := regexp.Compile(desc.Pattern)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("field %q has an invalid pattern, skipped: %v", desc.Name, err))
		} else if !re.MatchString(value) {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("field %q does not match its pattern", desc.Name))
		}
	}

	if msg := validateKind(desc.Kind, trimmed); msg != "" {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("field %q %s", desc.Name, msg))
	}

	return result
}

func validateKind(kind FieldKind, value string) string {
	switch kind {
	case FieldKindEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return "is not a valid email address"
		}
	case FieldKindPhone:
		if !phonePattern.MatchString(value) {
			return "is not a valid phone number"
		}
	case FieldKindNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "is not numeric"
		}
	case FieldKindDate:
		if !parseableDate(value) {
			return "is not a recognised date"
		}
	case FieldKindURL:
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return "is not an absolute URL"
		}
	}
	return ""
}

func parseableDate(value string) bool {
	for _, layout := range []string{"2006-01-02", "01/02/2006", "2006-01-02T15:04:05Z07:00"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
