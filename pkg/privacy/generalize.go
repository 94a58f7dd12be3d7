package privacy

import (
	"strconv"
	"strings"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

// Generalization policy: fields feeding training statistics (age, income,
// national-ID-like values, free-form locations) are coarsened; contact
// fields used for suggestion display (email, phone) pass through untouched.
// The two strategies are intentionally asymmetric and must not be merged.

// AgeBucket coarsens an age in years to a label.
func AgeBucket(age float64) string {
	switch {
	case age < 18:
		return "child"
	case age < 30:
		return "young-adult"
	case age < 45:
		return "adult"
	case age < 65:
		return "middle-aged"
	default:
		return "elderly"
	}
}

// IncomeBucket coarsens an annual income to a label.
func IncomeBucket(income float64) string {
	switch {
	case income < 30000:
		return "low"
	case income < 75000:
		return "middle"
	case income < 150000:
		return "upper-middle"
	default:
		return "high"
	}
}

// MaskIdentifier keeps a two-character prefix and suffix, replacing the
// middle with asterisks. Values too short to mask are returned unchanged.
func MaskIdentifier(value string) string {
	if len(value) <= 4 {
		return value
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}

// TruncateLocation keeps only the city-level component of a free-form
// location, cutting at the first comma.
func TruncateLocation(value string) string {
	if idx := strings.Index(value, ","); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}
	return strings.TrimSpace(value)
}

// Generalize rewrites the re-identifying fields of a record in place on a
// clone, leaving email and phone byte-identical. Field roles are inferred
// from the field name.
func Generalize(record form.SubmissionRecord) form.SubmissionRecord {
	out := record.Clone()
	for name, value := range out {
		lower := strings.ToLower(name)
		switch {
		case containsAny(lower, "email", "phone", "tel", "mobile"):
			// preserved in full for suggestion display
		case containsAny(lower, "age", "birth"):
			if age, err := strconv.ParseFloat(value, 64); err == nil {
				out[name] = AgeBucket(age)
			}
		case containsAny(lower, "income", "salary"):
			if income, err := strconv.ParseFloat(value, 64); err == nil {
				out[name] = IncomeBucket(income)
			}
		case containsAny(lower, "ssn", "national", "passport", "taxid", "tax_id"):
			out[name] = MaskIdentifier(value)
		case containsAny(lower, "address", "location", "city"):
			out[name] = TruncateLocation(value)
		}
	}
	return out
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
