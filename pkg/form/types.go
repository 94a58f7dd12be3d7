package form

import "time"

// FieldKind is the simplified enum for form-friendly field kinds. It drives
// model selection, semantic categorisation, and kind-specific validation.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindEmail    FieldKind = "email"
	FieldKindPhone    FieldKind = "phone"
	FieldKindNumber   FieldKind = "number"
	FieldKindDate     FieldKind = "date"
	FieldKindPassword FieldKind = "password"
	FieldKindSelect   FieldKind = "select"
	FieldKindAddress  FieldKind = "address"
	FieldKindURL      FieldKind = "url"
	FieldKindGeneric  FieldKind = "generic"
)

// NormalizeKind maps arbitrary caller-supplied kind strings onto the known
// enum, falling back to FieldKindGeneric for anything unrecognised.
func NormalizeKind(raw string) FieldKind {
	switch FieldKind(raw) {
	case FieldKindText, FieldKindEmail, FieldKindPhone, FieldKindNumber,
		FieldKindDate, FieldKindPassword, FieldKindSelect, FieldKindAddress,
		FieldKindURL:
		return FieldKind(raw)
	case "tel":
		return FieldKindPhone
	case "textarea":
		return FieldKindText
	default:
		return FieldKindGeneric
	}
}

// FieldDescriptor identifies a single input slot and its declared
// constraints. Descriptors are immutable per request and supplied by the
// caller; the core never mutates them.
type FieldDescriptor struct {
	Name         string    `json:"name"`
	Kind         FieldKind `json:"kind"`
	Required     bool      `json:"required,omitempty"`
	Pattern      string    `json:"pattern,omitempty"`
	MinLength    int       `json:"minLength,omitempty"`
	MaxLength    int       `json:"maxLength,omitempty"`
	CurrentValue string    `json:"currentValue,omitempty"`
}

// FieldState captures the observed state of one field inside a snapshot.
// FocusStart is nil when the field has never received focus.
type FieldState struct {
	Value      string     `json:"value"`
	Kind       FieldKind  `json:"kind"`
	Focused    bool       `json:"focused"`
	FocusStart *time.Time `json:"focusStart,omitempty"`
}

// FormSnapshot is a read-only view of a form at prediction time, keyed by
// field name. Iteration-sensitive consumers use Names for declaration order.
type FormSnapshot struct {
	Fields map[string]FieldState `json:"fields"`

	// Order preserves the caller's declaration order. When empty, consumers
	// fall back to sorted field names so behaviour stays deterministic.
	Order []string `json:"order,omitempty"`
}

// Names returns the snapshot's field names in declaration order when the
// caller supplied one, otherwise sorted lexically.
func (s FormSnapshot) Names() []string {
	if len(s.Order) > 0 {
		names := make([]string, 0, len(s.Order))
		for _, name := range s.Order {
			if _, ok := s.Fields[name]; ok {
				names = append(names, name)
			}
		}
		return names
	}
	return sortedKeys(s.Fields)
}

// SubmissionRecord is one completed form: field name to scalar value. Values
// arrive stringified; numeric interpretation happens in the consumer that
// needs it.
type SubmissionRecord map[string]string

// Clone returns a shallow copy so privacy processing can rewrite values
// without mutating the caller's map.
func (r SubmissionRecord) Clone() SubmissionRecord {
	if r == nil {
		return nil
	}
	out := make(SubmissionRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
