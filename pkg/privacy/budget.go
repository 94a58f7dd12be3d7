// Package privacy implements the differential-privacy layer applied to
// submission records before they enter training state: a consumable epsilon
// budget, Laplace-mechanism noise over numeric fields, and field-specific
// generalization of re-identifying values.
package privacy

// BudgetManager tracks a consumable epsilon budget. Used never decreases
// within a session except through an explicit Reset, never goes negative,
// and never exceeds the configured total.
type BudgetManager struct {
	total float64
	used  float64
}

// NewBudgetManager creates a manager with the given total epsilon. Negative
// totals are clamped to zero so the manager starts exhausted rather than in
// an invalid state.
func NewBudgetManager(total float64) *BudgetManager {
	if total < 0 {
		total = 0
	}
	return &BudgetManager{total: total}
}

// Consume grants up to requested epsilon, clamping at the remaining budget.
// A zero grant signals the caller must treat the record as unprotected
// pass-through; it is a deliberate fallback, not a failure.
func (b *BudgetManager) Consume(requested float64) float64 {
	if requested <= 0 {
		return 0
	}
	remaining := b.total - b.used
	if remaining <= 0 {
		return 0
	}
	granted := requested
	if granted > remaining {
		granted = remaining
	}
	b.used += granted
	return granted
}

// Remaining reports the unconsumed budget.
func (b *BudgetManager) Remaining() float64 {
	return b.total - b.used
}

// Used reports the consumed budget, for state export.
func (b *BudgetManager) Used() float64 {
	return b.used
}

// Total reports the configured budget, for state export.
func (b *BudgetManager) Total() float64 {
	return b.total
}

// Reset zeroes the consumed budget. Intended for explicit operator action
// only; the core never calls it on its own.
func (b *BudgetManager) Reset() {
	b.used = 0
}

// Restore overwrites the manager's counters from persisted state, clamping
// used into [0, total] so imported state can never break the invariants.
func (b *BudgetManager) Restore(total, used float64) {
	if total < 0 {
		total = 0
	}
	if used < 0 {
		used = 0
	}
	if used > total {
		used = total
	}
	b.total = total
	b.used = used
}
