package privacy

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

// Noiser applies Laplace-mechanism noise to numeric record fields. The
// random source is injected so tests stay deterministic.
type Noiser struct {
	rng *rand.Rand
}

// NewNoiser creates a Noiser backed by the provided source. A nil source
// gets a fixed-seed fallback, which keeps behaviour reproducible but should
// be overridden by hosts that care about unpredictability.
func NewNoiser(rng *rand.Rand) *Noiser {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Noiser{rng: rng}
}

// Laplace draws a sample from the Laplace distribution with the given scale
// using inverse transform sampling.
func (n *Noiser) Laplace(scale float64) float64 {
	u := n.rng.Float64() - 0.5
	return -scale * sign(u) * math.Log(1-2*math.Abs(u))
}

// Protect applies the privacy layer to a record under the granted epsilon:
// Laplace noise (scale 1/epsilon) on every numeric field, then field-level
// generalization. Epsilon <= 0 means the budget was exhausted and the record
// passes through unprotected.
func (n *Noiser) Protect(record form.SubmissionRecord, epsilon float64) form.SubmissionRecord {
	if epsilon <= 0 {
		return record
	}
	scale := 1 / epsilon
	noised := record.Clone()
	for name, value := range noised {
		num, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		noised[name] = strconv.FormatFloat(num+n.Laplace(scale), 'f', -1, 64)
	}
	return Generalize(noised)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
