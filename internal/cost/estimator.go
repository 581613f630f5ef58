// internal/cost/estimator.go
package cost

import (
	"math"

	"agrimarket-ai/internal/common/metrics"
	"agrimarket-ai/internal/common/providers"
)

// Generative model pricing in dollars per million units.
const (
	inputRatePerMillion  = 0.075
	outputRatePerMillion = 0.30
)

// researchFlatRate is charged per research call regardless of size.
const researchFlatRate = 0.005

// Estimate computes the dollar cost of a generative call. When only a
// total unit count is known, it is split evenly between input and output
// before applying the per-direction rates. Results are rounded to six
// decimal places and never negative.
func Estimate(usage providers.Usage) float64 {
	in := usage.PromptUnits
	out := usage.CompletionUnits

	if in == 0 && out == 0 {
		return 0
	}

	// A single aggregate count gets a 50/50 split.
	if in == 0 || out == 0 {
		total := in + out
		half := float64(total) / 2
		return round6(half*inputRatePerMillion/1e6 + half*outputRatePerMillion/1e6)
	}

	cost := float64(in)*inputRatePerMillion/1e6 + float64(out)*outputRatePerMillion/1e6
	return round6(cost)
}

// EstimateResearch returns the flat per-call research rate.
func EstimateResearch() float64 {
	return researchFlatRate
}

// Record adds an estimate to the running cost metric for a provider.
func Record(provider string, dollars float64) {
	if dollars <= 0 {
		return
	}
	metrics.EstimatedCost.WithLabelValues(provider).Add(dollars)
}

func round6(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Round(v*1e6) / 1e6
}
