package engine

import (
	"github.com/pathlight-labs/pathlight/internal/types"
)

// accumulatorTraits are the physical accumulator keys, in canonical order.
// Note neuroticism in place of emotional_stability: the inversion happens
// only at vector-derivation time, never in storage.
var accumulatorTraits = []types.Trait{
	types.TraitAptitude,
	types.TraitOpenness,
	types.TraitConscientiousness,
	types.TraitExtraversion,
	types.TraitAgreeableness,
	types.TraitNeuroticism,
	types.TraitRealistic,
	types.TraitInvestigative,
	types.TraitArtistic,
}

type traitState struct {
	sum    float64
	count  float64
	minSum float64
	maxSum float64
}

// Accumulator owns the running per-trait sums for one session. Updates are
// sequential and monotonic: a contribution can never be reversed within a
// session. Reads are valid at any point, so intermediate snapshots can feed
// the adaptive selector.
type Accumulator struct {
	states map[types.Trait]*traitState
}

// NewAccumulator returns an empty accumulator covering all nine dimensions.
func NewAccumulator() *Accumulator {
	states := make(map[types.Trait]*traitState, len(accumulatorTraits))
	for _, t := range accumulatorTraits {
		states[t] = &traitState{}
	}
	return &Accumulator{states: states}
}

// storageKey maps a public trait to its physical accumulator key.
func storageKey(t types.Trait) types.Trait {
	if t == types.TraitEmotionalStability {
		return types.TraitNeuroticism
	}
	return t
}

// Apply adds a contribution to its trait's running sum and widens that
// trait's theoretical bounds by the item's scale range.
func (a *Accumulator) Apply(c Contribution) {
	st, ok := a.states[storageKey(c.Trait)]
	if !ok {
		// unknown dimension: drop rather than corrupt another trait
		return
	}
	st.sum += c.Value * c.Weight
	st.count += c.Weight
	st.minSum += c.Min * c.Weight
	st.maxSum += c.Max * c.Weight
}

// Observations reports how many weighted responses have touched a trait.
func (a *Accumulator) Observations(t types.Trait) float64 {
	st, ok := a.states[storageKey(t)]
	if !ok {
		return 0
	}
	return st.count
}

// Vector derives the normalized [0, 1] trait profile from the current sums.
// Each trait is linearly rescaled from its accumulated theoretical range and
// clamped against rounding drift. A trait with zero observations reports the
// neutral midpoint 0.5. Emotional stability is the arithmetic inverse of the
// neuroticism accumulation.
func (a *Accumulator) Vector() types.Vector {
	vec := make(types.Vector, len(types.Traits))
	for _, t := range types.Traits {
		st := a.states[storageKey(t)]
		value := 0.5
		if st.count > 0 && st.maxSum > st.minSum {
			value = clamp01((st.sum - st.minSum) / (st.maxSum - st.minSum))
		}
		if t == types.TraitEmotionalStability {
			value = 1.0 - value
		}
		vec[t] = value
	}
	return vec
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
