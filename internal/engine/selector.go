package engine

import (
	"math/rand"
	"sort"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// Policy picks the next question from a session's remaining pool. Policies
// are pluggable: the adaptive policy is the real product path, the random
// policy feeds demo/synthetic sessions, and the sequential policy serves
// full-bank mode where selection is bypassed.
type Policy interface {
	// Next returns the next question to ask given the current accumulator
	// state. It returns an EmptyQuestionPool error when called with an
	// exhausted pool; callers are expected to stop before that happens.
	Next(acc *Accumulator) (types.QuestionSpec, error)
	// Remaining reports how many unused questions the pool still holds.
	Remaining() int
}

// Informativeness scores how much a dimension's estimate would benefit from
// another observation: 1.0 at the undecided midpoint, 0.0 at either extreme.
// A mid-range estimate is treated as under-determined, not as settled.
func Informativeness(value float64) float64 {
	s := 1.0 - abs(value-0.5)*2
	if s < 0 {
		return 0
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// publicKey maps a question-target trait to the public vector key it is
// scored under.
func publicKey(t types.Trait) types.Trait {
	if t == types.TraitNeuroticism {
		return types.TraitEmotionalStability
	}
	return t
}

// AdaptivePolicy selects the question whose target dimension currently sits
// closest to the undecided midpoint. Unobserved dimensions are maximally
// informative, so every dimension is sampled before any repeats. Ties break
// by fewest observations, then by the dimension's first appearance in the
// pool; within a dimension, questions come out in pool insertion order. The
// whole procedure is deterministic.
type AdaptivePolicy struct {
	pool []types.QuestionSpec
	used map[string]bool
}

// NewAdaptivePolicy builds an adaptive policy over a question pool. The
// pool's slice order is significant: it is the stable tie-break order.
func NewAdaptivePolicy(pool []types.QuestionSpec) *AdaptivePolicy {
	return &AdaptivePolicy{
		pool: pool,
		used: make(map[string]bool, len(pool)),
	}
}

func (p *AdaptivePolicy) Remaining() int {
	n := 0
	for _, q := range p.pool {
		if !p.used[q.ID] {
			n++
		}
	}
	return n
}

func (p *AdaptivePolicy) Next(acc *Accumulator) (types.QuestionSpec, error) {
	type dimRank struct {
		trait        types.Trait
		score        float64
		observations float64
		firstIndex   int
	}

	// Collect candidate dimensions in pool insertion order, skipping
	// dimensions whose questions are all used.
	firstIndex := make(map[types.Trait]int)
	remaining := make(map[types.Trait]int)
	for i, q := range p.pool {
		if _, seen := firstIndex[q.Trait]; !seen {
			firstIndex[q.Trait] = i
		}
		if !p.used[q.ID] {
			remaining[q.Trait]++
		}
	}
	if len(remaining) == 0 {
		return types.QuestionSpec{}, apperrors.NewEmptyPoolError("question pool exhausted")
	}

	vec := acc.Vector()
	ranks := make([]dimRank, 0, len(remaining))
	for trait := range remaining {
		obs := acc.Observations(trait)
		score := 1.0
		if obs > 0 {
			score = Informativeness(vec[publicKey(trait)])
		}
		ranks = append(ranks, dimRank{
			trait:        trait,
			score:        score,
			observations: obs,
			firstIndex:   firstIndex[trait],
		})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].score != ranks[j].score {
			return ranks[i].score > ranks[j].score
		}
		if ranks[i].observations != ranks[j].observations {
			return ranks[i].observations < ranks[j].observations
		}
		return ranks[i].firstIndex < ranks[j].firstIndex
	})

	target := ranks[0].trait
	for _, q := range p.pool {
		if q.Trait == target && !p.used[q.ID] {
			p.used[q.ID] = true
			return q, nil
		}
	}

	// remaining[target] > 0 guarantees the loop above returned
	return types.QuestionSpec{}, apperrors.NewEmptyPoolError("no unused question for selected dimension")
}

// RandomPolicy draws uniformly at random from the remaining pool. Seeded for
// reproducibility; used for synthetic answer generation, not real sessions.
type RandomPolicy struct {
	pool []types.QuestionSpec
	used map[string]bool
	rng  *rand.Rand
}

func NewRandomPolicy(pool []types.QuestionSpec, seed int64) *RandomPolicy {
	return &RandomPolicy{
		pool: pool,
		used: make(map[string]bool, len(pool)),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (p *RandomPolicy) Remaining() int {
	n := 0
	for _, q := range p.pool {
		if !p.used[q.ID] {
			n++
		}
	}
	return n
}

func (p *RandomPolicy) Next(_ *Accumulator) (types.QuestionSpec, error) {
	unused := make([]types.QuestionSpec, 0, len(p.pool))
	for _, q := range p.pool {
		if !p.used[q.ID] {
			unused = append(unused, q)
		}
	}
	if len(unused) == 0 {
		return types.QuestionSpec{}, apperrors.NewEmptyPoolError("question pool exhausted")
	}
	q := unused[p.rng.Intn(len(unused))]
	p.used[q.ID] = true
	return q, nil
}

// SequentialPolicy presents the pool in fixed order. This is the full-bank
// mode where adaptive selection is bypassed entirely.
type SequentialPolicy struct {
	pool []types.QuestionSpec
	next int
}

func NewSequentialPolicy(pool []types.QuestionSpec) *SequentialPolicy {
	return &SequentialPolicy{pool: pool}
}

func (p *SequentialPolicy) Remaining() int {
	return len(p.pool) - p.next
}

func (p *SequentialPolicy) Next(_ *Accumulator) (types.QuestionSpec, error) {
	if p.next >= len(p.pool) {
		return types.QuestionSpec{}, apperrors.NewEmptyPoolError("question pool exhausted")
	}
	q := p.pool[p.next]
	p.next++
	return q, nil
}
