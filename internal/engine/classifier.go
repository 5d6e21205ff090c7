package engine

import (
	"math"
	"sort"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// sigmoidSharpness is the steep slope constant of the activation. It is
// deliberately large so small differences in weighted fit translate into a
// decisive probability spread instead of near-uniform scores. Changing it
// changes every downstream probability.
const sigmoidSharpness = 12.0

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sigmoidSharpness*(z-0.5)))
}

// Classify runs the forward pass over a candidate category set:
// weighted dot product -> sharp sigmoid -> softmax across categories.
//
// The result is a probability distribution summing to 1.0 within floating
// tolerance, ranked descending with ties broken by the categories' declared
// order. Classify is a pure function: identical inputs yield bit-identical
// output.
func Classify(vec types.Vector, categories []types.Category) (types.ClassificationResult, error) {
	if len(categories) == 0 {
		return types.ClassificationResult{}, apperrors.NewDegenerateTaxonomyError("category set is empty")
	}
	degenerate := true
	for _, c := range categories {
		for _, w := range c.Weights {
			if w != 0 {
				degenerate = false
				break
			}
		}
		if !degenerate {
			break
		}
	}
	if degenerate {
		return types.ClassificationResult{}, apperrors.NewDegenerateTaxonomyError("all category weight vectors are zero")
	}

	activations := make([]float64, len(categories))
	maxActivation := math.Inf(-1)
	for i, c := range categories {
		// Sum in canonical trait order. Float addition is not associative,
		// so ranging over the weight map would make the result depend on
		// map iteration order and break bit-identical repeatability.
		z := 0.0
		for _, trait := range types.Traits {
			z += vec[trait] * c.Weights[trait]
		}
		a := sigmoid(z)
		activations[i] = a
		if a > maxActivation {
			maxActivation = a
		}
	}

	// softmax, max-subtracted for numerical stability
	expSum := 0.0
	exps := make([]float64, len(activations))
	for i, a := range activations {
		e := math.Exp(a - maxActivation)
		exps[i] = e
		expSum += e
	}

	probabilities := make(map[string]float64, len(categories))
	order := make([]int, len(categories))
	for i := range categories {
		order[i] = i
		probabilities[categories[i].Name] = exps[i] / expSum
	}

	sort.SliceStable(order, func(a, b int) bool {
		return exps[order[a]] > exps[order[b]]
	})

	ranked := make([]types.RankedCategory, len(order))
	for i, idx := range order {
		ranked[i] = types.RankedCategory{
			Name:        categories[idx].Name,
			Probability: exps[idx] / expSum,
			Roles:       categories[idx].Roles,
		}
	}

	return types.ClassificationResult{
		Probabilities: probabilities,
		Ranked:        ranked,
		Top:           ranked[0].Name,
	}, nil
}
