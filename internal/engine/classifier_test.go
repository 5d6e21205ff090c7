package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

func neutralVector() types.Vector {
	vec := make(types.Vector, len(types.Traits))
	for _, t := range types.Traits {
		vec[t] = 0.5
	}
	return vec
}

func testCategories() []types.Category {
	return []types.Category{
		{
			Name: "Engineering",
			Weights: map[types.Trait]float64{
				types.TraitAptitude:      0.9,
				types.TraitInvestigative: 0.8,
				types.TraitRealistic:     0.5,
			},
		},
		{
			Name: "Creative Arts",
			Weights: map[types.Trait]float64{
				types.TraitArtistic: 0.9,
				types.TraitOpenness: 0.7,
			},
			Roles: []string{"Illustrator", "Writer"},
		},
		{
			Name: "Social Services",
			Weights: map[types.Trait]float64{
				types.TraitAgreeableness: 0.9,
				types.TraitExtraversion:  0.6,
			},
		},
	}
}

func TestSigmoidMidpoint(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0.5), 1e-12)
	assert.Greater(t, sigmoid(1.0), 0.99)
	assert.Less(t, sigmoid(0.0), 0.01)
}

func TestClassifyDistribution(t *testing.T) {
	vec := neutralVector()
	vec[types.TraitArtistic] = 0.95
	vec[types.TraitOpenness] = 0.9

	res, err := Classify(vec, testCategories())
	require.NoError(t, err)

	sum := 0.0
	for name, p := range res.Probabilities {
		assert.Greater(t, p, 0.0, "category %s", name)
		assert.Less(t, p, 1.0, "category %s", name)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	assert.Equal(t, "Creative Arts", res.Top)
	assert.Equal(t, res.Ranked[0].Name, res.Top)
	assert.Equal(t, []string{"Illustrator", "Writer"}, res.Ranked[0].Roles)

	for i := 1; i < len(res.Ranked); i++ {
		assert.GreaterOrEqual(t, res.Ranked[i-1].Probability, res.Ranked[i].Probability)
	}
}

// wideCategories returns a category set the size of the production cluster
// table, every category weighting all nine dimensions. The many-key weight
// maps matter here: a dot product summed in map iteration order produces
// last-ulp drift between calls that small fixtures never expose.
func wideCategories() []types.Category {
	categories := make([]types.Category, 15)
	for i := range categories {
		weights := make(map[types.Trait]float64, len(types.Traits))
		for j, tr := range types.Traits {
			weights[tr] = 0.1 + 0.07*float64((i+j)%9)
		}
		categories[i] = types.Category{
			Name:    "Cluster " + string(rune('A'+i)),
			Weights: weights,
		}
	}
	return categories
}

func TestClassifyIsDeterministic(t *testing.T) {
	vec := neutralVector()
	vec[types.TraitAptitude] = 0.8
	vec[types.TraitArtistic] = 0.33
	vec[types.TraitRealistic] = 0.71

	categories := wideCategories()
	first, err := Classify(vec, categories)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		res, err := Classify(vec, categories)
		require.NoError(t, err)
		require.Equal(t, first.Top, res.Top, "iteration %d", i)
		for name, p := range first.Probabilities {
			require.Equal(t,
				math.Float64bits(p), math.Float64bits(res.Probabilities[name]),
				"iteration %d: probability for %q differs bitwise", i, name)
		}
		for j, rc := range first.Ranked {
			require.Equal(t, rc.Name, res.Ranked[j].Name, "iteration %d rank %d", i, j)
		}
	}
}

func TestClassifyMonotonicDiscrimination(t *testing.T) {
	// Raising a trait that only the top category weights must raise that
	// category's probability.
	low := neutralVector()
	low[types.TraitAgreeableness] = 0.55

	high := neutralVector()
	high[types.TraitAgreeableness] = 0.8

	resLow, err := Classify(low, testCategories())
	require.NoError(t, err)
	resHigh, err := Classify(high, testCategories())
	require.NoError(t, err)

	assert.Greater(t, resHigh.Probabilities["Social Services"], resLow.Probabilities["Social Services"])
}

func TestClassifyIdenticalCategoriesSplitEvenly(t *testing.T) {
	categories := []types.Category{
		{Name: "First", Weights: map[types.Trait]float64{types.TraitOpenness: 0.7}},
		{Name: "Second", Weights: map[types.Trait]float64{types.TraitOpenness: 0.7}},
	}

	res, err := Classify(neutralVector(), categories)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Probabilities["First"], 1e-12)
	assert.InDelta(t, 0.5, res.Probabilities["Second"], 1e-12)
	// ties resolve to declared order
	assert.Equal(t, "First", res.Top)
}

func TestClassifyDegenerateTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		categories []types.Category
	}{
		{name: "empty set", categories: nil},
		{
			name: "all weights zero",
			categories: []types.Category{
				{Name: "A", Weights: map[types.Trait]float64{types.TraitOpenness: 0}},
				{Name: "B", Weights: map[types.Trait]float64{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(neutralVector(), tt.categories)
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfiguration))
		})
	}
}

func TestClassifySingleCategory(t *testing.T) {
	res, err := Classify(neutralVector(), []types.Category{
		{Name: "Only", Weights: map[types.Trait]float64{types.TraitOpenness: 0.5}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Probabilities["Only"], 1e-12)
	assert.Equal(t, "Only", res.Top)
}
