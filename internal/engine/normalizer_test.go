package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

func mcqQuestion(id string, correct int) types.QuestionSpec {
	return types.QuestionSpec{
		ID:      id,
		Trait:   types.TraitAptitude,
		Kind:    types.KindAptitudeMCQ,
		Text:    "placeholder",
		Options: []string{"a", "b", "c", "d"},
		Correct: correct,
	}
}

func likertQuestion(id string, trait types.Trait, polarity types.Polarity) types.QuestionSpec {
	return types.QuestionSpec{
		ID:       id,
		Trait:    trait,
		Kind:     types.KindLikert5,
		Polarity: polarity,
		Text:     "placeholder",
	}
}

func TestNormalizeMCQ(t *testing.T) {
	q := mcqQuestion("apt-1", 2)

	tests := []struct {
		name     string
		value    int
		expected float64
	}{
		{name: "correct option scores 1", value: 2, expected: 1.0},
		{name: "wrong option scores 0", value: 0, expected: 0.0},
		{name: "last wrong option scores 0", value: 3, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Normalize(q, types.RawResponse{QuestionID: "apt-1", Value: tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.Value)
			assert.Equal(t, types.TraitAptitude, c.Trait)
			assert.Equal(t, 1.0, c.Weight)
			assert.Equal(t, 0.0, c.Min)
			assert.Equal(t, 1.0, c.Max)
		})
	}
}

func TestNormalizeLikert(t *testing.T) {
	tests := []struct {
		name     string
		polarity types.Polarity
		value    int
		expected float64
	}{
		{name: "strongly agree positive", polarity: types.PolarityPositive, value: 2, expected: 2.0},
		{name: "disagree positive", polarity: types.PolarityPositive, value: -1, expected: -1.0},
		{name: "neutral is zero", polarity: types.PolarityPositive, value: 0, expected: 0.0},
		{name: "strongly agree reversed on negative item", polarity: types.PolarityNegative, value: 2, expected: -2.0},
		{name: "strongly disagree reversed on negative item", polarity: types.PolarityNegative, value: -2, expected: 2.0},
		{name: "neutral unaffected by polarity", polarity: types.PolarityNegative, value: 0, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := likertQuestion("q-1", types.TraitOpenness, tt.polarity)
			c, err := Normalize(q, types.RawResponse{QuestionID: "q-1", Value: tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.Value)
			assert.Equal(t, -2.0, c.Min)
			assert.Equal(t, 2.0, c.Max)
		})
	}
}

func TestNormalizeRejectsInvalidResponses(t *testing.T) {
	tests := []struct {
		name     string
		question types.QuestionSpec
		response types.RawResponse
	}{
		{
			name:     "mismatched question id",
			question: mcqQuestion("apt-1", 0),
			response: types.RawResponse{QuestionID: "apt-2", Value: 0},
		},
		{
			name:     "mcq index above range",
			question: mcqQuestion("apt-1", 0),
			response: types.RawResponse{QuestionID: "apt-1", Value: 4},
		},
		{
			name:     "mcq negative index",
			question: mcqQuestion("apt-1", 0),
			response: types.RawResponse{QuestionID: "apt-1", Value: -1},
		},
		{
			name:     "likert above scale",
			question: likertQuestion("q-1", types.TraitOpenness, types.PolarityPositive),
			response: types.RawResponse{QuestionID: "q-1", Value: 3},
		},
		{
			name:     "likert below scale",
			question: likertQuestion("q-1", types.TraitOpenness, types.PolarityPositive),
			response: types.RawResponse{QuestionID: "q-1", Value: -3},
		},
		{
			name:     "unknown answer kind",
			question: types.QuestionSpec{ID: "q-1", Trait: types.TraitOpenness, Kind: "essay"},
			response: types.RawResponse{QuestionID: "q-1", Value: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.question, tt.response)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidResponse(err))
		})
	}
}
