package engine

import (
	"fmt"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// Contribution is the normalized effect of one response on one trait.
// Min and Max carry the theoretical per-item bounds of the scoring scale,
// so the accumulator can track exact normalization ranges as items arrive.
type Contribution struct {
	Trait  types.Trait
	Value  float64
	Weight float64
	Min    float64
	Max    float64
}

// Normalize maps a raw answer to a signed trait contribution.
//
// MCQ items contribute 1.0 on a correct answer and 0.0 otherwise. Likert
// items contribute the signed scale value, reversed for negative-polarity
// questions. The item weight is always 1.0. Returns an InvalidResponse
// error when the response references a different question or its value is
// outside the scale's domain; no state is touched on failure.
func Normalize(q types.QuestionSpec, r types.RawResponse) (Contribution, error) {
	if r.QuestionID != q.ID {
		return Contribution{}, apperrors.NewInvalidResponseError(
			fmt.Sprintf("response for question %q does not match question %q", r.QuestionID, q.ID))
	}

	switch q.Kind {
	case types.KindAptitudeMCQ:
		if r.Value < 0 || r.Value >= len(q.Options) {
			return Contribution{}, apperrors.NewInvalidResponseError(
				fmt.Sprintf("option index %d out of range for question %q (%d options)", r.Value, q.ID, len(q.Options)))
		}
		value := 0.0
		if r.Value == q.Correct {
			value = 1.0
		}
		return Contribution{Trait: q.Trait, Value: value, Weight: 1.0, Min: 0, Max: 1}, nil

	case types.KindLikert5:
		if r.Value < types.StronglyDisagree || r.Value > types.StronglyAgree {
			return Contribution{}, apperrors.NewInvalidResponseError(
				fmt.Sprintf("likert value %d out of range [-2, 2] for question %q", r.Value, q.ID))
		}
		value := float64(r.Value)
		if q.Polarity == types.PolarityNegative {
			value = -value
		}
		return Contribution{Trait: q.Trait, Value: value, Weight: 1.0, Min: -2, Max: 2}, nil

	default:
		return Contribution{}, apperrors.NewInvalidResponseError(
			fmt.Sprintf("question %q has unknown answer kind %q", q.ID, q.Kind))
	}
}
