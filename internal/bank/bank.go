// Package bank loads the static question table the engine selects from.
// The bank ships embedded; a data directory can override it, the same way
// calibration-style JSON tables are overridden in deployment.
package bank

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

//go:embed data/bank.json
var embedded embed.FS

// Load returns the embedded default question bank.
func Load() ([]types.QuestionSpec, error) {
	raw, err := embedded.ReadFile("data/bank.json")
	if err != nil {
		return nil, apperrors.NewConfigError("embedded question bank missing", err)
	}
	return parse(raw)
}

// LoadFrom loads bank.json from a data directory, falling back to the
// embedded default when the file does not exist.
func LoadFrom(dataDir string) ([]types.QuestionSpec, error) {
	path := filepath.Join(dataDir, "bank.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read question bank %s", path), err)
	}
	return parse(raw)
}

func parse(raw []byte) ([]types.QuestionSpec, error) {
	var questions []types.QuestionSpec
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, apperrors.NewConfigError("failed to decode question bank", err)
	}
	if err := Validate(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Validate checks structural invariants of a question bank. Questions are
// immutable once loaded, so this runs once at startup.
func Validate(questions []types.QuestionSpec) error {
	if len(questions) == 0 {
		return apperrors.NewConfigError("question bank is empty", nil)
	}
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return apperrors.NewConfigError("question with empty id", nil)
		}
		if seen[q.ID] {
			return apperrors.NewConfigError(fmt.Sprintf("duplicate question id %q", q.ID), nil)
		}
		seen[q.ID] = true
		if q.Text == "" {
			return apperrors.NewConfigError(fmt.Sprintf("question %q has no text", q.ID), nil)
		}

		switch q.Kind {
		case types.KindAptitudeMCQ:
			if len(q.Options) < 2 {
				return apperrors.NewConfigError(fmt.Sprintf("mcq question %q needs at least two options", q.ID), nil)
			}
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return apperrors.NewConfigError(fmt.Sprintf("mcq question %q has correct index %d out of range", q.ID, q.Correct), nil)
			}
		case types.KindLikert5:
			if q.Polarity != types.PolarityPositive && q.Polarity != types.PolarityNegative {
				return apperrors.NewConfigError(fmt.Sprintf("likert question %q has invalid polarity %q", q.ID, q.Polarity), nil)
			}
		default:
			return apperrors.NewConfigError(fmt.Sprintf("question %q has unknown kind %q", q.ID, q.Kind), nil)
		}
	}
	return nil
}

// Index builds a lookup table keyed by question id.
func Index(questions []types.QuestionSpec) map[string]types.QuestionSpec {
	idx := make(map[string]types.QuestionSpec, len(questions))
	for _, q := range questions {
		idx[q.ID] = q
	}
	return idx
}

// ByTrait groups questions per target dimension, preserving bank order.
func ByTrait(questions []types.QuestionSpec) map[types.Trait][]types.QuestionSpec {
	grouped := make(map[types.Trait][]types.QuestionSpec)
	for _, q := range questions {
		grouped[q.Trait] = append(grouped[q.Trait], q)
	}
	return grouped
}
