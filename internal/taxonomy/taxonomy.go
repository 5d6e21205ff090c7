// Package taxonomy holds the fixed career category tables: the flat
// 15-cluster model and the staged Field -> Sub-field -> Specialization tree.
// Both are hand-authored weight tables shipped as embedded JSON, loaded once
// at startup and never mutated, so they are safe to share across sessions
// without locking. Alternate taxonomies can be dropped into the data
// directory without touching the classifier.
package taxonomy

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

//go:embed data/clusters.json data/tree.json
var embedded embed.FS

// Stage names of the drill-down tree, in classification order.
var stageNames = []string{"field", "subfield", "specialization"}

// Field is a stage-1 node of the drill-down tree.
type Field struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Weights     map[types.Trait]float64 `json:"weights"`
	Subfields   []Subfield              `json:"subfields"`
}

// Subfield is a stage-2 node.
type Subfield struct {
	Name            string                  `json:"name"`
	Description     string                  `json:"description"`
	Weights         map[types.Trait]float64 `json:"weights"`
	Specializations []Specialization        `json:"specializations"`
}

// Specialization is a stage-3 leaf.
type Specialization struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Weights     map[types.Trait]float64 `json:"weights"`
	Roles       []string                `json:"roles"`
}

// Tree is the staged taxonomy. It implements engine.CategorySource.
type Tree struct {
	Fields []Field `json:"fields"`
}

// LoadClusters returns the embedded flat 15-cluster taxonomy, in declared
// order. The order is significant: it is the classifier's tie-break order.
func LoadClusters() ([]types.Category, error) {
	raw, err := embedded.ReadFile("data/clusters.json")
	if err != nil {
		return nil, apperrors.NewConfigError("embedded cluster taxonomy missing", err)
	}
	return parseClusters(raw)
}

// LoadClustersFrom loads clusters.json from a data directory, falling back
// to the embedded default when the file does not exist.
func LoadClustersFrom(dataDir string) ([]types.Category, error) {
	path := filepath.Join(dataDir, "clusters.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return LoadClusters()
	}
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read taxonomy %s", path), err)
	}
	return parseClusters(raw)
}

func parseClusters(raw []byte) ([]types.Category, error) {
	var categories []types.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, apperrors.NewConfigError("failed to decode cluster taxonomy", err)
	}
	if err := ValidateCategories(categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// LoadTree returns the embedded staged taxonomy tree.
func LoadTree() (*Tree, error) {
	raw, err := embedded.ReadFile("data/tree.json")
	if err != nil {
		return nil, apperrors.NewConfigError("embedded taxonomy tree missing", err)
	}
	return parseTree(raw)
}

// LoadTreeFrom loads tree.json from a data directory, falling back to the
// embedded default when the file does not exist.
func LoadTreeFrom(dataDir string) (*Tree, error) {
	path := filepath.Join(dataDir, "tree.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return LoadTree()
	}
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read taxonomy tree %s", path), err)
	}
	return parseTree(raw)
}

func parseTree(raw []byte) (*Tree, error) {
	var tree Tree
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, apperrors.NewConfigError("failed to decode taxonomy tree", err)
	}
	if len(tree.Fields) == 0 {
		return nil, apperrors.NewDegenerateTaxonomyError("taxonomy tree has no fields")
	}
	for _, f := range tree.Fields {
		if len(f.Subfields) == 0 {
			return nil, apperrors.NewConfigError(fmt.Sprintf("field %q has no subfields", f.Name), nil)
		}
		if err := validWeights(f.Name, f.Weights); err != nil {
			return nil, err
		}
		for _, s := range f.Subfields {
			if len(s.Specializations) == 0 {
				return nil, apperrors.NewConfigError(fmt.Sprintf("subfield %q has no specializations", s.Name), nil)
			}
			if err := validWeights(s.Name, s.Weights); err != nil {
				return nil, err
			}
			for _, sp := range s.Specializations {
				if err := validWeights(sp.Name, sp.Weights); err != nil {
					return nil, err
				}
			}
		}
	}
	return &tree, nil
}

// validWeights rejects weight keys that are not public dimensions. The
// accumulator key "neuroticism" never appears in a derived vector, so a
// weight on it (or any misspelled key) would silently contribute zero to
// every dot product instead of failing at load.
func validWeights(name string, weights map[types.Trait]float64) error {
	for tr := range weights {
		if !knownTraits[tr] {
			return apperrors.NewConfigError(fmt.Sprintf("category %q weights unknown trait %q", name, tr), nil)
		}
	}
	return nil
}

var knownTraits = func() map[types.Trait]bool {
	m := make(map[types.Trait]bool, len(types.Traits))
	for _, tr := range types.Traits {
		m[tr] = true
	}
	return m
}()

// ValidateCategories fails fast on a category set the classifier cannot
// score.
func ValidateCategories(categories []types.Category) error {
	if len(categories) == 0 {
		return apperrors.NewDegenerateTaxonomyError("category set is empty")
	}
	degenerate := true
	for _, c := range categories {
		if c.Name == "" {
			return apperrors.NewConfigError("category with empty name", nil)
		}
		if err := validWeights(c.Name, c.Weights); err != nil {
			return err
		}
		for _, w := range c.Weights {
			if w != 0 {
				degenerate = false
			}
		}
	}
	if degenerate {
		return apperrors.NewDegenerateTaxonomyError("all category weight vectors are zero")
	}
	return nil
}

// StageCount implements engine.CategorySource.
func (t *Tree) StageCount() int { return len(stageNames) }

// StageName implements engine.CategorySource.
func (t *Tree) StageName(stage int) string {
	if stage < 0 || stage >= len(stageNames) {
		return fmt.Sprintf("stage-%d", stage)
	}
	return stageNames[stage]
}

// Categories implements engine.CategorySource: stage 0 yields the fields,
// stage 1 the subfields of the chosen field, stage 2 the specializations of
// the chosen subfield.
func (t *Tree) Categories(stage int, path []string) ([]types.Category, error) {
	switch stage {
	case 0:
		cats := make([]types.Category, len(t.Fields))
		for i, f := range t.Fields {
			cats[i] = types.Category{Name: f.Name, Weights: f.Weights}
		}
		return cats, nil
	case 1:
		if len(path) < 1 {
			return nil, apperrors.NewConfigError("subfield stage requires a chosen field", nil)
		}
		field, err := t.field(path[0])
		if err != nil {
			return nil, err
		}
		cats := make([]types.Category, len(field.Subfields))
		for i, s := range field.Subfields {
			cats[i] = types.Category{Name: s.Name, Weights: s.Weights}
		}
		return cats, nil
	case 2:
		if len(path) < 2 {
			return nil, apperrors.NewConfigError("specialization stage requires a chosen subfield", nil)
		}
		field, err := t.field(path[0])
		if err != nil {
			return nil, err
		}
		for _, s := range field.Subfields {
			if s.Name == path[1] {
				cats := make([]types.Category, len(s.Specializations))
				for i, sp := range s.Specializations {
					cats[i] = types.Category{Name: sp.Name, Weights: sp.Weights, Roles: sp.Roles}
				}
				return cats, nil
			}
		}
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown subfield %q under field %q", path[1], path[0]), nil)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("taxonomy tree has no stage %d", stage), nil)
	}
}

func (t *Tree) field(name string) (*Field, error) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], nil
		}
	}
	return nil, apperrors.NewConfigError(fmt.Sprintf("unknown field %q", name), nil)
}
