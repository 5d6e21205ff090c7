package engine

import (
	"fmt"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// CategorySource supplies candidate category sets for a staged assessment.
// Stage i's candidates depend on the path of top results from stages 0..i-1:
// a hierarchical narrowing, not independent classifications.
type CategorySource interface {
	StageCount() int
	StageName(stage int) string
	Categories(stage int, path []string) ([]types.Category, error)
}

// StageOutcome records one completed stage of a staged session.
type StageOutcome struct {
	Stage  string                     `json:"stage"`
	Result types.ClassificationResult `json:"result"`
}

// StagedSession runs the hierarchical drill-down variant: one long-lived
// accumulator feeds several sequential classifier passes, each restricted to
// children of the previous stage's top result. The accumulator is never
// reset between stages, and questions never repeat across stages.
type StagedSession struct {
	policy   Policy
	src      CategorySource
	budgets  []int
	acc      *Accumulator
	stage    int
	asked    int
	total    int
	current  *types.QuestionSpec
	path     []string
	outcomes []StageOutcome
	done     bool
}

// NewStagedSession creates a staged session. budgets holds the per-stage
// question counts and must cover every stage of the source.
func NewStagedSession(policy Policy, src CategorySource, budgets []int) (*StagedSession, error) {
	if len(budgets) != src.StageCount() {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("%d stage budgets for %d stages", len(budgets), src.StageCount()), nil)
	}
	for _, b := range budgets {
		if b <= 0 {
			return nil, apperrors.NewConfigError("stage budgets must be positive", nil)
		}
	}
	return &StagedSession{
		policy:  policy,
		src:     src,
		budgets: budgets,
		acc:     NewAccumulator(),
	}, nil
}

// Next returns the next question, spanning stage boundaries transparently.
// The second return value is false once every stage has been classified.
func (s *StagedSession) Next() (types.QuestionSpec, bool, error) {
	if s.current != nil {
		return *s.current, true, nil
	}
	if s.done {
		return types.QuestionSpec{}, false, nil
	}
	// The pool going dry ends questioning early; remaining stages still
	// classify off whatever the accumulator holds.
	if s.policy.Remaining() == 0 {
		if err := s.closeStages(s.src.StageCount()); err != nil {
			return types.QuestionSpec{}, false, err
		}
		return types.QuestionSpec{}, false, nil
	}
	q, err := s.policy.Next(s.acc)
	if err != nil {
		return types.QuestionSpec{}, false, err
	}
	s.current = &q
	return q, true, nil
}

// Submit applies the answer to the pending question. When the answer spends
// the current stage's budget, the stage is classified immediately and the
// session advances to the next stage's candidate set.
func (s *StagedSession) Submit(r types.RawResponse) error {
	if s.current == nil {
		return apperrors.NewInvalidResponseError("no question is pending")
	}
	if r.QuestionID != s.current.ID {
		return apperrors.NewInvalidResponseError(
			fmt.Sprintf("response targets question %q but %q is pending", r.QuestionID, s.current.ID))
	}
	c, err := Normalize(*s.current, r)
	if err != nil {
		return err
	}
	s.acc.Apply(c)
	s.asked++
	s.total++
	s.current = nil
	if s.asked >= s.budgets[s.stage] {
		return s.closeStages(s.stage + 1)
	}
	return nil
}

// closeStages classifies stages [s.stage, upto) with the shared accumulator.
func (s *StagedSession) closeStages(upto int) error {
	vec := s.acc.Vector()
	for ; s.stage < upto; s.stage++ {
		cats, err := s.src.Categories(s.stage, s.path)
		if err != nil {
			return err
		}
		res, err := Classify(vec, cats)
		if err != nil {
			return err
		}
		s.outcomes = append(s.outcomes, StageOutcome{Stage: s.src.StageName(s.stage), Result: res})
		s.path = append(s.path, res.Top)
		s.asked = 0
	}
	if s.stage >= s.src.StageCount() {
		s.done = true
	}
	return nil
}

// Done reports whether every stage has been classified.
func (s *StagedSession) Done() bool { return s.done }

// Asked reports the total number of answers processed across all stages.
func (s *StagedSession) Asked() int { return s.total }

// Outcomes returns the completed stage results in order.
func (s *StagedSession) Outcomes() []StageOutcome { return s.outcomes }

// Path returns the top category names chosen so far, field first.
func (s *StagedSession) Path() []string { return s.path }

// Vector returns the current normalized trait snapshot.
func (s *StagedSession) Vector() types.Vector { return s.acc.Vector() }
