package engine

import (
	"fmt"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// Session drives one assessment: select question -> normalize answer ->
// update accumulator, until the question budget is exhausted or the pool
// runs dry, then classifies the final vector. Sessions are single-threaded
// by design; one answer is processed fully before the next question is
// selected.
type Session struct {
	policy  Policy
	budget  int
	acc     *Accumulator
	asked   int
	current *types.QuestionSpec
}

// NewSession creates a session over a selection policy. A budget <= 0 means
// no budget: the session runs until the pool is exhausted (full-bank mode).
func NewSession(policy Policy, budget int) *Session {
	return &Session{
		policy: policy,
		budget: budget,
		acc:    NewAccumulator(),
	}
}

// Next selects the next question. The second return value is false when the
// session's stopping rule has fired (budget spent or pool empty) and no
// question is pending.
func (s *Session) Next() (types.QuestionSpec, bool, error) {
	if s.current != nil {
		return *s.current, true, nil
	}
	if s.Done() {
		return types.QuestionSpec{}, false, nil
	}
	q, err := s.policy.Next(s.acc)
	if err != nil {
		return types.QuestionSpec{}, false, err
	}
	s.current = &q
	return q, true, nil
}

// Submit applies the answer to the pending question. The response is
// consumed exactly once; an invalid response leaves the session unchanged
// so a corrected answer can be submitted for the same question.
func (s *Session) Submit(r types.RawResponse) error {
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
	s.current = nil
	return nil
}

// Done reports whether the stopping rule has fired.
func (s *Session) Done() bool {
	if s.current != nil {
		return false
	}
	if s.budget > 0 && s.asked >= s.budget {
		return true
	}
	return s.policy.Remaining() == 0
}

// Asked reports how many answers have been processed.
func (s *Session) Asked() int { return s.asked }

// Vector returns the current normalized trait snapshot. Valid at any point
// in the session, not only at the end.
func (s *Session) Vector() types.Vector { return s.acc.Vector() }

// Accumulator exposes the session's accumulator for staged flows that carry
// one accumulator across several classifier passes.
func (s *Session) Accumulator() *Accumulator { return s.acc }

// Finalize classifies the current vector against a category set. It does
// not mutate the session; calling it twice yields identical results.
func (s *Session) Finalize(categories []types.Category) (types.ClassificationResult, error) {
	return Classify(s.acc.Vector(), categories)
}
