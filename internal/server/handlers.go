package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathlight-labs/pathlight/internal/engine"
	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/narrative"
	"github.com/pathlight-labs/pathlight/internal/report"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// questionView is the wire form of a question. The scoring key of aptitude
// items never leaves the server.
type questionView struct {
	ID       string           `json:"id"`
	Trait    types.Trait      `json:"trait"`
	Kind     types.AnswerKind `json:"kind"`
	Polarity types.Polarity   `json:"polarity,omitempty"`
	Text     string           `json:"text"`
	Options  []string         `json:"options,omitempty"`
}

func viewOf(q types.QuestionSpec) questionView {
	return questionView{
		ID:       q.ID,
		Trait:    q.Trait,
		Kind:     q.Kind,
		Polarity: q.Polarity,
		Text:     q.Text,
		Options:  q.Options,
	}
}

type createSessionRequest struct {
	Mode string `json:"mode"`
	Seed int64  `json:"seed"`
}

type answerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Value      int    `json:"value"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.NewInvalidResponseError("malformed session request: " + err.Error()))
			return
		}
	}
	if req.Mode == "" {
		req.Mode = report.ModeAdaptive
	}

	ls := &liveSession{id: uuid.New().String(), mode: req.Mode}

	switch req.Mode {
	case report.ModeAdaptive:
		ls.flat = engine.NewSession(engine.NewAdaptivePolicy(s.questions), s.cfg.QuestionBudget)
	case report.ModeFull:
		ls.flat = engine.NewSession(engine.NewSequentialPolicy(s.questions), 0)
	case report.ModeDemo:
		seed := req.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		ls.flat = engine.NewSession(engine.NewRandomPolicy(s.questions, seed), s.cfg.QuestionBudget)
	case report.ModeStaged:
		staged, err := engine.NewStagedSession(engine.NewAdaptivePolicy(s.questions), s.tree, s.cfg.StageBudgets)
		if err != nil {
			c.Error(err)
			return
		}
		ls.staged = staged
	default:
		c.Error(apperrors.NewInvalidResponseError("unknown mode: " + req.Mode))
		return
	}

	q, ok, err := ls.next()
	if err != nil {
		c.Error(err)
		return
	}
	if !ok {
		c.Error(apperrors.NewInternalError("session has no first question", nil))
		return
	}

	s.sessions.Set(ls.id, ls)
	s.metrics.IncrementSessionStarted()
	s.logger.SessionLogger("session_started", ls.id, ls.mode, 0)

	c.JSON(http.StatusCreated, gin.H{
		"session_id": ls.id,
		"mode":       ls.mode,
		"question":   viewOf(q),
	})
}

func (s *Server) handleAnswer(c *gin.Context) {
	ls := s.lookup(c)
	if ls == nil {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.IncrementAnswerRejected()
		c.Error(apperrors.NewInvalidResponseError("malformed answer: " + err.Error()))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.rep != nil {
		c.Error(apperrors.NewInvalidResponseError("session is already complete"))
		return
	}

	if err := ls.submit(types.RawResponse{QuestionID: req.QuestionID, Value: req.Value}); err != nil {
		s.metrics.IncrementAnswerRejected()
		c.Error(err)
		return
	}
	s.metrics.IncrementAnswerProcessed()

	if !ls.done() {
		q, ok, err := ls.next()
		if err != nil {
			c.Error(err)
			return
		}
		if ok {
			c.JSON(http.StatusOK, gin.H{
				"done":     false,
				"asked":    ls.asked(),
				"question": viewOf(q),
			})
			return
		}
	}

	rep, err := s.finalize(ls)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"done":   true,
		"result": rep,
	})
}

func (s *Server) handleResult(c *gin.Context) {
	ls := s.lookup(c)
	if ls == nil {
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.rep == nil {
		c.JSON(http.StatusOK, gin.H{
			"done":   false,
			"asked":  ls.asked(),
			"traits": ls.vector(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"done":   true,
		"result": ls.rep,
	})
}

func (s *Server) handleTaxonomy(c *gin.Context) {
	names := make([]string, 0, len(s.clusters))
	for _, cat := range s.clusters {
		names = append(names, cat.Name)
	}
	c.JSON(http.StatusOK, gin.H{"clusters": names})
}

func (s *Server) handleTaxonomyTree(c *gin.Context) {
	c.JSON(http.StatusOK, s.tree)
}

func (s *Server) handleQuestions(c *gin.Context) {
	views := make([]questionView, 0, len(s.questions))
	for _, q := range s.questions {
		views = append(views, viewOf(q))
	}
	c.JSON(http.StatusOK, gin.H{"questions": views})
}

func (s *Server) handleRecentResults(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"results": []*report.Report{}})
		return
	}
	reports, err := s.store.ListReports(20)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": reports})
}

// lookup fetches the live session for the :id path param, reporting 404
// itself when the session is unknown or expired.
func (s *Server) lookup(c *gin.Context) *liveSession {
	id := c.Param("id")
	v, ok := s.sessions.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"code": "SESSION_NOT_FOUND", "message": "unknown or expired session"},
		})
		return nil
	}
	return v.(*liveSession)
}

// finalize classifies the finished session, records the report, and kicks
// off narrative generation. Persistence happens after the narrative step so
// each stored record is written exactly once, complete.
func (s *Server) finalize(ls *liveSession) (*report.Report, error) {
	rep := &report.Report{
		ID: ls.id,
		Meta: report.Meta{
			Timestamp:      time.Now().UTC(),
			Mode:           ls.mode,
			QuestionsAsked: ls.asked(),
			BankSize:       len(s.questions),
		},
		Traits: ls.vector(),
	}

	if ls.flat != nil {
		res, err := ls.flat.Finalize(s.clusters)
		if err != nil {
			return nil, err
		}
		rep.Classification = &res
		s.logger.ClassificationLogger(ls.id, "cluster", res.Top, res.Probabilities[res.Top], len(res.Ranked))
	} else {
		rep.Stages = ls.staged.Outcomes()
		if n := len(rep.Stages); n > 0 {
			last := rep.Stages[n-1]
			s.logger.ClassificationLogger(ls.id, last.Stage, last.Result.Top,
				last.Result.Probabilities[last.Result.Top], len(last.Result.Ranked))
		}
	}

	ls.rep = rep
	s.metrics.IncrementSessionCompleted()
	s.logger.SessionLogger("session_completed", ls.id, ls.mode, ls.asked())

	go s.enrichAndPersist(ls, rep)
	return rep, nil
}

// enrichAndPersist attaches the narrative (never a hard failure) and writes
// the finished report to the store. Runs off the request path.
func (s *Server) enrichAndPersist(ls *liveSession, rep *report.Report) {
	if s.narrator != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NarrativeTimeout)
		defer cancel()

		var result types.ClassificationResult
		if rep.Classification != nil {
			result = *rep.Classification
		} else if n := len(rep.Stages); n > 0 {
			result = rep.Stages[n-1].Result
		}
		s.metrics.IncrementNarrativeCall()
		insight := s.narrator.Insight(ctx, rep.Traits, result)
		if insight.Source == narrative.SourceFallback {
			s.metrics.IncrementNarrativeFallback()
		}

		ls.mu.Lock()
		rep.Narrative = insight
		ls.mu.Unlock()
	}

	if s.store != nil {
		if err := s.store.SaveReport(rep); err != nil {
			s.logger.SystemLogger("report_persist_failed", err.Error())
		}
	}
}

// The liveSession methods below dispatch to whichever engine flavor the
// session runs.

func (ls *liveSession) next() (types.QuestionSpec, bool, error) {
	if ls.flat != nil {
		return ls.flat.Next()
	}
	return ls.staged.Next()
}

func (ls *liveSession) submit(r types.RawResponse) error {
	if ls.flat != nil {
		return ls.flat.Submit(r)
	}
	return ls.staged.Submit(r)
}

func (ls *liveSession) done() bool {
	if ls.flat != nil {
		return ls.flat.Done()
	}
	return ls.staged.Done()
}

func (ls *liveSession) asked() int {
	if ls.flat != nil {
		return ls.flat.Asked()
	}
	return ls.staged.Asked()
}

func (ls *liveSession) vector() types.Vector {
	if ls.flat != nil {
		return ls.flat.Vector()
	}
	return ls.staged.Vector()
}
