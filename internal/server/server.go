// Package server exposes the assessment engine over HTTP: session creation,
// stepwise answering, and result retrieval. The question bank and taxonomy
// are loaded once and shared read-only across sessions; each live session
// serializes its own updates.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pathlight-labs/pathlight/internal/cache"
	"github.com/pathlight-labs/pathlight/internal/config"
	"github.com/pathlight-labs/pathlight/internal/engine"
	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/middleware"
	"github.com/pathlight-labs/pathlight/internal/monitoring"
	"github.com/pathlight-labs/pathlight/internal/narrative"
	"github.com/pathlight-labs/pathlight/internal/ratelimit"
	"github.com/pathlight-labs/pathlight/internal/report"
	"github.com/pathlight-labs/pathlight/internal/security"
	"github.com/pathlight-labs/pathlight/internal/store"
	"github.com/pathlight-labs/pathlight/internal/taxonomy"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// liveSession is one in-flight assessment. Either flat or staged is set.
// All access goes through mu: one answer is processed fully before the next
// question is selected.
type liveSession struct {
	mu     sync.Mutex
	id     string
	mode   string
	flat   *engine.Session
	staged *engine.StagedSession
	rep    *report.Report
}

// Server carries the shared, read-only tables and per-process services.
type Server struct {
	cfg       *config.Config
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
	questions []types.QuestionSpec
	clusters  []types.Category
	tree      *taxonomy.Tree
	sessions  *cache.Cache
	store     *store.Store
	narrator  *narrative.Generator
	limiter   *ratelimit.Limiter
}

// New assembles a server from its collaborators. store and narrator may be
// nil (persistence and narrative disabled).
func New(cfg *config.Config, logger *monitoring.Logger, metrics *monitoring.Metrics,
	questions []types.QuestionSpec, clusters []types.Category, tree *taxonomy.Tree,
	st *store.Store, narrator *narrative.Generator) *Server {

	return &Server{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		questions: questions,
		clusters:  clusters,
		tree:      tree,
		sessions:  cache.NewCache(cfg.SessionTTL),
		store:     st,
		narrator:  narrator,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{IPLimitPerMin: cfg.IPLimitPerMin, BurstMultiplier: 2}),
	}
}

// Router builds the gin engine with the full middleware stack.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(apperrors.RecoveryHandler())
	r.Use(apperrors.ErrorHandler())
	r.Use(monitoring.Middleware(s.metrics, s.logger))
	r.Use(security.SecurityHeadersMiddleware())
	r.Use(middleware.Gzip())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)

	api := r.Group("/api/v1")
	api.Use(ratelimit.Middleware(s.limiter, s.metrics))
	{
		api.GET("/taxonomy", s.handleTaxonomy)
		api.GET("/taxonomy/tree", s.handleTaxonomyTree)
		api.GET("/questions", s.handleQuestions)
		api.POST("/sessions", s.handleCreateSession)
		api.POST("/sessions/:id/answers", s.handleAnswer)
		api.GET("/sessions/:id/result", s.handleResult)
		api.GET("/results", s.handleRecentResults)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"bank_size": len(s.questions),
		"sessions":  s.sessions.Size(),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.Snapshot())
}
