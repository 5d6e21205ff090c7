package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathlight-labs/pathlight/internal/config"
	"github.com/pathlight-labs/pathlight/internal/monitoring"
	"github.com/pathlight-labs/pathlight/internal/taxonomy"
	"github.com/pathlight-labs/pathlight/internal/types"
)

func testQuestions() []types.QuestionSpec {
	return []types.QuestionSpec{
		{ID: "apt-1", Trait: types.TraitAptitude, Kind: types.KindAptitudeMCQ, Text: "2+2?", Options: []string{"3", "4"}, Correct: 1},
		{ID: "opn-1", Trait: types.TraitOpenness, Kind: types.KindLikert5, Polarity: types.PolarityPositive, Text: "I enjoy new ideas."},
		{ID: "inv-1", Trait: types.TraitInvestigative, Kind: types.KindLikert5, Polarity: types.PolarityPositive, Text: "I like to analyse problems."},
		{ID: "art-1", Trait: types.TraitArtistic, Kind: types.KindLikert5, Polarity: types.PolarityNegative, Text: "I avoid creative work."},
	}
}

func testClusters() []types.Category {
	return []types.Category{
		{Name: "STEM / Technology", Weights: map[types.Trait]float64{types.TraitAptitude: 0.8, types.TraitInvestigative: 0.6}},
		{Name: "Creative Arts", Weights: map[types.Trait]float64{types.TraitArtistic: 0.9}, Roles: []string{"Designer"}},
	}
}

func testTree() *taxonomy.Tree {
	return &taxonomy.Tree{
		Fields: []taxonomy.Field{
			{
				Name:    "Science",
				Weights: map[types.Trait]float64{types.TraitInvestigative: 0.9},
				Subfields: []taxonomy.Subfield{
					{
						Name:    "Computer Science",
						Weights: map[types.Trait]float64{types.TraitAptitude: 0.8},
						Specializations: []taxonomy.Specialization{
							{
								Name:    "Machine Learning",
								Weights: map[types.Trait]float64{types.TraitInvestigative: 0.7},
								Roles:   []string{"ML Engineer"},
							},
						},
					},
				},
			},
		},
	}
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:             "8080",
		QuestionBudget:   2,
		StageBudgets:     []int{1, 1, 1},
		SessionTTL:       time.Minute,
		IPLimitPerMin:    6000,
		NarrativeTimeout: time.Second,
	}
	srv := New(cfg, monitoring.NewLogger(), monitoring.NewMetrics(),
		testQuestions(), testClusters(), testTree(), nil, nil)
	return srv, srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), "body: %s", w.Body.String())
	}
	return w, payload
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, float64(4), payload["bank_size"])
}

func TestCreateSessionReturnsFirstQuestion(t *testing.T) {
	_, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"mode": "adaptive"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, payload["session_id"])
	assert.Equal(t, "adaptive", payload["mode"])

	question := payload["question"].(map[string]interface{})
	assert.NotEmpty(t, question["id"])
	assert.NotEmpty(t, question["text"])
}

func TestCreateSessionDefaultsToAdaptive(t *testing.T) {
	_, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "adaptive", payload["mode"])
}

func TestCreateSessionRejectsUnknownMode(t *testing.T) {
	_, r := newTestServer(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"mode": "telepathic"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestionViewNeverLeaksAnswerKey(t *testing.T) {
	_, r := newTestServer(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/questions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"correct"`)

	w2, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"mode": "full"}`)
	require.Equal(t, http.StatusCreated, w2.Code)
	assert.NotContains(t, w2.Body.String(), `"correct"`)
}

// answerLoop drives a session until the API reports completion, answering
// every question with its first option / strong agreement.
func answerLoop(t *testing.T, r *gin.Engine, sessionID string, question map[string]interface{}) map[string]interface{} {
	t.Helper()
	for i := 0; i < 100; i++ {
		value := 2
		if question["kind"] == string(types.KindAptitudeMCQ) {
			value = 0
		}
		body := fmt.Sprintf(`{"question_id": %q, "value": %d}`, question["id"], value)
		w, payload := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+sessionID+"/answers", body)
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

		if payload["done"] == true {
			return payload
		}
		question = payload["question"].(map[string]interface{})
	}
	t.Fatal("session never completed")
	return nil
}

func TestAdaptiveSessionLifecycle(t *testing.T) {
	srv, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"mode": "adaptive"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := payload["session_id"].(string)
	question := payload["question"].(map[string]interface{})

	final := answerLoop(t, r, sessionID, question)
	result := final["result"].(map[string]interface{})

	traits := result["traits"].(map[string]interface{})
	assert.Len(t, traits, len(types.Traits))

	classification := result["classification"].(map[string]interface{})
	assert.NotEmpty(t, classification["top"])

	// budget of 2 means exactly two answers were accepted
	meta := result["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["questions_asked"])

	snapshot := srv.metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot["sessions_started"])
	assert.Equal(t, int64(1), snapshot["sessions_completed"])
}

func TestStagedSessionLifecycle(t *testing.T) {
	_, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"mode": "staged"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := payload["session_id"].(string)
	question := payload["question"].(map[string]interface{})

	final := answerLoop(t, r, sessionID, question)
	result := final["result"].(map[string]interface{})

	stages := result["stages"].([]interface{})
	require.Len(t, stages, 3)
	last := stages[2].(map[string]interface{})
	assert.Equal(t, "specialization", last["stage"])
}

func TestAnswerValidationFailuresAreRetryable(t *testing.T) {
	_, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"mode": "adaptive"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := payload["session_id"].(string)
	question := payload["question"].(map[string]interface{})

	// wrong question id
	w2, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+sessionID+"/answers",
		`{"question_id": "bogus", "value": 0}`)
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	// out-of-domain value
	body := fmt.Sprintf(`{"question_id": %q, "value": 99}`, question["id"])
	w3, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+sessionID+"/answers", body)
	assert.Equal(t, http.StatusBadRequest, w3.Code)

	// the same question still accepts a corrected answer
	value := 2
	if question["kind"] == string(types.KindAptitudeMCQ) {
		value = 0
	}
	body = fmt.Sprintf(`{"question_id": %q, "value": %d}`, question["id"], value)
	w4, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+sessionID+"/answers", body)
	assert.Equal(t, http.StatusOK, w4.Code)
}

func TestAnswerUnknownSession(t *testing.T) {
	_, r := newTestServer(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/no-such-id/answers",
		`{"question_id": "q", "value": 0}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"mode": "adaptive"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := payload["session_id"].(string)
	question := payload["question"].(map[string]interface{})

	w2, pending := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+sessionID+"/result", "")
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, false, pending["done"])

	answerLoop(t, r, sessionID, question)

	w3, finished := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+sessionID+"/result", "")
	assert.Equal(t, http.StatusOK, w3.Code)
	assert.Equal(t, true, finished["done"])
	assert.NotNil(t, finished["result"])
}

func TestTaxonomyEndpoints(t *testing.T) {
	_, r := newTestServer(t)

	w, payload := doJSON(t, r, http.MethodGet, "/api/v1/taxonomy", "")
	assert.Equal(t, http.StatusOK, w.Code)
	clusters := payload["clusters"].([]interface{})
	assert.Equal(t, []interface{}{"STEM / Technology", "Creative Arts"}, clusters)

	w2, tree := doJSON(t, r, http.MethodGet, "/api/v1/taxonomy/tree", "")
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.NotEmpty(t, tree["fields"])
}

func TestSecurityHeadersApplied(t *testing.T) {
	_, r := newTestServer(t)

	w, _ := doJSON(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
