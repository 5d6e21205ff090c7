package monitoring

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementSessionStarted()
	m.IncrementSessionStarted()
	m.IncrementSessionCompleted()
	m.IncrementAnswerProcessed()
	m.IncrementAnswerRejected()
	m.IncrementNarrativeFallback()
	m.RecordStatus(200)
	m.RecordStatus(200)
	m.RecordStatus(400)

	snapshot := m.Snapshot()
	assert.Equal(t, int64(2), snapshot["sessions_started"])
	assert.Equal(t, int64(1), snapshot["sessions_completed"])
	assert.Equal(t, int64(1), snapshot["answers_processed"])
	assert.Equal(t, int64(1), snapshot["answers_rejected"])
	assert.Equal(t, int64(1), snapshot["narrative_fallbacks"])

	byStatus := snapshot["requests_by_status"].(map[int]int64)
	assert.Equal(t, int64(2), byStatus[200])
	assert.Equal(t, int64(1), byStatus[400])
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementRequest()
			m.RecordStatus(200)
		}()
	}
	wg.Wait()

	snapshot := m.Snapshot()
	assert.Equal(t, int64(50), snapshot["request_count"])
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewMetrics()
	r := gin.New()
	r.Use(Middleware(m, NewLogger()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.NotNil(t, w)
	}

	snapshot := m.Snapshot()
	assert.Equal(t, int64(2), snapshot["request_count"])
	assert.Equal(t, int64(1), snapshot["error_count"])
}
