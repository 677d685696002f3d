package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("advisor")

	c.ObserveTurn("success", 300*time.Millisecond)
	c.ObserveTurn("error", time.Second)
	c.ObserveTurn("success", time.Second)
	c.CartMutated("add")
	c.SessionsActive(3)

	body := scrape(t, c)
	assert.Contains(t, body, `advisor_chat_turns_total{outcome="success"} 2`)
	assert.Contains(t, body, `advisor_chat_turns_total{outcome="error"} 1`)
	assert.Contains(t, body, `advisor_chat_turn_duration_seconds_count 3`)
	assert.Contains(t, body, `advisor_cart_mutations_total{op="add"} 1`)
	assert.Contains(t, body, `advisor_browser_sessions 3`)
}

func TestCollectorsDoNotCollide(t *testing.T) {
	a := NewCollector("advisor")
	b := NewCollector("advisor")
	a.CartMutated("add")

	assert.Contains(t, scrape(t, a), `advisor_cart_mutations_total{op="add"} 1`)
	assert.NotContains(t, scrape(t, b), `advisor_cart_mutations_total`)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("advisor")
	c.ObserveRequest(http.MethodGet, "/api/session", http.StatusOK, 10*time.Millisecond)

	assert.Contains(t, scrape(t, c), `advisor_http_requests_total{method="GET",route="/api/session",status="200"} 1`)
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
