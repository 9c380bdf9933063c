package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentiment-gateway/backend/internal/controllers"
	"github.com/sentiment-gateway/backend/internal/metrics"
	"github.com/sentiment-gateway/backend/internal/services"
)

func fakeAnalysisService(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var req services.AnalyzeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text": req.Text,
			"sentiment": map[string]any{
				"label":   "positive",
				"score":   0.95,
				"details": map[string]any{"positive": 0.9, "neutral": 0.08, "negative": 0.02},
			},
			"emotions": []any{},
			"metadata": map[string]any{"text_length": len(req.Text), "model": "x"},
		})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"ai-service","model_loaded":true}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(baseURL string) (*gin.Engine, *services.HistoryStore, *metrics.Metrics) {
	gin.SetMode(gin.TestMode)

	m := metrics.New()
	client := services.NewAnalysisClient(services.AnalysisClientConfig{
		BaseURL:      baseURL,
		ProbeTimeout: time.Second,
		Observer:     m,
	})
	history := services.NewHistoryStore(services.DefaultHistoryCapacity)
	ac := controllers.NewAnalysisController(client, history, m)

	return NewRouter(RouterConfig{CORSOrigin: "http://localhost:3000"}, ac, m), history, m
}

func serve(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestAnalyzeThenHistory(t *testing.T) {
	var hits int32
	upstream := fakeAnalysisService(t, &hits)
	r, history, _ := newTestRouter(upstream.URL)

	for _, text := range []string{"one", "two", "three"} {
		w, resp := serve(r, http.MethodPost, "/api/analyze", `{"text":"`+text+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, resp["id"])
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, 3, history.Size())

	w, resp := serve(r, http.MethodGet, "/api/history?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "three", data[0].(map[string]any)["text"])
	assert.Equal(t, "two", data[1].(map[string]any)["text"])

	first := data[0].(map[string]any)["id"].(string)
	second := data[1].(map[string]any)["id"].(string)
	assert.NotEqual(t, first, second)

	w, resp = serve(r, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, resp["totalAnalyses"])
	assert.Equal(t, 0.95, resp["averageConfidence"])
}

func TestAnalyzeMissingTextSkipsUpstream(t *testing.T) {
	var hits int32
	upstream := fakeAnalysisService(t, &hits)
	r, history, _ := newTestRouter(upstream.URL)

	w, _ := serve(r, http.MethodPost, "/api/analyze", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
	assert.Equal(t, 0, history.Size())
}

func TestUpstreamDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	r, history, _ := newTestRouter(url)

	w, resp := serve(r, http.MethodPost, "/api/analyze", `{"text":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, resp["details"])
	assert.Equal(t, 0, history.Size())

	w, resp = serve(r, http.MethodGet, "/api/ai-status", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "disconnected", resp["aiService"])
	assert.NotEmpty(t, resp["error"])

	w, resp = serve(r, http.MethodGet, "/api/ai-status/calls", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, resp["total"])
}

func TestAIStatusConnected(t *testing.T) {
	var hits int32
	upstream := fakeAnalysisService(t, &hits)
	r, _, _ := newTestRouter(upstream.URL)

	w, resp := serve(r, http.MethodGet, "/api/ai-status", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "connected", resp["aiService"])
	assert.Equal(t, "ai-service", resp["details"].(map[string]any)["service"])
}

func TestNotFoundAndMethodMismatch(t *testing.T) {
	r, _, _ := newTestRouter("http://127.0.0.1:1")

	w, resp := serve(r, http.MethodGet, "/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "route not found", resp["error"])

	w, _ = serve(r, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r, _, _ := newTestRouter("http://127.0.0.1:1")
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w, resp := serve(r, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", resp["error"])
	assert.Equal(t, "boom", resp["details"])

	// the engine keeps serving after a panic
	w, _ = serve(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _, _ := newTestRouter("http://127.0.0.1:1")

	w, _ := serve(r, http.MethodOptions, "/api/analyze", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsEndpoint(t *testing.T) {
	var hits int32
	upstream := fakeAnalysisService(t, &hits)
	r, _, _ := newTestRouter(upstream.URL)

	serve(r, http.MethodPost, "/api/analyze", `{"text":"hello"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "sentiment_gateway_upstream_calls_total")
	assert.Contains(t, body, "sentiment_gateway_history_size 1")
	assert.Contains(t, body, `route="/api/analyze"`)
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter("http://127.0.0.1:1")

	w, resp := serve(r, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "backend-api", resp["service"])
	assert.NotEmpty(t, resp["timestamp"])
}
