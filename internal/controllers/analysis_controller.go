package controllers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sentiment-gateway/backend/internal/logger"
	"github.com/sentiment-gateway/backend/internal/metrics"
	"github.com/sentiment-gateway/backend/internal/models"
	"github.com/sentiment-gateway/backend/internal/services"
)

const (
	DefaultHistoryLimit = 20
	MaxBatchTexts       = 50
	ServiceName         = "backend-api"
)

// AnalysisBackend is the remote analysis service as seen by the controller
type AnalysisBackend interface {
	AnalyzeOne(ctx context.Context, text string) (*services.AnalysisPayload, error)
	AnalyzeBatch(ctx context.Context, texts []string) (*services.BatchPayload, error)
	Probe(ctx context.Context) (*services.HealthPayload, error)
	Calls() []services.UpstreamCall
}

type AnalysisController struct {
	backend AnalysisBackend
	history *services.HistoryStore
	metrics *metrics.Metrics
	clock   services.Clock
	newID   func() string
}

func NewAnalysisController(backend AnalysisBackend, history *services.HistoryStore, m *metrics.Metrics) *AnalysisController {
	return &AnalysisController{
		backend: backend,
		history: history,
		metrics: m,
		clock:   services.SystemClock{},
		newID:   services.NewResultID,
	}
}

type analyzeRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userId"`
}

type batchAnalyzeRequest struct {
	Texts []string `json:"texts"`
}

type batchAnalyzeResponse struct {
	*services.BatchPayload
	Timestamp string `json:"timestamp"`
}

type statsResponse struct {
	services.Stats
	Timestamp string `json:"timestamp"`
}

func (ac *AnalysisController) now() string {
	return services.FormatTimestamp(ac.clock.Now())
}

// Health reports that the gateway itself is up
func (ac *AnalysisController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": ac.now(),
	})
}

// Analyze forwards one text to the analysis service and stores the result in history
func (ac *AnalysisController) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		ac.respondError(c, services.NewValidationError("text", `the "text" field is required`))
		return
	}

	log := logger.WithRequest(c.Request.Method, c.FullPath())
	log.WithField("text_preview", preview(req.Text, 50)).Info("New analysis request")

	payload, err := ac.backend.AnalyzeOne(c.Request.Context(), req.Text)
	if err != nil {
		log.WithError(err).Error("Analysis failed")
		ac.respondError(c, err)
		return
	}

	result := ac.buildResult(req, payload)
	ac.history.Push(result)
	ac.metrics.AnalysisStored(ac.history.Size())

	log.WithFields(map[string]interface{}{
		"id":        result.ID,
		"sentiment": result.Sentiment.Label,
	}).Info("Analysis completed")

	c.JSON(http.StatusOK, result)
}

func (ac *AnalysisController) buildResult(req analyzeRequest, payload *services.AnalysisPayload) models.AnalysisResult {
	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}
	text := payload.Text
	if text == "" {
		text = req.Text
	}

	return models.AnalysisResult{
		ID:        ac.newID(),
		Timestamp: ac.now(),
		UserID:    userID,
		Text:      text,
		Sentiment: *payload.Sentiment,
		Emotions:  payload.Emotions,
		Metadata:  payload.Metadata,
	}
}

// BatchAnalyze forwards up to 50 texts to the analysis service. Batch results
// are not stored in history.
func (ac *AnalysisController) BatchAnalyze(c *gin.Context) {
	var req batchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Texts == nil {
		ac.respondBatchError(c, services.NewValidationError("texts", `the "texts" field must be an array`))
		return
	}
	if len(req.Texts) > MaxBatchTexts {
		ac.respondBatchError(c, services.NewValidationError("texts", "maximum 50 texts per request"))
		return
	}

	log := logger.WithRequest(c.Request.Method, c.FullPath())
	log.WithField("count", len(req.Texts)).Info("New batch analysis request")

	payload, err := ac.backend.AnalyzeBatch(c.Request.Context(), req.Texts)
	if err != nil {
		log.WithError(err).Error("Batch analysis failed")
		ac.respondBatchError(c, err)
		return
	}

	c.JSON(http.StatusOK, batchAnalyzeResponse{
		BatchPayload: payload,
		Timestamp:    ac.now(),
	})
}

// GetHistory returns the most recent analyses, newest first
func (ac *AnalysisController) GetHistory(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))

	data, total := ac.history.Recent(limit)

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"limit": limit,
		"data":  data,
	})
}

// GetStats summarises the analyses currently held in history
func (ac *AnalysisController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, statsResponse{
		Stats:     services.ComputeStats(ac.history.All()),
		Timestamp: ac.now(),
	})
}

// GetAIStatus probes the analysis service
func (ac *AnalysisController) GetAIStatus(c *gin.Context) {
	health, err := ac.backend.Probe(c.Request.Context())
	if err != nil {
		log := logger.WithRequest(c.Request.Method, c.FullPath())
		log.WithError(err).Warn("Analysis service probe failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"aiService": "disconnected",
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"aiService": "connected",
		"details":   health,
	})
}

// GetAICalls returns the tracked analysis service calls, newest first
func (ac *AnalysisController) GetAICalls(c *gin.Context) {
	calls := ac.backend.Calls()
	c.JSON(http.StatusOK, gin.H{
		"total": len(calls),
		"data":  calls,
	})
}

// NotFound answers every unmatched route
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func (ac *AnalysisController) respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var upstreamErr *services.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, services.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "the analysis service is not available",
			"details": "please try again later",
		})
	case errors.As(err, &upstreamErr):
		c.JSON(upstreamErr.StatusCode, gin.H{"error": upstreamErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server error",
			"details": err.Error(),
		})
	}
}

// respondBatchError reports every non-validation failure as a 500
func (ac *AnalysisController) respondBatchError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "server error",
		"details": err.Error(),
	})
}

// parseLimit reads the leading optional sign and digits of raw after trimming
// whitespace, so "3abc" is 3 and "2.5" is 2. Nothing parseable, or zero,
// yields DefaultHistoryLimit. Out of range values saturate.
func parseLimit(raw string) int {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if n <= (math.MaxInt32-9)/10 {
			n = n*10 + int(s[digits]-'0')
		} else {
			n = math.MaxInt32
		}
	}
	if digits == 0 || n == 0 {
		return DefaultHistoryLimit
	}
	if neg {
		return -n
	}
	return n
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
