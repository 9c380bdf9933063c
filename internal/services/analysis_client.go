package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/sentiment-gateway/backend/internal/logger"
	"github.com/sentiment-gateway/backend/internal/models"
)

const (
	DefaultAnalyzeTimeout = 30 * time.Second
	DefaultBatchTimeout   = 60 * time.Second
	DefaultProbeTimeout   = 5 * time.Second

	maxErrorBodyBytes = 1 << 20
)

// Outcomes reported to the CallObserver
const (
	OutcomeSuccess       = "success"
	OutcomeUnavailable   = "unavailable"
	OutcomeUpstreamError = "upstream_error"
	OutcomeFailure       = "failure"
)

// CallObserver receives the outcome of every upstream call
type CallObserver interface {
	ObserveUpstreamCall(callType, outcome string, duration time.Duration)
}

type AnalysisClientConfig struct {
	BaseURL        string
	AnalyzeTimeout time.Duration
	BatchTimeout   time.Duration
	ProbeTimeout   time.Duration
	HTTPClient     *http.Client
	Observer       CallObserver
}

// AnalysisClient talks to the remote sentiment/emotion analysis service.
// Each call is attempted once; there are no retries.
type AnalysisClient struct {
	baseURL        string
	analyzeTimeout time.Duration
	batchTimeout   time.Duration
	probeTimeout   time.Duration
	client         *http.Client
	observer       CallObserver
	calls          *CallLog
}

type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalysisPayload is the body returned by POST /analyze
type AnalysisPayload struct {
	Text      string                  `json:"text"`
	Sentiment *models.Sentiment       `json:"sentiment"`
	Emotions  []models.Emotion        `json:"emotions"`
	Metadata  models.AnalysisMetadata `json:"metadata"`
}

type BatchAnalyzeRequest struct {
	Texts []string `json:"texts"`
}

type BatchItem struct {
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// BatchPayload is the body returned by POST /batch-analyze
type BatchPayload struct {
	Results []BatchItem `json:"results"`
	Total   int         `json:"total"`
}

// HealthPayload is the body returned by GET /health
type HealthPayload struct {
	Status      string `json:"status"`
	Service     string `json:"service,omitempty"`
	ModelLoaded *bool  `json:"model_loaded,omitempty"`
}

func NewAnalysisClient(cfg AnalysisClientConfig) *AnalysisClient {
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = DefaultAnalyzeTimeout
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &AnalysisClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		analyzeTimeout: cfg.AnalyzeTimeout,
		batchTimeout:   cfg.BatchTimeout,
		probeTimeout:   cfg.ProbeTimeout,
		client:         httpClient,
		observer:       cfg.Observer,
		calls:          NewCallLog(),
	}
}

func (ac *AnalysisClient) BaseURL() string {
	return ac.baseURL
}

// Calls returns the most recent upstream calls, newest first
func (ac *AnalysisClient) Calls() []UpstreamCall {
	return ac.calls.Calls()
}

// AnalyzeOne sends a single text for sentiment and emotion analysis
func (ac *AnalysisClient) AnalyzeOne(ctx context.Context, text string) (*AnalysisPayload, error) {
	var payload AnalysisPayload
	if err := ac.do(ctx, http.MethodPost, "/analyze", "analyze", ac.analyzeTimeout, AnalyzeRequest{Text: text}, &payload); err != nil {
		return nil, err
	}
	if payload.Sentiment == nil {
		return nil, &UpstreamError{
			StatusCode: http.StatusBadGateway,
			Message:    "invalid response from analysis service: missing sentiment",
		}
	}
	return &payload, nil
}

// AnalyzeBatch sends several texts in one request
func (ac *AnalysisClient) AnalyzeBatch(ctx context.Context, texts []string) (*BatchPayload, error) {
	var payload BatchPayload
	if err := ac.do(ctx, http.MethodPost, "/batch-analyze", "batch_analyze", ac.batchTimeout, BatchAnalyzeRequest{Texts: texts}, &payload); err != nil {
		return nil, err
	}
	if payload.Results == nil {
		return nil, &UpstreamError{
			StatusCode: http.StatusBadGateway,
			Message:    "invalid response from analysis service: missing results",
		}
	}
	return &payload, nil
}

// Probe checks that the analysis service is alive
func (ac *AnalysisClient) Probe(ctx context.Context) (*HealthPayload, error) {
	var payload HealthPayload
	if err := ac.do(ctx, http.MethodGet, "/health", "health", ac.probeTimeout, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// do performs one call. The caller's cancellation is detached so that an
// issued call only ends on its own deadline.
func (ac *AnalysisClient) do(ctx context.Context, method, endpoint, callType string, timeout time.Duration, body, out any) error {
	startTime := time.Now()
	log := logger.WithUpstream(endpoint, callType)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, ac.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	call := UpstreamCall{
		Timestamp: startTime,
		Endpoint:  endpoint,
		CallType:  callType,
	}

	resp, err := ac.client.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			err = fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
			ac.finish(call, OutcomeUnavailable, err)
		} else {
			err = fmt.Errorf("analysis service request failed: %w", err)
			ac.finish(call, OutcomeFailure, err)
		}
		log.WithError(err).Warn("Analysis service call failed")
		return err
	}
	defer resp.Body.Close()

	call.Status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamErrorMessage(resp.Body),
		}
		ac.finish(call, OutcomeUpstreamError, upstreamErr)
		log.WithField("status", resp.StatusCode).Warn("Analysis service returned an error")
		return upstreamErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("failed to decode analysis service response: %w", err)
		ac.finish(call, OutcomeFailure, err)
		log.WithError(err).Warn("Analysis service returned an unreadable body")
		return err
	}

	ac.finish(call, OutcomeSuccess, nil)
	log.WithField("duration", time.Since(startTime).String()).Debug("Analysis service call completed")
	return nil
}

func (ac *AnalysisClient) finish(call UpstreamCall, outcome string, err error) {
	elapsed := time.Since(call.Timestamp)
	call.Outcome = outcome
	call.DurationMs = float64(elapsed.Microseconds()) / 1000
	if err != nil {
		call.Error = err.Error()
	}
	ac.calls.record(call)

	if ac.observer != nil {
		ac.observer.ObserveUpstreamCall(call.CallType, outcome, elapsed)
	}
}

// upstreamErrorMessage extracts the "error" field of an error body
func upstreamErrorMessage(body io.Reader) string {
	const fallback = "analysis service error"

	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return fallback
	}

	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Error == "" {
		return fallback
	}
	return parsed.Error
}
