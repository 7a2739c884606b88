package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
	"github.com/firmatch/jobmatch-backend/pkg/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to the OpenAI chat-completions and embeddings endpoints.
// It implements both the preference extraction and embedding providers.
type Client struct {
	apiKey         string
	model          string
	embeddingModel string
	baseURL        string
	httpClient     *http.Client
	limiter        *tokenBucket
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-ada-002"
	}

	return &Client{
		apiKey:         cfg.APIKey,
		model:          model,
		embeddingModel: embeddingModel,
		baseURL:        defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatEnvelope struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingEnvelope struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// ExtractPreferences asks the model for a JSON object with the keys
// role, location, experience and salary, and parses it at the boundary.
// A partial or empty object is a valid extraction; only transport
// failure or wholly non-JSON output maps to ErrExtractionUnavailable.
func (c *Client) ExtractPreferences(ctx context.Context, rawQuery string) (*entities.Preferences, error) {
	payload := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: rawQuery},
		},
		"temperature": 0.2,
		"max_tokens":  200,
	}

	text, err := c.complete(ctx, payload)
	if err != nil {
		return nil, err
	}

	prefs, err := parsePreferencesPayload([]byte(stripCodeFences(text)))
	if err != nil {
		recordAIMetric(ctx, c.model, "extract", 0, 0, err)
		return nil, fmt.Errorf("%w: model returned non-JSON content: %v", providers.ErrExtractionUnavailable, err)
	}
	return prefs, nil
}

func (c *Client) complete(ctx context.Context, payload map[string]interface{}) (string, error) {
	if err := c.wait(ctx, "extract"); err != nil {
		return "", fmt.Errorf("%w: %v", providers.ErrExtractionUnavailable, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordAIMetric(ctx, c.model, "extract", 0, time.Since(start), err)
		return "", fmt.Errorf("%w: %v", providers.ErrExtractionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("status %d", resp.StatusCode)
		recordAIMetric(ctx, c.model, "extract", resp.StatusCode, time.Since(start), err)
		return "", fmt.Errorf("%w: chat completion failed with %v", providers.ErrExtractionUnavailable, err)
	}

	var envelope chatEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordAIMetric(ctx, c.model, "extract", resp.StatusCode, time.Since(start), err)
		return "", fmt.Errorf("%w: %v", providers.ErrExtractionUnavailable, err)
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		err := errors.New("missing completion content")
		recordAIMetric(ctx, c.model, "extract", resp.StatusCode, time.Since(start), err)
		return "", fmt.Errorf("%w: %v", providers.ErrExtractionUnavailable, err)
	}

	recordAIMetric(ctx, c.model, "extract", resp.StatusCode, time.Since(start), nil)
	return envelope.Choices[0].Message.Content, nil
}

// Embed computes one fixed-length vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.wait(ctx, "embed"); err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrEmbeddingUnavailable, err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"model": c.embeddingModel,
		"input": []string{text},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordAIMetric(ctx, c.embeddingModel, "embed", 0, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", providers.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("status %d", resp.StatusCode)
		recordAIMetric(ctx, c.embeddingModel, "embed", resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("%w: embeddings request failed with %v", providers.ErrEmbeddingUnavailable, err)
	}

	var envelope embeddingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordAIMetric(ctx, c.embeddingModel, "embed", resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", providers.ErrEmbeddingUnavailable, err)
	}
	if len(envelope.Data) == 0 || len(envelope.Data[0].Embedding) == 0 {
		err := errors.New("missing embedding data")
		recordAIMetric(ctx, c.embeddingModel, "embed", resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", providers.ErrEmbeddingUnavailable, err)
	}

	recordAIMetric(ctx, c.embeddingModel, "embed", resp.StatusCode, time.Since(start), nil)
	return envelope.Data[0].Embedding, nil
}

func (c *Client) wait(ctx context.Context, operation string) error {
	if c.limiter == nil {
		return nil
	}
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	recordAIRateLimitWait(ctx, operation, time.Since(waitStart))
	return nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm < 0 {
		return nil
	}
	if rpm == 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}
	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens chan struct{}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type aiMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	aiMetricsOnce  sync.Once
	aiMetricsReady bool
	aiMetricsState aiMetrics
)

func initAIMetrics() {
	meter := otel.Meter("github.com/firmatch/jobmatch-backend/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.openai.rate_limit.wait",
		metric.WithDescription("Time spent waiting for the OpenAI rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	aiMetricsState = aiMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	aiMetricsReady = true
}

func recordAIMetric(ctx context.Context, model, operation string, statusCode int, duration time.Duration, err error) {
	aiMetricsOnce.Do(initAIMetrics)
	if !aiMetricsReady {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
		attribute.String("ai.operation", operation),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	aiMetricsState.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	aiMetricsState.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		aiMetricsState.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordAIRateLimitWait(ctx context.Context, operation string, wait time.Duration) {
	aiMetricsOnce.Do(initAIMetrics)
	if !aiMetricsReady {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.operation", operation),
	}
	aiMetricsState.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
