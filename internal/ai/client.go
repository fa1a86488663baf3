package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"crm-voice-server/internal/config"
	"crm-voice-server/internal/model"
)

// Usage carries token accounting for one completion request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// Client is the boundary to the external AI API. Both methods block until
// the round trip finishes or ctx is done; there is no retry here - a failed
// attempt is re-triggered by the operator, never automatically.
type Client interface {
	// Transcribe turns a short audio clip into text. An empty result is
	// model.ErrEmptyTranscript, not a success with "".
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	// Complete sends systemPrompt+userInput to the chat model and returns
	// the raw response text. The caller treats it as untrusted.
	Complete(ctx context.Context, systemPrompt, userInput string) (string, Usage, error)
}

// NewClient builds an AI client from the configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) (Client, error) {
	switch strings.ToLower(cfg.AIClientType) {
	case "openai":
		apiCfg := openaigo.DefaultConfig(cfg.AIAPIKey)
		apiCfg.BaseURL = cfg.AIBaseURL
		apiCfg.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		return &openAIClient{
			client:     openaigo.NewClientWithConfig(apiCfg),
			model:      cfg.AIModel,
			audioModel: cfg.AIAudioModel,
			logger:     logger.Named("OpenAIClient"),
		}, nil
	case "ollama":
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI client type: %q", cfg.AIClientType)
	}
}

// --- OpenAI implementation ---

type openAIClient struct {
	client     *openaigo.Client
	model      string
	audioModel string
	logger     *zap.Logger
}

func (c *openAIClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateTranscription(ctx, openaigo.AudioRequest{
		Model:    c.audioModel,
		Reader:   audio,
		FilePath: filename,
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Transcription request failed", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.audioModel, "kind": "transcription", "status": "error"}).Inc()
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.audioModel, "kind": "transcription", "status": "empty"}).Inc()
		return "", model.ErrEmptyTranscript
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.audioModel, "kind": "transcription", "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.audioModel, "kind": "transcription"}).Observe(duration.Seconds())
	c.logger.Debug("Transcription received",
		zap.Duration("duration", duration),
		zap.Int("transcriptLength", len(transcript)))
	return transcript, nil
}

func (c *openAIClient) Complete(ctx context.Context, systemPrompt, userInput string) (string, Usage, error) {
	usage := Usage{}
	if strings.TrimSpace(systemPrompt) == "" {
		return "", usage, fmt.Errorf("system prompt is empty")
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role: openaigo.ChatMessageRoleUser, Content: userInput,
		})
	}

	start := time.Now()
	c.logger.Debug("Sending completion request",
		zap.String("model", c.model),
		zap.Int("systemPromptBytes", len(systemPrompt)),
		zap.Int("userInputBytes", len(userInput)))

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Completion request failed", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "kind": "completion", "status": "error"}).Inc()
		return "", usage, fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "kind": "completion", "status": "error_empty_response"}).Inc()
		return "", usage, model.ErrEmptyCompletion
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "kind": "completion", "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "kind": "completion"}).Observe(duration.Seconds())

	text := resp.Choices[0].Message.Content
	if resp.Usage.TotalTokens > 0 {
		usage.PromptTokens = resp.Usage.PromptTokens
		usage.CompletionTokens = resp.Usage.CompletionTokens
		usage.TotalTokens = resp.Usage.TotalTokens
	} else {
		// Some OpenAI-compatible gateways omit usage; estimate with tiktoken.
		usage = c.estimateUsage(systemPrompt, userInput, text)
	}
	usage.EstimatedCostUSD = calculateCost(usage.PromptTokens, usage.CompletionTokens)

	aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.PromptTokens))
	aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.CompletionTokens))
	if usage.EstimatedCostUSD > 0 {
		aiEstimatedCostUSD.With(prometheus.Labels{"model": c.model}).Add(usage.EstimatedCostUSD)
	}

	c.logger.Debug("Completion received",
		zap.Duration("duration", duration),
		zap.Int("responseLength", len(text)),
		zap.Int("promptTokens", usage.PromptTokens),
		zap.Int("completionTokens", usage.CompletionTokens))
	return text, usage, nil
}

func (c *openAIClient) estimateUsage(systemPrompt, userInput, response string) Usage {
	tke, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		c.logger.Warn("No tokenizer for model, skipping token estimate", zap.String("model", c.model))
		return Usage{}
	}
	prompt := len(tke.Encode(systemPrompt, nil, nil)) + len(tke.Encode(userInput, nil, nil))
	completion := len(tke.Encode(response, nil, nil))
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// --- Ollama implementation ---

// ollamaClient drives a local model through the native Ollama API. It covers
// completions only; audio transcription always goes through OpenAI.
type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg *config.Config, logger *zap.Logger) (Client, error) {
	// api.NewClient expects the bare host URL, without the /v1 suffix.
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.AIBaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Ollama base URL %q: %w", baseURL, err)
	}
	return &ollamaClient{
		client:  api.NewClient(parsedURL, &http.Client{Timeout: cfg.AITimeout}),
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		logger:  logger.Named("OllamaClient"),
	}, nil
}

func (c *ollamaClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	return "", model.ErrTranscriptionUnsupported
}

func (c *ollamaClient) Complete(ctx context.Context, systemPrompt, userInput string) (string, Usage, error) {
	usage := Usage{}
	if strings.TrimSpace(systemPrompt) == "" {
		return "", usage, fmt.Errorf("system prompt is empty")
	}

	messages := []api.Message{{Role: "system", Content: systemPrompt}}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{"temperature": 0.2},
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Ollama chat failed", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "kind": "completion", "status": "error"}).Inc()
		return "", usage, fmt.Errorf("completion failed: %w", err)
	}
	if resp.Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "kind": "completion", "status": "error_empty_response"}).Inc()
		return "", usage, model.ErrEmptyCompletion
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "kind": "completion", "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "kind": "completion"}).Observe(duration.Seconds())

	usage.PromptTokens = resp.PromptEvalCount
	usage.CompletionTokens = resp.EvalCount
	usage.TotalTokens = resp.PromptEvalCount + resp.EvalCount
	if usage.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.CompletionTokens))
	}
	return resp.Message.Content, usage, nil
}
