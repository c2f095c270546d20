// Package openrouter extracts structured contract drafts through an
// OpenAI-compatible chat-completions API.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
	"github.com/kirillkom/contract-intelligence/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	// RequestsPerMinute throttles extraction calls against provider
	// rate limits. Zero disables throttling.
	RequestsPerMinute  int
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, model string, options Options) *Client {
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if options.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(options.RequestsPerMinute)),
			1,
		)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractDraft asks the model for the structured contract JSON and parses it
// into a draft. Transport-level failures come back wrapped as temporary;
// a response with no usable JSON is a permanent unreadable-document failure.
func (c *Client) ExtractDraft(ctx context.Context, text string) (*domain.ContractDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrUnreadableDocument, "extract draft",
			fmt.Errorf("empty contract text"))
	}

	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildExtractionPrompt(text)},
		},
		Temperature: 0.1,
	}
	request.ResponseFormat.Type = "json_object"

	var response chatResponse
	call := func(callCtx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(callCtx); err != nil {
				return err
			}
		}
		return c.postJSON(callCtx, "/chat/completions", request, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openrouter.extract", call, classifyExtractionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("extract draft", err)
	}

	if len(response.Choices) == 0 {
		return nil, domain.WrapError(domain.ErrUnreadableDocument, "extract draft",
			fmt.Errorf("no completion choices returned"))
	}
	content := extractJSONObject(response.Choices[0].Message.Content)

	var draft domain.ContractDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, domain.WrapError(domain.ErrUnreadableDocument, "extract draft",
			fmt.Errorf("parse draft json: %w", err))
	}
	return &draft, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
