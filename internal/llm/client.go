// Package llm talks to Groq's OpenAI-compatible chat completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scrooge/internal/config"
	"scrooge/internal/errors"
)

// chatRequest is the OpenAI-compatible chat completions request body
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// RetryPolicy describes how failed completion calls are retried.
// MaxAttempts counts the first try, so 2 means one retry.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Client calls a chat completion model over HTTP. It implements
// interfaces.ModelClient.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	retry       RetryPolicy
	httpClient  *http.Client

	// sleep is swapped out in tests to avoid real retry delays
	sleep func(time.Duration)
}

// NewClient builds a model client from settings. The API key is checked
// here so that a missing key fails before any pipeline work starts.
func NewClient(settings *config.Settings) (*Client, error) {
	if settings.APIKey == "" {
		return nil, errors.ConfigError("GROQ_API_KEY environment variable is required").
			WithSuggestion("Create a free API key at https://console.groq.com").
			WithSuggestion("Export it with: export GROQ_API_KEY=your-key").
			WithSuggestion("Or put it in a .env file in the working directory")
	}

	return &Client{
		apiKey:      settings.APIKey,
		model:       settings.Model,
		baseURL:     settings.BaseURL,
		temperature: settings.Temperature,
		retry: RetryPolicy{
			MaxAttempts: settings.MaxAttempts,
			Delay:       settings.RetryDelay,
		},
		httpClient: &http.Client{Timeout: settings.RequestTimeout},
		sleep:      time.Sleep,
	}, nil
}

// ModelName returns the identifier of the configured model.
func (c *Client) ModelName() string {
	return c.model
}

// Complete sends the prompt and returns the raw completion text,
// retrying failed calls according to the retry policy. Authentication
// failures are not retried: a bad key will not get better.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", errors.TransportErrorWithCause("completion cancelled", ctx.Err())
			default:
			}
			c.sleep(c.retry.Delay)
		}

		content, err := c.completeOnce(ctx, prompt, maxTokens)
		if err == nil {
			return content, nil
		}
		if errors.IsErrorType(err, errors.AuthErrorType) {
			return "", err
		}
		lastErr = err
	}

	return "", errors.WrapError(lastErr, errors.TransportErrorType,
		fmt.Sprintf("model call failed after %d attempts", c.retry.MaxAttempts)).
		WithContext("model", c.model)
}

func (c *Client) completeOnce(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", errors.TransportErrorWithCause("failed to encode completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.TransportErrorWithCause("failed to build completion request", err).
			WithContext("base_url", c.baseURL)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.TransportErrorWithCause("completion request failed", err).
			WithContext("model", c.model).
			WithSuggestion("Check your internet connection").
			WithSuggestion("Verify the API base URL is reachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.TransportErrorWithCause("failed to read completion response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", errors.AuthErrorf("model API rejected the request (HTTP %d)", resp.StatusCode).
			WithContext("model", c.model).
			WithSuggestion("Check that GROQ_API_KEY is valid and not expired").
			WithSuggestion("Create a new key at https://console.groq.com")
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.TransportErrorWithCause("failed to decode completion response", err).
			WithContext("status", resp.StatusCode).
			WithContext("body", errors.Snippet(string(respBody), 500))
	}

	if parsed.Error != nil {
		return "", errors.TransportErrorf("model API error: %s", parsed.Error.Message).
			WithContext("status", resp.StatusCode).
			WithContext("model", c.model)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.TransportErrorf("model API returned HTTP %d", resp.StatusCode).
			WithContext("body", errors.Snippet(string(respBody), 500)).
			WithSuggestion("The model service may be rate limiting, try again shortly")
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.TransportError("model returned an empty completion").
			WithContext("model", c.model)
	}

	return parsed.Choices[0].Message.Content, nil
}
