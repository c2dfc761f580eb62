package solver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultLLMTimeout = 120 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

// Provider presets for known LLM providers
var providerDefaults = map[string]struct {
	BaseURL   string
	Model     string
	APIFormat string
}{
	"perplexity": {BaseURL: "https://api.perplexity.ai/chat/completions", Model: "sonar", APIFormat: "openai"},
	"openai":     {BaseURL: "https://api.openai.com/v1/chat/completions", Model: "gpt-4o-mini", APIFormat: "openai"},
	"anthropic":  {BaseURL: "https://api.anthropic.com/v1/messages", Model: "claude-sonnet-4-5-20250929", APIFormat: "anthropic"},
	"ollama":     {BaseURL: "http://localhost:11434/v1/chat/completions", Model: "llama3", APIFormat: "openai"},
}

const systemPrompt = "You are an expert tutor answering course assessment questions. " +
	"Answer every question correctly and return ONLY valid JSON."

// ChatMessage represents a message in the chat API
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the OpenAI-compatible request body
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse represents the OpenAI-compatible response
type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// AnthropicRequest represents the Anthropic /v1/messages request body
type AnthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

// AnthropicResponse represents the Anthropic /v1/messages response
type AnthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// LLMClient handles communication with any OpenAI-compatible chat
// completions API, plus the Anthropic messages format.
type LLMClient struct {
	provider   string
	apiFormat  string // "openai" (default) or "anthropic"
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// LLMOption allows configuring the client
type LLMOption func(*LLMClient)

// WithLLMHTTPClient sets a custom HTTP client
func WithLLMHTTPClient(client *http.Client) LLMOption {
	return func(c *LLMClient) {
		c.httpClient = client
	}
}

// WithLLMModel sets a custom model
func WithLLMModel(model string) LLMOption {
	return func(c *LLMClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLLMBaseURL sets a custom base URL
func WithLLMBaseURL(url string) LLMOption {
	return func(c *LLMClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithLLMAPIFormat sets the wire format ("openai" or "anthropic")
func WithLLMAPIFormat(format string) LLMOption {
	return func(c *LLMClient) {
		if format != "" {
			c.apiFormat = format
		}
	}
}

// NewLLMClient creates a new LLM API client.
// provider can be "perplexity", "openai", "anthropic", "ollama", or empty
// (defaults to openai). apiKey can be empty for providers that don't require
// one (e.g. ollama).
func NewLLMClient(provider, apiKey string, opts ...LLMOption) (*LLMClient, error) {
	if provider == "" {
		provider = "openai"
	}

	defaults, known := providerDefaults[provider]
	if !known {
		// Unknown provider: require explicit base_url via options
		defaults.BaseURL = ""
		defaults.Model = ""
	}

	client := &LLMClient{
		provider:   provider,
		apiFormat:  defaults.APIFormat,
		apiKey:     apiKey,
		model:      defaults.Model,
		baseURL:    defaults.BaseURL,
		httpClient: &http.Client{Timeout: defaultLLMTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.apiFormat == "" {
		client.apiFormat = "openai"
	}

	// Auto-append standard path if base URL has no path component
	if !strings.Contains(strings.TrimPrefix(strings.TrimPrefix(client.baseURL, "https://"), "http://"), "/") {
		switch client.apiFormat {
		case "anthropic":
			client.baseURL = strings.TrimRight(client.baseURL, "/") + "/v1/messages"
		default:
			client.baseURL = strings.TrimRight(client.baseURL, "/") + "/v1/chat/completions"
		}
	}

	if client.baseURL == "" {
		return nil, fmt.Errorf("LLM base_url is required for provider %q", provider)
	}
	if client.model == "" {
		return nil, fmt.Errorf("LLM model is required for provider %q", provider)
	}
	if client.apiKey == "" && provider != "ollama" {
		return nil, fmt.Errorf("LLM api_key is required for provider %q", provider)
	}

	return client, nil
}

// AnswerQuestions sends the serialized question set to the LLM and returns
// the parsed answers.
func (c *LLMClient) AnswerQuestions(questionsJSON string) ([]Answer, error) {
	prompt := fmt.Sprintf(AnswerPromptTemplate, questionsJSON)

	var body []byte
	var err error

	if c.apiFormat == "anthropic" {
		reqBody := AnthropicRequest{
			Model:     c.model,
			MaxTokens: 4096,
			System:    systemPrompt,
			Messages: []ChatMessage{
				{Role: "user", Content: prompt},
			},
		}
		body, err = json.Marshal(reqBody)
	} else {
		reqBody := ChatRequest{
			Model: c.model,
			Messages: []ChatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
		}
		body, err = json.Marshal(reqBody)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < defaultMaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(defaultRetryDelay * time.Duration(attempt))
		}

		answers, err := c.doRequest(body)
		if err != nil {
			// Don't retry client errors (4xx)
			var noRetry *errNoRetry
			if errors.As(err, &noRetry) {
				return nil, noRetry.err
			}
			lastErr = err
			continue
		}
		return answers, nil
	}

	return nil, fmt.Errorf("answering failed after %d retries: %w", defaultMaxRetries, lastErr)
}

// errNoRetry wraps errors that should not be retried (e.g., 4xx client errors).
type errNoRetry struct {
	err error
}

func (e *errNoRetry) Error() string { return e.err.Error() }
func (e *errNoRetry) Unwrap() error { return e.err }

func (c *LLMClient) doRequest(body []byte) ([]Answer, error) {
	req, err := http.NewRequest("POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiFormat == "anthropic" {
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	} else if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, &errNoRetry{err: fmt.Errorf("LLM API error %d: %s", resp.StatusCode, truncate(string(raw), 200))}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LLM API error %d", resp.StatusCode)
	}

	content, err := c.extractContent(raw)
	if err != nil {
		return nil, err
	}

	return ParseAnswers(content)
}

func (c *LLMClient) extractContent(raw []byte) (string, error) {
	if c.apiFormat == "anthropic" {
		var out AnthropicResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if out.Error != nil {
			return "", &errNoRetry{err: fmt.Errorf("LLM API error: %s", out.Error.Message)}
		}
		for _, block := range out.Content {
			if block.Type == "text" {
				return block.Text, nil
			}
		}
		return "", fmt.Errorf("no text content in response")
	}

	var out ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != nil {
		return "", &errNoRetry{err: fmt.Errorf("LLM API error: %s", out.Error.Message)}
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
