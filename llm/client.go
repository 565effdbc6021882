package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://openai.qiniu.com/v1"
	defaultModelID = "deepseek-v3"
	requestTimeout = 10 * time.Second
)

// Error codes surfaced by the generation client. Non-2xx upstream responses
// use the numeric status code instead of CodeHTTPError.
const (
	CodeNoAPIKey      = "NO_API_KEY"
	CodeHTTPError     = "HTTP_ERROR"
	CodeEmptyResponse = "EMPTY_RESPONSE"
)

// Error is the structured failure returned by Generate and GenerateStream.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "llm: unknown error"
	}
	return fmt.Sprintf("llm: %s: %s", e.Code, e.Message)
}

// ChatClient wraps the HTTP calls to an OpenAI-compatible chat completions
// API. A missing credential is tolerated at construction and reported as
// NO_API_KEY when a generation is attempted.
type ChatClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	modelID    string
}

// NewChatClientFromEnv constructs a ChatClient using environment variables.
//
// Expected variables:
//   - LLM_API_KEY: API key for the provider (checked at call time)
//   - LLM_BASE_URL: optional override for the API base URL
//   - LLM_MODEL_ID: optional override for the default model
func NewChatClientFromEnv() (*ChatClient, error) {
	baseURL := strings.TrimSpace(os.Getenv("LLM_BASE_URL"))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("llm: invalid base URL %q", baseURL)
	}

	modelID := strings.TrimSpace(os.Getenv("LLM_MODEL_ID"))
	if modelID == "" {
		modelID = defaultModelID
	}

	return &ChatClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		modelID:    modelID,
	}, nil
}

// NewChatClient constructs a client with explicit settings; a nil httpClient
// falls back to a default carrying the standard request timeout.
func NewChatClient(baseURL, apiKey, modelID string, httpClient *http.Client) *ChatClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if modelID == "" {
		modelID = defaultModelID
	}
	return &ChatClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		modelID:    modelID,
	}
}

// DefaultModelID returns the model used when a request does not override it.
func (c *ChatClient) DefaultModelID() string {
	if c == nil {
		return ""
	}
	return c.modelID
}

// ChatMessage represents a single turn in a chat conversation payload.
type ChatMessage struct {
	Role    string
	Content string
}

// GenerateRequest accepts either a structured message list or a legacy single
// prompt string; both are normalized into the same wire shape.
type GenerateRequest struct {
	Model       string
	Messages    []ChatMessage
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Usage captures token accounting returned by the API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateResult carries the extracted text and usage for one completion.
type GenerateResult struct {
	Text  string
	Usage *Usage
}

// chatCompletionMessage matches the API payload structure for messages.
type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest represents the request body sent to the model.
type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Stream      bool                    `json:"stream"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature *float64                `json:"temperature,omitempty"`
	MaxTokens   *int                    `json:"max_tokens,omitempty"`
}

// Generate sends one completion request and normalizes the response. A single
// attempt is made; retrying is the caller's decision.
func (c *ChatClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if c == nil {
		return GenerateResult{}, &Error{Code: CodeHTTPError, Message: "client is nil"}
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return GenerateResult{}, &Error{Code: CodeNoAPIKey, Message: "LLM API key is not configured"}
	}

	payload, err := c.buildPayload(req, false)
	if err != nil {
		return GenerateResult{}, err
	}

	body := &bytes.Buffer{}
	if encodeErr := json.NewEncoder(body).Encode(payload); encodeErr != nil {
		return GenerateResult{}, fmt.Errorf("llm: encode request: %w", encodeErr)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, body)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return GenerateResult{}, &Error{Code: CodeHTTPError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return GenerateResult{}, &Error{
			Code:    strconv.Itoa(resp.StatusCode),
			Message: strings.TrimSpace(string(snippet)),
		}
	}

	var decoded completionPayload
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return GenerateResult{}, &Error{Code: CodeEmptyResponse, Message: "unparseable completion response: " + err.Error()}
	}

	text, ok := extractContent(&decoded)
	if !ok {
		return GenerateResult{}, &Error{Code: CodeEmptyResponse, Message: "completion response carried no usable content"}
	}

	return GenerateResult{Text: text, Usage: decoded.Usage}, nil
}

// buildPayload normalizes prompt/message inputs and per-call overrides into
// the wire request.
func (c *ChatClient) buildPayload(req GenerateRequest, stream bool) (chatCompletionRequest, error) {
	messages := req.Messages
	if len(messages) == 0 {
		trimmed := strings.TrimSpace(req.Prompt)
		if trimmed == "" {
			return chatCompletionRequest{}, errors.New("llm: request carries no prompt or messages")
		}
		messages = []ChatMessage{{Role: "user", Content: trimmed}}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.modelID
	}

	payload := chatCompletionRequest{
		Model:    model,
		Stream:   stream,
		Messages: make([]chatCompletionMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		role := strings.TrimSpace(msg.Role)
		if role == "" {
			role = "user"
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		payload.Messages = append(payload.Messages, chatCompletionMessage{Role: role, Content: content})
	}
	if len(payload.Messages) == 0 {
		return chatCompletionRequest{}, errors.New("llm: messages contain no content")
	}

	if req.Temperature > 0 {
		temp := req.Temperature
		payload.Temperature = &temp
	}
	if req.MaxTokens > 0 {
		tokens := req.MaxTokens
		payload.MaxTokens = &tokens
	}

	return payload, nil
}
