package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// StreamDelta is one increment of a streaming completion.
type StreamDelta struct {
	Content     string
	FullContent string
	Done        bool
}

// chatStreamChunk mirrors the streaming delta payload from the provider.
type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// GenerateStream sends one completion request with streaming enabled and
// invokes handler for each delta. Providers that answer with a plain JSON body
// are handled as a single delta. The aggregated result is returned once the
// stream ends.
func (c *ChatClient) GenerateStream(ctx context.Context, req GenerateRequest, handler func(StreamDelta) error) (GenerateResult, error) {
	if c == nil {
		return GenerateResult{}, &Error{Code: CodeHTTPError, Message: "client is nil"}
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return GenerateResult{}, &Error{Code: CodeNoAPIKey, Message: "LLM API key is not configured"}
	}

	payload, err := c.buildPayload(req, true)
	if err != nil {
		return GenerateResult{}, err
	}

	body := &bytes.Buffer{}
	if encodeErr := json.NewEncoder(body).Encode(payload); encodeErr != nil {
		return GenerateResult{}, fmt.Errorf("llm: encode request: %w", encodeErr)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

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

	flush := func(delta StreamDelta) error {
		if handler == nil {
			return nil
		}
		return handler(delta)
	}

	contentType := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	if strings.Contains(contentType, "application/json") {
		var decoded completionPayload
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return GenerateResult{}, &Error{Code: CodeEmptyResponse, Message: "unparseable completion response: " + err.Error()}
		}
		text, ok := extractContent(&decoded)
		if !ok {
			return GenerateResult{}, &Error{Code: CodeEmptyResponse, Message: "completion response carried no usable content"}
		}
		if err := flush(StreamDelta{Content: text, FullContent: text}); err != nil {
			return GenerateResult{}, err
		}
		if err := flush(StreamDelta{FullContent: text, Done: true}); err != nil {
			return GenerateResult{}, err
		}
		return GenerateResult{Text: text, Usage: decoded.Usage}, nil
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var builder strings.Builder
	var usage *Usage

	finish := func() (GenerateResult, error) {
		full := strings.TrimSpace(builder.String())
		if full == "" {
			return GenerateResult{}, &Error{Code: CodeEmptyResponse, Message: "stream carried no usable content"}
		}
		if err := flush(StreamDelta{FullContent: full, Done: true}); err != nil {
			return GenerateResult{}, err
		}
		return GenerateResult{Text: full, Usage: usage}, nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(line[len("data:"):])
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return finish()
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			builder.WriteString(choice.Delta.Content)
			if err := flush(StreamDelta{
				Content:     choice.Delta.Content,
				FullContent: builder.String(),
			}); err != nil {
				return GenerateResult{}, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return GenerateResult{}, &Error{Code: CodeHTTPError, Message: "read stream: " + err.Error()}
	}

	return finish()
}
