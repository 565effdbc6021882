package llm

import "strings"

// completionPayload is the superset of response shapes seen across providers.
// Only the fields a given provider fills will be set after decoding.
type completionPayload struct {
	Choices []completionChoice `json:"choices"`
	Result  *completionResult  `json:"result"`
	Content string             `json:"content"`
	Usage   *Usage             `json:"usage"`
}

type completionChoice struct {
	Message chatCompletionMessage `json:"message"`
}

type completionResult struct {
	Content string `json:"content"`
}

// contentExtractor pulls generated text out of one known response shape.
// Returns false when the shape does not apply or yields an empty string.
type contentExtractor struct {
	name    string
	extract func(payload *completionPayload) (string, bool)
}

// contentExtractors is tried in priority order; the first extractor that
// yields non-empty text wins.
var contentExtractors = []contentExtractor{
	{name: "choices", extract: extractChoiceContent},
	{name: "result", extract: extractResultContent},
	{name: "content", extract: extractBareContent},
}

func extractContent(payload *completionPayload) (string, bool) {
	if payload == nil {
		return "", false
	}
	for _, extractor := range contentExtractors {
		if text, ok := extractor.extract(payload); ok {
			return text, true
		}
	}
	return "", false
}

// extractChoiceContent reads the OpenAI-style choices[0].message.content.
func extractChoiceContent(payload *completionPayload) (string, bool) {
	if len(payload.Choices) == 0 {
		return "", false
	}
	text := strings.TrimSpace(payload.Choices[0].Message.Content)
	return text, text != ""
}

// extractResultContent reads the alternate result.content wrapper.
func extractResultContent(payload *completionPayload) (string, bool) {
	if payload.Result == nil {
		return "", false
	}
	text := strings.TrimSpace(payload.Result.Content)
	return text, text != ""
}

// extractBareContent reads a top-level content field.
func extractBareContent(payload *completionPayload) (string, bool) {
	text := strings.TrimSpace(payload.Content)
	return text, text != ""
}
