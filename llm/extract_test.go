package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractContentPrefersChoices(t *testing.T) {
	t.Parallel()

	payload := &completionPayload{}
	payload.Choices = []completionChoice{{Message: chatCompletionMessage{Content: " from choices "}}}
	payload.Result = &completionResult{Content: "from result"}
	payload.Content = "bare content"

	text, ok := extractContent(payload)
	require.True(t, ok)
	require.Equal(t, "from choices", text)
}

func TestExtractContentFallsThroughEmptyShapes(t *testing.T) {
	t.Parallel()

	payload := &completionPayload{}
	payload.Choices = []completionChoice{{Message: chatCompletionMessage{Content: "   "}}}
	payload.Result = &completionResult{Content: "from result"}

	text, ok := extractContent(payload)
	require.True(t, ok)
	require.Equal(t, "from result", text)

	bare := &completionPayload{Content: "  bare  "}
	text, ok = extractContent(bare)
	require.True(t, ok)
	require.Equal(t, "bare", text)
}

func TestExtractContentReportsNothingUsable(t *testing.T) {
	t.Parallel()

	_, ok := extractContent(&completionPayload{})
	require.False(t, ok)

	_, ok = extractContent(nil)
	require.False(t, ok)
}
