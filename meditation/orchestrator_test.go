package meditation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"serenity_back/catalog"
	"serenity_back/llm"
	"serenity_back/prompt"
	"serenity_back/tts"
)

type fakeGenerator struct {
	text     string
	usage    *llm.Usage
	err      error
	requests []llm.GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.GenerateRequest) (llm.GenerateResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return llm.GenerateResult{}, f.err
	}
	return llm.GenerateResult{Text: f.text, Usage: f.usage}, nil
}

func (f *fakeGenerator) DefaultModelID() string { return "test-model" }

type fakeSynthesizer struct {
	result *tts.SynthesisResult
	err    error
	calls  int
}

func (f *fakeSynthesizer) Enabled() bool { return true }

func (f *fakeSynthesizer) Synthesize(context.Context, tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestOrchestrator(gen *fakeGenerator, synth tts.Synthesizer, cfg Config) *Orchestrator {
	cat := catalog.Default()
	return NewOrchestrator(cat, prompt.NewBuilder(cat), gen, synth, nil, cfg)
}

func TestTokenBudget(t *testing.T) {
	t.Parallel()

	require.Equal(t, 630, tokenBudget(2, false))
	require.Equal(t, 504, tokenBudget(2, true))
	require.Equal(t, 3150, tokenBudget(10, false))
}

func TestGenerateStandardMode(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		text:  "想象自己躺在一片柔软的草地上。",
		usage: &llm.Usage{PromptTokens: 100, CompletionTokens: 200, TotalTokens: 300},
	}
	o := newTestOrchestrator(gen, nil, Config{})

	res := o.Generate(context.Background(), GenerationRequest{Topic: "sleep", Language: "zh"})
	require.True(t, res.Success)
	require.Nil(t, res.Error)
	require.NotNil(t, res.Data)
	require.Equal(t, gen.text, res.Data.Text)
	require.Nil(t, res.Data.Audio)

	meta := res.Data.Metadata
	require.Equal(t, "sleep", meta.Topic)
	require.Equal(t, "睡眠冥想", meta.TopicName)
	require.Equal(t, 15, meta.Duration) // catalog default for sleep
	require.False(t, meta.QuickMode)
	require.Equal(t, "test-model", meta.Model)
	require.Equal(t, 300, meta.Usage.TotalTokens)
	require.NotEmpty(t, meta.Benefits)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	require.InDelta(t, standardTemperature, req.Temperature, 1e-9)
	require.Equal(t, tokenBudget(15, false), req.MaxTokens)
	require.Len(t, req.Messages, 2)
	require.Equal(t, "system", req.Messages[0].Role)
}

func TestGenerateQuickMode(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "short calm script"}
	o := newTestOrchestrator(gen, nil, Config{})

	res := o.Generate(context.Background(), GenerationRequest{Topic: "breathing", Duration: 2, Language: "en"})
	require.True(t, res.Success)
	require.True(t, res.Data.Metadata.QuickMode)

	req := gen.requests[0]
	require.InDelta(t, quickTemperature, req.Temperature, 1e-9)
	require.Equal(t, 504, req.MaxTokens)
	require.Equal(t, systemPrompts["en"].quick, req.Messages[0].Content)
}

func TestGenerateValidation(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "script"}
	o := newTestOrchestrator(gen, nil, Config{StrictTopicValidation: true})

	cases := []struct {
		name string
		req  GenerationRequest
		code string
	}{
		{"duration too long", GenerationRequest{Topic: "sleep", Duration: 99}, CodeInvalidDuration},
		{"duration negative", GenerationRequest{Topic: "sleep", Duration: -1}, CodeInvalidDuration},
		{"unsupported language", GenerationRequest{Topic: "sleep", Language: "fr"}, CodeInvalidLanguage},
		{"empty topic", GenerationRequest{Topic: "  "}, CodeInvalidTopic},
		{"unknown topic in strict mode", GenerationRequest{Topic: "quantum-surfing"}, CodeInvalidTopic},
		{"unknown style", GenerationRequest{Topic: "sleep", Style: "operatic"}, CodeInvalidStyle},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res := o.Generate(context.Background(), tc.req)
			require.False(t, res.Success)
			require.NotNil(t, res.Error)
			require.Equal(t, tc.code, res.Error.Code)
		})
	}

	// Validation failures never reach the generator.
	require.Empty(t, gen.requests)
}

func TestGenerateLenientModeAcceptsUnknownTopic(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "script about sunsets"}
	o := newTestOrchestrator(gen, nil, Config{})

	res := o.Generate(context.Background(), GenerationRequest{Topic: "晚霞漫步", Language: "zh"})
	require.True(t, res.Success)
	require.Equal(t, 10, res.Data.Metadata.Duration) // configured fallback
	require.Empty(t, res.Data.Metadata.TopicName)
}

func TestGeneratePreservesProviderErrorCodes(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: &llm.Error{Code: llm.CodeEmptyResponse, Message: "nothing came back"}}
	o := newTestOrchestrator(gen, nil, Config{})

	res := o.Generate(context.Background(), GenerationRequest{Topic: "sleep"})
	require.False(t, res.Success)
	require.Equal(t, llm.CodeEmptyResponse, res.Error.Code)
}

func TestGenerateWrapsPlainErrors(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("socket torn")}
	o := newTestOrchestrator(gen, nil, Config{})

	res := o.Generate(context.Background(), GenerationRequest{Topic: "sleep"})
	require.False(t, res.Success)
	require.Equal(t, CodeLLMFailed, res.Error.Code)
}

func TestGenerateWithVoiceAttachesAudio(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "慢慢闭上眼睛。"}
	synth := &fakeSynthesizer{result: &tts.SynthesisResult{URL: "https://cdn.test/a.mp3", Format: "mp3"}}
	o := newTestOrchestrator(gen, synth, Config{})

	res := o.Generate(context.Background(), GenerationRequest{Topic: "sleep", Language: "zh", Voice: true})
	require.True(t, res.Success)
	require.NotNil(t, res.Data.Audio)
	require.Equal(t, "https://cdn.test/a.mp3", res.Data.Audio.URL)
	require.Equal(t, 1, synth.calls)
}

func TestGenerateVoiceGating(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "a calm english script"}
	synth := &fakeSynthesizer{result: &tts.SynthesisResult{URL: "u", Format: "mp3"}}
	o := newTestOrchestrator(gen, synth, Config{})

	// English has no voice support; no synthesis attempt is made.
	res := o.Generate(context.Background(), GenerationRequest{Topic: "sleep", Language: "en", Voice: true})
	require.True(t, res.Success)
	require.Nil(t, res.Data.Audio)
	require.Zero(t, synth.calls)

	// skip_audio wins over voice.
	res = o.Generate(context.Background(), GenerationRequest{
		Topic: "sleep", Language: "zh", Voice: true,
		Options: Options{SkipAudio: true},
	})
	require.True(t, res.Success)
	require.Nil(t, res.Data.Audio)
	require.Zero(t, synth.calls)
}

func TestGenerateSynthesisFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "慢慢呼吸。"}
	synth := &fakeSynthesizer{err: errors.New("provider down")}
	o := newTestOrchestrator(gen, synth, Config{})

	res := o.Generate(context.Background(), GenerationRequest{Topic: "sleep", Language: "zh", Voice: true})
	require.True(t, res.Success)
	require.NotEmpty(t, res.Data.Text)
	require.Nil(t, res.Data.Audio)
	require.Equal(t, 1, synth.calls)
}

func TestGenerateBatchNeverFailsWholesale(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "script"}
	o := newTestOrchestrator(gen, nil, Config{StrictTopicValidation: true})

	res := o.GenerateBatch(context.Background(), []string{"sleep", "invalid-topic-xyz"}, GenerationRequest{Language: "zh"})
	require.Equal(t, 2, res.Total)
	require.Equal(t, 1, res.Succeeded)
	require.Equal(t, 1, res.Failed)
	require.Len(t, res.Items, 2)

	require.True(t, res.Items[0].Success)
	require.Equal(t, "sleep", res.Items[0].Topic)

	require.False(t, res.Items[1].Success)
	require.Equal(t, CodeInvalidTopic, res.Items[1].Error.Code)
}

func TestRecommendOrdersByRelevance(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(&fakeGenerator{text: "x"}, nil, Config{})

	topics := o.Recommend([]string{"sleep"}, "en")
	require.NotEmpty(t, topics)
	require.Equal(t, "sleep", topics[0].ID)
	require.Equal(t, "Sleep Meditation", topics[0].Name)

	require.Empty(t, o.Recommend([]string{"zzznothing"}, "en"))
}

func TestCountWordsAndReadTime(t *testing.T) {
	t.Parallel()

	require.Equal(t, 6, countWords("慢慢呼吸，放松。", "zh"))
	require.Equal(t, 5, countWords("take a slow deep breath", "en"))

	require.Equal(t, 1, estimateReadTime(10, "zh"))
	require.Equal(t, 2, estimateReadTime(200, "zh"))
	require.Equal(t, 2, estimateReadTime(200, "en"))
}
