package meditation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"

	"serenity_back/catalog"
	"serenity_back/llm"
	"serenity_back/prompt"
	"serenity_back/tts"
)

const (
	// Durations strictly below the threshold switch to quick mode: a terse
	// prompt, a lower temperature and a reduced token budget.
	quickModeThreshold = 3

	wordsPerMinute   = 175
	tokensPerWord    = 1.5
	tokenBuffer      = 1.2
	quickTokenFactor = 0.8

	standardTemperature = 0.7
	quickTemperature    = 0.5

	// Speech synthesis is only wired for Chinese scripts.
	ttsLanguage = "zh"
)

// readingSpeeds is words (or characters for zh) per minute used to estimate
// how long a script takes to read aloud.
var readingSpeeds = map[string]int{
	"zh": 175,
	"en": 130,
}

var systemPrompts = map[string]struct{ standard, quick string }{
	"zh": {
		standard: "你是一位经验丰富的冥想引导师，擅长用温和、平静的语言创作引导词。输出只包含引导词正文，不要标题、编号或任何解释。",
		quick:    "你是一位冥想引导师。直接输出一段简短、连贯的引导词正文，不要标题或解释。",
	},
	"en": {
		standard: "You are an experienced meditation guide who writes in a calm, soothing voice. Output only the guidance script itself, with no title, numbering or commentary.",
		quick:    "You are a meditation guide. Output a single short, flowing guidance script with no title or commentary.",
	},
}

// TextGenerator is the completion surface the orchestrator depends on;
// *llm.ChatClient satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResult, error)
	DefaultModelID() string
}

// StreamingTextGenerator is the optional streaming surface; the orchestrator
// falls back to blocking generation when the generator does not provide it.
type StreamingTextGenerator interface {
	GenerateStream(ctx context.Context, req llm.GenerateRequest, handler func(llm.StreamDelta) error) (llm.GenerateResult, error)
}

// Config carries the orchestrator's validation and defaulting knobs.
type Config struct {
	MinDuration           int
	MaxDuration           int
	DefaultDuration       int
	DefaultLanguage       string
	SupportedLanguages    []string
	StrictTopicValidation bool
	AnalyticsEnabled      bool
	DefaultModel          string
}

// ConfigFromEnv builds the orchestrator config from MEDITATION_* environment
// variables on top of sensible defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		MinDuration:        1,
		MaxDuration:        60,
		DefaultDuration:    10,
		DefaultLanguage:    "zh",
		SupportedLanguages: []string{"zh", "en"},
		AnalyticsEnabled:   true,
	}

	if raw := strings.TrimSpace(os.Getenv("MEDITATION_MAX_DURATION")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.MaxDuration = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("MEDITATION_DEFAULT_LANGUAGE")); raw != "" {
		cfg.DefaultLanguage = strings.ToLower(raw)
	}
	cfg.StrictTopicValidation = strings.EqualFold(strings.TrimSpace(os.Getenv("MEDITATION_STRICT_TOPICS")), "true")
	if strings.EqualFold(strings.TrimSpace(os.Getenv("MEDITATION_ANALYTICS_DISABLED")), "true") {
		cfg.AnalyticsEnabled = false
	}
	cfg.DefaultModel = strings.TrimSpace(os.Getenv("MEDITATION_DEFAULT_MODEL"))

	return cfg
}

// Orchestrator runs the full generation pipeline: validation, prompt
// assembly, text generation, optional speech synthesis and metadata.
type Orchestrator struct {
	catalog     *catalog.Catalog
	prompts     *prompt.Builder
	generator   TextGenerator
	synthesizer tts.Synthesizer
	usage       *usageRecorder
	cfg         Config
}

func NewOrchestrator(cat *catalog.Catalog, prompts *prompt.Builder, generator TextGenerator, synthesizer tts.Synthesizer, usage *usageRecorder, cfg Config) *Orchestrator {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = 1
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 60
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 10
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "zh"
	}
	if len(cfg.SupportedLanguages) == 0 {
		cfg.SupportedLanguages = []string{"zh", "en"}
	}
	return &Orchestrator{
		catalog:     cat,
		prompts:     prompts,
		generator:   generator,
		synthesizer: synthesizer,
		usage:       usage,
		cfg:         cfg,
	}
}

// Generate runs one generation to completion.
func (o *Orchestrator) Generate(ctx context.Context, req GenerationRequest) *GenerationResult {
	return o.GenerateWithDeltas(ctx, req, nil)
}

// GenerateWithDeltas runs one generation, forwarding text deltas to handler
// when the generator supports streaming and a handler is supplied. The result
// is never nil and panics are converted into a structured failure.
func (o *Orchestrator) GenerateWithDeltas(ctx context.Context, req GenerationRequest, handler func(llm.StreamDelta) error) (result *GenerationResult) {
	started := time.Now()

	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("meditation: generation panicked: %v\n%s", recovered, debug.Stack())
			info := &ErrorInfo{
				Code:    CodeGenerationError,
				Message: fmt.Sprintf("generation failed: %v", recovered),
			}
			if gin.Mode() != gin.ReleaseMode {
				info.Details = string(debug.Stack())
			}
			result = &GenerationResult{Success: false, Error: info}
		}
	}()

	language := o.normalizeLanguage(req.Language)
	if info := o.validate(req, language); info != nil {
		return &GenerationResult{Success: false, Error: info}
	}

	entry := o.catalog.Lookup(req.Topic)
	duration := o.effectiveDuration(req.Duration, entry)
	quick := duration < quickModeThreshold

	text, usage, model, genErr := o.generateText(ctx, req, entry, language, duration, quick, handler)
	if genErr != nil {
		return &GenerationResult{Success: false, Error: genErr}
	}

	data := &GenerationData{
		Text:     text,
		Metadata: o.buildMetadata(req, entry, language, duration, quick, model, usage, text),
	}

	if o.shouldSynthesize(req, language) {
		if audio := o.synthesize(ctx, text, language, req.Options); audio != nil {
			data.Audio = audio
		}
	}

	o.recordUsage(req, data, time.Since(started))

	return &GenerationResult{Success: true, Data: data}
}

// GenerateBatch generates every topic sequentially with the shared base
// request. The batch always completes; individual failures are recorded per
// item with the batch error code.
func (o *Orchestrator) GenerateBatch(ctx context.Context, topics []string, base GenerationRequest) *BatchResult {
	out := &BatchResult{
		Total: len(topics),
		Items: make([]BatchItemResult, 0, len(topics)),
	}

	for _, topic := range topics {
		item := BatchItemResult{Topic: topic}

		req := base
		req.Topic = topic
		res := o.Generate(ctx, req)

		if res.Success {
			item.Success = true
			item.Data = res.Data
			out.Succeeded++
		} else {
			info := res.Error
			if info == nil {
				info = &ErrorInfo{Code: CodeBatchItemError, Message: "generation failed"}
			} else if info.Code == "" {
				info.Code = CodeBatchItemError
			}
			item.Error = info
			out.Failed++
		}
		out.Items = append(out.Items, item)
	}

	return out
}

// Recommend scores catalog topics against the keywords and returns summaries
// in relevance order.
func (o *Orchestrator) Recommend(keywords []string, language string) []TopicSummary {
	lang := o.normalizeLanguage(language)
	matches := o.catalog.Search(keywords, lang)
	return summarizeTopics(matches, lang)
}

// ListTopics returns every catalog topic summarized for the given language.
func (o *Orchestrator) ListTopics(language string) []TopicSummary {
	lang := o.normalizeLanguage(language)
	return summarizeTopics(o.catalog.Topics(), lang)
}

func summarizeTopics(topics []catalog.Descriptor, lang string) []TopicSummary {
	out := make([]TopicSummary, 0, len(topics))
	for i := range topics {
		topic := &topics[i]
		out = append(out, TopicSummary{
			ID:              topic.ID,
			Name:            topic.LocalizedName(lang),
			Description:     topic.Description[lang],
			DefaultDuration: topic.DefaultDuration,
			Styles:          topic.RecommendedStyles,
			Benefits:        topic.Benefits[lang],
		})
	}
	return out
}

func (o *Orchestrator) normalizeLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		return o.cfg.DefaultLanguage
	}
	return lang
}

// validate checks the request against configured bounds. The returned info is
// nil when the request is acceptable.
func (o *Orchestrator) validate(req GenerationRequest, language string) *ErrorInfo {
	if req.Duration != 0 && (req.Duration < o.cfg.MinDuration || req.Duration > o.cfg.MaxDuration) {
		return &ErrorInfo{
			Code:    CodeInvalidDuration,
			Message: fmt.Sprintf("duration must be between %d and %d minutes", o.cfg.MinDuration, o.cfg.MaxDuration),
		}
	}

	if !containsFold(o.cfg.SupportedLanguages, language) {
		return &ErrorInfo{
			Code:    CodeInvalidLanguage,
			Message: fmt.Sprintf("unsupported language %q", language),
			Details: map[string]any{"supported_languages": o.cfg.SupportedLanguages},
		}
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return &ErrorInfo{Code: CodeInvalidTopic, Message: "topic is required"}
	}
	if o.cfg.StrictTopicValidation && o.catalog.Lookup(topic) == nil {
		return &ErrorInfo{
			Code:    CodeInvalidTopic,
			Message: fmt.Sprintf("unknown topic %q", topic),
			Details: map[string]any{"supported_topics": o.catalog.SupportedTopics(language)},
		}
	}

	if style := strings.ToLower(strings.TrimSpace(req.Style)); style != "" {
		if !containsFold(o.knownStyles(), style) {
			return &ErrorInfo{
				Code:    CodeInvalidStyle,
				Message: fmt.Sprintf("unknown style %q", style),
				Details: map[string]any{"supported_styles": o.knownStyles()},
			}
		}
	}

	return nil
}

func (o *Orchestrator) knownStyles() []string {
	styles := o.catalog.Styles()
	if !containsFold(styles, "mindfulness") {
		styles = append(styles, "mindfulness")
	}
	return styles
}

// effectiveDuration resolves the duration exactly once: the request wins,
// then the topic's catalog default, then the configured fallback.
func (o *Orchestrator) effectiveDuration(requested int, entry *catalog.Descriptor) int {
	if requested > 0 {
		return requested
	}
	if entry != nil && entry.DefaultDuration > 0 {
		return entry.DefaultDuration
	}
	return o.cfg.DefaultDuration
}

// tokenBudget sizes the completion for the target duration: the expected
// word count at speaking pace, converted to tokens with headroom. Quick mode
// tightens the budget further.
func tokenBudget(duration int, quick bool) int {
	budget := float64(duration) * wordsPerMinute * tokensPerWord * tokenBuffer
	if quick {
		budget *= quickTokenFactor
	}
	return int(math.Floor(budget))
}

func (o *Orchestrator) generateText(ctx context.Context, req GenerationRequest, entry *catalog.Descriptor, language string, duration int, quick bool, handler func(llm.StreamDelta) error) (string, *llm.Usage, string, *ErrorInfo) {
	params := prompt.Params{
		Topic:    req.Topic,
		Style:    req.Style,
		Duration: duration,
		Language: language,
	}
	if custom := req.Options.Customization; custom != nil {
		params.Customization = prompt.Customization{
			AdditionalConstraints: custom.AdditionalConstraints,
			SpecialRequirements:   custom.SpecialRequirements,
		}
	}

	var userPrompt string
	if quick {
		userPrompt = o.prompts.BuildQuick(params)
	} else {
		userPrompt = o.prompts.Build(params)
	}

	prompts, ok := systemPrompts[language]
	if !ok {
		prompts = systemPrompts["zh"]
	}
	systemPrompt := prompts.standard
	temperature := standardTemperature
	if quick {
		systemPrompt = prompts.quick
		temperature = quickTemperature
	}
	if req.Options.Temperature != nil {
		temperature = *req.Options.Temperature
	}

	model := strings.TrimSpace(req.Options.Model)
	if model == "" {
		model = o.cfg.DefaultModel
	}
	if model == "" {
		model = o.generator.DefaultModelID()
	}

	maxTokens := req.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = tokenBudget(duration, quick)
	}

	genReq := llm.GenerateRequest{
		Model: model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var (
		res llm.GenerateResult
		err error
	)
	if streamer, ok := o.generator.(StreamingTextGenerator); ok && handler != nil {
		res, err = streamer.GenerateStream(ctx, genReq, handler)
	} else {
		res, err = o.generator.Generate(ctx, genReq)
	}
	if err != nil {
		return "", nil, model, mapGenerationError(err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", nil, model, &ErrorInfo{Code: llm.CodeEmptyResponse, Message: "model returned an empty script"}
	}

	return text, res.Usage, model, nil
}

// mapGenerationError preserves the provider's structured code when one exists
// so NO_API_KEY, EMPTY_RESPONSE and HTTP statuses survive into the envelope.
func mapGenerationError(err error) *ErrorInfo {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return &ErrorInfo{Code: llmErr.Code, Message: llmErr.Message}
	}
	return &ErrorInfo{Code: CodeLLMFailed, Message: err.Error()}
}

// shouldSynthesize gates speech synthesis: the caller asked for it, the
// language has voice support, audio was not skipped and a synthesizer is
// wired and enabled.
func (o *Orchestrator) shouldSynthesize(req GenerationRequest, language string) bool {
	if !req.Voice || req.Options.SkipAudio {
		return false
	}
	if language != ttsLanguage {
		return false
	}
	return o.synthesizer != nil && o.synthesizer.Enabled()
}

// synthesize attempts speech synthesis for the script. A failure is logged
// and yields a nil payload; the generation still succeeds with text only.
func (o *Orchestrator) synthesize(ctx context.Context, text, language string, opts Options) *AudioPayload {
	synthReq := tts.SynthesisRequest{
		Text:        text,
		VoiceType:   opts.VoiceType,
		Language:    language,
		HighQuality: opts.HighQuality,
	}
	if opts.Speed != nil {
		synthReq.Speed = *opts.Speed
	}
	if opts.Volume != nil {
		synthReq.Volume = *opts.Volume
	}

	res, err := o.synthesizer.Synthesize(ctx, synthReq)
	if err != nil {
		log.Printf("meditation: speech synthesis failed, returning text only: %v", err)
		return nil
	}

	return &AudioPayload{
		URL:         res.URL,
		AudioBase64: res.AudioBase64,
		Format:      res.Format,
		Cached:      res.Cached,
	}
}

func (o *Orchestrator) buildMetadata(req GenerationRequest, entry *catalog.Descriptor, language string, duration int, quick bool, model string, usage *llm.Usage, text string) Metadata {
	meta := Metadata{
		Topic:       strings.TrimSpace(req.Topic),
		Style:       strings.ToLower(strings.TrimSpace(req.Style)),
		Duration:    duration,
		Language:    language,
		QuickMode:   quick,
		Model:       model,
		Usage:       usage,
		GeneratedAt: time.Now().UTC(),
	}
	if meta.Style == "" {
		if entry != nil && len(entry.RecommendedStyles) > 0 {
			meta.Style = entry.RecommendedStyles[0]
		} else {
			meta.Style = "mindfulness"
		}
	}
	if entry != nil {
		meta.TopicName = entry.LocalizedName(language)
		meta.Benefits = entry.Benefits[language]
		meta.TargetAudience = entry.TargetAudience[language]
	}

	meta.WordCount = countWords(text, language)
	meta.EstimatedReadTime = estimateReadTime(meta.WordCount, language)
	return meta
}

// countWords counts characters for Chinese scripts and whitespace-separated
// words otherwise.
func countWords(text, language string) int {
	if language == "zh" {
		count := 0
		for _, r := range text {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				count++
			}
		}
		return count
	}
	return len(strings.Fields(text))
}

// estimateReadTime returns the read-aloud time in whole minutes, at least 1.
func estimateReadTime(wordCount int, language string) int {
	speed, ok := readingSpeeds[language]
	if !ok {
		speed = wordsPerMinute
	}
	minutes := int(math.Ceil(float64(wordCount) / float64(speed)))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// recordUsage hands the run to the recorder on a detached goroutine; the
// request path never waits on analytics.
func (o *Orchestrator) recordUsage(req GenerationRequest, data *GenerationData, elapsed time.Duration) {
	if !o.cfg.AnalyticsEnabled || o.usage == nil {
		return
	}
	go o.usage.Record(req, data, elapsed)
}

func containsFold(haystack []string, needle string) bool {
	for _, candidate := range haystack {
		if strings.EqualFold(candidate, needle) {
			return true
		}
	}
	return false
}
