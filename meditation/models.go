package meditation

import (
	"time"

	"serenity_back/llm"
)

// Customization carries free-form user adjustments that flow into the prompt.
type Customization struct {
	AdditionalConstraints []string `json:"additional_constraints,omitempty"`
	SpecialRequirements   string   `json:"special_requirements,omitempty"`
}

// Options tunes one generation. Pointer fields distinguish "not provided"
// from an explicit zero.
type Options struct {
	Model         string         `json:"model,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	VoiceType     int            `json:"voice_type,omitempty"`
	Speed         *float64       `json:"speed,omitempty"`
	Volume        *float64       `json:"volume,omitempty"`
	Format        string         `json:"format,omitempty"`
	HighQuality   bool           `json:"high_quality,omitempty"`
	SkipAudio     bool           `json:"skip_audio,omitempty"`
	Customization *Customization `json:"customization,omitempty"`
}

// GenerationRequest is one meditation generation job.
type GenerationRequest struct {
	Topic    string  `json:"topic"`
	Style    string  `json:"style,omitempty"`
	Duration int     `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
	Voice    bool    `json:"voice,omitempty"`
	Options  Options `json:"options,omitempty"`
}

// AudioPayload is the audio half of a successful generation.
type AudioPayload struct {
	URL         string `json:"url,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Format      string `json:"format"`
	Cached      bool   `json:"cached,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// Metadata describes how a meditation was produced.
type Metadata struct {
	Topic             string     `json:"topic"`
	TopicName         string     `json:"topic_name,omitempty"`
	Style             string     `json:"style"`
	Duration          int        `json:"duration"`
	Language          string     `json:"language"`
	QuickMode         bool       `json:"quick_mode"`
	WordCount         int        `json:"word_count"`
	EstimatedReadTime int        `json:"estimated_read_time"`
	Benefits          []string   `json:"benefits,omitempty"`
	TargetAudience    []string   `json:"target_audience,omitempty"`
	Model             string     `json:"model,omitempty"`
	Usage             *llm.Usage `json:"usage,omitempty"`
	GeneratedAt       time.Time  `json:"generated_at"`
}

// GenerationData is the success payload: the script, optional audio, and
// metadata about the run.
type GenerationData struct {
	Text     string        `json:"text"`
	Audio    *AudioPayload `json:"audio,omitempty"`
	Metadata Metadata      `json:"metadata"`
}

// GenerationResult is the uniform outcome of one generation. Success with a
// nil Audio means the script was produced but synthesis was skipped or failed.
type GenerationResult struct {
	Success bool            `json:"success"`
	Data    *GenerationData `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

// BatchItemResult is one topic's outcome within a batch.
type BatchItemResult struct {
	Topic   string          `json:"topic"`
	Success bool            `json:"success"`
	Data    *GenerationData `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

// BatchResult aggregates a batch run. The batch itself always completes; per
// item failures land in Items.
type BatchResult struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

// TopicSummary is one entry of the recommendation and topic-listing payloads.
type TopicSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	DefaultDuration int      `json:"default_duration,omitempty"`
	Styles          []string `json:"styles,omitempty"`
	Benefits        []string `json:"benefits,omitempty"`
}

// dispatchRequest is the single POST body shape; Type selects the operation
// and the remaining fields are interpreted per type.
type dispatchRequest struct {
	Type     string  `json:"type"`
	Topic    string  `json:"topic,omitempty"`
	Style    string  `json:"style,omitempty"`
	Duration int     `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
	Voice    bool    `json:"voice,omitempty"`
	Options  Options `json:"options,omitempty"`

	Topics      []string `json:"topics,omitempty"`
	BaseOptions Options  `json:"base_options,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}
