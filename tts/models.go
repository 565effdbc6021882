package tts

import "context"

// SynthesisRequest carries the text and per-call voice parameters. Zero
// values fall back to the client's configured defaults before the cache key
// is derived.
type SynthesisRequest struct {
	Text        string
	VoiceType   int
	Speed       float64
	Volume      float64
	SampleRate  int
	Language    string
	HighQuality bool
}

// SynthesisResult is the outcome of a synthesis. At least one of URL and
// AudioBase64 is set on success: URL when the audio landed in the cache
// bucket, AudioBase64 when it is served inline.
type SynthesisResult struct {
	URL         string `json:"url,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Format      string `json:"format"`
	Cached      bool   `json:"cached,omitempty"`
}

// Synthesizer is the surface the orchestrator depends on.
type Synthesizer interface {
	Enabled() bool
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

// ObjectStore is the cache bucket contract used by the synthesis client.
// *storage.AudioStore satisfies it.
type ObjectStore interface {
	Enabled() bool
	Exists(ctx context.Context, objectName string) (bool, error)
	Upload(ctx context.Context, objectName string, data []byte, contentType string) error
	PublicURL(objectName string) string
}

// VoiceOption describes one selectable voice for the listing endpoint.
type VoiceOption struct {
	VoiceType   int    `json:"voice_type"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Description string `json:"description,omitempty"`
}
