package tts

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var ErrDisabled = errors.New("tts: service disabled")

const (
	defaultBaseURL        = "https://openai.qiniu.com/v1"
	defaultVoiceType      = 101016
	defaultFormat         = "mp3"
	defaultSampleRate     = 16000
	highQualitySampleRate = 24000

	maxTextBytes = 2000
	minSpeed     = -2.0
	maxSpeed     = 2.0
	minVolume    = 0.0
	maxVolume    = 10.0

	synthesisTimeout  = 15 * time.Second
	synthesisAttempts = 2

	objectKeyPrefix = "meditations/audio/"
)

// languageCodes maps supported languages to the provider's numeric code.
var languageCodes = map[string]int{
	"zh": 1,
	"en": 2,
}

// Client synthesizes speech through a remote provider with a content-addressed
// object-store cache in front of it and in-process de-duplication of identical
// concurrent requests.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	apiKey           string
	defaultVoice     int
	defaultLanguage  string
	format           string
	store            ObjectStore
	pending          *pendingRegistry
	attemptTimeout   time.Duration
	enabled          bool
}

// Config carries explicit client settings; used directly by tests and by
// NewClientFromEnv.
type Config struct {
	BaseURL          string
	APIKey           string
	DefaultVoiceType int
	DefaultLanguage  string
	Format           string
	HTTPClient       *http.Client
	Store            ObjectStore
	AttemptTimeout   time.Duration
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: synthesisTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	voice := cfg.DefaultVoiceType
	if voice <= 0 {
		voice = defaultVoiceType
	}
	language := strings.ToLower(strings.TrimSpace(cfg.DefaultLanguage))
	if _, ok := languageCodes[language]; !ok {
		language = "zh"
	}
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" {
		format = defaultFormat
	}
	timeout := cfg.AttemptTimeout
	if timeout <= 0 {
		timeout = synthesisTimeout
	}

	return &Client{
		httpClient:      httpClient,
		baseURL:         baseURL,
		apiKey:          strings.TrimSpace(cfg.APIKey),
		defaultVoice:    voice,
		defaultLanguage: language,
		format:          format,
		store:           cfg.Store,
		pending:         newPendingRegistry(),
		attemptTimeout:  timeout,
		enabled:         strings.TrimSpace(cfg.APIKey) != "",
	}
}

// NewClientFromEnv constructs a Client from TTS_* environment variables. The
// client is disabled (not an error) when no API key is configured.
func NewClientFromEnv(store ObjectStore) (*Client, error) {
	voiceType := defaultVoiceType
	if raw := strings.TrimSpace(os.Getenv("TTS_DEFAULT_VOICE_TYPE")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("tts: invalid TTS_DEFAULT_VOICE_TYPE %q", raw)
		}
		voiceType = parsed
	}

	return NewClient(Config{
		BaseURL:          os.Getenv("TTS_API_BASE_URL"),
		APIKey:           os.Getenv("TTS_API_KEY"),
		DefaultVoiceType: voiceType,
		DefaultLanguage:  os.Getenv("TTS_DEFAULT_LANGUAGE"),
		Format:           os.Getenv("TTS_RESPONSE_FORMAT"),
		Store:            store,
	}), nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// synthesisParams is the normalized parameter set that, together with the
// exact text, defines cache identity.
type synthesisParams struct {
	voiceType    int
	speed        float64
	volume       float64
	sampleRate   int
	languageCode int
}

// CacheKey derives the deterministic cache key for a synthesis. Every
// normalized parameter and the exact text feed the hash; any change produces
// a different key.
func CacheKey(text string, voiceType int, speed, volume float64, sampleRate, languageCode int) string {
	payload := fmt.Sprintf("%d|%.2f|%.2f|%d|%d|%s", voiceType, speed, volume, sampleRate, languageCode, text)
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Synthesize runs the full cached synthesis pipeline: validate, normalize,
// de-duplicate, probe the cache, call the provider with bounded retry, and
// write the artifact back best-effort.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	text := req.Text
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("tts: text cannot be empty")
	}
	if len(text) > maxTextBytes {
		return nil, fmt.Errorf("tts: text length %d bytes exceeds the %d byte limit", len(text), maxTextBytes)
	}
	if hasUnexpectedScript(text) {
		log.Printf("tts: text contains characters outside the expected scripts; synthesis quality may suffer")
	}

	params := c.normalizeParams(req)
	key := CacheKey(text, params.voiceType, params.speed, params.volume, params.sampleRate, params.languageCode)

	call, owner := c.pending.begin(key)
	if !owner {
		return call.wait(ctx)
	}

	var (
		result *SynthesisResult
		err    error
	)
	defer func() { c.pending.settle(key, call, result, err) }()

	result, err = c.synthesize(ctx, text, params, key)
	return result, err
}

func (c *Client) normalizeParams(req SynthesisRequest) synthesisParams {
	voiceType := req.VoiceType
	if voiceType <= 0 {
		voiceType = c.defaultVoice
	}

	speed := clampFloat(req.Speed, minSpeed, maxSpeed)
	volume := clampFloat(req.Volume, minVolume, maxVolume)

	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
		if req.HighQuality {
			sampleRate = highQualitySampleRate
		}
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	code, ok := languageCodes[language]
	if !ok {
		code = languageCodes[c.defaultLanguage]
	}

	return synthesisParams{
		voiceType:    voiceType,
		speed:        speed,
		volume:       volume,
		sampleRate:   sampleRate,
		languageCode: code,
	}
}

// synthesize performs the cache probe, the provider call and the write-back
// for one owned request.
func (c *Client) synthesize(ctx context.Context, text string, params synthesisParams, key string) (*SynthesisResult, error) {
	objectKey := objectKeyPrefix + key + "." + c.format

	if c.store != nil && c.store.Enabled() {
		exists, probeErr := c.store.Exists(ctx, objectKey)
		switch {
		case probeErr != nil:
			// Cache availability is never a hard dependency.
			log.Printf("tts: cache probe for %s failed, continuing with synthesis: %v", objectKey, probeErr)
		case exists:
			return &SynthesisResult{
				URL:    c.store.PublicURL(objectKey),
				Format: c.format,
				Cached: true,
			}, nil
		}
	}

	audio, err := c.synthesizeRemote(ctx, text, params)
	if err != nil {
		return nil, err
	}

	if c.store != nil && c.store.Enabled() {
		if uploadErr := c.store.Upload(ctx, objectKey, audio, encodingToMime(c.format)); uploadErr != nil {
			log.Printf("tts: cache write-back for %s failed, serving inline audio: %v", objectKey, uploadErr)
		} else {
			return &SynthesisResult{
				URL:    c.store.PublicURL(objectKey),
				Format: c.format,
			}, nil
		}
	}

	return &SynthesisResult{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Format:      c.format,
	}, nil
}

// synthesizeRemote calls the provider, retrying exactly once more after a
// failed attempt. Each attempt runs under its own timeout.
func (c *Client) synthesizeRemote(ctx context.Context, text string, params synthesisParams) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= synthesisAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		audio, err := c.requestSynthesis(attemptCtx, text, params)
		cancel()
		if err == nil {
			return audio, nil
		}
		lastErr = err
		if attempt < synthesisAttempts {
			log.Printf("tts: synthesis attempt %d failed, retrying: %v", attempt, err)
		}
	}
	return nil, fmt.Errorf("tts: synthesis failed after %d attempts: %w", synthesisAttempts, lastErr)
}

func (c *Client) requestSynthesis(ctx context.Context, text string, params synthesisParams) ([]byte, error) {
	payload := map[string]any{
		"text":             text,
		"voice_type":       params.voiceType,
		"codec":            c.format,
		"sample_rate":      params.sampleRate,
		"speed":            params.speed,
		"volume":           params.volume,
		"primary_language": params.languageCode,
		"session_id":       uuid.NewString(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts: encode request: %w", err)
	}

	endpoint := c.baseURL + "/voice/tts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: execute request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(responseBody))
		if len(snippet) > 4096 {
			snippet = snippet[:4096]
		}
		return nil, fmt.Errorf("tts: remote error %s: %s", resp.Status, snippet)
	}

	return decodeAudioPayload(responseBody)
}

// decodeAudioPayload extracts base64 audio from the known provider response
// shapes, tried in order.
func decodeAudioPayload(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("tts: empty provider response")
	}

	var payload struct {
		Audio string `json:"audio"`
		Data  []struct {
			Audio string `json:"audio"`
		} `json:"data"`
		Response *struct {
			Audio string `json:"Audio"`
		} `json:"Response"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("tts: parse provider response: %w", err)
	}

	encoded := payload.Audio
	if encoded == "" && len(payload.Data) > 0 {
		encoded = payload.Data[0].Audio
	}
	if encoded == "" && payload.Response != nil {
		encoded = payload.Response.Audio
	}
	if encoded == "" {
		return nil, errors.New("tts: provider response missing audio content")
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("tts: decode audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("tts: provider returned empty audio")
	}
	return audio, nil
}

// hasUnexpectedScript reports whether the text contains runes outside the
// allowlist of ASCII plus the common CJK ranges.
func hasUnexpectedScript(text string) bool {
	for _, r := range text {
		if r < 0x80 {
			continue
		}
		if unicode.Is(unicode.Han, r) {
			continue
		}
		switch {
		case r >= 0x2000 && r <= 0x206F: // general punctuation
		case r >= 0x3000 && r <= 0x303F: // CJK symbols and punctuation
		case r >= 0xFF00 && r <= 0xFFEF: // halfwidth and fullwidth forms
		default:
			return true
		}
	}
	return false
}

func encodingToMime(encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "mp3", "mpeg", "audio/mpeg":
		return "audio/mpeg"
	case "wav", "wave", "audio/wav":
		return "audio/wav"
	case "pcm":
		return "audio/wave"
	case "opus", "audio/opus":
		return "audio/opus"
	default:
		return "audio/mpeg"
	}
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
