package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	exists    bool
	existsErr error
	uploadErr error
	uploaded  map[string][]byte
}

func (f *fakeStore) Enabled() bool { return true }

func (f *fakeStore) Exists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeStore) Upload(_ context.Context, objectName string, data []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploaded == nil {
		f.uploaded = make(map[string][]byte)
	}
	f.uploaded[objectName] = data
	return nil
}

func (f *fakeStore) PublicURL(objectName string) string {
	return "https://cdn.test/" + objectName
}

func audioServer(t *testing.T, hits *atomic.Int32, failFirst int) *httptest.Server {
	t.Helper()
	encoded := base64.StdEncoding.EncodeToString([]byte("fake-mp3-bytes"))
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if int(n) <= failFirst {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"audio":"` + encoded + `"}`))
	}))
}

func newTestClient(serverURL string, store ObjectStore) *Client {
	return NewClient(Config{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Store:   store,
	})
}

func TestCacheKeyIsDeterministicAndParameterSensitive(t *testing.T) {
	t.Parallel()

	base := CacheKey("hello", 101016, 0, 5, 16000, 1)
	require.Len(t, base, 32)
	require.Equal(t, base, CacheKey("hello", 101016, 0, 5, 16000, 1))

	variants := []string{
		CacheKey("hello!", 101016, 0, 5, 16000, 1),
		CacheKey("hello", 101002, 0, 5, 16000, 1),
		CacheKey("hello", 101016, 0.5, 5, 16000, 1),
		CacheKey("hello", 101016, 0, 6, 16000, 1),
		CacheKey("hello", 101016, 0, 5, 24000, 1),
		CacheKey("hello", 101016, 0, 5, 16000, 2),
	}
	for _, variant := range variants {
		require.NotEqual(t, base, variant)
	}
}

func TestSynthesizeDisabledWithoutAPIKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	require.False(t, client.Enabled())

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestSynthesizeRejectsOversizedTextBeforeNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := audioServer(t, &hits, 0)
	defer server.Close()

	client := newTestClient(server.URL, nil)

	// Exactly at the byte ceiling still goes through.
	atLimit := strings.Repeat("a", 2000)
	res, err := client.Synthesize(context.Background(), SynthesisRequest{Text: atLimit})
	require.NoError(t, err)
	require.NotEmpty(t, res.AudioBase64)
	require.Equal(t, int32(1), hits.Load())

	// One byte over is rejected without touching the provider.
	_, err = client.Synthesize(context.Background(), SynthesisRequest{Text: atLimit + "a"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "2001")
	require.Equal(t, int32(1), hits.Load())

	_, err = client.Synthesize(context.Background(), SynthesisRequest{Text: "   "})
	require.Error(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestSynthesizeDeduplicatesConcurrentIdenticalRequests(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	encoded := base64.StdEncoding.EncodeToString([]byte("fake-mp3-bytes"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"audio":"` + encoded + `"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	req := SynthesisRequest{Text: "深呼吸，慢慢放松。", Language: "zh"}

	var wg sync.WaitGroup
	results := make([]*SynthesisResult, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := client.Synthesize(context.Background(), req)
			require.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), hits.Load())
	for _, res := range results {
		require.Same(t, results[0], res)
	}
	require.Zero(t, client.pending.size())
}

func TestSynthesizeRetriesOnceThenSucceeds(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := audioServer(t, &hits, 1)
	defer server.Close()

	client := newTestClient(server.URL, nil)
	res, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AudioBase64)
	require.Equal(t, int32(2), hits.Load())
}

func TestSynthesizeFailsAfterTwoAttempts(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := audioServer(t, &hits, 2)
	defer server.Close()

	client := newTestClient(server.URL, nil)
	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 2 attempts")
	require.Equal(t, int32(2), hits.Load())
	require.Zero(t, client.pending.size())
}

func TestSynthesizeServesCacheHitWithoutProviderCall(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := audioServer(t, &hits, 0)
	defer server.Close()

	store := &fakeStore{exists: true}
	client := newTestClient(server.URL, store)

	res, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.True(t, strings.HasPrefix(res.URL, "https://cdn.test/meditations/audio/"))
	require.Empty(t, res.AudioBase64)
	require.Zero(t, hits.Load())
}

func TestSynthesizeProbeErrorFallsThroughToProvider(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := audioServer(t, &hits, 0)
	defer server.Close()

	store := &fakeStore{existsErr: errors.New("bucket unreachable")}
	client := newTestClient(server.URL, store)

	res, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())
	require.NotEmpty(t, res.URL)
}

func TestSynthesizeWritesBackAndReturnsURL(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := audioServer(t, &hits, 0)
	defer server.Close()

	store := &fakeStore{}
	client := newTestClient(server.URL, store)

	res, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.NotEmpty(t, res.URL)
	require.Empty(t, res.AudioBase64)
	require.Len(t, store.uploaded, 1)
	for _, data := range store.uploaded {
		require.Equal(t, []byte("fake-mp3-bytes"), data)
	}
}

func TestSynthesizeUploadFailureFallsBackToInlineAudio(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := audioServer(t, &hits, 0)
	defer server.Close()

	store := &fakeStore{uploadErr: errors.New("disk full")}
	client := newTestClient(server.URL, store)

	res, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello"})
	require.NoError(t, err)
	require.Empty(t, res.URL)

	decoded, decodeErr := base64.StdEncoding.DecodeString(res.AudioBase64)
	require.NoError(t, decodeErr)
	require.Equal(t, []byte("fake-mp3-bytes"), decoded)
}

func TestNormalizeParamsClampsAndDefaults(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{APIKey: "k", DefaultLanguage: "zh"})

	params := client.normalizeParams(SynthesisRequest{Speed: 9, Volume: -3, Language: "fr"})
	require.Equal(t, defaultVoiceType, params.voiceType)
	require.Equal(t, maxSpeed, params.speed)
	require.Equal(t, minVolume, params.volume)
	require.Equal(t, defaultSampleRate, params.sampleRate)
	require.Equal(t, languageCodes["zh"], params.languageCode)

	hq := client.normalizeParams(SynthesisRequest{HighQuality: true, Language: "en"})
	require.Equal(t, highQualitySampleRate, hq.sampleRate)
	require.Equal(t, languageCodes["en"], hq.languageCode)
}

func TestDecodeAudioPayloadShapes(t *testing.T) {
	t.Parallel()

	encoded := base64.StdEncoding.EncodeToString([]byte("bytes"))

	for _, body := range []string{
		`{"audio":"` + encoded + `"}`,
		`{"data":[{"audio":"` + encoded + `"}]}`,
		`{"Response":{"Audio":"` + encoded + `"}}`,
	} {
		audio, err := decodeAudioPayload([]byte(body))
		require.NoError(t, err)
		require.Equal(t, []byte("bytes"), audio)
	}

	_, err := decodeAudioPayload([]byte(`{}`))
	require.Error(t, err)
	_, err = decodeAudioPayload([]byte(``))
	require.Error(t, err)
}
