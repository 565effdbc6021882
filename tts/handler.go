package tts

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// voiceCatalog lists the voices exposed by the listing endpoint. The remote
// provider accepts any numeric voice type; this is the curated subset we
// surface to clients.
var voiceCatalog = []VoiceOption{
	{VoiceType: 101016, Name: "温柔女声", Language: "zh", Description: "舒缓平和，适合睡前冥想"},
	{VoiceType: 101002, Name: "沉稳男声", Language: "zh", Description: "低沉稳定，适合身体扫描与呼吸练习"},
	{VoiceType: 101021, Name: "亲切女声", Language: "zh", Description: "亲和自然，适合日常引导"},
}

// Module wires the synthesis client into HTTP routes and exposes it to other
// packages as a Synthesizer.
type Module struct {
	client *Client
}

// RegisterRoutes builds the synthesis client from the environment and mounts
// the /tts routes. A disabled client is not an error: the routes still answer
// and report enabled=false.
func RegisterRoutes(router *gin.Engine, store ObjectStore) (*Module, error) {
	if router == nil {
		return nil, errors.New("tts: router is nil")
	}

	client, err := NewClientFromEnv(store)
	if err != nil {
		return nil, err
	}

	m := &Module{client: client}

	group := router.Group("/tts")
	group.GET("/voices", m.listVoices)

	return m, nil
}

func (m *Module) listVoices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled":            m.Enabled(),
		"default_voice_type": m.client.defaultVoice,
		"voices":             voiceCatalog,
	})
}

// Enabled reports whether synthesis is configured.
func (m *Module) Enabled() bool {
	return m != nil && m.client.Enabled()
}

// Synthesize delegates to the underlying client so the module satisfies
// Synthesizer.
func (m *Module) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if m == nil || m.client == nil {
		return nil, ErrDisabled
	}
	return m.client.Synthesize(ctx, req)
}
