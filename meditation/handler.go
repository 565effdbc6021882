package meditation

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"serenity_back/catalog"
	"serenity_back/llm"
	"serenity_back/prompt"
	"serenity_back/tts"
)

// envelope is the uniform response shape for every meditation endpoint.
// Operation failures still answer HTTP 200 with success=false; only a body
// that cannot be parsed yields a 400.
type envelope struct {
	Success  bool          `json:"success"`
	Data     any           `json:"data,omitempty"`
	Error    *ErrorInfo    `json:"error,omitempty"`
	Metadata *envelopeMeta `json:"metadata"`
}

type envelopeMeta struct {
	RequestID  string    `json:"request_id"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Module owns the generation pipeline and its HTTP surface.
type Module struct {
	orchestrator *Orchestrator
}

// RegisterRoutes wires the orchestrator from the environment and mounts the
// /meditation routes. The synthesizer may be nil or disabled; generation then
// runs text-only.
func RegisterRoutes(router *gin.Engine, synthesizer tts.Synthesizer) (*Module, error) {
	if router == nil {
		return nil, errors.New("meditation: router is nil")
	}

	cat := catalog.Default()
	generator, err := llm.NewChatClientFromEnv()
	if err != nil {
		return nil, err
	}

	m := &Module{
		orchestrator: NewOrchestrator(
			cat,
			prompt.NewBuilder(cat),
			generator,
			synthesizer,
			newUsageRecorderFromEnv(),
			ConfigFromEnv(),
		),
	}

	group := router.Group("/meditation")
	group.POST("", m.dispatch)
	group.GET("/topics", m.listTopics)
	group.GET("/stream", m.stream)

	return m, nil
}

// Orchestrator exposes the pipeline for other packages; used by tests.
func (m *Module) Orchestrator() *Orchestrator {
	if m == nil {
		return nil
	}
	return m.orchestrator
}

// dispatch is the single POST entry point; the "type" field selects the
// operation.
func (m *Module) dispatch(c *gin.Context) {
	started := time.Now()

	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, started, nil, &ErrorInfo{
			Code:    CodeInvalidRequest,
			Message: "request body must be valid JSON: " + err.Error(),
		})
		return
	}

	switch req.Type {
	case "generate", "":
		res := m.orchestrator.Generate(c.Request.Context(), generationRequestOf(req))
		respond(c, http.StatusOK, started, res.Data, res.Error)

	case "preview":
		// A preview is a generation with audio forced off.
		preview := generationRequestOf(req)
		preview.Voice = false
		preview.Options.SkipAudio = true
		res := m.orchestrator.Generate(c.Request.Context(), preview)
		respond(c, http.StatusOK, started, res.Data, res.Error)

	case "batch":
		if len(req.Topics) == 0 {
			respond(c, http.StatusOK, started, nil, &ErrorInfo{
				Code:    CodeInvalidRequest,
				Message: "batch requests need a non-empty topics list",
			})
			return
		}
		base := generationRequestOf(req)
		base.Options = req.BaseOptions
		res := m.orchestrator.GenerateBatch(c.Request.Context(), req.Topics, base)
		respond(c, http.StatusOK, started, res, nil)

	case "recommend":
		if len(req.Keywords) == 0 {
			respond(c, http.StatusOK, started, nil, &ErrorInfo{
				Code:    CodeInvalidRequest,
				Message: "recommend requests need a non-empty keywords list",
			})
			return
		}
		topics := m.orchestrator.Recommend(req.Keywords, req.Language)
		respond(c, http.StatusOK, started, gin.H{"topics": topics}, nil)

	case "ping":
		o := m.orchestrator
		respond(c, http.StatusOK, started, gin.H{
			"status":            "ok",
			"synthesis_enabled": o.synthesizer != nil && o.synthesizer.Enabled(),
			"analytics_enabled": o.cfg.AnalyticsEnabled,
			"model":             o.generator.DefaultModelID(),
		}, nil)

	default:
		respond(c, http.StatusOK, started, nil, &ErrorInfo{
			Code:    CodeUnknownType,
			Message: "unknown request type " + req.Type,
			Details: map[string]any{"supported_types": []string{"generate", "preview", "batch", "recommend", "ping"}},
		})
	}
}

func (m *Module) listTopics(c *gin.Context) {
	started := time.Now()
	topics := m.orchestrator.ListTopics(c.Query("language"))
	respond(c, http.StatusOK, started, gin.H{"topics": topics}, nil)
}

func generationRequestOf(req dispatchRequest) GenerationRequest {
	return GenerationRequest{
		Topic:    req.Topic,
		Style:    req.Style,
		Duration: req.Duration,
		Language: req.Language,
		Voice:    req.Voice,
		Options:  req.Options,
	}
}

func respond(c *gin.Context, status int, started time.Time, data any, errInfo *ErrorInfo) {
	c.JSON(status, envelope{
		Success: errInfo == nil,
		Data:    data,
		Error:   errInfo,
		Metadata: &envelopeMeta{
			RequestID:  uuid.NewString(),
			DurationMs: time.Since(started).Milliseconds(),
			Timestamp:  time.Now().UTC(),
		},
	})
}
