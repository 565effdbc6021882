package meditation

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"serenity_back/llm"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamReadTimeout  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	// Browser clients connect cross-origin through the CORS-enabled API.
	CheckOrigin: func(*http.Request) bool { return true },
}

// streamFrame is one websocket message: a text delta while generation runs,
// then a final result or error frame.
type streamFrame struct {
	Type    string          `json:"type"`
	Content string          `json:"content,omitempty"`
	Data    *GenerationData `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

// stream upgrades the connection, reads a single generation request and
// streams the script as it is produced. The connection closes after the final
// frame.
func (m *Module) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("meditation: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	var req GenerationRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeFrame(conn, streamFrame{Type: "error", Error: &ErrorInfo{
			Code:    CodeInvalidRequest,
			Message: "first message must be a generation request: " + err.Error(),
		}})
		return
	}

	handler := func(delta llm.StreamDelta) error {
		if delta.Content == "" {
			return nil
		}
		return writeFrame(conn, streamFrame{Type: "delta", Content: delta.Content})
	}

	res := m.orchestrator.GenerateWithDeltas(c.Request.Context(), req, handler)
	if res.Success {
		_ = writeFrame(conn, streamFrame{Type: "result", Data: res.Data})
	} else {
		_ = writeFrame(conn, streamFrame{Type: "error", Error: res.Error})
	}

	deadline := time.Now().Add(streamWriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func writeFrame(conn *websocket.Conn, frame streamFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(frame)
}
