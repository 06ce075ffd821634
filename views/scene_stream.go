package views

import (
	"net/http"
	"sync"
	"time"

	"github.com/GrainArc/GeoMesh/Scene"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
}

// StreamMessage 推送给客户端的消息
type StreamMessage struct {
	Type    string            `json:"type"` // node, done, error
	Node    *Scene.RegionNode `json:"node,omitempty"`
	ID      string            `json:"id,omitempty"`
	Count   int               `json:"count,omitempty"`
	Message string            `json:"message,omitempty"`
}

// streamSink 每挂载一个节点就推送一次
type streamSink struct {
	conn  *websocket.Conn
	mu    sync.Mutex
	count int
}

func (s *streamSink) Attach(node *Scene.RegionNode) error {
	s.count++
	return s.send(StreamMessage{Type: "node", Node: node})
}

func (s *streamSink) send(msg StreamMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return s.conn.WriteJSON(msg)
}

// Stream websocket: 客户端发送 GeoJSON/KML 文本, 服务端逐个推送节点, 最后发送 done
func (h *SceneHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Error("Failed to upgrade to websocket")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxUploadSize)

	sink := &streamSink{conn: conn}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("WebSocket error")
			}
			return
		}
		sink.count = 0
		res, err := h.service.BuildFromBytes(c.Request.Context(), c.DefaultQuery("name", "stream"), data, sink)
		if err != nil {
			if werr := sink.send(StreamMessage{Type: "error", Message: err.Error()}); werr != nil {
				return
			}
			continue
		}
		done := StreamMessage{Type: "done", ID: res.Scene.ID, Count: sink.count}
		if res.LabelErr != nil {
			done.Message = res.LabelErr.Error()
		}
		if err := sink.send(done); err != nil {
			return
		}
	}
}
