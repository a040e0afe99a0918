package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// mailbox は購読コールバックから送信ループへ値を渡す上限なしのキューなのだ。
// push はブロックしないので、ロックを持ったまま呼ばれるコールバックからでも使えるのだ。
type mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{notify: make(chan struct{}, 1)}
}

func (m *mailbox[T]) push(v T) {
	m.mu.Lock()
	m.items = append(m.items, v)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox[T]) take() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

// streamLogs は履歴を順番どおりに送ってから、新しいエントリをライブで送り続けるのだ。
func (s *Server) streamLogs(c *gin.Context) {
	box := newMailbox[eventlog.Entry]()
	unsubscribe := s.app.Events.Subscribe(func(e eventlog.Entry) { box.push(e) })
	defer unsubscribe()

	pump(c, box)
}

// streamProject は現在のプロジェクトと、以降の差し替えを送り続けるのだ。
// プロジェクトが無いときは null を送るのだ。
func (s *Server) streamProject(c *gin.Context) {
	box := newMailbox[*domain.Project]()
	cancel := s.app.Orchestrator.Watch(func(p *domain.Project) { box.push(p) })
	defer cancel()

	pump(c, box)
}

// pump は WebSocket にアップグレードし、クライアントが切断するまで mailbox の中身を JSON で送るのだ。
func pump[T any](c *gin.Context, box *mailbox[T]) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "path", c.FullPath(), "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		for _, v := range box.take() {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(v); err != nil {
				slog.Debug("WebSocket write failed", "error", err)
				return
			}
		}
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-box.notify:
		}
	}
}

func (s *Server) getLogs(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Events.Entries())
}

// clearLogs は履歴を消し、その直後に記録された「クリアした」エントリを返すのだ。
func (s *Server) clearLogs(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Events.Clear())
}
