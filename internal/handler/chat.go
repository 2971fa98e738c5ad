package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/middleware"
	"github.com/deppfellow/profile-api/internal/server"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
	chatMaxMessage = 4096
)

// ChatMessage is relayed back to the sender.
type ChatMessage struct {
	From    string    `json:"from"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

// ChatHandler is a websocket echo relay for authenticated users.
type ChatHandler struct {
	Handler
	upgrader websocket.Upgrader
}

func NewChatHandler(s *server.Server) *ChatHandler {
	allowed := s.Config.Server.CORSAllowedOrigins

	return &ChatHandler{
		Handler: NewHandler(s),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
			},
		},
	}
}

// Serve upgrades the connection and echoes every text message until the
// client goes away. It must run behind RequireAuth.
func (h *ChatHandler) Serve(c echo.Context) error {
	ac, err := middleware.MustAuthContext(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote an HTTP error
		return nil
	}
	defer conn.Close()

	logger := middleware.GetLogger(c)
	logger.Info().Msg("chat connection opened")

	conn.SetReadLimit(chatMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(chatPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.ping(conn, done)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("chat connection closed unexpectedly")
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
		if err := conn.WriteJSON(ChatMessage{
			From:    ac.Username,
			Message: string(data),
			SentAt:  time.Now().UTC(),
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to write chat message")
			break
		}
	}

	logger.Info().Msg("chat connection closed")
	return nil
}

// ping keeps the connection alive. WriteControl is safe to call
// concurrently with the relay's writes.
func (h *ChatHandler) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(chatPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(chatWriteWait)); err != nil {
				return
			}
		}
	}
}
