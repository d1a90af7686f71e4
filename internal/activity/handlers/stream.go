package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/events"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 4 * 1024

	sendBuffer = 64
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsStream pushes every activity recorded on the board to the connected client.
// Access is checked once, before the upgrade.
func (h *ActivityHandlers) wsStream(c *gin.Context) {
	boardID := c.Param("id")
	userID := httpmw.RequesterID(c)
	if err := h.boards.RequireBoardRead(c.Request.Context(), boardID, userID); err != nil {
		h.writeError(c, err)
		return
	}

	log := h.logger.WithFields(
		zap.String("client_id", uuid.New().String()),
		zap.String("board_id", boardID),
		zap.String("user_id", userID),
	)
	send := make(chan []byte, sendBuffer)

	// Subscribe before the upgrade so nothing recorded after the handshake is missed.
	sub, err := h.bus.Subscribe(events.BuildActivitySubject(boardID), func(_ context.Context, event *bus.Event) error {
		a, err := activity.FromEvent(event)
		if err != nil {
			return nil
		}
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		select {
		case send <- data:
		default:
			log.Warn("Client send buffer full, dropping activity", zap.String("activity_id", a.ID))
		}
		return nil
	})
	if err != nil {
		h.writeError(c, apperrors.Internal("failed to subscribe to activity", err))
		return
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Warn("Failed to unsubscribe activity stream", zap.Error(err))
		}
	}()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade connection", zap.Error(err))
		return
	}
	log.Debug("Activity stream opened")

	done := make(chan struct{})
	go writePump(conn, send, done, log)
	readPump(conn, log)

	close(done)
	log.Debug("Activity stream closed")
}

// readPump drains control frames until the peer goes away.
func readPump(conn *gorillaws.Conn, log *logger.Logger) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure, gorillaws.CloseAbnormalClosure) {
				log.Error("WebSocket read error", zap.Error(err))
			}
			return
		}
	}
}

func writePump(conn *gorillaws.Conn, send <-chan []byte, done <-chan struct{}, log *logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case data := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(gorillaws.TextMessage, data); err != nil {
				log.Debug("WebSocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(gorillaws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
