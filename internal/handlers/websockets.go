package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMsgSize      = 1 << 12 // 4 KB
	defaultInterval = 1 * time.Second
	maxInterval     = 10 * time.Second

	wsTypeState = "state"
	wsTypeAlert = "alert"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// dashboardState is the periodic "state" payload.
type dashboardState struct {
	Connection models.ConnectionView `json:"connection"`
	Queue      models.QueueStatus    `json:"queue"`
}

var errStreamUnavailable = errors.New("dashboard stream unavailable")

var upgrader = websocket.Upgrader{
	// TODO: restrict to the dashboard origin once it is served from a fixed host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSession serialises all writes to one connection.
type wsSession struct {
	h    *Handler
	conn *websocket.Conn
}

func (s *wsSession) write(env wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}

func (s *wsSession) ping() error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

func (s *wsSession) writeState() error {
	svc := s.h.services
	if svc.Connection == nil || svc.Commands == nil {
		return errStreamUnavailable
	}
	return s.write(wsEnvelope{Type: wsTypeState, Data: dashboardState{
		Connection: svc.Connection.View(),
		Queue:      svc.Commands.Status(),
	}})
}

// @Summary      Dashboard stream
// @Description  WebSocket. Sends {"type":"state"} every interval (?interval=2s or ?interval_ms=2000, max 10s) and {"type":"alert"} as alerts are emitted.
// @Tags         system
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsLog("ws_upgrade_failed", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	// Subscribe before the first frame so no alert emitted after it is missed.
	var alerts <-chan models.Alert
	if h.services.Alerts != nil {
		ch, unsubscribe := h.services.Alerts.Subscribe()
		defer unsubscribe()
		alerts = ch
	}

	s := &wsSession{h: h, conn: conn}
	if err := s.writeState(); err != nil {
		h.wsLog("ws_write_failed_initial", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		var err error
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			err = s.ping()
		case <-ticker.C:
			err = s.writeState()
		case a, ok := <-alerts:
			if !ok {
				alerts = nil
				continue
			}
			err = s.write(wsEnvelope{Type: wsTypeAlert, Data: a})
		}
		if err != nil {
			h.wsLog("ws_write_failed", err)
			return
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000, falling back to
// defaultInterval when absent or outside (0, maxInterval].
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if s := c.Query("interval_ms"); s != "" {
		if ms, err := strconv.Atoi(s); err == nil {
			if d := time.Duration(ms) * time.Millisecond; d > 0 && d <= maxInterval {
				return d
			}
		}
	}
	return defaultInterval
}

// startReader drains client frames so control messages are processed and
// closes done when the peer goes away.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.wsLog("ws_read_closed", err)
			return
		}
	}
}

func (h *Handler) wsLog(key string, err error) {
	if h.log != nil {
		h.log.Infow(key, "err", err)
	}
}
