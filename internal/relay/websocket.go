package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const deliverTimeout = 5 * time.Second

// Handler upgrades HTTP requests to WebSocket chat connections and feeds
// their events into the relay server.
type Handler struct {
	server        *Server
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket chat handler.
func NewHandler(server *Server, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		server:        server,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsConn adapts websocket.Conn to the relay's Conn capability. Writes use a
// short timeout so a stalled peer cannot block the relay's critical section.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) Deliver(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

func (c *wsConn) Close(reason string) {
	_ = c.ws.Close(websocket.StatusGoingAway, reason)
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slog.Info("Chat WebSocket connection request", "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	conn := &wsConn{ws: ws}
	defer h.server.Disconnect(conn)

	h.readLoop(r.Context(), ws, conn)
}

// readLoop dispatches inbound events until the connection drops. An
// un-identified connection has no session: its message and selectUser events
// are ignored until an identify arrives.
func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, conn *wsConn) {
	identified := false
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("Chat WebSocket closed by client")
			} else {
				slog.Debug("Chat WebSocket read error", "error", err)
			}
			return
		}

		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Debug("Ignoring malformed chat event", "error", err)
			continue
		}

		switch ev.Type {
		case eventIdentify:
			h.server.Identify(conn, ev.UserID, ev.Name, ev.IsAdmin)
			identified = true
		case eventMessage:
			if !identified {
				continue
			}
			h.server.HandleMessage(Message{
				SenderID:      ev.SenderID,
				SenderIsAdmin: ev.SenderIsAdmin,
				TargetID:      ev.TargetID,
				Body:          ev.Body,
			})
		case eventSelectUser:
			if !identified {
				continue
			}
			h.server.SelectUser(ev.UserID)
		default:
			slog.Debug("Ignoring unknown chat event", "type", ev.Type)
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("Chat WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
