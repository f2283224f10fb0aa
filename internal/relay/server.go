package relay

import (
	"log/slog"
	"sync"

	"webstore/go-backend/internal/metrics"
)

// Server owns the connection lifecycle and serializes every state
// transition. Each entry point is one critical section over the registry, so
// a reconnect racing a delivery, or two near-simultaneous connects for the
// same user, can never observe half-applied state. Deliveries happen inside
// the critical section, which also gives per-sender FIFO ordering: each
// connection has a single reader goroutine, and its events pass through the
// lock one at a time.
type Server struct {
	mu  sync.Mutex
	reg *Registry
}

// NewServer creates a relay server with an empty registry.
func NewServer() *Server {
	return &Server{reg: NewRegistry()}
}

// Identify registers the connection under the given identity and emits the
// resulting presence notifications. A second identify for a known user ID is
// a reconnect: the old session is replaced, not duplicated, and its
// transcript is preserved. A connection that re-identifies under a different
// user ID releases its previous session first, so no ghost stays in the
// roster holding a handle that will never deliver.
func (s *Server) Identify(conn Conn, userID, name string, isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bound := s.reg.ByConn(conn); bound != nil && bound.UserID != userID {
		bound.Online = false
		metrics.SessionsOnline.Dec()
		slog.Info("relay session released on re-identify",
			"old_user_id", bound.UserID, "user_id", userID)
		s.send(disconnectNotifications(s.reg, bound))
	}

	prev := s.reg.ByUserID(userID)
	wasOnline := prev != nil && prev.Online

	sess := s.reg.Upsert(userID, name, isAdmin, conn)
	if !wasOnline {
		metrics.SessionsOnline.Inc()
	}

	slog.Info("relay session identified",
		"user_id", userID, "name", name, "admin", isAdmin, "reconnect", prev != nil)

	s.send(connectNotifications(s.reg, sess))
}

// Disconnect marks the session bound to conn offline and notifies the online
// admin. A disconnect for an already-replaced connection is a no-op.
func (s *Server) Disconnect(conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.reg.MarkOffline(conn)
	if sess == nil {
		return
	}
	metrics.SessionsOnline.Dec()

	slog.Info("relay session disconnected", "user_id", sess.UserID)

	s.send(disconnectNotifications(s.reg, sess))
}

// HandleMessage routes one chat message to its dynamically resolved
// recipient. Undeliverable messages degrade per the routing rules: admin
// messages to offline customers are dropped silently, customer messages
// without an online admin get the canned reply.
func (s *Server) HandleMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deliveries, outcome := routeMessage(s.reg, msg)
	switch outcome {
	case routeDelivered:
		metrics.MessagesRelayed.Inc()
	case routeDropped:
		metrics.MessagesDropped.Inc()
		slog.Debug("relay message dropped", "sender", msg.SenderID, "target", msg.TargetID)
	case routeAdminUnavailable:
		metrics.AdminUnavailableReplies.Inc()
	}

	s.send(deliveries)
}

// SelectUser delivers the target user's session, transcript included, back
// to the online admin so their UI can focus that conversation. No-op when no
// admin is online or the target is unknown.
func (s *Server) SelectUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin := s.reg.OnlineAdmin()
	target := s.reg.ByUserID(userID)
	if admin == nil || target == nil {
		return
	}

	s.send([]Delivery{{To: admin.conn, Event: focusEvent(target)}})
}

// Shutdown closes every online connection. Presence state is process-scoped
// and simply discarded.
func (s *Server) Shutdown(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.reg.OnlineSessions() {
		sess.conn.Close(reason)
		sess.Online = false
		metrics.SessionsOnline.Dec()
	}
}

// send performs the decided deliveries. A failed delivery means the
// recipient's connection is effectively gone; it is logged and otherwise
// treated like an offline recipient.
func (s *Server) send(deliveries []Delivery) {
	for _, d := range deliveries {
		if err := d.To.Deliver(d.Event); err != nil {
			slog.Debug("relay delivery failed", "event", d.Event.Type, "error", err)
		}
	}
}
