// Package relay implements the real-time presence and message-relay core:
// it tracks which registered users hold a live WebSocket connection, routes
// chat messages between customers and the one online administrator, and keeps
// the administrator's roster view in sync. State is in-memory and best-effort;
// a process restart loses all of it.
package relay

// Conn is the delivery capability a transport hands to the relay. Delivery is
// fire-and-forget: a failed Deliver is treated the same as an offline
// recipient and never escalates.
type Conn interface {
	Deliver(ev Event) error
	Close(reason string)
}

// TranscriptEntry is one line of a session's accumulated chat transcript.
type TranscriptEntry struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Session is the live binding between a user identity and one open
// connection. At most one Session exists per user ID; a reconnect replaces
// the connection handle in place so the transcript survives.
type Session struct {
	UserID   string
	Name     string
	IsAdmin  bool
	Online   bool
	Messages []TranscriptEntry

	conn Conn
}

// SessionSnapshot is the wire form of a session, sent in presence and roster
// events.
type SessionSnapshot struct {
	UserID   string            `json:"userId"`
	Name     string            `json:"name"`
	IsAdmin  bool              `json:"isAdmin"`
	Online   bool              `json:"online"`
	Messages []TranscriptEntry `json:"messages"`
}

// Snapshot captures the session's current state for delivery.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		UserID:   s.UserID,
		Name:     s.Name,
		IsAdmin:  s.IsAdmin,
		Online:   s.Online,
		Messages: s.Messages,
	}
}

// Message is one inbound chat message. Addressing is resolved against the
// current online state at delivery time, not at send time: admin messages
// target a specific user ID, customer messages target whichever admin is
// online when the message arrives.
type Message struct {
	SenderID      string
	SenderIsAdmin bool
	TargetID      string // admin-to-customer only
	Body          string
}
