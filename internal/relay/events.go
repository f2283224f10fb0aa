package relay

// Inbound event types, sent by clients.
const (
	eventIdentify   = "identify"
	eventMessage    = "message"
	eventSelectUser = "selectUser"
)

// Outbound event types, sent to clients.
const (
	eventPresenceUpdate = "presenceUpdate"
	eventRoster         = "roster"
	eventFocusUser      = "focusUser"
)

// Event is the tagged outbound payload written to a connection.
type Event struct {
	Type  string            `json:"type"`
	User  *SessionSnapshot  `json:"user,omitempty"`
	Users []SessionSnapshot `json:"users,omitempty"`
	Name  string            `json:"name,omitempty"`
	Body  string            `json:"body,omitempty"`
}

func presenceEvent(s *Session) Event {
	snap := s.Snapshot()
	return Event{Type: eventPresenceUpdate, User: &snap}
}

func rosterEvent(users []SessionSnapshot) Event {
	return Event{Type: eventRoster, Users: users}
}

func focusEvent(s *Session) Event {
	snap := s.Snapshot()
	return Event{Type: eventFocusUser, User: &snap}
}

func messageEvent(senderName, body string) Event {
	return Event{Type: eventMessage, Name: senderName, Body: body}
}

// inboundEvent is the tagged envelope read from a connection. Fields are a
// union over the three inbound event kinds.
type inboundEvent struct {
	Type string `json:"type"`

	// identify / selectUser
	UserID  string `json:"userId,omitempty"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`

	// message
	SenderID      string `json:"senderUserId,omitempty"`
	SenderIsAdmin bool   `json:"senderIsAdmin,omitempty"`
	TargetID      string `json:"targetUserId,omitempty"`
	Body          string `json:"body,omitempty"`
}
