package relay

// Registry maps user IDs to their sessions. It is the only shared mutable
// state of the relay and is NOT safe for concurrent use: every read and write
// happens inside the Server's single critical section. Sessions are retained
// after disconnect so transcripts and identity survive a reconnect; the map
// is bounded by the users seen during the process lifetime.
type Registry struct {
	sessions map[string]*Session
	order    []string // user IDs in first-seen order, drives the roster
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Upsert inserts or replaces the session for userID and marks it online.
// A reconnect keeps the accumulated transcript and swaps the connection
// handle in place, so at most one session per user ID ever exists.
func (r *Registry) Upsert(userID, name string, isAdmin bool, conn Conn) *Session {
	if s, ok := r.sessions[userID]; ok {
		s.Name = name
		s.IsAdmin = isAdmin
		s.Online = true
		s.conn = conn
		return s
	}

	s := &Session{
		UserID:  userID,
		Name:    name,
		IsAdmin: isAdmin,
		Online:  true,
		conn:    conn,
	}
	r.sessions[userID] = s
	r.order = append(r.order, userID)
	return s
}

// MarkOffline looks up the online session bound to conn and marks it
// offline. Returns nil if no session matches: the disconnect arrived after
// the session was replaced by a newer connection, which is a no-op.
func (r *Registry) MarkOffline(conn Conn) *Session {
	for _, id := range r.order {
		s := r.sessions[id]
		if s.Online && s.conn == conn {
			s.Online = false
			return s
		}
	}
	return nil
}

// ByUserID returns the session for userID, or nil.
func (r *Registry) ByUserID(userID string) *Session {
	return r.sessions[userID]
}

// ByConn returns the online session bound to conn, or nil.
func (r *Registry) ByConn(conn Conn) *Session {
	for _, id := range r.order {
		if s := r.sessions[id]; s.Online && s.conn == conn {
			return s
		}
	}
	return nil
}

// OnlineAdmin returns the first online admin session in first-seen order, or
// nil. Only one admin is expected online by convention; with several online
// at once the pick is arbitrary.
func (r *Registry) OnlineAdmin() *Session {
	for _, id := range r.order {
		if s := r.sessions[id]; s.IsAdmin && s.Online {
			return s
		}
	}
	return nil
}

// Roster returns snapshots of every known session, online and offline, in
// first-seen order.
func (r *Registry) Roster() []SessionSnapshot {
	roster := make([]SessionSnapshot, 0, len(r.order))
	for _, id := range r.order {
		roster = append(roster, r.sessions[id].Snapshot())
	}
	return roster
}

// OnlineSessions returns all currently online sessions in first-seen order.
func (r *Registry) OnlineSessions() []*Session {
	var online []*Session
	for _, id := range r.order {
		if s := r.sessions[id]; s.Online {
			online = append(online, s)
		}
	}
	return online
}
