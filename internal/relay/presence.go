package relay

// Delivery pairs an outbound event with its destination connection. The
// presence and routing logic below only decides deliveries; the Server
// performs them.
type Delivery struct {
	To    Conn
	Event Event
}

// connectNotifications decides who to notify after a session came online:
// the online admin learns about the (re)connected user, and a connecting
// admin additionally receives the full roster so their UI can render every
// known user on login. An admin is never told about their own connect.
func connectNotifications(reg *Registry, s *Session) []Delivery {
	var out []Delivery
	if admin := reg.OnlineAdmin(); admin != nil && admin != s {
		out = append(out, Delivery{To: admin.conn, Event: presenceEvent(s)})
	}
	if s.IsAdmin {
		out = append(out, Delivery{To: s.conn, Event: rosterEvent(reg.Roster())})
	}
	return out
}

// disconnectNotifications decides who to notify after a session went
// offline. A disconnecting admin is not notified about themself; with no
// admin online nobody is notified.
func disconnectNotifications(reg *Registry, s *Session) []Delivery {
	admin := reg.OnlineAdmin()
	if admin == nil || admin == s {
		return nil
	}
	return []Delivery{{To: admin.conn, Event: presenceEvent(s)}}
}
