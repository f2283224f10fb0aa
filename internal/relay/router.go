package relay

// adminOfflineReply is the canned direct reply a customer receives when no
// administrator is online. It is not appended to any transcript.
const adminOfflineReply = "Sorry. I am not online right now"

// adminDisplayName is the sender name used for the canned reply.
const adminDisplayName = "Admin"

type routeOutcome int

const (
	// routeDelivered: the message reached its resolved recipient and was
	// appended to the customer-keyed transcript.
	routeDelivered routeOutcome = iota
	// routeDropped: recipient unknown or offline; at-most-once semantics,
	// no retry, no error.
	routeDropped
	// routeAdminUnavailable: customer message with no admin online; the
	// sender gets the canned reply instead.
	routeAdminUnavailable
)

// routeMessage resolves a message's destination against the current online
// state and decides the resulting deliveries and transcript appends. Admin
// messages go to the targeted customer; customer messages go to whichever
// admin is online. Transcripts are always keyed by the customer side, so the
// admin's per-customer view stays consistent.
func routeMessage(reg *Registry, msg Message) ([]Delivery, routeOutcome) {
	if msg.SenderIsAdmin {
		return routeAdminMessage(reg, msg)
	}
	return routeCustomerMessage(reg, msg)
}

func routeAdminMessage(reg *Registry, msg Message) ([]Delivery, routeOutcome) {
	target := reg.ByUserID(msg.TargetID)
	if target == nil || !target.Online {
		return nil, routeDropped
	}

	name := adminDisplayName
	if sender := reg.ByUserID(msg.SenderID); sender != nil {
		name = sender.Name
	}

	target.Messages = append(target.Messages, TranscriptEntry{Name: name, Body: msg.Body})
	return []Delivery{{To: target.conn, Event: messageEvent(name, msg.Body)}}, routeDelivered
}

func routeCustomerMessage(reg *Registry, msg Message) ([]Delivery, routeOutcome) {
	sender := reg.ByUserID(msg.SenderID)
	if sender == nil {
		// No session to key the transcript by and nobody to reply to.
		return nil, routeDropped
	}

	admin := reg.OnlineAdmin()
	if admin == nil {
		if !sender.Online {
			return nil, routeDropped
		}
		reply := messageEvent(adminDisplayName, adminOfflineReply)
		return []Delivery{{To: sender.conn, Event: reply}}, routeAdminUnavailable
	}

	sender.Messages = append(sender.Messages, TranscriptEntry{Name: sender.Name, Body: msg.Body})
	return []Delivery{{To: admin.conn, Event: messageEvent(sender.Name, msg.Body)}}, routeDelivered
}
