package relay

import (
	"strconv"
	"sync"
	"testing"
)

func TestServer_SingleSessionPerUserID(t *testing.T) {
	s := NewServer()

	for i := 0; i < 5; i++ {
		conn := &fakeConn{}
		s.Identify(conn, "c1", "John", false)
		if i%2 == 0 {
			s.Disconnect(conn)
		}
	}

	if got := len(s.reg.Roster()); got != 1 {
		t.Errorf("Expected exactly one session for c1, got %d", got)
	}
}

func TestServer_AdminConnectReceivesRosterOnly(t *testing.T) {
	s := NewServer()
	s.Identify(&fakeConn{}, "c1", "John", false)

	adminConn := &fakeConn{}
	s.Identify(adminConn, "a1", "Admin", true)

	if got := adminConn.eventsOfType(eventRoster); len(got) != 1 {
		t.Fatalf("Expected 1 roster event, got %d", len(got))
	}
	if got := adminConn.eventsOfType(eventPresenceUpdate); len(got) != 0 {
		t.Errorf("Expected no presenceUpdate about the admin itself, got %d", len(got))
	}
}

func TestServer_CustomerDisconnectNotifiesAdminOnce(t *testing.T) {
	s := NewServer()
	adminConn := &fakeConn{}
	s.Identify(adminConn, "a1", "Admin", true)

	customerConn := &fakeConn{}
	s.Identify(customerConn, "c1", "John", false)
	s.Disconnect(customerConn)

	updates := adminConn.eventsOfType(eventPresenceUpdate)
	if len(updates) != 2 {
		t.Fatalf("Expected connect + disconnect updates, got %d", len(updates))
	}
	last := updates[len(updates)-1]
	if last.User == nil || last.User.UserID != "c1" || last.User.Online {
		t.Errorf("Expected offline snapshot of c1, got %+v", last.User)
	}
}

func TestServer_ReconnectIdempotence(t *testing.T) {
	s := NewServer()
	s.Identify(&fakeConn{}, "a1", "Admin", true)

	// Seed a transcript entry, then cycle the connection twice.
	conn := &fakeConn{}
	s.Identify(conn, "c1", "John", false)
	s.HandleMessage(Message{SenderID: "c1", Body: "hello"})

	for i := 0; i < 2; i++ {
		s.Disconnect(conn)
		conn = &fakeConn{}
		s.Identify(conn, "c1", "John", false)
	}

	sess := s.reg.ByUserID("c1")
	if sess == nil || !sess.Online {
		t.Fatalf("Expected c1 online after reconnect cycle, got %+v", sess)
	}
	if len(sess.Messages) != 1 || sess.Messages[0].Body != "hello" {
		t.Errorf("Expected transcript preserved across reconnects, got %v", sess.Messages)
	}
	if got := len(s.reg.Roster()); got != 2 {
		t.Errorf("Expected 2 sessions total, got %d", got)
	}
}

func TestServer_ReidentifyReleasesPreviousUser(t *testing.T) {
	s := NewServer()
	adminConn := &fakeConn{}
	s.Identify(adminConn, "a1", "Admin", true)

	// One connection identifies as c1, then again as c2.
	conn := &fakeConn{}
	s.Identify(conn, "c1", "John", false)
	s.Identify(conn, "c2", "Jane", false)

	if c1 := s.reg.ByUserID("c1"); c1 == nil || c1.Online {
		t.Fatalf("Expected c1 offline after its connection re-identified, got %+v", c1)
	}
	if c2 := s.reg.ByUserID("c2"); c2 == nil || !c2.Online {
		t.Fatalf("Expected c2 online, got %+v", c2)
	}

	// The admin saw c1 connect, c1 drop, c2 connect.
	updates := adminConn.eventsOfType(eventPresenceUpdate)
	if len(updates) != 3 {
		t.Fatalf("Expected 3 presence updates, got %d", len(updates))
	}
	if updates[1].User == nil || updates[1].User.UserID != "c1" || updates[1].User.Online {
		t.Errorf("Expected offline snapshot of c1, got %+v", updates[1].User)
	}

	// The eventual transport disconnect affects only c2.
	s.Disconnect(conn)
	if s.reg.ByUserID("c2").Online {
		t.Errorf("Expected c2 offline after disconnect")
	}
	if got := adminConn.eventsOfType(eventPresenceUpdate); len(got) != 4 {
		t.Errorf("Expected exactly one more presence update, got %d total", len(got))
	}
}

func TestServer_SelectUserDeliversFocusToAdmin(t *testing.T) {
	s := NewServer()
	adminConn := &fakeConn{}
	s.Identify(adminConn, "a1", "Admin", true)
	s.Identify(&fakeConn{}, "c1", "John", false)
	s.HandleMessage(Message{SenderID: "c1", Body: "hi"})

	s.SelectUser("c1")

	focus := adminConn.eventsOfType(eventFocusUser)
	if len(focus) != 1 {
		t.Fatalf("Expected 1 focusUser event, got %d", len(focus))
	}
	if focus[0].User == nil || focus[0].User.UserID != "c1" {
		t.Fatalf("Expected focus on c1, got %+v", focus[0].User)
	}
	if len(focus[0].User.Messages) != 1 {
		t.Errorf("Expected transcript in focus snapshot, got %v", focus[0].User.Messages)
	}
}

func TestServer_SelectUserNoAdminOrUnknownTargetIsNoop(t *testing.T) {
	s := NewServer()
	s.Identify(&fakeConn{}, "c1", "John", false)

	// No admin online.
	s.SelectUser("c1")

	adminConn := &fakeConn{}
	s.Identify(adminConn, "a1", "Admin", true)

	// Unknown target.
	s.SelectUser("nobody")

	if got := adminConn.eventsOfType(eventFocusUser); len(got) != 0 {
		t.Errorf("Expected no focusUser events, got %d", len(got))
	}
}

func TestServer_FailedDeliveryDoesNotEscalate(t *testing.T) {
	s := NewServer()
	adminConn := &fakeConn{fail: true}
	s.Identify(adminConn, "a1", "Admin", true)

	customerConn := &fakeConn{}
	s.Identify(customerConn, "c1", "John", false)

	// The admin's connection is broken; routing still treats the message as
	// delivered and the transcript still gets the entry.
	s.HandleMessage(Message{SenderID: "c1", Body: "hello"})

	sess := s.reg.ByUserID("c1")
	if len(sess.Messages) != 1 {
		t.Errorf("Expected transcript entry despite failed delivery, got %v", sess.Messages)
	}
}

func TestServer_ShutdownClosesOnlineConnections(t *testing.T) {
	s := NewServer()
	adminConn := &fakeConn{}
	customerConn := &fakeConn{}
	offlineConn := &fakeConn{}

	s.Identify(adminConn, "a1", "Admin", true)
	s.Identify(customerConn, "c1", "John", false)
	s.Identify(offlineConn, "c2", "Jane", false)
	s.Disconnect(offlineConn)

	s.Shutdown("server shutting down")

	if !adminConn.closed || !customerConn.closed {
		t.Errorf("Expected online connections to be closed")
	}
	if offlineConn.closed {
		t.Errorf("Expected already-offline connection to be left alone")
	}
}

func TestServer_ConcurrentEvents(t *testing.T) {
	s := NewServer()
	s.Identify(&fakeConn{}, "a1", "Admin", true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := "c" + strconv.Itoa(n)
			for j := 0; j < 100; j++ {
				conn := &fakeConn{}
				s.Identify(conn, userID, "User "+userID, false)
				s.HandleMessage(Message{SenderID: userID, Body: "msg " + strconv.Itoa(j)})
				s.Disconnect(conn)
			}
		}(i)
	}
	wg.Wait()

	// One session per user regardless of interleaving.
	if got := len(s.reg.Roster()); got != 9 {
		t.Errorf("Expected 9 sessions (admin + 8 customers), got %d", got)
	}
}
