package registry

import (
	"net"
	"testing"

	"universe-server/internal/cipher"
	"universe-server/internal/client"
	"universe-server/internal/connection"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	server, _ := net.Pipe()
	t.Cleanup(func() { server.Close() })
	sendCipher, err := cipher.NewA4()
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	return &Session{Conn: connection.New(server, sendCipher)}
}

func TestCreateSessionIDSkipsInUse(t *testing.T) {
	r := New()
	s1 := newTestSession(t)
	s1.Client = client.NewPlayerInfo(client.NewTourist(1, 1, "a", net.ParseIP("127.0.0.1")))
	r.Add(s1)

	id := r.CreateSessionID()
	if id == 1 {
		t.Fatalf("expected session id 1 to be skipped since it is in use")
	}
}

func TestGetByCitizenID(t *testing.T) {
	r := New()
	s := newTestSession(t)
	s.Client = client.NewPlayerInfo(client.NewCitizen(42, 0, 2, 1, "Zippy", net.ParseIP("127.0.0.1")))
	cid := r.Add(s)

	got, ok := r.GetByCitizenID(42)
	if !ok || got != cid {
		t.Fatalf("expected to find citizen 42 at %v, got %v ok=%v", cid, got, ok)
	}

	if _, ok := r.GetByCitizenID(99); ok {
		t.Fatalf("expected no match for unregistered citizen id")
	}
}

func TestRemove(t *testing.T) {
	r := New()
	s := newTestSession(t)
	id := r.Add(s)
	r.Remove(id)
	if _, ok := r.Get(id); ok {
		t.Fatalf("expected session to be gone after Remove")
	}
}
