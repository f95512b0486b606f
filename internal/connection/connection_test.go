package connection

import (
	"net"
	"testing"

	"universe-server/internal/cipher"
	"universe-server/internal/wire"
)

func TestSendRecvRoundTrip(t *testing.T) {
	serverRaw, clientRaw := net.Pipe()
	defer serverRaw.Close()
	defer clientRaw.Close()

	serverCipher, err := cipher.NewA4()
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	clientCipher, err := cipher.NewA4()
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	server := New(serverRaw, serverCipher)
	client := New(clientRaw, clientCipher)

	done := make(chan error, 1)
	go func() {
		p := wire.NewPacket(wire.OpHeartbeat)
		p.AddInt(wire.VarSessionID, 99)
		done <- server.Send(p)
	}()

	got, err := client.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Opcode != wire.OpHeartbeat {
		t.Fatalf("opcode mismatch: %v", got.Opcode)
	}
	if got.GetInt(wire.VarSessionID) != 99 {
		t.Fatalf("session id mismatch: %d", got.GetInt(wire.VarSessionID))
	}
}

func TestEncryptedSendRecvRoundTrip(t *testing.T) {
	serverRaw, clientRaw := net.Pipe()
	defer serverRaw.Close()
	defer clientRaw.Close()

	serverSend, err := cipher.NewAES()
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	clientRecv, err := cipher.AESFromKey(serverSend.InitialKey())
	if err != nil {
		t.Fatalf("from key: %v", err)
	}

	server := New(serverRaw, serverSend)
	server.EncryptData(true)

	clientDummySend, err := cipher.NewAES()
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	client := New(clientRaw, clientDummySend)
	client.SetRecvKey(clientRecv)

	done := make(chan error, 1)
	go func() {
		p := wire.NewPacket(wire.OpHeartbeat)
		p.AddString(wire.VarLoginUsername, "swifty")
		done <- server.Send(p)
	}()

	got, err := client.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.GetString(wire.VarLoginUsername) != "swifty" {
		t.Fatalf("username mismatch: %q", got.GetString(wire.VarLoginUsername))
	}
}
