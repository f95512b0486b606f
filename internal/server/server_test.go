package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"universe-server/internal/cipher"
	"universe-server/internal/config"
	"universe-server/internal/connection"
	"universe-server/internal/dispatch"
	"universe-server/internal/license"
	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/rsahandshake"
	"universe-server/internal/store/sqlitestore"
	"universe-server/internal/wire"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "universe.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gen, err := license.NewGenerator()
	if err != nil {
		t.Fatalf("new license generator: %v", err)
	}

	d := &dispatch.Dispatcher{
		Store:    st,
		Registry: registry.New(),
		Config:   config.UniverseConfig{MaxConnections: 10},
		License:  gen,
	}
	return New(d, nil)
}

// TestHandshakeCompletesAndDeliversAttributes drives a connection
// through the full RSA/RC4 exchange exactly as a real client would,
// then checks that the attribute push following it decrypts cleanly.
func TestHandshakeCompletesAndDeliversAttributes(t *testing.T) {
	s := newTestServer(t)

	serverRaw, clientRaw := net.Pipe()
	t.Cleanup(func() { serverRaw.Close(); clientRaw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.dispatchLoop(ctx)
	go s.handleConn(ctx, serverRaw)

	clientSendCipher, err := cipher.NewA4()
	if err != nil {
		t.Fatalf("client cipher: %v", err)
	}
	clientConn := connection.New(clientRaw, clientSendCipher)
	clientRSA, err := rsahandshake.New()
	if err != nil {
		t.Fatalf("client rsa: %v", err)
	}

	if err := clientConn.Send(wire.NewPacket(wire.OpPublicKeyRequest)); err != nil {
		t.Fatalf("send PublicKeyRequest: %v", err)
	}

	pubKeyResp, err := clientConn.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv PublicKeyResponse: %v", err)
	}
	if pubKeyResp.Opcode != wire.OpPublicKeyResponse {
		t.Fatalf("expected PublicKeyResponse, got %v", pubKeyResp.Opcode)
	}
	serverPub := pubKeyResp.GetData(wire.VarEncryptionKey)

	clientPub, err := clientRSA.EncodePublicKey()
	if err != nil {
		t.Fatalf("encode client pubkey: %v", err)
	}
	reply := wire.NewPacket(wire.OpPublicKeyResponse)
	reply.AddData(wire.VarEncryptionKey, clientPub)
	if err := clientConn.Send(reply); err != nil {
		t.Fatalf("send PublicKeyResponse: %v", err)
	}

	streamResp, err := clientConn.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv StreamKeyResponse: %v", err)
	}
	if streamResp.Opcode != wire.OpStreamKeyResponse {
		t.Fatalf("expected StreamKeyResponse, got %v", streamResp.Opcode)
	}
	serverSendKey, err := clientRSA.Decrypt(streamResp.GetData(wire.VarEncryptionKey))
	if err != nil {
		t.Fatalf("decrypt server stream key: %v", err)
	}
	serverKeyAsClientRecv, err := cipher.A4FromKey(serverSendKey)
	if err != nil {
		t.Fatalf("rebuild server cipher: %v", err)
	}
	clientConn.SetRecvKey(serverKeyAsClientRecv)

	encryptedClientKey, err := rsahandshake.EncryptForPeer(serverPub, clientConn.GetSendKey())
	if err != nil {
		t.Fatalf("encrypt client stream key: %v", err)
	}
	clientStreamResp := wire.NewPacket(wire.OpStreamKeyResponse)
	clientStreamResp.AddData(wire.VarEncryptionKey, encryptedClientKey)
	if err := clientConn.Send(clientStreamResp); err != nil {
		t.Fatalf("send client StreamKeyResponse: %v", err)
	}
	clientConn.EncryptData(true)

	attrPkt, err := clientConn.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv attributes: %v", err)
	}
	if attrPkt.Opcode != wire.OpAttributes {
		t.Fatalf("expected Attributes, got %v", attrPkt.Opcode)
	}
}

// TestDispatchedPacketRoutesThroughServerTask confirms a packet sent
// after the handshake travels handleConn -> submit -> dispatchLoop ->
// Dispatcher.Dispatch and that the reply makes it back out, the path
// introduced by routing every post-handshake packet through the single
// inboundEvent channel instead of dispatching from the connection's own
// goroutine.
func TestDispatchedPacketRoutesThroughServerTask(t *testing.T) {
	s := newTestServer(t)

	serverRaw, clientRaw := net.Pipe()
	t.Cleanup(func() { serverRaw.Close(); clientRaw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.dispatchLoop(ctx)
	go s.handleConn(ctx, serverRaw)

	clientConn := completeHandshake(t, clientRaw)

	req := wire.NewPacket(wire.OpCavTemplateByNumber)
	req.AddUint(wire.VarCAVEnabled, 42)
	if err := clientConn.Send(req); err != nil {
		t.Fatalf("send CavTemplateByNumber: %v", err)
	}

	resp, err := clientConn.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv reply: %v", err)
	}
	if resp.Opcode != wire.OpCavTemplateByNumber {
		t.Fatalf("unexpected reply opcode: %v", resp.Opcode)
	}
	if rc := resp.GetInt(wire.VarReasonCode); rc != int32(reason.NoSuchCav) {
		t.Fatalf("expected NoSuchCav, got %d", rc)
	}
}

// completeHandshake drives clientRaw through the RSA/RC4 exchange
// against a Server already listening via handleConn, consuming the
// post-handshake attribute push so later RecvNextPacket calls see only
// whatever the test sends next.
func completeHandshake(t *testing.T, clientRaw net.Conn) *connection.Conn {
	t.Helper()

	clientSendCipher, err := cipher.NewA4()
	if err != nil {
		t.Fatalf("client cipher: %v", err)
	}
	clientConn := connection.New(clientRaw, clientSendCipher)
	clientRSA, err := rsahandshake.New()
	if err != nil {
		t.Fatalf("client rsa: %v", err)
	}

	if err := clientConn.Send(wire.NewPacket(wire.OpPublicKeyRequest)); err != nil {
		t.Fatalf("send PublicKeyRequest: %v", err)
	}

	pubKeyResp, err := clientConn.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv PublicKeyResponse: %v", err)
	}
	serverPub := pubKeyResp.GetData(wire.VarEncryptionKey)

	clientPub, err := clientRSA.EncodePublicKey()
	if err != nil {
		t.Fatalf("encode client pubkey: %v", err)
	}
	reply := wire.NewPacket(wire.OpPublicKeyResponse)
	reply.AddData(wire.VarEncryptionKey, clientPub)
	if err := clientConn.Send(reply); err != nil {
		t.Fatalf("send PublicKeyResponse: %v", err)
	}

	streamResp, err := clientConn.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv StreamKeyResponse: %v", err)
	}
	serverSendKey, err := clientRSA.Decrypt(streamResp.GetData(wire.VarEncryptionKey))
	if err != nil {
		t.Fatalf("decrypt server stream key: %v", err)
	}
	serverKeyAsClientRecv, err := cipher.A4FromKey(serverSendKey)
	if err != nil {
		t.Fatalf("rebuild server cipher: %v", err)
	}
	clientConn.SetRecvKey(serverKeyAsClientRecv)

	encryptedClientKey, err := rsahandshake.EncryptForPeer(serverPub, clientConn.GetSendKey())
	if err != nil {
		t.Fatalf("encrypt client stream key: %v", err)
	}
	clientStreamResp := wire.NewPacket(wire.OpStreamKeyResponse)
	clientStreamResp.AddData(wire.VarEncryptionKey, encryptedClientKey)
	if err := clientConn.Send(clientStreamResp); err != nil {
		t.Fatalf("send client StreamKeyResponse: %v", err)
	}
	clientConn.EncryptData(true)

	if _, err := clientConn.RecvNextPacket(); err != nil {
		t.Fatalf("recv attributes: %v", err)
	}

	return clientConn
}

func TestAdmitRejectsOverMaxConnections(t *testing.T) {
	s := newTestServer(t)
	s.Config.MaxConnections = 1

	sess := &registry.Session{}
	s.Registry.Add(sess)

	_, fake := net.Pipe()
	defer fake.Close()

	if s.admit(fake) {
		t.Fatalf("expected admit to reject a connection once MaxConnections is reached")
	}
}

func TestAdmitRejectsBurstFromSameIP(t *testing.T) {
	s := newTestServer(t)
	s.Config.MaxConnections = 0

	accepted := 0
	for i := 0; i < perIPBurst+2; i++ {
		_, fake := net.Pipe()
		if s.admit(fake) {
			accepted++
		}
		fake.Close()
	}
	if accepted > perIPBurst {
		t.Fatalf("admitted %d connections from one address, want at most %d", accepted, perIPBurst)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := newTestServer(t)
	s.Config.BindIP = "127.0.0.1"
	s.Config.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned an error after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after context cancellation")
	}
}
