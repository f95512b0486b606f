package dispatch

import (
	"context"
	"testing"

	"universe-server/internal/client"
	"universe-server/internal/reason"
	"universe-server/internal/wire"
)

func TestHandleWorldStopRemovesWorldAndRefreshesLists(t *testing.T) {
	d := newTestDispatcher(t)
	sess, clientConn := newTestSession(t)
	sess.Client = client.NewWorldServerInfo(&client.WorldServer{
		Worlds: []*client.World{{Name: "AlphaWorld"}},
	})
	d.Registry.Add(sess)

	req := wire.NewPacket(wire.OpWorldStop)
	req.AddString(wire.VarWorldName, "AlphaWorld")

	done := make(chan struct{})
	go func() {
		handleWorldStop(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if rc := resp.GetInt(wire.VarReasonCode); rc != int32(reason.Success) {
		t.Fatalf("expected Success, got %d", rc)
	}
	if sess.Client.WorldServer.GetWorld("AlphaWorld") != nil {
		t.Fatalf("expected AlphaWorld to be removed")
	}
}

func TestHandleWorldStopRejectsUnknownWorld(t *testing.T) {
	d := newTestDispatcher(t)
	sess, clientConn := newTestSession(t)
	sess.Client = client.NewWorldServerInfo(&client.WorldServer{})

	req := wire.NewPacket(wire.OpWorldStop)
	req.AddString(wire.VarWorldName, "NoSuchWorld")

	done := make(chan struct{})
	go func() {
		handleWorldStop(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if rc := resp.GetInt(wire.VarReasonCode); rc != int32(reason.NotWorldOwner) {
		t.Fatalf("expected NotWorldOwner, got %d", rc)
	}
}

func TestHandleWorldLookupReturnsHostDetails(t *testing.T) {
	d := newTestDispatcher(t)

	hostSess, _ := newTestSession(t)
	hostSess.Client = client.NewWorldServerInfo(&client.WorldServer{
		ServerPort: 1234,
		Worlds: []*client.World{{
			Name:      "AlphaWorld",
			MaxUsers:  50,
			WorldSize: 200,
		}},
	})
	d.Registry.Add(hostSess)

	lookupSess, clientConn := newTestSession(t)
	lookupSess.Client = client.NewPlayerInfo(client.NewTourist(1, 1, "Visitor", nil))
	d.Registry.Add(lookupSess)

	req := wire.NewPacket(wire.OpWorldLookup)
	req.AddString(wire.VarWorldName, "AlphaWorld")

	done := make(chan struct{})
	go func() {
		handleWorldLookup(context.Background(), d, 0, lookupSess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if rc := resp.GetInt(wire.VarReasonCode); rc != int32(reason.Success) {
		t.Fatalf("expected Success, got %d", rc)
	}
	if got := resp.GetUint(wire.VarWorldLicenseUsers); got != 50 {
		t.Fatalf("expected MaxUsers 50, got %d", got)
	}
	if len(resp.GetData(wire.VarWorldUserNonce)) != 255 {
		t.Fatalf("expected a 255-byte nonce")
	}
}

func TestHandleWorldLookupUnknownWorld(t *testing.T) {
	d := newTestDispatcher(t)
	sess, clientConn := newTestSession(t)

	req := wire.NewPacket(wire.OpWorldLookup)
	req.AddString(wire.VarWorldName, "Nowhere")

	done := make(chan struct{})
	go func() {
		handleWorldLookup(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if rc := resp.GetInt(wire.VarReasonCode); rc != int32(reason.NoSuchWorld) {
		t.Fatalf("expected NoSuchWorld, got %d", rc)
	}
}
