package dispatch

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"universe-server/internal/cipher"
	"universe-server/internal/client"
	"universe-server/internal/config"
	"universe-server/internal/connection"
	"universe-server/internal/license"
	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store/sqlitestore"
	"universe-server/internal/wire"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "universe.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	gen, err := license.NewGenerator()
	if err != nil {
		t.Fatalf("new license generator: %v", err)
	}

	return &Dispatcher{
		Store:    s,
		Registry: registry.New(),
		Config:   config.UniverseConfig{AllowImmigration: true},
		License:  gen,
	}
}

// newTestSession wires a *registry.Session to one end of a net.Pipe,
// so a handler's outgoing packets can be read back with
// connection.Conn.RecvNextPacket on the other end.
func newTestSession(t *testing.T) (*registry.Session, *connection.Conn) {
	t.Helper()
	serverRaw, clientRaw := net.Pipe()
	t.Cleanup(func() { serverRaw.Close(); clientRaw.Close() })

	serverCipher, err := cipher.NewA4()
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	clientCipher, err := cipher.NewA4()
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	serverConn := connection.New(serverRaw, serverCipher)
	clientConn := connection.New(clientRaw, clientCipher)

	return &registry.Session{Conn: serverConn}, clientConn
}

func recvFrom(t *testing.T, conn *connection.Conn) *wire.Packet {
	t.Helper()
	p, err := conn.RecvNextPacket()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	return p
}

func TestHandleLoginTourist(t *testing.T) {
	d := newTestDispatcher(t)
	sess, clientConn := newTestSession(t)

	req := wire.NewPacket(wire.OpLogin)
	req.AddString(wire.VarLoginUsername, `"Visitor"`)
	req.AddUint(wire.VarBrowserBuild, 120)

	done := make(chan struct{})
	go func() {
		handleLogin(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if resp.GetInt(wire.VarReasonCode) != int32(reason.Success) {
		t.Fatalf("expected success, got reason %d", resp.GetInt(wire.VarReasonCode))
	}
	if sess.Client == nil || sess.Client.Player == nil {
		t.Fatalf("expected session to carry a logged-in player")
	}
	if sess.Client.Player.Kind != client.KindTourist {
		t.Fatalf("expected tourist kind")
	}
}

func TestHandleLoginRejectsAlreadyIdentifiedConnection(t *testing.T) {
	d := newTestDispatcher(t)
	sess, clientConn := newTestSession(t)
	sess.Client = client.NewPlayerInfo(client.NewTourist(1, 1, "Someone", nil))

	req := wire.NewPacket(wire.OpLogin)
	req.AddString(wire.VarLoginUsername, `"Visitor"`)

	done := make(chan struct{})
	go func() {
		handleLogin(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if resp.GetInt(wire.VarReasonCode) != int32(reason.Unauthorized) {
		t.Fatalf("expected Unauthorized, got %d", resp.GetInt(wire.VarReasonCode))
	}
}

func TestHandleImmigrateCreatesCitizen(t *testing.T) {
	d := newTestDispatcher(t)
	sess, clientConn := newTestSession(t)

	req := wire.NewPacket(wire.OpImmigrate)
	req.AddString(wire.VarCitizenName, "Newcomer")
	req.AddString(wire.VarPassword, "hunter2")
	req.AddString(wire.VarEmail, "new@example.com")

	done := make(chan struct{})
	go func() {
		handleImmigrate(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if resp.GetInt(wire.VarReasonCode) != int32(reason.Success) {
		t.Fatalf("expected success, got %d", resp.GetInt(wire.VarReasonCode))
	}
	if resp.GetUint(wire.VarCitizenNumber) == 0 {
		t.Fatalf("expected a nonzero new citizen id")
	}

	if _, err := d.Store.CitizenByName(context.Background(), "Newcomer"); err != nil {
		t.Fatalf("expected citizen to be persisted: %v", err)
	}
}

func TestHandleImmigrateRejectsWhenDisabled(t *testing.T) {
	d := newTestDispatcher(t)
	d.Config.AllowImmigration = false
	sess, clientConn := newTestSession(t)

	req := wire.NewPacket(wire.OpImmigrate)
	req.AddString(wire.VarCitizenName, "Newcomer")
	req.AddString(wire.VarPassword, "hunter2")

	done := make(chan struct{})
	go func() {
		handleImmigrate(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if resp.GetInt(wire.VarReasonCode) == int32(reason.Success) {
		t.Fatalf("expected immigration to be refused")
	}
}

func TestHandleCAVGetAlwaysReportsNoSuchCav(t *testing.T) {
	d := newTestDispatcher(t)
	sess, clientConn := newTestSession(t)

	req := wire.NewPacket(wire.OpCavTemplateByNumber)
	req.AddUint(wire.VarCAVEnabled, 42)

	done := make(chan struct{})
	go func() {
		handleCAVGet(context.Background(), d, 0, sess, req)
		close(done)
	}()

	resp := recvFrom(t, clientConn)
	<-done

	if resp.Opcode != wire.OpCavTemplateByNumber {
		t.Fatalf("unexpected opcode: %v", resp.Opcode)
	}
	if rc := resp.GetInt(wire.VarReasonCode); rc != int32(reason.NoSuchCav) {
		t.Fatalf("expected NoSuchCav, got %d", rc)
	}
}

func TestHandleEjectDeleteRequiresAdmin(t *testing.T) {
	d := newTestDispatcher(t)
	sess, _ := newTestSession(t)

	req := wire.NewPacket(wire.OpEjectDelete)
	req.AddUint(wire.VarEjectionAddress, 1)

	// No admin permissions and no logged-in client: the handler must
	// return without touching the store or blocking on a send.
	handleEjectDelete(context.Background(), d, 0, sess, req)
}

func TestHandleLicenseAddThenLookup(t *testing.T) {
	d := newTestDispatcher(t)
	adminSess, adminConn := newTestSession(t)
	adminSess.Client = client.NewPlayerInfo(client.NewCitizen(1, 0, 1, 1, "Admin", nil))

	add := wire.NewPacket(wire.OpLicenseAdd)
	add.AddString(wire.VarWorldName, "Testland")
	add.AddString(wire.VarWorldLicensePassword, "pw")
	add.AddString(wire.VarWorldLicenseEmail, "owner@example.com")
	add.AddString(wire.VarWorldLicenseComment, "")
	add.AddUint(wire.VarWorldLicenseExpiration, 0)
	add.AddUint(wire.VarWorldLicenseUsers, 20)
	add.AddUint(wire.VarWorldLicenseRange, 1000)
	add.AddUint(wire.VarWorldLicenseVoip, 0)
	add.AddUint(wire.VarWorldLicensePlugins, 0)

	done := make(chan struct{})
	go func() {
		handleLicenseAdd(context.Background(), d, 0, adminSess, add)
		close(done)
	}()
	resp := recvFrom(t, adminConn)
	<-done

	if resp.GetInt(wire.VarReasonCode) != int32(reason.Success) {
		t.Fatalf("expected license add to succeed, got %d", resp.GetInt(wire.VarReasonCode))
	}

	lookup := wire.NewPacket(wire.OpLicenseByName)
	lookup.AddString(wire.VarWorldName, "Testland")

	done = make(chan struct{})
	go func() {
		handleLicenseByName(context.Background(), d, 0, adminSess, lookup)
		close(done)
	}()
	lookupResp := recvFrom(t, adminConn)
	<-done

	if lookupResp.GetString(wire.VarWorldName) != "Testland" {
		t.Fatalf("expected lookup to find the license just added")
	}
	if lookupResp.GetUint(wire.VarWorldLicenseUsers) != 20 {
		t.Fatalf("expected user quota to round-trip, got %d", lookupResp.GetUint(wire.VarWorldLicenseUsers))
	}
}
