package dispatch

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"net"

	"universe-server/internal/client"
	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/wire"
)

// handleWorldServerStart registers a connection as a world server host.
// Unlike Login, it carries no reply: the original protocol simply
// starts trusting the connection to send WorldStatsUpdate/WorldStop/
// Identify from here on.
func handleWorldServerStart(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if sess.Client != nil {
		return
	}

	build := pkt.GetUint(wire.VarWorldBuild)
	port := pkt.GetUint(wire.VarWorldPort)
	if port == 0 || port > 0xFFFF {
		return
	}

	sess.Client = client.NewWorldServerInfo(&client.WorldServer{
		Build:      int32(build),
		ServerPort: uint16(port),
	})
}

func handleWorldStop(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpWorldStop)

	name := pkt.GetString(wire.VarWorldName)
	if sess.Client == nil || sess.Client.WorldServer == nil {
		response.AddInt(wire.VarReasonCode, int32(reason.NoSuchWorld))
		send(d, sess, response)
		return
	}

	ws := sess.Client.WorldServer
	idx := -1
	for i, w := range ws.Worlds {
		if w.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		response.AddInt(wire.VarReasonCode, int32(reason.NotWorldOwner))
		send(d, sess, response)
		return
	}
	ws.Worlds = append(ws.Worlds[:idx], ws.Worlds[idx+1:]...)

	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)

	regenerateWorldListForAll(d)
}

func handleWorldStatsUpdate(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if sess.Client == nil || sess.Client.WorldServer == nil {
		return
	}
	ws := sess.Client.WorldServer

	name := pkt.GetString(wire.VarWorldName)
	rating := client.WorldRating(pkt.GetByte(wire.VarWorldRating))
	freeEntry := pkt.GetByte(wire.VarWorldFreeEntry) != 0
	userCount := pkt.GetUint(wire.VarWorldUsers)

	w := ws.GetWorld(name)
	if w == nil {
		w = &client.World{Name: name}
		ws.Worlds = append(ws.Worlds, w)
	}
	w.Rating = rating
	w.FreeEntry = freeEntry
	w.UserCount = userCount

	regenerateWorldListForAll(d)
}

func handleWorldList(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if sess.Client == nil || sess.Client.Player == nil {
		return
	}
	info := sess.Client.PlayerInfo()
	if info == nil || info.Tabs == nil {
		return
	}
	info.Tabs.WorldList.Current().SendList(sess)
}

func handleWorldLookup(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	worldName := pkt.GetString(wire.VarWorldName)
	response := wire.NewPacket(wire.OpWorldLookup)
	response.AddString(wire.VarWorldName, worldName)

	world, hostSess, ok := d.Registry.GetWorldByName(worldName)
	if !ok {
		response.AddInt(wire.VarReasonCode, int32(reason.NoSuchWorld))
		send(d, sess, response)
		return
	}

	nonce := make([]byte, 255)
	if _, err := rand.Read(nonce); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}
	if info := sess.Client.PlayerInfo(); info != nil {
		info.Nonce = nonce
	}

	response.AddUint(wire.VarWorldAddress, ipToUint32(hostSess.Conn.PeerAddr()))
	response.AddUint(wire.VarWorldPort, uint32(hostSess.Client.WorldServer.ServerPort))
	response.AddUint(wire.VarWorldLicenseUsers, world.MaxUsers)
	response.AddUint(wire.VarWorldLicenseRange, world.WorldSize)
	response.AddData(wire.VarWorldUserNonce, nonce)
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func ipToUint32(addr net.Addr) uint32 {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0
	}
	ip := net.ParseIP(host).To4()
	if ip == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(ip)
}

// handleIdentify answers a world server's request for the connection
// details of a player it believes just joined one of its worlds,
// matched by the nonce WorldLookup handed the player.
func handleIdentify(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpIdentify)

	if sess.Client == nil || sess.Client.WorldServer == nil {
		return
	}
	worldName := pkt.GetString(wire.VarWorldName)
	if sess.Client.WorldServer.GetWorld(worldName) == nil {
		return
	}

	nonce := pkt.GetData(wire.VarWorldUserNonce)
	sessionID := uint16(pkt.GetUint(wire.VarSessionID))

	rc := reason.NoSuchSession
	var identified *registry.Session
	playerCID, found := d.Registry.GetBySessionID(sessionID)
	if found {
		if playerSess, ok := d.Registry.Get(playerCID); ok {
			if info := playerSess.Client.PlayerInfo(); info != nil && bytesEqual(info.Nonce, nonce) {
				info.World = worldName
				response.AddUint(wire.VarCitizenNumber, citizenIDOrZero(playerSess))
				response.AddString(wire.VarCitizenName, info.Username)
				rc = reason.Success
				identified = playerSess
			} else {
				rc = reason.Imposter
			}
		}
	}

	response.AddInt(wire.VarReasonCode, int32(rc))
	send(d, sess, response)

	if identified != nil {
		regeneratePlayerListForAll(d)
		regenerateContactListAndMutuals(ctx, d, identified)
	}
}

func citizenIDOrZero(sess *registry.Session) uint32 {
	if sess.Client == nil {
		return 0
	}
	id, _ := sess.Client.CitizenID()
	return id
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
