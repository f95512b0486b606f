package dispatch

import (
	"context"

	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/tabs"
	"universe-server/internal/wire"
)

// handleJoinRequest forwards one citizen's request to join another's
// world, gated on the target's own contact privacy settings for joins
// and online status.
func handleJoinRequest(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	sourceID, ok := selfCitizenID(sess)
	if !ok {
		return
	}

	targetID := pkt.GetUint(wire.VarCitizenNumber)
	targetCID, found := d.Registry.GetByCitizenID(targetID)
	if !found {
		sendJoinReplyError(d, sess, reason.NotLoggedIn)
		return
	}

	joinsAllowed, err := contactAllows(ctx, d, targetID, sourceID, 0, contactJoinBlocked)
	if err != nil {
		sendJoinReplyError(d, sess, reason.DatabaseError)
		return
	}
	if !joinsAllowed {
		sendJoinReplyError(d, sess, reason.JoinRefused)
		return
	}

	statusAllowed, err := contactAllows(ctx, d, targetID, sourceID, 0, contactStatusBlocked)
	if err != nil {
		sendJoinReplyError(d, sess, reason.DatabaseError)
		return
	}
	if !statusAllowed {
		sendJoinReplyError(d, sess, reason.NotLoggedIn)
		return
	}

	targetSess, ok := d.Registry.Get(targetCID)
	if !ok {
		sendJoinReplyError(d, sess, reason.NotLoggedIn)
		return
	}
	info := sess.Client.PlayerInfo()
	if info == nil {
		return
	}

	p := wire.NewPacket(wire.OpJoinRequest)
	p.AddUint(wire.VarCitizenNumber, sourceID)
	p.AddString(wire.VarCitizenName, info.Username)
	send(d, targetSess, p)
}

const (
	contactJoinBlocked   = uint32(tabs.ContactJoinBlocked)
	contactStatusBlocked = uint32(tabs.ContactStatusBlocked)
)

func sendJoinReplyError(d *Dispatcher, sess *registry.Session, rc reason.Code) {
	p := wire.NewPacket(wire.OpJoinReply)
	p.AddInt(wire.VarReasonCode, int32(rc))
	send(d, sess, p)
}

// handleJoinReply relays a citizen's response to a prior join request
// back to the requester, including the accepting citizen's position if
// the join was accepted.
func handleJoinReply(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	sourceID, ok := selfCitizenID(sess)
	if !ok {
		return
	}

	citizenID := pkt.GetUint(wire.VarCitizenNumber)
	rcVar, ok := pkt.Get(wire.VarReasonCode)
	if !ok {
		return
	}

	targetCID, found := d.Registry.GetByCitizenID(citizenID)
	if !found {
		return
	}
	targetSess, ok := d.Registry.Get(targetCID)
	if !ok {
		return
	}

	response := wire.NewPacket(wire.OpJoinReply)
	response.AddUint(wire.VarCitizenNumber, sourceID)

	if rcVar.Int == int32(reason.Success) {
		world, hasWorld := pkt.Get(wire.VarWorldName)
		north, hasNorth := pkt.Get(wire.VarPositionNorth)
		height, hasHeight := pkt.Get(wire.VarPositionHeight)
		west, hasWest := pkt.Get(wire.VarPositionWest)
		rotation, hasRotation := pkt.Get(wire.VarPositionRotation)
		if !hasWorld || !hasNorth || !hasHeight || !hasWest || !hasRotation {
			return
		}
		response.AddString(wire.VarWorldName, world.String)
		response.AddInt(wire.VarPositionNorth, north.Int)
		response.AddInt(wire.VarPositionHeight, height.Int)
		response.AddInt(wire.VarPositionWest, west.Int)
		response.AddInt(wire.VarPositionRotation, rotation.Int)
	}
	response.AddInt(wire.VarReasonCode, rcVar.Int)

	send(d, targetSess, response)
}
