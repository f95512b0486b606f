package dispatch

import (
	"context"

	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/wire"
)

// handleHeartbeat just records that the connection is still alive; the
// maintenance sweep reads this back to decide who needs a fresh
// Heartbeat sent.
func handleHeartbeat(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	sess.Touch()
}

// handleAttributeChange lets an admin connection push new values for
// the handful of universe-wide attributes this build tracks. The wire
// protocol carries no dedicated var id per attribute, so the incoming
// var's own id is used directly as the store.Attribute key.
func handleAttributeChange(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpAttributeChange)

	if !requireAdmin(sess) {
		return
	}

	for _, v := range pkt.Vars {
		if v.Type != wire.TypeString {
			continue
		}
		attr := store.Attribute(v.ID)
		if attr == store.AttribUniverseBuild {
			// Derived from the build constant, not admin-settable.
			continue
		}
		if err := d.Store.AttribSet(ctx, attr, v.String); err != nil && d.Log != nil {
			d.Log.Warn("attribute set failed")
		}
	}

	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

// universeBuild is reported to every connection as AttribUniverseBuild,
// the protocol build number unmodified clients use to decide which
// wire quirks (like the build>=6 password hash) to apply.
const universeBuild = "120"

// SendAttributes sends every universe-wide attribute to a connection
// that just finished its handshake, matching the original protocol's
// unconditional attribute push before any client-initiated handler can
// run. Like handleAttributeChange, it has no dedicated var id per
// attribute, so each store.Attribute's own numeric value is reused
// directly as the outgoing var id.
func SendAttributes(ctx context.Context, d *Dispatcher, sess *registry.Session) {
	attrs, err := d.Store.AttribGet(ctx)
	if err != nil {
		if d.Log != nil {
			d.Log.Warn("attribute fetch failed")
		}
		attrs = map[store.Attribute]string{}
	}
	attrs[store.AttribUniverseBuild] = universeBuild

	p := wire.NewPacket(wire.OpAttributes)
	for attr, value := range attrs {
		p.AddString(wire.VarID(attr), value)
	}
	send(d, sess, p)
}

// handleCAVGet always reports NoSuchCav: custom avatar variables are
// not implemented, but the client stalls waiting for PAV unless it
// gets a reply.
func handleCAVGet(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpCavTemplateByNumber)
	response.AddInt(wire.VarReasonCode, int32(reason.NoSuchCav))
	send(d, sess, response)
}
