// Package dispatch implements every opcode handler: the logic that
// turns one incoming packet plus the current session/registry state
// into zero or more outgoing packets and store mutations.
package dispatch

import (
	"context"
	"net"

	"go.uber.org/zap"

	"universe-server/internal/config"
	"universe-server/internal/license"
	"universe-server/internal/metrics"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/wire"
)

// Dispatcher holds everything a handler needs beyond the packet and
// session it was called with.
type Dispatcher struct {
	Store    store.Store
	Registry *registry.Registry
	Config   config.UniverseConfig
	License  *license.Generator
	Metrics  *metrics.Registry
	Log      *zap.Logger
}

// HandlerFunc handles one opcode. id/sess identify the connection the
// packet arrived on; pkt is the decoded request.
type HandlerFunc func(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet)

var handlers = map[wire.Opcode]HandlerFunc{
	wire.OpLogin:              handleLogin,
	wire.OpImmigrate:          handleImmigrate,
	wire.OpHeartbeat:          handleHeartbeat,
	wire.OpAttributeChange:    handleAttributeChange,
	wire.OpWorldServerStart:   handleWorldServerStart,
	wire.OpWorldStop:          handleWorldStop,
	wire.OpWorldStatsUpdate:   handleWorldStatsUpdate,
	wire.OpIdentify:           handleIdentify,
	wire.OpWorldList:          handleWorldList,
	wire.OpWorldLookup:        handleWorldLookup,
	wire.OpCitizenNext:        handleCitizenNext,
	wire.OpCitizenPrev:        handleCitizenPrev,
	wire.OpCitizenLookupByName:   handleCitizenLookupByName,
	wire.OpCitizenLookupByNumber: handleCitizenLookupByNumber,
	wire.OpCitizenChange:      handleCitizenChange,
	wire.OpCitizenAdd:         handleCitizenAdd,
	wire.OpCitizenDelete:      handleCitizenDelete,
	wire.OpContactAdd:         handleContactAdd,
	wire.OpContactChange:      handleContactChange,
	wire.OpContactConfirm:     handleContactConfirm,
	wire.OpContactDelete:      handleContactDelete,
	wire.OpContactList:        handleContactList,
	wire.OpSetAFK:             handleSetAFK,
	wire.OpTelegramSend:       handleTelegramSend,
	wire.OpTelegramGet:        handleTelegramGet,
	wire.OpJoinRequest:        handleJoinRequest,
	wire.OpJoinReply:          handleJoinReply,
	wire.OpEjectLookup:        handleEjectLookup,
	wire.OpEjectNext:          handleEjectNext,
	wire.OpEjectPrev:          handleEjectPrev,
	wire.OpEjectAdd:           handleEjectAdd,
	wire.OpEjectDelete:        handleEjectDelete,
	wire.OpCavTemplateByNumber: handleCAVGet,
	wire.OpLicenseByName:      handleLicenseByName,
	wire.OpLicenseNext:        handleLicenseNext,
	wire.OpLicensePrev:        handleLicensePrev,
	wire.OpLicenseAdd:         handleLicenseAdd,
	wire.OpLicenseChange:      handleLicenseChange,
	wire.OpLicenseDelete:      handleLicenseDelete,
}

// Dispatch routes pkt to its handler, if one is registered. Unknown
// opcodes are silently ignored, matching the protocol's tolerance for
// clients sending packets a given build doesn't yet support.
func (d *Dispatcher) Dispatch(ctx context.Context, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if d.Metrics != nil {
		d.Metrics.ObserveOpcode(uint16(pkt.Opcode))
	}

	h, ok := handlers[pkt.Opcode]
	if !ok {
		if d.Log != nil {
			d.Log.Debug("unhandled opcode", zap.Stringer("opcode", pkt.Opcode))
		}
		return
	}
	h(ctx, d, id, sess, pkt)
}

// errorPacket builds a minimal response carrying only a reason code,
// the shape most handlers fall back to on failure.
func errorPacket(op wire.Opcode, rc int32) *wire.Packet {
	p := wire.NewPacket(op)
	p.AddInt(wire.VarReasonCode, rc)
	return p
}

func peerIP(sess *registry.Session) net.IP {
	addr := sess.Conn.PeerAddr()
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil
	}
	return net.ParseIP(host)
}
