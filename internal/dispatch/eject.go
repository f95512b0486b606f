package dispatch

import (
	"context"

	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/wire"
)

func handleEjectLookup(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		return
	}
	address := pkt.GetString(wire.VarEjectionAddress)
	row, err := d.Store.EjectionLookup(ctx, address)
	sendEjectionInfo(d, sess, row, err)
}

func handleEjectNext(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		return
	}
	row, err := d.Store.EjectionNext(ctx, pkt.GetUint(wire.VarEjectionAddress))
	sendEjectionInfo(d, sess, row, err)
}

func handleEjectPrev(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		return
	}
	row, err := d.Store.EjectionPrev(ctx, pkt.GetUint(wire.VarEjectionAddress))
	sendEjectionInfo(d, sess, row, err)
}

func sendEjectionInfo(d *Dispatcher, sess *registry.Session, row *store.EjectionRow, err error) {
	response := wire.NewPacket(wire.OpEjectionInfo)

	if err == store.ErrNotFound {
		response.AddInt(wire.VarReasonCode, int32(reason.NoSuchEjection))
		send(d, sess, response)
		return
	}
	if err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	response.AddString(wire.VarEjectionAddress, row.Address)
	response.AddUint(wire.VarEjectionExpiration, row.Expiration)
	response.AddUint(wire.VarEjectionCreation, row.ID)
	response.AddString(wire.VarEjectionComment, row.Comment)
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func handleEjectAdd(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpEjectResult)

	if !requireAdmin(sess) {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	address := pkt.GetString(wire.VarEjectionAddress)
	expiration := pkt.GetUint(wire.VarEjectionExpiration)
	comment := pkt.GetString(wire.VarEjectionComment)
	creation := nowUnixU32()

	row := store.EjectionRow{Address: address, Expiration: expiration, Comment: comment}
	if err := d.Store.EjectionSet(ctx, row); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	if creation > expiration {
		disconnectByAddress(d, address)
	}

	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func disconnectByAddress(d *Dispatcher, address string) {
	d.Registry.Each(func(_ registry.ConnID, s *registry.Session) {
		host, _, err := splitHost(s.Conn.PeerAddr().String())
		if err == nil && host == address {
			_ = s.Conn.Close()
		}
	})
}

func handleEjectDelete(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpEjectResult)

	if !requireAdmin(sess) {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	address := pkt.GetUint(wire.VarEjectionAddress)
	if err := d.Store.EjectionDelete(ctx, address); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}
