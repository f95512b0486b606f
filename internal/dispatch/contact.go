package dispatch

import (
	"context"

	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/tabs"
	"universe-server/internal/wire"
)

const (
	contactFriendRequestAllowed = uint32(tabs.ContactFriendRequestAllowed)
	contactFriendRequestBlocked = uint32(tabs.ContactFriendRequestBlocked)
	contactAllBlocked           = uint32(tabs.ContactAllBlocked)
)

func selfCitizenID(sess *registry.Session) (uint32, bool) {
	if sess.Client == nil {
		return 0, false
	}
	return sess.Client.CitizenID()
}

func handleContactAdd(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpContactAdd)

	citizenID, ok := selfCitizenID(sess)
	if !ok {
		response.AddInt(wire.VarReasonCode, int32(reason.NotLoggedIn))
		send(d, sess, response)
		return
	}

	contactName := pkt.GetString(wire.VarContactListName)
	options := pkt.GetUint(wire.VarContactListOptions)

	contact, err := d.Store.CitizenByName(ctx, contactName)
	if err == store.ErrNotFound {
		response.AddInt(wire.VarReasonCode, int32(reason.NoSuchCitizen))
		send(d, sess, response)
		return
	}
	if err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	blockedRow, err := d.Store.ContactGet(ctx, contact.CitizenID, citizenID)
	otherBlocked := err == nil && blockedRow.Options&contactAllBlocked != 0
	if otherBlocked && options&contactAllBlocked == 0 {
		response.AddInt(wire.VarReasonCode, int32(reason.ContactAddBlocked))
		send(d, sess, response)
		return
	}

	_, sourceHas := get(d.Store.ContactGet(ctx, citizenID, contact.CitizenID))
	_, targetHas := get(d.Store.ContactGet(ctx, contact.CitizenID, citizenID))
	if sourceHas && targetHas {
		response.AddInt(wire.VarReasonCode, int32(reason.UnableToSetContact))
		send(d, sess, response)
		return
	}

	newOptions := (options &^ contactFriendRequestAllowed) | contactFriendRequestBlocked
	if err := d.Store.ContactSet(ctx, citizenID, contact.CitizenID, newOptions); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	alertFriendRequest(ctx, d, citizenID, contact.CitizenID)

	response.AddUint(wire.VarContactListCitizenID, contact.CitizenID)
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func get(row *store.ContactRow, err error) (*store.ContactRow, bool) {
	return row, err == nil
}

func alertFriendRequest(ctx context.Context, d *Dispatcher, from, to uint32) {
	citizen, err := d.Store.CitizenByNumber(ctx, from)
	if err != nil {
		return
	}
	message := "\n\x01(" + itoa(from) + ")" + citizen.Name + "\n"
	_ = d.Store.TelegramAdd(ctx, store.TelegramRow{
		RecipientID: to,
		SenderName:  citizen.Name,
		Timestamp:   nowUnixU32(),
		Message:     message,
	})
	if cid, ok := d.Registry.GetByCitizenID(to); ok {
		if s, ok := d.Registry.Get(cid); ok {
			send(d, s, wire.NewPacket(wire.OpTelegramNotify))
		}
	}
}

func handleContactChange(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	citizenID, ok := selfCitizenID(sess)
	if !ok {
		return
	}
	contactID := pkt.GetUint(wire.VarContactListCitizenID)
	changes := pkt.GetUint(wire.VarContactListOptions)

	original, err := d.Store.ContactGet(ctx, citizenID, contactID)
	if err == store.ErrNotFound && contactID == 0 {
		original = &store.ContactRow{}
	} else if err != nil {
		return
	}

	newOptions := (original.Options &^ changes) | changes
	if err := d.Store.ContactSet(ctx, citizenID, contactID, newOptions); err != nil {
		return
	}
	if changes&contactAllBlocked != 0 {
		_ = d.Store.ContactDelete(ctx, contactID, citizenID)
	}
}

func handleContactConfirm(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpContactConfirm)

	rc := tryContactConfirm(ctx, d, sess, pkt)
	response.AddInt(wire.VarReasonCode, int32(rc))
	send(d, sess, response)
}

func tryContactConfirm(ctx context.Context, d *Dispatcher, sess *registry.Session, pkt *wire.Packet) reason.Code {
	citizenID, ok := selfCitizenID(sess)
	if !ok {
		return reason.NotLoggedIn
	}

	contactID := pkt.GetUint(wire.VarContactListCitizenID)
	optionsVar, hasOptions := pkt.Get(wire.VarContactListOptions)
	if !hasOptions {
		return reason.NoSuchCitizen
	}
	if optionsVar.Int == -1 {
		// Friend request denied; nothing further to do.
		return reason.Success
	}

	target, err := d.Store.ContactGet(ctx, contactID, citizenID)
	if err == store.ErrNotFound {
		return reason.UnableToSetContact
	}
	if err != nil {
		return reason.DatabaseError
	}
	if target.Options&contactFriendRequestAllowed == 0 {
		return reason.UnableToSetContact
	}

	if err := d.Store.ContactSet(ctx, citizenID, contactID, 0); err != nil {
		return reason.UnableToSetContact
	}
	if err := d.Store.ContactSet(ctx, contactID, citizenID, 0); err != nil {
		return reason.UnableToSetContact
	}
	return reason.Success
}

func handleContactDelete(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpContactDelete)

	citizenID, ok := selfCitizenID(sess)
	if !ok {
		response.AddInt(wire.VarReasonCode, int32(reason.NotLoggedIn))
		send(d, sess, response)
		return
	}
	contactID := pkt.GetUint(wire.VarContactListCitizenID)

	blockedRow, blockErr := d.Store.ContactGet(ctx, contactID, citizenID)
	blockedByOther := blockErr == nil && blockedRow.Options&contactAllBlocked != 0

	rc := reason.Success
	if err := d.Store.ContactDelete(ctx, citizenID, contactID); err != nil {
		rc = reason.UnableToSetContact
	}
	if !blockedByOther {
		if err := d.Store.ContactDelete(ctx, contactID, citizenID); err != nil {
			rc = reason.DatabaseError
		}
	}

	response.AddInt(wire.VarReasonCode, int32(rc))
	send(d, sess, response)
}

func handleContactList(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if sess.Client == nil {
		return
	}
	info := sess.Client.PlayerInfo()
	if info == nil || info.Tabs == nil {
		return
	}
	startingID := pkt.GetUint(wire.VarContactListCitizenID)
	info.Tabs.ContactList.CurrentStartingFrom(startingID).SendLimitedList(sess)
}

func handleSetAFK(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if sess.Client == nil || sess.Client.Player == nil {
		return
	}
	afk := pkt.GetUint(wire.VarAFKStatus) != 0
	sess.Client.Player.Info.AFK = afk
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	digits := [10]byte{}
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits[i:])
}
