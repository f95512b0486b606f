package dispatch

import (
	"context"

	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/tabs"
	"universe-server/internal/wire"
)

func handleTelegramSend(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpTelegramSend)

	rc := trySendTelegram(ctx, d, sess, pkt)
	response.AddInt(wire.VarReasonCode, int32(rc))
	send(d, sess, response)
}

func trySendTelegram(ctx context.Context, d *Dispatcher, sess *registry.Session, pkt *wire.Packet) reason.Code {
	senderID, ok := selfCitizenID(sess)
	if !ok {
		return reason.NotLoggedIn
	}

	usernameTo := pkt.GetString(wire.VarTelegramTo)
	message := pkt.GetString(wire.VarTelegramMessage)
	if usernameTo == "" {
		return reason.NoSuchCitizen
	}
	if message == "" {
		return reason.UnableToSendTelegram
	}

	target, err := d.Store.CitizenByName(ctx, usernameTo)
	if err != nil {
		return reason.NoSuchCitizen
	}

	sender, err := d.Store.CitizenByNumber(ctx, senderID)
	if err != nil {
		return reason.DatabaseError
	}

	sourceAllows, _ := contactAllows(ctx, d, senderID, target.CitizenID, contactTelegramsAllowed, contactTelegramsBlocked)
	targetAllows, _ := contactAllows(ctx, d, target.CitizenID, senderID, contactTelegramsAllowed, contactTelegramsBlocked)
	if !sourceAllows || !targetAllows {
		return reason.TelegramBlocked
	}

	if err := d.Store.TelegramAdd(ctx, store.TelegramRow{
		RecipientID: target.CitizenID,
		SenderName:  sender.Name,
		Timestamp:   nowUnixU32(),
		Message:     message,
	}); err != nil {
		return reason.UnableToSendTelegram
	}

	if cid, ok := d.Registry.GetByCitizenID(target.CitizenID); ok {
		if s, ok := d.Registry.Get(cid); ok {
			sendTelegramUpdateAvailable(ctx, d, s, target.CitizenID)
		}
	}
	return reason.Success
}

const (
	contactTelegramsAllowed = uint32(tabs.ContactTelegramsAllowed)
	contactTelegramsBlocked = uint32(tabs.ContactTelegramsBlocked)
)

// contactAllows reports whether citizenID's stored options for
// otherID permit the given action, treating "neither allowed nor
// blocked set" as permitted (the universe-wide default).
func contactAllows(ctx context.Context, d *Dispatcher, citizenID, otherID uint32, allowedBit, blockedBit uint32) (bool, error) {
	row, err := d.Store.ContactGet(ctx, citizenID, otherID)
	if err == store.ErrNotFound {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if row.Options&blockedBit != 0 {
		return false, nil
	}
	return true, nil
}

func sendTelegramUpdateAvailable(ctx context.Context, d *Dispatcher, sess *registry.Session, citizenID uint32) {
	pending, err := d.Store.TelegramGetUndelivered(ctx, citizenID)
	if err != nil || len(pending) == 0 {
		return
	}
	send(d, sess, wire.NewPacket(wire.OpTelegramNotify))
}

func handleTelegramGet(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpTelegramDeliver)

	citizenID, ok := selfCitizenID(sess)
	if !ok {
		response.AddInt(wire.VarReasonCode, int32(reason.UnableToGetTelegram))
		send(d, sess, response)
		return
	}

	pending, err := d.Store.TelegramGetUndelivered(ctx, citizenID)
	if err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}
	if len(pending) == 0 {
		response.AddInt(wire.VarReasonCode, int32(reason.UnableToGetTelegram))
		send(d, sess, response)
		return
	}

	telegram := pending[0]
	moreRemain := len(pending) >= 2
	_ = d.Store.TelegramMarkDelivered(ctx, telegram.ID)

	response.AddString(wire.VarTelegramCitizenName, telegram.SenderName)
	response.AddUint(wire.VarTelegramAge, nowUnixU32()-telegram.Timestamp)
	response.AddString(wire.VarTelegramMessage, telegram.Message)
	response.AddByte(wire.VarTelegramsMoreRemain, boolToByte(moreRemain))
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}
