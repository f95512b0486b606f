package dispatch

import (
	"context"

	"universe-server/internal/client"
	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/wire"
)

// citizenInfoVars builds a CitizenInfo response, varying which fields
// are included by who is asking: base fields are visible to anyone who
// can look a citizen up at all, self-or-admin fields add account
// detail visible to the citizen themself or an administrator, and
// admin-only fields add operational detail (comment, last address)
// visible only to administrators.
func citizenInfoVars(c *store.Citizen, selfOrAdmin, admin bool) *wire.Packet {
	p := wire.NewPacket(wire.OpCitizenInfo)
	p.AddUint(wire.VarCitizenNumber, c.CitizenID)
	p.AddString(wire.VarCitizenName, c.Name)
	p.AddString(wire.VarCitizenURL, c.URL)
	p.AddByte(wire.VarTrialUser, boolToByte(c.TrialUser))
	p.AddByte(wire.VarCAVEnabled, boolToByte(c.CAVEnabled))
	if c.CAVEnabled {
		p.AddUint(wire.VarCAVTemplate, c.CAVTemplate)
	} else {
		p.AddUint(wire.VarCAVTemplate, 0)
	}

	if selfOrAdmin {
		p.AddUint(wire.VarCitizenImmigration, uint32(c.ImmigrationDate))
		p.AddUint(wire.VarCitizenExpiration, uint32(c.ExpirationDate))
		p.AddUint(wire.VarCitizenLastLogin, uint32(c.LastLogin))
		p.AddUint(wire.VarCitizenTotalTime, c.TotalDays)
		p.AddUint(wire.VarCitizenBotLimit, c.BotLimit)
		p.AddByte(wire.VarBetaUser, 0)
		p.AddByte(wire.VarCitizenEnabled, boolToByte(c.Enabled))
		p.AddUint(wire.VarCitizenPrivacy, c.PrivacyFlags)
		p.AddString(wire.VarCitizenPassword, c.Password)
		p.AddString(wire.VarCitizenEmail, c.Email)
		p.AddString(wire.VarCitizenPrivilegePassword, c.PrivilegePassword)
	}

	if admin {
		p.AddString(wire.VarCitizenComment, c.Comment)
	}

	p.AddInt(wire.VarReasonCode, int32(reason.Success))
	return p
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func requireAdmin(sess *registry.Session) bool {
	return sess.HasAdminPermissions()
}

func citizenVisibility(sess *registry.Session, c *store.Citizen) (selfOrAdmin, admin bool) {
	admin = requireAdmin(sess)
	if admin {
		return true, true
	}
	if sess.Client == nil {
		return false, false
	}
	if id, ok := sess.Client.CitizenID(); ok && id == c.CitizenID {
		return true, false
	}
	return false, false
}

func handleCitizenLookupByName(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		send(d, sess, errorPacket(wire.OpCitizenInfo, int32(reason.Unauthorized)))
		return
	}
	name := pkt.GetString(wire.VarCitizenName)
	c, err := d.Store.CitizenByName(ctx, name)
	sendCitizenLookupResult(d, sess, c, err)
}

func handleCitizenLookupByNumber(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		send(d, sess, errorPacket(wire.OpCitizenInfo, int32(reason.Unauthorized)))
		return
	}
	number := pkt.GetUint(wire.VarCitizenNumber)
	c, err := d.Store.CitizenByNumber(ctx, number)
	sendCitizenLookupResult(d, sess, c, err)
}

func handleCitizenNext(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		send(d, sess, errorPacket(wire.OpCitizenInfo, int32(reason.Unauthorized)))
		return
	}
	number := pkt.GetUint(wire.VarCitizenNumber)
	c, err := d.Store.CitizenByNumber(ctx, number+1)
	sendCitizenLookupResult(d, sess, c, err)
}

func handleCitizenPrev(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		send(d, sess, errorPacket(wire.OpCitizenInfo, int32(reason.Unauthorized)))
		return
	}
	number := pkt.GetUint(wire.VarCitizenNumber)
	if number == 0 {
		send(d, sess, errorPacket(wire.OpCitizenInfo, int32(reason.NoSuchCitizen)))
		return
	}
	c, err := d.Store.CitizenByNumber(ctx, number-1)
	sendCitizenLookupResult(d, sess, c, err)
}

func sendCitizenLookupResult(d *Dispatcher, sess *registry.Session, c *store.Citizen, err error) {
	if err == store.ErrNotFound {
		send(d, sess, errorPacket(wire.OpCitizenInfo, int32(reason.NoSuchCitizen)))
		return
	}
	if err != nil {
		if d.Metrics != nil {
			d.Metrics.StoreErrors.Inc()
		}
		send(d, sess, errorPacket(wire.OpCitizenInfo, int32(reason.DatabaseError)))
		return
	}
	_, admin := citizenVisibility(sess, c)
	send(d, sess, citizenInfoVars(c, true, admin))
}

// handleCitizenChange lets a citizen update their own account (name,
// password, email, privilege password, url, CAV template), or an
// administrator update any field of any account.
func handleCitizenChange(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpCitizenChangeResult)

	targetID := pkt.GetUint(wire.VarCitizenNumber)
	admin := requireAdmin(sess)

	isSelf := false
	if sess.Client != nil {
		if cid, ok := sess.Client.CitizenID(); ok {
			isSelf = cid == targetID
		}
	}
	if !admin && !isSelf {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	existing, err := d.Store.CitizenByNumber(ctx, targetID)
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

	updated := *existing
	if name, ok := pkt.Get(wire.VarCitizenName); ok {
		newName, rc := validateName(name.String, false)
		if rc != reason.Success {
			response.AddInt(wire.VarReasonCode, int32(rc))
			send(d, sess, response)
			return
		}
		if other, err := d.Store.CitizenByName(ctx, newName); err == nil && other.CitizenID != targetID {
			response.AddInt(wire.VarReasonCode, int32(reason.NameAlreadyUsed))
			send(d, sess, response)
			return
		}
		updated.Name = newName
	}
	if v, ok := pkt.Get(wire.VarCitizenPassword); ok {
		updated.Password = v.String
	}
	if v, ok := pkt.Get(wire.VarCitizenEmail); ok {
		updated.Email = v.String
	}
	if v, ok := pkt.Get(wire.VarCitizenPrivilegePassword); ok {
		updated.PrivilegePassword = v.String
	}
	if v, ok := pkt.Get(wire.VarCitizenURL); ok {
		updated.URL = v.String
	}
	if v, ok := pkt.Get(wire.VarCAVTemplate); ok {
		updated.CAVTemplate = v.AsUint()
	}

	if admin {
		if v, ok := pkt.Get(wire.VarCitizenComment); ok {
			updated.Comment = v.String
		}
		if v, ok := pkt.Get(wire.VarCitizenExpiration); ok {
			updated.ExpirationDate = int64(v.AsUint())
		}
		if v, ok := pkt.Get(wire.VarCitizenBotLimit); ok {
			updated.BotLimit = v.AsUint()
		}
		if v, ok := pkt.Get(wire.VarCAVEnabled); ok {
			updated.CAVEnabled = v.Byte != 0
		}
		if v, ok := pkt.Get(wire.VarCitizenEnabled); ok {
			updated.Enabled = v.Byte != 0
		}
		if v, ok := pkt.Get(wire.VarTrialUser); ok {
			updated.TrialUser = v.Byte != 0
		}
	}

	if err := d.Store.CitizenChange(ctx, updated); err != nil {
		if d.Metrics != nil {
			d.Metrics.StoreErrors.Inc()
		}
		response.AddInt(wire.VarReasonCode, int32(reason.UnableToChangeCitizen))
		send(d, sess, response)
		return
	}

	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

// handleCitizenAdd creates a new citizen at an administrator-chosen id.
// A connection identified as a bot may also set the new account's
// immigration/last-login/total-time fields directly, mirroring a world
// server's ability to backfill historical accounts during import.
func handleCitizenAdd(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpCitizenChangeResult)

	if !requireAdmin(sess) {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	name, rc := validateName(pkt.GetString(wire.VarCitizenName), false)
	if rc != reason.Success {
		response.AddInt(wire.VarReasonCode, int32(rc))
		send(d, sess, response)
		return
	}

	if _, err := d.Store.CitizenByName(ctx, name); err == nil {
		response.AddInt(wire.VarReasonCode, int32(reason.NameAlreadyUsed))
		send(d, sess, response)
		return
	} else if err != store.ErrNotFound {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	newCitizen := store.Citizen{
		CitizenID:         pkt.GetUint(wire.VarCitizenNumber),
		Name:              name,
		Password:          pkt.GetString(wire.VarCitizenPassword),
		Email:             pkt.GetString(wire.VarCitizenEmail),
		PrivilegePassword: pkt.GetString(wire.VarCitizenPrivilegePassword),
		URL:               pkt.GetString(wire.VarCitizenURL),
		Enabled:           true,
		CAVEnabled:        true,
	}

	isBot := sess.Client != nil && sess.Client.Player != nil && sess.Client.Player.Kind == client.KindBot
	if isBot {
		newCitizen.ImmigrationDate = int64(pkt.GetUint(wire.VarCitizenImmigration))
		newCitizen.LastLogin = int64(pkt.GetUint(wire.VarCitizenLastLogin))
		newCitizen.TotalDays = pkt.GetUint(wire.VarCitizenTotalTime)
	} else {
		newCitizen.ImmigrationDate = nowUnix()
	}

	if newCitizen.CitizenID == 0 {
		newID, err := d.Store.CitizenAddNext(ctx, newCitizen)
		if err != nil {
			response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
			send(d, sess, response)
			return
		}
		response.AddUint(wire.VarCitizenNumber, newID)
		response.AddInt(wire.VarReasonCode, int32(reason.Success))
		send(d, sess, response)
		return
	}

	if _, err := d.Store.CitizenByNumber(ctx, newCitizen.CitizenID); err == nil {
		response.AddInt(wire.VarReasonCode, int32(reason.NumberAlreadyUsed))
		send(d, sess, response)
		return
	}

	if err := d.Store.CitizenAdd(ctx, newCitizen); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	response.AddUint(wire.VarCitizenNumber, newCitizen.CitizenID)
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func handleCitizenDelete(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpCitizenChangeResult)

	if !requireAdmin(sess) {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	targetID := pkt.GetUint(wire.VarCitizenNumber)
	if err := d.Store.CitizenDelete(ctx, targetID); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.UnableToDeleteCitizen))
		send(d, sess, response)
		return
	}

	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}
