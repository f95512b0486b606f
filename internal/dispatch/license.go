package dispatch

import (
	"context"

	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/wire"
)

func handleLicenseByName(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	sendLicenseLookup(ctx, d, sess, pkt, d.Store.LicenseByName)
}

func handleLicenseNext(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	sendLicenseLookup(ctx, d, sess, pkt, d.Store.LicenseNext)
}

func handleLicensePrev(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	sendLicenseLookup(ctx, d, sess, pkt, d.Store.LicensePrev)
}

func sendLicenseLookup(ctx context.Context, d *Dispatcher, sess *registry.Session, pkt *wire.Packet, lookup func(context.Context, string) (*store.WorldLicense, error)) {
	response := wire.NewPacket(wire.OpLicenseResult)

	if !requireAdmin(sess) {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	name := pkt.GetString(wire.VarWorldName)
	lic, err := lookup(ctx, name)
	if err == store.ErrNotFound {
		response.AddInt(wire.VarReasonCode, int32(reason.NoSuchLicense))
		send(d, sess, response)
		return
	}
	if err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	addLicenseVars(response, lic)
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func addLicenseVars(p *wire.Packet, lic *store.WorldLicense) {
	p.AddString(wire.VarWorldName, lic.Name)
	p.AddUint(wire.VarWorldLicenseUsers, lic.Users)
	p.AddUint(wire.VarWorldLicenseRange, lic.WorldSize)
	p.AddString(wire.VarWorldLicensePassword, lic.Password)
	p.AddString(wire.VarWorldLicenseEmail, lic.Email)
	p.AddString(wire.VarWorldLicenseComment, lic.Comment)
	p.AddUint(wire.VarWorldLicenseExpiration, lic.Expiration)
	p.AddUint(wire.VarWorldLicenseVoip, lic.VOIP)
	p.AddUint(wire.VarWorldLicensePlugins, lic.Plugins)
}

// licenseFromPacket reads every field an add/change request must carry.
// A missing field is treated as absent rather than zero, mirroring the
// original protocol's requirement that callers fill in the whole row.
func licenseFromPacket(pkt *wire.Packet) (store.WorldLicense, bool) {
	name, hasName := pkt.Get(wire.VarWorldName)
	password, hasPassword := pkt.Get(wire.VarWorldLicensePassword)
	email, hasEmail := pkt.Get(wire.VarWorldLicenseEmail)
	comment, hasComment := pkt.Get(wire.VarWorldLicenseComment)
	expiration, hasExpiration := pkt.Get(wire.VarWorldLicenseExpiration)
	users, hasUsers := pkt.Get(wire.VarWorldLicenseUsers)
	worldSize, hasWorldSize := pkt.Get(wire.VarWorldLicenseRange)
	voip, hasVoip := pkt.Get(wire.VarWorldLicenseVoip)
	plugins, hasPlugins := pkt.Get(wire.VarWorldLicensePlugins)

	if !hasName || !hasPassword || !hasEmail || !hasComment || !hasExpiration || !hasUsers || !hasWorldSize || !hasVoip || !hasPlugins {
		return store.WorldLicense{}, false
	}

	return store.WorldLicense{
		Name:       name.String,
		Password:   password.String,
		Email:      email.String,
		Comment:    comment.String,
		Expiration: expiration.AsUint(),
		Users:      users.AsUint(),
		WorldSize:  worldSize.AsUint(),
		VOIP:       voip.AsUint(),
		Plugins:    plugins.AsUint(),
	}, true
}

// checkValidWorldName applies AW 4's stricter 8-character world name
// limit rather than AW 5's 16, matching what this build's world
// server handshake enforces elsewhere.
func checkValidWorldName(name string) reason.Code {
	if len(name) < 2 {
		return reason.NameTooShort
	}
	if len(name) > 8 {
		return reason.NameTooLong
	}
	if name[0] == ' ' {
		return reason.NameContainsInvalidBlank
	}
	if name[len(name)-1] == ' ' {
		return reason.NameEndsWithBlank
	}
	for _, r := range name {
		if !isAlphanumeric(r) {
			return reason.NameContainsNonalphanumericChar
		}
	}
	return reason.Success
}

func isAlphanumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func handleLicenseAdd(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpLicenseChangeResult)

	if !requireAdmin(sess) {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	lic, ok := licenseFromPacket(pkt)
	if !ok {
		return
	}
	if lic.Name == "" {
		response.AddInt(wire.VarReasonCode, int32(reason.NoSuchLicense))
		send(d, sess, response)
		return
	}

	if _, err := d.Store.LicenseByName(ctx, lic.Name); err == nil {
		response.AddInt(wire.VarReasonCode, int32(reason.WorldAlreadyExists))
		send(d, sess, response)
		return
	} else if err != store.ErrNotFound {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	if rc := checkValidWorldName(lic.Name); rc != reason.Success {
		response.AddInt(wire.VarReasonCode, int32(rc))
		send(d, sess, response)
		return
	}

	if err := d.Store.LicenseAdd(ctx, lic); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.UnableToInsertName))
		send(d, sess, response)
		return
	}

	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func handleLicenseChange(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpLicenseResult)

	if !requireAdmin(sess) {
		response.AddInt(wire.VarReasonCode, int32(reason.Unauthorized))
		send(d, sess, response)
		return
	}

	changed, ok := licenseFromPacket(pkt)
	if !ok {
		return
	}

	if rc := checkValidWorldName(changed.Name); rc != reason.Success {
		response.AddInt(wire.VarReasonCode, int32(rc))
		send(d, sess, response)
		return
	}

	original, err := d.Store.LicenseByName(ctx, changed.Name)
	if err == store.ErrNotFound {
		response.AddInt(wire.VarReasonCode, int32(reason.NoSuchLicense))
		send(d, sess, response)
		return
	}
	if err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	updated := store.WorldLicense{
		Name:       original.Name,
		Password:   changed.Password,
		Email:      changed.Email,
		Comment:    changed.Comment,
		Expiration: changed.Expiration,
		Users:      changed.Users,
		WorldSize:  changed.WorldSize,
		VOIP:       changed.VOIP,
		Plugins:    changed.Plugins,
	}
	if err := d.Store.LicenseChange(ctx, updated); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.UnableToChangeLicense))
		send(d, sess, response)
		return
	}

	if lic, err := d.Store.LicenseByName(ctx, updated.Name); err == nil {
		addLicenseVars(response, lic)
	}
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

func handleLicenseDelete(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if !requireAdmin(sess) {
		return
	}
	name := pkt.GetString(wire.VarWorldName)
	response := wire.NewPacket(wire.OpLicenseChangeResult)

	if err := d.Store.LicenseDelete(ctx, name); err != nil {
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}
