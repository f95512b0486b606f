package dispatch

import (
	"context"

	"go.uber.org/zap"

	"universe-server/internal/client"
	"universe-server/internal/reason"
	"universe-server/internal/registry"
	"universe-server/internal/store"
	"universe-server/internal/wire"
)

// minPasswordLen/maxPasswordLen bound both login-time citizen password
// changes and new citizen passwords created through immigration.
const (
	minPasswordLen = 4
	maxPasswordLen = 12
)

// handleLogin covers all three ways a connection can identify itself
// as a player: an anonymous tourist, a citizen authenticating with a
// stored password, or a bot authenticating against its owner's
// privilege password. A world server connection never sends Login; it
// sends WorldServerStart instead.
func handleLogin(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	if sess.Client != nil {
		send(d, sess, errorPacket(wire.OpLogin, int32(reason.Unauthorized)))
		return
	}

	build := pkt.GetUint(wire.VarBrowserBuild)
	username := pkt.GetString(wire.VarLoginUsername)
	application := pkt.GetString(wire.VarApplication)

	response := wire.NewPacket(wire.OpLogin)

	var player *client.Player
	var rc reason.Code

	switch {
	case application != "":
		player, rc = loginBot(ctx, d, pkt, build, application)
	case isTouristName(username):
		player, rc = loginTourist(pkt, build, username)
	default:
		player, rc = loginCitizen(ctx, d, sess, pkt, build, username)
	}

	if rc != reason.Success {
		response.AddInt(wire.VarReasonCode, int32(rc))
		send(d, sess, response)
		return
	}

	player.Info.SessionID = d.Registry.CreateSessionID()
	player.Info.IP = peerIP(sess)
	sess.Client = client.NewPlayerInfo(player)

	response.AddString(wire.VarLoginUsername, player.Info.Username)
	response.AddUint(wire.VarSessionID, uint32(player.Info.SessionID))
	response.AddInt(wire.VarReasonCode, int32(reason.Success))

	if blob, err := d.License.Create(peerIP(sess), d.Config.Port, "aw"); err == nil {
		response.AddData(wire.VarUniverseLicense, blob)
	} else if d.Log != nil {
		d.Log.Warn("failed to build login license blob", zap.Error(err))
	}

	send(d, sess, response)

	refreshEveryoneAfterLogin(ctx, d, id, sess)
}

func isTouristName(name string) bool {
	return len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"'
}

func loginTourist(pkt *wire.Packet, build uint32, username string) (*client.Player, reason.Code) {
	name, rc := validateName(username, true)
	if rc != reason.Success {
		return nil, rc
	}
	return client.NewTourist(0, int32(build), name, nil), reason.Success
}

func loginCitizen(ctx context.Context, d *Dispatcher, sess *registry.Session, pkt *wire.Packet, build uint32, username string) (*client.Player, reason.Code) {
	password := passwordAttempt(pkt, build)

	cit, err := d.Store.CitizenByName(ctx, username)
	if err == store.ErrNotFound {
		return nil, reason.NoSuchCitizen
	}
	if err != nil {
		return nil, reason.DatabaseError
	}

	if !cit.Enabled {
		return nil, reason.CitizenDisabled
	}
	if !checkPassword(build, cit.Password, password) {
		return nil, reason.PasswordWrong
	}

	if _, ok := d.Registry.GetByCitizenID(cit.CitizenID); ok {
		return nil, reason.IdentityAlreadyInUse
	}

	privilegeID, rc := checkActingPrivilege(ctx, d, pkt, cit.CitizenID)
	if rc != reason.Success {
		return nil, rc
	}

	return client.NewCitizen(cit.CitizenID, privilegeID, 0, int32(build), cit.Name, nil), reason.Success
}

// checkActingPrivilege validates the optional "acting as citizen X"
// privilege credential a citizen can present at login to operate with
// another citizen's administrative rights (most commonly citizen 1,
// the universe owner).
func checkActingPrivilege(ctx context.Context, d *Dispatcher, pkt *wire.Packet, selfID uint32) (uint32, reason.Code) {
	privID := pkt.GetUint(wire.VarPrivilegeUserID)
	if privID == 0 {
		return 0, reason.Success
	}

	privPassword := pkt.GetString(wire.VarPrivilegePassword)

	acting, err := d.Store.CitizenByNumber(ctx, privID)
	if err == store.ErrNotFound {
		return 0, reason.NoSuchActingCitizen
	}
	if err != nil {
		return 0, reason.DatabaseError
	}
	if !acting.Enabled {
		return 0, reason.ActingCitizenDisabled
	}
	if acting.PrivilegePassword == "" || acting.PrivilegePassword != privPassword {
		return 0, reason.ActingPasswordInvalid
	}

	return privID, reason.Success
}

func loginBot(ctx context.Context, d *Dispatcher, pkt *wire.Packet, build uint32, application string) (*client.Player, reason.Code) {
	ownerID := pkt.GetUint(wire.VarPrivilegeUserID)
	if ownerID == 0 {
		return nil, reason.Unauthorized
	}
	ownerPassword := pkt.GetString(wire.VarPrivilegePassword)
	username := pkt.GetString(wire.VarLoginUsername)

	owner, err := d.Store.CitizenByNumber(ctx, ownerID)
	if err == store.ErrNotFound {
		return nil, reason.NoSuchActingCitizen
	}
	if err != nil {
		return nil, reason.DatabaseError
	}
	if owner.PrivilegePassword == "" || owner.PrivilegePassword != ownerPassword {
		return nil, reason.ActingPasswordInvalid
	}

	if ownerID != adminCitizenID {
		count := 0
		d.Registry.Each(func(_ registry.ConnID, s *registry.Session) {
			if s.Client == nil || s.Client.Player == nil || s.Client.Player.Kind != client.KindBot {
				return
			}
			if s.Client.Player.OwnerID == ownerID {
				count++
			}
		})
		if uint32(count) >= owner.BotLimit {
			return nil, reason.BotLimitExceeded
		}
	}

	name := "[" + username + "]"
	return client.NewBot(ownerID, application, 0, name, nil), reason.Success
}

// adminCitizenID mirrors client.adminCitizenID; duplicated here because
// that constant is unexported.
const adminCitizenID = 1

// handleImmigrate creates a brand new citizen account, gated on the
// universe's allow_immigration toggle.
func handleImmigrate(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session, pkt *wire.Packet) {
	response := wire.NewPacket(wire.OpImmigrateResponse)

	if !d.Config.AllowImmigration {
		response.AddInt(wire.VarReasonCode, int32(reason.ImmigrationNotAllowed))
		send(d, sess, response)
		return
	}

	name, rc := validateName(pkt.GetString(wire.VarCitizenName), false)
	if rc != reason.Success {
		response.AddInt(wire.VarReasonCode, int32(rc))
		send(d, sess, response)
		return
	}

	password := pkt.GetString(wire.VarPassword)
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		response.AddInt(wire.VarReasonCode, int32(reason.PasswordTooShort))
		send(d, sess, response)
		return
	}

	email := pkt.GetString(wire.VarEmail)

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
		Name:            name,
		Password:        password,
		Email:           email,
		ImmigrationDate: nowUnix(),
		CAVEnabled:      true,
		Enabled:         true,
	}

	newID, err := d.Store.CitizenAddNext(ctx, newCitizen)
	if err != nil {
		if d.Metrics != nil {
			d.Metrics.StoreErrors.Inc()
		}
		response.AddInt(wire.VarReasonCode, int32(reason.DatabaseError))
		send(d, sess, response)
		return
	}

	response.AddUint(wire.VarCitizenNumber, newID)
	response.AddInt(wire.VarReasonCode, int32(reason.Success))
	send(d, sess, response)
}

// refreshEveryoneAfterLogin matches the original's post-login fan-out:
// every connection's player list picks up the new arrival immediately,
// the new connection gets a fresh world/contact list, and it learns of
// any undelivered telegram.
func refreshEveryoneAfterLogin(ctx context.Context, d *Dispatcher, id registry.ConnID, sess *registry.Session) {
	regeneratePlayerListForAll(d)
	regenerateWorldList(d, sess)
	regenerateContactList(ctx, d, sess)

	if citizenID, ok := sess.Client.CitizenID(); ok {
		sendTelegramUpdateAvailable(ctx, d, sess, citizenID)
	}
}
