package dispatch

import (
	"context"

	"universe-server/internal/registry"
	"universe-server/internal/tabs"
)

// regeneratePlayerList rebuilds one connection's player tab list from
// every other currently logged-in player, following the same
// hide-then-repopulate cycle SendTabUpdates diffs against.
func regeneratePlayerList(d *Dispatcher, sess *registry.Session) {
	info := sess.Client.PlayerInfo()
	if info == nil || info.Tabs == nil {
		return
	}
	list := info.Tabs.PlayerList
	list.HideCurrent()
	d.Registry.Each(func(_ registry.ConnID, other *registry.Session) {
		if other.Client == nil || other.Client.Player == nil {
			return
		}
		oinfo := other.Client.PlayerInfo()
		if oinfo == nil {
			return
		}
		state := tabs.PlayerAvailable
		if oinfo.World != "" {
			state = tabs.PlayerInWorld
		}
		citizenID, _ := other.Client.CitizenID()
		list.AddPlayer(tabs.PlayerListEntry{
			CitizenID:   citizenID,
			PrivilegeID: oinfo.PrivilegeID,
			Username:    oinfo.Username,
			World:       oinfo.World,
			IP:          oinfo.IP,
			State:       state,
			AFK:         oinfo.AFK,
		})
	})
}

// regeneratePlayerListForAll rebuilds every connected player's player
// tab list. Called whenever the set of online players changes: after a
// login, an Identify, or a disconnect.
func regeneratePlayerListForAll(d *Dispatcher) {
	d.Registry.Each(func(_ registry.ConnID, sess *registry.Session) {
		if sess.Client == nil || sess.Client.Player == nil {
			return
		}
		regeneratePlayerList(d, sess)
	})
}

// regenerateWorldList rebuilds one connection's world tab list from
// every live world across every connected world server.
func regenerateWorldList(d *Dispatcher, sess *registry.Session) {
	info := sess.Client.PlayerInfo()
	if info == nil || info.Tabs == nil {
		return
	}
	list := info.Tabs.WorldList
	list.HideCurrent()
	for _, e := range d.Registry.AllWorldEntries() {
		list.Current().AddWorld(tabs.WorldListEntry{
			Name:      e.World.Name,
			Status:    tabs.WorldStatusFromFreeEntry(e.World.FreeEntry),
			Rating:    tabs.WorldRating(e.World.Rating),
			IP:        e.IP,
			Port:      e.ServerPort,
			MaxUsers:  e.World.MaxUsers,
			WorldSize: e.World.WorldSize,
			UserCount: e.World.UserCount,
		})
	}
}

// regenerateWorldListForAll rebuilds every connected player's world tab
// list. Called whenever the set of live worlds changes: a world
// starting, stopping, or its host world server disconnecting.
func regenerateWorldListForAll(d *Dispatcher) {
	d.Registry.Each(func(_ registry.ConnID, sess *registry.Session) {
		if sess.Client == nil || sess.Client.Player == nil {
			return
		}
		regenerateWorldList(d, sess)
	})
}

// regenerateContactList rebuilds one citizen's contact tab list from
// the store, reflecting each contact's current online state and world.
func regenerateContactList(ctx context.Context, d *Dispatcher, sess *registry.Session) {
	info := sess.Client.PlayerInfo()
	if info == nil || info.Tabs == nil {
		return
	}
	citizenID, ok := sess.Client.CitizenID()
	if !ok {
		return
	}

	rows, err := d.Store.ContactGetAll(ctx, citizenID)
	if err != nil {
		return
	}

	contactList := info.Tabs.ContactList
	contactList.HideCurrent()
	for _, row := range rows {
		if row.ContactID == 0 {
			contactList.AddContact(tabs.ContactListEntry{
				CitizenID: 0,
				Options:   tabs.ContactOptions(row.Options),
			})
			continue
		}
		contact, err := d.Store.CitizenByNumber(ctx, row.ContactID)
		if err != nil {
			continue
		}
		state := tabs.ContactOffline
		world := ""
		if otherCID, online := d.Registry.GetByCitizenID(row.ContactID); online {
			if otherSess, ok := d.Registry.Get(otherCID); ok {
				if otherInfo := otherSess.Client.PlayerInfo(); otherInfo != nil {
					state = tabs.ContactOnline
					world = otherInfo.World
				}
			}
		}
		contactList.AddContact(tabs.ContactListEntry{
			Username:  contact.Name,
			World:     world,
			State:     state,
			CitizenID: row.ContactID,
			Options:   tabs.ContactOptions(row.Options),
		})
	}
}

// AfterDisconnect refreshes the tab lists everyone else sees once sess
// has already been removed from the registry: a disconnected player
// drops off every remaining player's player list, a disconnected world
// server's worlds drop off every remaining player's world list.
func AfterDisconnect(d *Dispatcher, sess *registry.Session) {
	if sess.Client == nil {
		return
	}
	if sess.Client.Player != nil {
		regeneratePlayerListForAll(d)
	}
	if sess.Client.WorldServer != nil {
		regenerateWorldListForAll(d)
	}
}

// RemoveDeadConnections drops every connection whose read loop has
// already marked it closed, then refreshes whichever tab lists are
// affected exactly once for the whole batch.
func RemoveDeadConnections(d *Dispatcher) {
	var removedPlayer, removedWorld bool
	for _, id := range d.Registry.DisconnectedIDs(registry.IsClosed) {
		if sess, ok := d.Registry.Get(id); ok && sess.Client != nil {
			removedPlayer = removedPlayer || sess.Client.Player != nil
			removedWorld = removedWorld || sess.Client.WorldServer != nil
		}
		d.Registry.Remove(id)
	}
	if removedPlayer {
		regeneratePlayerListForAll(d)
	}
	if removedWorld {
		regenerateWorldListForAll(d)
	}
}

// regenerateContactListAndMutuals regenerates sess's own contact list
// plus the contact list of every online contact that has sess's citizen
// added back, so a presence change is visible from both sides.
func regenerateContactListAndMutuals(ctx context.Context, d *Dispatcher, sess *registry.Session) {
	regenerateContactList(ctx, d, sess)

	citizenID, ok := sess.Client.CitizenID()
	if !ok {
		return
	}

	rows, err := d.Store.ContactGetAll(ctx, citizenID)
	if err != nil {
		return
	}
	for _, row := range rows {
		if row.ContactID == 0 {
			continue
		}
		otherCID, online := d.Registry.GetByCitizenID(row.ContactID)
		if !online {
			continue
		}
		otherSess, ok := d.Registry.Get(otherCID)
		if !ok {
			continue
		}
		regenerateContactList(ctx, d, otherSess)
	}
}
