package tabs

import (
	"net"
	"sort"

	"universe-server/internal/wire"
)

// chunkLimit caps how much a single continuation chunk of a tab list
// will serialize to before the client must request the rest starting
// from a new continuation id.
const chunkLimit = 0x1000

// fullSendLimit caps how much is buffered before a full-list send is
// flushed to the target connection.
const fullSendLimit = 0x4000

// Target is anything a tab list can push packet groups to.
type Target interface {
	SendGroup(*wire.PacketGroup)
	HasAdminPermissions() bool
}

type PlayerState uint8

const (
	PlayerHidden    PlayerState = 0
	PlayerInWorld   PlayerState = 1
	PlayerAvailable PlayerState = 2
)

// PlayerListID uniquely identifies a player within one client's view of
// the player list. Zero is never a valid id.
type PlayerListID uint32

func (id PlayerListID) increment() PlayerListID {
	next := id + 1
	if next == 0 {
		next = 1
	}
	return next
}

// PlayerListEntry is a single row of another player's state as seen by
// one observing client.
type PlayerListEntry struct {
	CitizenID   uint32 // 0 if not a citizen
	PrivilegeID uint32
	Username    string
	World       string // empty if not in a world
	IP          net.IP
	State       PlayerState
	AFK         bool
}

func ipToNum(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0]) | uint32(v4[1])<<8 | uint32(v4[2])<<16 | uint32(v4[3])<<24
}

func (e PlayerListEntry) makeListPacket(toAdmin bool, id PlayerListID) *wire.Packet {
	p := wire.NewPacket(wire.OpUserList)
	p.AddString(wire.VarUserListName, e.Username)
	p.AddUint(wire.VarUserListID, uint32(id))
	p.AddUint(wire.VarUserListCitizenID, e.CitizenID)
	p.AddUint(wire.VarUserListPrivilegeID, e.PrivilegeID)
	if toAdmin {
		p.AddUint(wire.VarUserListAddress, ipToNum(e.IP))
	}
	p.AddByte(wire.VarUserListState, uint8(e.State))
	if e.World != "" {
		p.AddString(wire.VarUserListWorldName, e.World)
	}
	return p
}

// PlayerList is a snapshot of the players one client is aware of.
type PlayerList struct {
	players map[PlayerListID]PlayerListEntry
	nextID  PlayerListID
}

func NewPlayerList() *PlayerList {
	return &PlayerList{players: make(map[PlayerListID]PlayerListEntry), nextID: 1}
}

func (l *PlayerList) clone() *PlayerList {
	out := NewPlayerList()
	out.nextID = l.nextID
	for k, v := range l.players {
		out.players[k] = v
	}
	return out
}

func (l *PlayerList) nextValidID() PlayerListID {
	id := l.nextID
	start := id
	for {
		if _, ok := l.players[id]; !ok {
			return id
		}
		id = id.increment()
		if id == start {
			panic("tabs: no valid player list ids left")
		}
	}
}

// AddPlayer inserts or updates an entry, keeping an existing id stable
// when the same username/citizen already has one.
func (l *PlayerList) AddPlayer(e PlayerListEntry) PlayerListID {
	for id, existing := range l.players {
		if existing.Username == e.Username && existing.CitizenID == e.CitizenID {
			l.players[id] = e
			return id
		}
	}
	id := l.nextValidID()
	l.nextID = id.increment()
	l.players[id] = e
	return id
}

func (l *PlayerList) IsEmpty() bool { return len(l.players) == 0 }

// Difference returns the ids that differ between l and other (added,
// removed, or changed).
func (l *PlayerList) Difference(other *PlayerList) []PlayerListID {
	var changed []PlayerListID
	for id, p := range l.players {
		if op, ok := other.players[id]; ok {
			if p != op {
				changed = append(changed, id)
			}
		} else {
			changed = append(changed, id)
		}
	}
	for id := range other.players {
		if _, ok := l.players[id]; !ok {
			changed = append(changed, id)
		}
	}
	return changed
}

func (l *PlayerList) makeGroupFrom(continuationID uint32, toAdmin bool) *wire.PacketGroup {
	var ids []PlayerListID
	for id := range l.players {
		if uint32(id) >= continuationID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var group wire.PacketGroup
	var nextContinuation *PlayerListID

	for _, id := range ids {
		if group.SerializeLen() > chunkLimit {
			next := id
			nextContinuation = &next
			break
		}
		entry := l.players[id]
		if _, err := group.Push(entry.makeListPacket(toAdmin, id)); err != nil {
			continue
		}
	}

	more := wire.NewPacket(wire.OpUserListResult)
	if nextContinuation != nil {
		more.AddByte(wire.VarUserListMore, 1)
		more.AddUint(wire.VarUserListContinuationID, uint32(*nextContinuation))
	} else {
		more.AddByte(wire.VarUserListMore, 0)
		more.AddUint(wire.VarUserListContinuationID, 0)
	}
	group.Push(more)

	return &group
}

// SendFullList flushes every entry to target, splitting into multiple
// groups once buffered length exceeds fullSendLimit.
func (l *PlayerList) SendFullList(target Target) {
	var group wire.PacketGroup
	for id, entry := range l.players {
		if group.SerializeLen() > fullSendLimit {
			target.SendGroup(&group)
			group = wire.PacketGroup{}
		}
		group.Push(entry.makeListPacket(target.HasAdminPermissions(), id))

		more := wire.NewPacket(wire.OpUserListResult)
		more.AddByte(wire.VarUserListMore, 0)
		more.AddUint(wire.VarUserListContinuationID, uint32(id))
		group.Push(more)
	}
	target.SendGroup(&group)
}

// SendListStartingFrom sends only the chunk beginning at continuationID.
func (l *PlayerList) SendListStartingFrom(target Target, continuationID uint32) {
	group := l.makeGroupFrom(continuationID, target.HasAdminPermissions())
	target.SendGroup(group)
}

// UpdatingPlayerList tracks a current snapshot and the previously sent
// snapshot, so a delta can be computed on each tick.
type UpdatingPlayerList struct {
	current  *PlayerList
	previous *PlayerList
}

func NewUpdatingPlayerList() *UpdatingPlayerList {
	return &UpdatingPlayerList{current: NewPlayerList(), previous: NewPlayerList()}
}

func (u *UpdatingPlayerList) AddPlayer(e PlayerListEntry) PlayerListID { return u.current.AddPlayer(e) }

func (u *UpdatingPlayerList) Current() *PlayerList { return u.current }

// HideCurrent marks every entry hidden, ahead of a full repopulation;
// entries whose state is still hidden after repopulation are dropped
// from tracking on the next Update.
func (u *UpdatingPlayerList) HideCurrent() {
	for id, e := range u.current.players {
		e.State = PlayerHidden
		u.current.players[id] = e
	}
}

// Update commits the current snapshot as the new baseline for future
// diffs and forgets entries that are still hidden.
func (u *UpdatingPlayerList) Update() {
	for id, e := range u.current.players {
		if e.State == PlayerHidden {
			delete(u.current.players, id)
		}
	}
	u.previous = u.current.clone()
}

// MakeDifferenceList returns a PlayerList containing only the entries
// that changed since the last Update.
func (u *UpdatingPlayerList) MakeDifferenceList() *PlayerList {
	list := NewPlayerList()
	changed := u.current.Difference(u.previous)
	set := make(map[PlayerListID]bool, len(changed))
	for _, id := range changed {
		set[id] = true
	}
	for id, e := range u.current.players {
		if set[id] {
			list.players[id] = e
		}
	}
	return list
}
