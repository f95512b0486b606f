package tabs

import (
	"time"

	"universe-server/internal/wire"
)

type WorldStatus uint8

const (
	WorldPublic  WorldStatus = 1
	WorldPrivate WorldStatus = 2
	WorldHidden  WorldStatus = 3
)

func WorldStatusFromFreeEntry(freeEntry bool) WorldStatus {
	if freeEntry {
		return WorldPublic
	}
	return WorldPrivate
}

type WorldRating uint8

const (
	RatingG     WorldRating = 0
	RatingPG    WorldRating = 1
	RatingPG13  WorldRating = 2
	RatingR     WorldRating = 3
	RatingX     WorldRating = 4
)

// WorldListEntry is a single world-server advertisement as seen by one
// observing client.
type WorldListEntry struct {
	Name      string
	Status    WorldStatus
	Rating    WorldRating
	IP        string
	Port      uint16
	MaxUsers  uint32
	WorldSize uint32
	UserCount uint32
}

func (e WorldListEntry) makeListPacket() *wire.Packet {
	p := wire.NewPacket(wire.OpWorldList)
	p.AddString(wire.VarWorldListName, e.Name)
	p.AddByte(wire.VarWorldListStatus, uint8(e.Status))
	p.AddUint(wire.VarWorldListUsers, e.UserCount)
	p.AddByte(wire.VarWorldListRating, uint8(e.Rating))
	return p
}

// WorldList is a snapshot of the worlds one client is aware of.
type WorldList struct {
	entries map[string]WorldListEntry
}

func NewWorldList() *WorldList { return &WorldList{entries: make(map[string]WorldListEntry)} }

func (l *WorldList) clone() *WorldList {
	out := NewWorldList()
	for k, v := range l.entries {
		out.entries[k] = v
	}
	return out
}

func (l *WorldList) IsEmpty() bool { return len(l.entries) == 0 }

func (l *WorldList) AddWorld(w WorldListEntry) { l.entries[w.Name] = w }

func (l *WorldList) getByName(name string) (WorldListEntry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// MakePacketGroups chunks every world into packet groups, each
// terminated by a WorldListResult packet indicating whether more
// groups follow.
func (l *WorldList) MakePacketGroups() []*wire.PacketGroup {
	now := uint32(time.Now().Unix())

	var groups []*wire.PacketGroup
	group := &wire.PacketGroup{}

	for _, w := range l.entries {
		if returned, _ := group.Push(w.makeListPacket()); returned != nil {
			groups = append(groups, group)
			group = &wire.PacketGroup{}

			more := wire.NewPacket(wire.OpWorldListResult)
			more.AddByte(wire.VarWorldListMore, 1)
			more.AddUint(wire.VarWorldList3DayUnknown, now)
			group.Push(more)
			group.Push(returned)
		}
	}

	done := wire.NewPacket(wire.OpWorldListResult)
	done.AddByte(wire.VarWorldListMore, 0)
	done.AddUint(wire.VarWorldList3DayUnknown, now)
	if returned, _ := group.Push(done); returned != nil {
		groups = append(groups, group)
		group = &wire.PacketGroup{}
		group.Push(returned)
	}

	groups = append(groups, group)
	return groups
}

func (l *WorldList) SendList(target Target) {
	for _, group := range l.MakePacketGroups() {
		target.SendGroup(group)
	}
}

// UpdatingWorldList tracks a current snapshot and the previously sent
// snapshot, so a delta can be computed on each tick.
type UpdatingWorldList struct {
	current  *WorldList
	previous *WorldList
}

func NewUpdatingWorldList() *UpdatingWorldList {
	return &UpdatingWorldList{current: NewWorldList(), previous: NewWorldList()}
}

func (u *UpdatingWorldList) Current() *WorldList { return u.current }

func (u *UpdatingWorldList) AddWorld(w WorldListEntry) { u.current.AddWorld(w) }

func (u *UpdatingWorldList) HideCurrent() {
	for name, w := range u.current.entries {
		w.Status = WorldHidden
		u.current.entries[name] = w
	}
}

func (u *UpdatingWorldList) Update() {
	u.previous = u.current.clone()
	for name, w := range u.current.entries {
		if w.Status == WorldHidden {
			delete(u.current.entries, name)
		}
	}
}

func (u *UpdatingWorldList) MakeDifferenceList() *WorldList {
	list := NewWorldList()
	for name, entry := range u.current.entries {
		if prev, ok := u.previous.getByName(name); ok {
			if prev != entry {
				list.AddWorld(entry)
			}
		} else {
			list.AddWorld(entry)
		}
	}
	return list
}
