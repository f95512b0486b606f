package tabs

import (
	"sort"

	"universe-server/internal/wire"
)

type ContactState uint8

const (
	ContactOffline ContactState = 0
	ContactOnline  ContactState = 1
	ContactHidden  ContactState = 2
	ContactAFK     ContactState = 3
	ContactUnknown ContactState = 4
	ContactRemoved ContactState = 5
	ContactDefault ContactState = 6
)

// ContactOptions are the bit flags a citizen stores per contact,
// mirroring the "Options > Settings > Privacy" checkboxes. Each
// permission has an independent Allowed/Blocked pair rather than a
// single bit, so "neither set" can mean "use the default".
type ContactOptions uint32

const (
	ContactStatusAllowed        ContactOptions = 1 << 0
	ContactStatusBlocked        ContactOptions = 1 << 1
	ContactJoinAllowed          ContactOptions = 1 << 6
	ContactJoinBlocked          ContactOptions = 1 << 7
	ContactLocationAllowed      ContactOptions = 1 << 2
	ContactLocationBlocked      ContactOptions = 1 << 3
	ContactTelegramsAllowed     ContactOptions = 1 << 4
	ContactTelegramsBlocked     ContactOptions = 1 << 5
	ContactChatAllowed          ContactOptions = 1 << 10
	ContactChatBlocked          ContactOptions = 1 << 11
	ContactFileTransferAllowed  ContactOptions = 1 << 8
	ContactFileTransferBlocked  ContactOptions = 1 << 9
	ContactFriendRequestAllowed ContactOptions = 1 << 12
	ContactFriendRequestBlocked ContactOptions = 1 << 13
	ContactAllAllowed           ContactOptions = 1 << 14
	ContactAllBlocked           ContactOptions = 1 << 15
)

// ContactListEntry is a single contact's state as seen by the owning
// citizen. Citizen id 0 is a sentinel row carrying the owner's own
// privacy settings rather than a real contact.
type ContactListEntry struct {
	Username   string
	World      string
	State      ContactState
	CitizenID  uint32
	Options    ContactOptions
}

func (e *ContactListEntry) Logoff() {
	e.State = ContactOffline
	e.World = ""
}

// ContactList is a snapshot of one citizen's contacts.
type ContactList struct {
	entries map[uint32]ContactListEntry
}

func NewContactList() *ContactList { return &ContactList{entries: make(map[uint32]ContactListEntry)} }

func (l *ContactList) clone() *ContactList {
	out := NewContactList()
	for k, v := range l.entries {
		out.entries[k] = v
	}
	return out
}

func (l *ContactList) AddContact(c ContactListEntry) { l.entries[c.CitizenID] = c }

func (l *ContactList) GetByCitizenID(id uint32) (ContactListEntry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

func (l *ContactList) IsEmpty() bool { return len(l.entries) == 0 }

// makePacketGroup builds one chunk of contact entries (ids above 0,
// ordered), stopping once buffered length exceeds chunkLimit, and
// appends the sentinel id-0 privacy row last with a More flag
// indicating whether further contacts remain.
func (l *ContactList) makePacketGroup() *wire.PacketGroup {
	var group wire.PacketGroup

	var ids []uint32
	for id := range l.entries {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	more := false
	for _, id := range ids {
		if group.SerializeLen() > chunkLimit {
			more = true
			break
		}
		entry := l.entries[id]
		p := wire.NewPacket(wire.OpContactList)
		p.AddString(wire.VarContactListName, entry.Username)
		if entry.World != "" {
			p.AddString(wire.VarContactListWorld, entry.World)
		}
		p.AddInt(wire.VarContactListStatus, int32(entry.State))
		p.AddUint(wire.VarContactListCitizenID, entry.CitizenID)
		p.AddUint(wire.VarContactListOptions, uint32(entry.Options))
		group.Push(p)
	}

	sentinel := wire.NewPacket(wire.OpContactList)
	sentinel.AddUint(wire.VarContactListCitizenID, 0)
	if more {
		sentinel.AddByte(wire.VarContactListMore, 1)
	} else {
		sentinel.AddByte(wire.VarContactListMore, 0)
	}
	options := uint32(0)
	if e, ok := l.entries[0]; ok {
		options = uint32(e.Options)
	}
	sentinel.AddUint(wire.VarContactListOptions, options)
	group.Push(sentinel)

	return &group
}

// SendLimitedList sends as much of the contact list as fits under one
// chunk; the client must request the remainder starting from a new
// citizen id if More was set.
func (l *ContactList) SendLimitedList(target Target) {
	target.SendGroup(l.makePacketGroup())
}

// UpdatingContactList tracks a current snapshot and the previously
// sent snapshot, so a delta can be computed on each tick.
type UpdatingContactList struct {
	current  *ContactList
	previous *ContactList
}

func NewUpdatingContactList() *UpdatingContactList {
	return &UpdatingContactList{current: NewContactList(), previous: NewContactList()}
}

func (u *UpdatingContactList) Current() *ContactList { return u.current }

func (u *UpdatingContactList) AddContact(c ContactListEntry) { u.current.AddContact(c) }

func (u *UpdatingContactList) HideCurrent() {
	for id, e := range u.current.entries {
		e.State = ContactHidden
		u.current.entries[id] = e
	}
}

// Update commits the current snapshot as the new baseline. Contacts
// already reported as Removed are forgotten since there is nothing
// further to tell the client about them.
func (u *UpdatingContactList) Update() {
	u.previous = u.current.clone()
	for id, e := range u.current.entries {
		if e.State == ContactRemoved {
			delete(u.current.entries, id)
		}
	}
}

func (u *UpdatingContactList) MakeDifferenceList() *ContactList {
	list := NewContactList()
	for id, entry := range u.current.entries {
		if prev, ok := u.previous.GetByCitizenID(id); ok {
			if prev != entry {
				list.AddContact(entry)
			}
		} else {
			list.AddContact(entry)
		}
	}
	return list
}

// CurrentStartingFrom returns the subset of the current list whose
// citizen id is greater than startingID, always including the id-0
// privacy sentinel.
func (u *UpdatingContactList) CurrentStartingFrom(startingID uint32) *ContactList {
	out := NewContactList()
	for id, e := range u.current.entries {
		if id > startingID || id == 0 {
			out.entries[id] = e
		}
	}
	return out
}
