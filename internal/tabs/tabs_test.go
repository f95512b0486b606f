package tabs

import "testing"

func TestPlayerListDifferenceTracksAddsAndChanges(t *testing.T) {
	u := NewUpdatingPlayerList()
	u.AddPlayer(PlayerListEntry{Username: "Zippy", CitizenID: 1, State: PlayerAvailable})
	u.Update()

	diff := u.MakeDifferenceList()
	if !diff.IsEmpty() {
		t.Fatalf("expected no difference immediately after Update")
	}

	u.AddPlayer(PlayerListEntry{Username: "Zippy", CitizenID: 1, State: PlayerInWorld, World: "Alphaworld"})
	diff = u.MakeDifferenceList()
	if diff.IsEmpty() {
		t.Fatalf("expected a difference once state changed")
	}
}

func TestWorldListHideAndUpdateDropsHiddenEntries(t *testing.T) {
	u := NewUpdatingWorldList()
	u.AddWorld(WorldListEntry{Name: "Alphaworld", Status: WorldPublic})
	u.Update()

	u.HideCurrent()
	u.Update()

	if !u.Current().IsEmpty() {
		t.Fatalf("expected hidden world to be dropped after Update")
	}
}

func TestContactListSentinelAlwaysIncluded(t *testing.T) {
	l := NewContactList()
	l.AddContact(ContactListEntry{CitizenID: 0, Options: ContactJoinAllowed})
	l.AddContact(ContactListEntry{CitizenID: 5, Username: "Neighbor", State: ContactOnline})

	group := l.makePacketGroup()
	if group.SerializeLen() == 0 {
		t.Fatalf("expected a non-empty group")
	}
}

func TestContactListCurrentStartingFromIncludesSentinel(t *testing.T) {
	u := NewUpdatingContactList()
	u.AddContact(ContactListEntry{CitizenID: 0})
	u.AddContact(ContactListEntry{CitizenID: 3})
	u.AddContact(ContactListEntry{CitizenID: 9})

	subset := u.CurrentStartingFrom(3)
	if _, ok := subset.GetByCitizenID(0); !ok {
		t.Fatalf("expected sentinel id 0 to always be included")
	}
	if _, ok := subset.GetByCitizenID(3); ok {
		t.Fatalf("expected id 3 itself to be excluded by a strict starting-from filter")
	}
	if _, ok := subset.GetByCitizenID(9); !ok {
		t.Fatalf("expected id 9 to be included")
	}
}
