// Package tabs implements the continuation-chunked delta lists a
// client polls to stay in sync with who else is online, what worlds
// are up, and the state of its contacts.
package tabs

// Tabs bundles the three delta-tracked lists a connected player holds.
type Tabs struct {
	PlayerList  *UpdatingPlayerList
	WorldList   *UpdatingWorldList
	ContactList *UpdatingContactList
}

func NewTabs() *Tabs {
	return &Tabs{
		PlayerList:  NewUpdatingPlayerList(),
		WorldList:   NewUpdatingWorldList(),
		ContactList: NewUpdatingContactList(),
	}
}
