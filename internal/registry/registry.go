// Package registry tracks every connection the server currently holds
// open: the map from connection id to connection state, session id
// allocation, periodic heartbeats, and tab-update fan-out.
package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"universe-server/internal/client"
	"universe-server/internal/connection"
	"universe-server/internal/rsahandshake"
	"universe-server/internal/wire"
)

// ConnID identifies one connection for as long as it is open. It is
// never reused within a server's lifetime.
type ConnID uint64

// heartbeatInterval matches the client-side timeout assumption: a
// connection that hears nothing for a few missed intervals is
// considered dead by the maintenance sweep.
const heartbeatInterval = 30 * time.Second

// Session is everything the registry tracks about one open connection.
type Session struct {
	Conn *connection.Conn
	RSA  *rsahandshake.Handshake

	// Client is nil until the connection identifies itself via Login
	// or WorldServerStart.
	Client *client.ClientInfo

	// Closed is set by the connection's own read loop the moment its
	// socket errors out, so the maintenance sweep can find it without
	// touching the socket itself.
	Closed atomic.Bool

	lastHeartbeat time.Time
}

func (s *Session) HasAdminPermissions() bool {
	if s.Client == nil {
		return false
	}
	return s.Client.HasAdminPermissions()
}

func (s *Session) SendGroup(g *wire.PacketGroup) {
	s.Conn.SendGroup(g)
}

// Touch records that a heartbeat was just received from this session,
// delaying its next maintenance-sweep heartbeat.
func (s *Session) Touch() {
	s.lastHeartbeat = time.Now()
}

// Registry is the set of all currently open connections.
type Registry struct {
	mu      sync.RWMutex
	conns   map[ConnID]*Session
	nextID  ConnID
}

func New() *Registry {
	return &Registry{conns: make(map[ConnID]*Session)}
}

// Add registers a new session and returns its connection id.
func (r *Registry) Add(s *Session) ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	s.lastHeartbeat = time.Now()
	r.conns[id] = s
	return id
}

func (r *Registry) Remove(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Registry) Get(id ConnID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.conns[id]
	return s, ok
}

// Each calls fn for every currently registered session. fn must not
// call back into Registry methods that take the write lock.
func (r *Registry) Each(fn func(ConnID, *Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, s := range r.conns {
		fn(id, s)
	}
}

// CreateSessionID finds the lowest unused session id, scanning linearly
// from 1 (0 is never valid). Panics if every id in the uint16 space is
// in use, mirroring the original's unrecoverable exhaustion behavior.
func (r *Registry) CreateSessionID() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	used := make(map[uint16]bool, len(r.conns))
	for _, s := range r.conns {
		if s.Client == nil {
			continue
		}
		if info := s.Client.PlayerInfo(); info != nil {
			used[info.SessionID] = true
		}
	}

	var id uint16
	for {
		id++
		if id == 0 {
			panic("registry: ran out of session ids")
		}
		if !used[id] {
			return id
		}
	}
}

func (r *Registry) GetBySessionID(sessionID uint16) (ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, s := range r.conns {
		if s.Client == nil {
			continue
		}
		info := s.Client.PlayerInfo()
		if info != nil && info.SessionID == sessionID {
			return id, true
		}
	}
	return 0, false
}

func (r *Registry) GetByCitizenID(citizenID uint32) (ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, s := range r.conns {
		if s.Client == nil {
			continue
		}
		if cid, ok := s.Client.CitizenID(); ok && cid == citizenID {
			return id, true
		}
	}
	return 0, false
}

// SendHeartbeats sends a Heartbeat packet to every connection that
// hasn't had one in the last heartbeatInterval.
func (r *Registry) SendHeartbeats() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range r.conns {
		if now.Sub(s.lastHeartbeat) < heartbeatInterval {
			continue
		}
		s.Conn.Send(wire.NewPacket(wire.OpHeartbeat))
		s.lastHeartbeat = now
	}
}

// DisconnectedIDs returns the ids of connections whose underlying
// socket has been observed closed.
func (r *Registry) DisconnectedIDs(isDisconnected func(*Session) bool) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []ConnID
	for id, s := range r.conns {
		if isDisconnected(s) {
			ids = append(ids, id)
		}
	}
	return ids
}

// RemoveDisconnected drops every connection isDisconnected reports as
// closed.
func (r *Registry) RemoveDisconnected(isDisconnected func(*Session) bool) {
	for _, id := range r.DisconnectedIDs(isDisconnected) {
		r.Remove(id)
	}
}

// IsClosed is the isDisconnected predicate a server's maintenance sweep
// passes to DisconnectedIDs/RemoveDisconnected in production.
func IsClosed(s *Session) bool {
	return s.Closed.Load()
}

// SendTabUpdates computes and flushes each player's pending tab deltas.
func (r *Registry) SendTabUpdates() {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.conns))
	for _, s := range r.conns {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if s.Client == nil || s.Client.Player == nil {
			continue
		}
		info := s.Client.PlayerInfo()
		if info == nil || info.Tabs == nil {
			continue
		}

		playerDiff := info.Tabs.PlayerList.MakeDifferenceList()
		contactDiff := info.Tabs.ContactList.MakeDifferenceList()
		worldDiff := info.Tabs.WorldList.MakeDifferenceList()
		info.Tabs.PlayerList.Update()
		info.Tabs.ContactList.Update()
		info.Tabs.WorldList.Update()

		if !playerDiff.IsEmpty() {
			playerDiff.SendFullList(s)
		}
		if !contactDiff.IsEmpty() {
			contactDiff.SendLimitedList(s)
		}
		if !worldDiff.IsEmpty() {
			worldDiff.SendList(s)
		}
	}
}

// GetWorldByName returns the live world with the given name (matched
// case-insensitively) and the world server hosting it, if any.
func (r *Registry) GetWorldByName(name string) (*client.World, *Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.conns {
		if s.Client == nil || s.Client.WorldServer == nil {
			continue
		}
		if w := s.Client.WorldServer.GetWorld(name); w != nil {
			return w, s, true
		}
	}
	return nil, nil, false
}

// AllWorldEntries returns a tab-list entry for every live world across
// every connected world server.
func (r *Registry) AllWorldEntries() []worldEntrySource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []worldEntrySource
	for _, s := range r.conns {
		if s.Client == nil || s.Client.WorldServer == nil {
			continue
		}
		for _, w := range s.Client.WorldServer.Worlds {
			entries = append(entries, worldEntrySource{
				World:      w,
				ServerPort: s.Client.WorldServer.ServerPort,
				IP:         s.Conn.PeerAddr().String(),
			})
		}
	}
	return entries
}

// worldEntrySource pairs a live world with the addressing info needed
// to build a WorldListEntry for it.
type worldEntrySource struct {
	World      *client.World
	ServerPort uint16
	IP         string
}
