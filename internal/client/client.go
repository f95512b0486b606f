// Package client models the game-related state attached to a
// connection once it has identified itself: a world server, a
// logged-in citizen, a tourist, or a bot.
package client

import (
	"net"

	"universe-server/internal/tabs"
)

// Kind discriminates the variants of Player.
type Kind int

const (
	KindTourist Kind = iota
	KindCitizen
	KindBot
)

// GenericPlayer holds the fields every connected player has,
// regardless of citizenship.
type GenericPlayer struct {
	Build       int32
	SessionID   uint16
	PrivilegeID uint32 // 0 means none
	Username    string
	Nonce       []byte
	World       string // empty if not in a world
	IP          net.IP
	AFK         bool

	Tabs *tabs.Tabs
}

func NewGenericPlayer(sessionID uint16, build int32, privilegeID uint32, username string, ip net.IP) *GenericPlayer {
	return &GenericPlayer{
		Build:       build,
		SessionID:   sessionID,
		PrivilegeID: privilegeID,
		Username:    username,
		IP:          ip,
		Tabs:        tabs.NewTabs(),
	}
}

// Player is a citizen, tourist, or bot connected as a game client.
type Player struct {
	Kind Kind
	Info *GenericPlayer

	// CitizenID is set only when Kind == KindCitizen.
	CitizenID uint32

	// OwnerID and Application are set only when Kind == KindBot.
	OwnerID     uint32
	Application string
}

func NewTourist(sessionID uint16, build int32, username string, ip net.IP) *Player {
	return &Player{Kind: KindTourist, Info: NewGenericPlayer(sessionID, build, 0, username, ip)}
}

func NewCitizen(citizenID uint32, privilegeID uint32, sessionID uint16, build int32, username string, ip net.IP) *Player {
	return &Player{
		Kind:      KindCitizen,
		CitizenID: citizenID,
		Info:      NewGenericPlayer(sessionID, build, privilegeID, username, ip),
	}
}

func NewBot(ownerID uint32, application string, sessionID uint16, username string, ip net.IP) *Player {
	return &Player{
		Kind:        KindBot,
		OwnerID:     ownerID,
		Application: application,
		Info:        NewGenericPlayer(sessionID, 1, 1, username, ip),
	}
}

// CitizenIDOrZero returns the player's citizen number, or 0 if they
// are not a citizen.
func (p *Player) CitizenIDOrZero() uint32 {
	if p.Kind == KindCitizen {
		return p.CitizenID
	}
	return 0
}

// WorldServer is the game-related state of a connection that has
// registered as a world server host.
type WorldServer struct {
	Build      int32
	ServerPort uint16
	Worlds     []*World
}

func (ws *WorldServer) GetWorld(name string) *World {
	for _, w := range ws.Worlds {
		if equalFoldASCII(w.Name, name) {
			return w
		}
	}
	return nil
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

type WorldRating uint8

const (
	RatingG    WorldRating = 0
	RatingPG   WorldRating = 1
	RatingPG13 WorldRating = 2
	RatingR    WorldRating = 3
	RatingX    WorldRating = 4
)

// World is one world a world server has started.
type World struct {
	Name      string
	Rating    WorldRating
	FreeEntry bool
	MaxUsers  uint32
	WorldSize uint32
	UserCount uint32
}

// ClientInfo is the game-related state attached to a connection: either
// a world server host, or a player (citizen, tourist, or bot).
type ClientInfo struct {
	WorldServer *WorldServer // nil unless this connection is a world server
	Player      *Player      // nil unless this connection is a player
}

func NewWorldServerInfo(ws *WorldServer) *ClientInfo { return &ClientInfo{WorldServer: ws} }

func NewPlayerInfo(p *Player) *ClientInfo { return &ClientInfo{Player: p} }

// adminCitizenID is the citizen number that is always treated as an
// administrator, regardless of privilege assignment.
const adminCitizenID = 1

// HasAdminPermissions reports whether this client should be treated as
// a universe administrator.
func (c *ClientInfo) HasAdminPermissions() bool {
	if c.Player != nil && c.Player.Kind == KindCitizen && c.Player.CitizenID == adminCitizenID {
		return true
	}
	if info := c.PlayerInfo(); info != nil && info.PrivilegeID == adminCitizenID {
		return true
	}
	return false
}

func (c *ClientInfo) PlayerInfo() *GenericPlayer {
	if c.Player == nil {
		return nil
	}
	return c.Player.Info
}

func (c *ClientInfo) CitizenID() (uint32, bool) {
	if c.Player != nil && c.Player.Kind == KindCitizen {
		return c.Player.CitizenID, true
	}
	return 0, false
}

// EffectivePrivilege returns the privilege id that governs this
// client's permissions: an explicitly granted non-zero privilege id,
// falling back to the player's own citizen id, or 0 if neither apply.
func (c *ClientInfo) EffectivePrivilege() uint32 {
	info := c.PlayerInfo()
	if info == nil {
		return 0
	}
	if info.PrivilegeID != 0 {
		return info.PrivilegeID
	}
	if id, ok := c.CitizenID(); ok {
		return id
	}
	return 0
}
