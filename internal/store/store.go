// Package store defines the persistence interface the universe server
// reads and writes citizens, world licenses, contacts, telegrams,
// attributes, ejections, and avatar templates through. Two backends
// implement it: sqlitestore and mysqlstore, selected at startup by
// configuration.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookup methods when no row matches.
var ErrNotFound = errors.New("store: not found")

// Citizen mirrors one row of the citizen table: an account and its
// membership/administrative state. Timestamps are Unix seconds, zero
// meaning "unset"/"never", matching the wire protocol's own timestamp
// encoding.
type Citizen struct {
	CitizenID         uint32
	Name              string
	Password          string
	Email             string
	PrivilegePassword string
	Comment           string
	URL               string
	ImmigrationDate   int64
	ExpirationDate    int64
	LastLogin         int64
	TotalDays         uint32
	BotLimit          uint32
	Enabled           bool
	PrivacyFlags      uint32
	TrialUser         bool
	CAVEnabled        bool
	CAVTemplate       uint32
}

// WorldLicense mirrors one row of the world license table: the
// credentials and quota a world server presents when it starts a named
// world.
type WorldLicense struct {
	Name       string
	Password   string
	Expiration uint32
	Users      uint32
	WorldSize  uint32
	VOIP       uint32
	Plugins    uint32
	Comment    string
	Email      string
}

// ContactRow is one citizen's stored relationship with another citizen
// (or, when ContactID is 0, that citizen's own default privacy
// options).
type ContactRow struct {
	CitizenID uint32
	ContactID uint32
	Options   uint32
}

// TelegramRow is one stored telegram message.
type TelegramRow struct {
	ID         uint32
	RecipientID uint32
	SenderName string
	Timestamp  uint32
	Message    string
	Delivered  bool
}

// Attribute identifies a single universe-wide configuration value kept
// in the attribute table (the universe's name, its default world, the
// minimum build number, and so on).
type Attribute uint32

const (
	AttribUniverseBuild        Attribute = 1
	AttribMinimumWorld         Attribute = 2
	AttribLatestWorld          Attribute = 3
	AttribUniverseAdminMessage Attribute = 4
	AttribBetaBrowserURL       Attribute = 5
	AttribMotd                 Attribute = 6
)

// EjectionRow is one banned address or credit-card number.
type EjectionRow struct {
	ID           uint32
	CreditNumber uint32
	Address      string
	Comment      string
	Expiration   uint32
}

// Store is every persistence operation the dispatch layer needs. All
// methods take a context so a slow database doesn't block a
// connection's handler goroutine indefinitely.
type Store interface {
	CitizenByNumber(ctx context.Context, id uint32) (*Citizen, error)
	CitizenByName(ctx context.Context, name string) (*Citizen, error)
	CitizenAdd(ctx context.Context, c Citizen) error
	CitizenAddNext(ctx context.Context, c Citizen) (uint32, error)
	CitizenChange(ctx context.Context, c Citizen) error
	CitizenDelete(ctx context.Context, id uint32) error

	LicenseByName(ctx context.Context, name string) (*WorldLicense, error)
	LicenseNext(ctx context.Context, name string) (*WorldLicense, error)
	LicensePrev(ctx context.Context, name string) (*WorldLicense, error)
	LicenseAdd(ctx context.Context, l WorldLicense) error
	LicenseChange(ctx context.Context, l WorldLicense) error
	LicenseDelete(ctx context.Context, name string) error

	ContactGet(ctx context.Context, citizenID, contactID uint32) (*ContactRow, error)
	ContactGetAll(ctx context.Context, citizenID uint32) ([]ContactRow, error)
	ContactSet(ctx context.Context, citizenID, contactID uint32, options uint32) error
	ContactDelete(ctx context.Context, citizenID, contactID uint32) error

	TelegramAdd(ctx context.Context, t TelegramRow) error
	TelegramGetUndelivered(ctx context.Context, recipientID uint32) ([]TelegramRow, error)
	TelegramMarkDelivered(ctx context.Context, telegramID uint32) error

	AttribGet(ctx context.Context) (map[Attribute]string, error)
	AttribSet(ctx context.Context, a Attribute, value string) error

	EjectionLookup(ctx context.Context, address string) (*EjectionRow, error)
	EjectionNext(ctx context.Context, id uint32) (*EjectionRow, error)
	EjectionPrev(ctx context.Context, id uint32) (*EjectionRow, error)
	EjectionSet(ctx context.Context, e EjectionRow) error
	EjectionDelete(ctx context.Context, id uint32) error

	CAVGet(ctx context.Context, citizenID uint32) (uint32, error)

	Close() error
}
