// Package sqlstore holds the SQL shared between the sqlite and mysql
// backends: schema DDL and query text that differs only by a handful
// of dialect-specific fragments, plus the generic database/sql-backed
// implementation of store.Store that both backends wrap.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"universe-server/internal/store"
)

// Dialect supplies the handful of fragments that differ between the
// sqlite and mysql schemas, mirroring the original's
// Database::auto_increment_not_null/unsigned_str split.
type Dialect struct {
	// AutoIncrement is appended to an INTEGER PRIMARY KEY column.
	AutoIncrement string
	// Unsigned is appended to INTEGER columns that should reject
	// negative values on backends that support it.
	Unsigned string
}

// SQLite is the dialect used when opening an internal database.
var SQLite = Dialect{AutoIncrement: "AUTOINCREMENT", Unsigned: ""}

// MySQL is the dialect used when opening an external database.
var MySQL = Dialect{AutoIncrement: "AUTO_INCREMENT", Unsigned: "UNSIGNED"}

// Conn is the subset of *sql.DB this package calls through. mysqlstore
// wraps a *sql.DB in a retrying decorator that re-issues a query after
// a transient connection failure, mirroring the original's
// mysql_get_conn/mysql_exec retry loop; sqlitestore passes a *sql.DB
// straight through since a local file has no such transient failures.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// Store is the shared implementation of store.Store. Both backends
// construct one of these around their own Conn and Dialect; the SQL
// text is close enough between sqlite and MySQL that only the schema
// and a handful of column type fragments need to vary.
type Store struct {
	DB      Conn
	Dialect Dialect
}

func New(db Conn, d Dialect) *Store {
	return &Store{DB: db, Dialect: d}
}

func (s *Store) Close() error { return s.DB.Close() }

// InitSchema creates every table this package uses if it does not
// already exist, mirroring Database::init_tables.
func (s *Store) InitSchema(ctx context.Context) error {
	d := s.Dialect
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS awu_citizen (
			ID INTEGER PRIMARY KEY %s,
			Name VARCHAR(255) NOT NULL DEFAULT '',
			Password VARCHAR(255) NOT NULL DEFAULT '',
			Email VARCHAR(255) NOT NULL DEFAULT '',
			PrivPass VARCHAR(255) NOT NULL DEFAULT '',
			Comment VARCHAR(255) NOT NULL DEFAULT '',
			URL VARCHAR(255) NOT NULL DEFAULT '',
			Immigration INTEGER NOT NULL DEFAULT 0,
			Expiration INTEGER NOT NULL DEFAULT 0,
			LastLogin INTEGER NOT NULL DEFAULT 0,
			TotalTime INTEGER NOT NULL DEFAULT 0,
			BotLimit INTEGER NOT NULL DEFAULT 0,
			Enabled INTEGER NOT NULL DEFAULT 1,
			Privacy INTEGER NOT NULL DEFAULT 0,
			Trial INTEGER NOT NULL DEFAULT 0,
			CAVEnabled INTEGER NOT NULL DEFAULT 0,
			CAVTemplate INTEGER NOT NULL DEFAULT 0
		);`, d.AutoIncrement),
		`CREATE UNIQUE INDEX IF NOT EXISTS awu_citizen_name ON awu_citizen (Name);`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS awu_license (
			ID INTEGER PRIMARY KEY %s,
			Name VARCHAR(50) NOT NULL DEFAULT '',
			Password VARCHAR(255) NOT NULL DEFAULT '',
			Expiration INTEGER NOT NULL DEFAULT 0,
			Users INTEGER NOT NULL DEFAULT 0,
			WorldSize INTEGER NOT NULL DEFAULT 0,
			Voip INTEGER NOT NULL DEFAULT 0,
			Plugins INTEGER NOT NULL DEFAULT 0,
			Comment VARCHAR(255) NOT NULL DEFAULT '',
			Email VARCHAR(255) NOT NULL DEFAULT ''
		);`, d.AutoIncrement),
		`CREATE UNIQUE INDEX IF NOT EXISTS awu_license_name ON awu_license (Name);`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS awu_contact (
			Citizen INTEGER %[1]s NOT NULL DEFAULT 0,
			Contact INTEGER %[1]s NOT NULL DEFAULT 0,
			Options INTEGER %[1]s NOT NULL DEFAULT 0,
			PRIMARY KEY (Citizen, Contact)
		);`, d.Unsigned),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS awu_telegram (
			ID INTEGER PRIMARY KEY %s,
			Citizen INTEGER %s NOT NULL DEFAULT 0,
			SenderName VARCHAR(255) NOT NULL DEFAULT '',
			Timestamp INTEGER %s NOT NULL DEFAULT 0,
			Message TEXT NOT NULL,
			Delivered INTEGER NOT NULL DEFAULT 0
		);`, d.AutoIncrement, d.Unsigned, d.Unsigned),

		`CREATE TABLE IF NOT EXISTS awu_attrib (
			ID INTEGER PRIMARY KEY,
			Value VARCHAR(255) NOT NULL DEFAULT ''
		);`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS awu_eject (
			ID INTEGER PRIMARY KEY %s,
			CreditNumber INTEGER %s NOT NULL DEFAULT 0,
			Address VARCHAR(64) NOT NULL DEFAULT '',
			Comment VARCHAR(255) NOT NULL DEFAULT '',
			Expiration INTEGER NOT NULL DEFAULT 0
		);`, d.AutoIncrement, d.Unsigned),
		`CREATE UNIQUE INDEX IF NOT EXISTS awu_eject_address ON awu_eject (Address);`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS awu_cav (
			Citizen INTEGER %s NOT NULL DEFAULT 0,
			Template INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (Citizen, Template)
		);`, d.Unsigned),
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: init schema: %w", err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ---- citizen ----

const citizenColumns = `ID,Name,Password,Email,PrivPass,Comment,URL,Immigration,Expiration,
	LastLogin,TotalTime,BotLimit,Enabled,Privacy,Trial,CAVEnabled,CAVTemplate`

func scanCitizen(row *sql.Row) (*store.Citizen, error) {
	var c store.Citizen
	var enabled, trial, cavEnabled int
	err := row.Scan(&c.CitizenID, &c.Name, &c.Password, &c.Email, &c.PrivilegePassword,
		&c.Comment, &c.URL, &c.ImmigrationDate, &c.ExpirationDate, &c.LastLogin, &c.TotalDays,
		&c.BotLimit, &enabled, &c.PrivacyFlags, &trial, &cavEnabled, &c.CAVTemplate)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scan citizen: %w", err)
	}
	c.Enabled = enabled != 0
	c.TrialUser = trial != 0
	c.CAVEnabled = cavEnabled != 0
	return &c, nil
}

func (s *Store) CitizenByNumber(ctx context.Context, id uint32) (*store.Citizen, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+citizenColumns+` FROM awu_citizen WHERE ID=?`, id)
	return scanCitizen(row)
}

func (s *Store) CitizenByName(ctx context.Context, name string) (*store.Citizen, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+citizenColumns+` FROM awu_citizen WHERE Name=?`, name)
	return scanCitizen(row)
}

func (s *Store) CitizenAdd(ctx context.Context, c store.Citizen) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO awu_citizen
		(ID,Name,Password,Email,PrivPass,Comment,URL,Immigration,Expiration,LastLogin,
		 TotalTime,BotLimit,Enabled,Privacy,Trial,CAVEnabled,CAVTemplate)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.CitizenID, c.Name, c.Password, c.Email, c.PrivilegePassword, c.Comment, c.URL,
		c.ImmigrationDate, c.ExpirationDate, c.LastLogin, c.TotalDays, c.BotLimit,
		boolInt(c.Enabled), c.PrivacyFlags, boolInt(c.TrialUser), boolInt(c.CAVEnabled), c.CAVTemplate)
	if err != nil {
		return fmt.Errorf("sqlstore: add citizen: %w", err)
	}
	return nil
}

func (s *Store) CitizenAddNext(ctx context.Context, c store.Citizen) (uint32, error) {
	res, err := s.DB.ExecContext(ctx, `INSERT INTO awu_citizen
		(Name,Password,Email,PrivPass,Comment,URL,Immigration,Expiration,LastLogin,
		 TotalTime,BotLimit,Enabled,Privacy,Trial,CAVEnabled,CAVTemplate)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.Name, c.Password, c.Email, c.PrivilegePassword, c.Comment, c.URL,
		c.ImmigrationDate, c.ExpirationDate, c.LastLogin, c.TotalDays, c.BotLimit,
		boolInt(c.Enabled), c.PrivacyFlags, boolInt(c.TrialUser), boolInt(c.CAVEnabled), c.CAVTemplate)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: add citizen: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: add citizen: %w", err)
	}
	return uint32(id), nil
}

func (s *Store) CitizenChange(ctx context.Context, c store.Citizen) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE awu_citizen SET Name=?,Password=?,Email=?,
		PrivPass=?,Comment=?,URL=?,Immigration=?,Expiration=?,LastLogin=?,TotalTime=?,
		BotLimit=?,Enabled=?,Privacy=?,Trial=?,CAVEnabled=?,CAVTemplate=? WHERE ID=?`,
		c.Name, c.Password, c.Email, c.PrivilegePassword, c.Comment, c.URL,
		c.ImmigrationDate, c.ExpirationDate, c.LastLogin, c.TotalDays, c.BotLimit,
		boolInt(c.Enabled), c.PrivacyFlags, boolInt(c.TrialUser), boolInt(c.CAVEnabled),
		c.CAVTemplate, c.CitizenID)
	if err != nil {
		return fmt.Errorf("sqlstore: change citizen: %w", err)
	}
	return nil
}

func (s *Store) CitizenDelete(ctx context.Context, id uint32) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM awu_citizen WHERE ID=?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: delete citizen: %w", err)
	}
	return nil
}

// ---- world license ----

const licenseColumns = `Name,Password,Expiration,Users,WorldSize,Voip,Plugins,Comment,Email`

func scanLicense(row *sql.Row) (*store.WorldLicense, error) {
	var l store.WorldLicense
	err := row.Scan(&l.Name, &l.Password, &l.Expiration, &l.Users, &l.WorldSize, &l.VOIP,
		&l.Plugins, &l.Comment, &l.Email)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scan license: %w", err)
	}
	return &l, nil
}

func (s *Store) LicenseByName(ctx context.Context, name string) (*store.WorldLicense, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM awu_license WHERE Name=?`, name)
	return scanLicense(row)
}

func (s *Store) LicenseNext(ctx context.Context, name string) (*store.WorldLicense, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM awu_license
		WHERE Name > ? ORDER BY Name ASC LIMIT 1`, name)
	return scanLicense(row)
}

func (s *Store) LicensePrev(ctx context.Context, name string) (*store.WorldLicense, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM awu_license
		WHERE Name < ? ORDER BY Name DESC LIMIT 1`, name)
	return scanLicense(row)
}

func (s *Store) LicenseAdd(ctx context.Context, l store.WorldLicense) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO awu_license (`+licenseColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		l.Name, l.Password, l.Expiration, l.Users, l.WorldSize, l.VOIP, l.Plugins, l.Comment, l.Email)
	if err != nil {
		return fmt.Errorf("sqlstore: add license: %w", err)
	}
	return nil
}

func (s *Store) LicenseChange(ctx context.Context, l store.WorldLicense) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE awu_license SET Password=?,Expiration=?,Users=?,
		WorldSize=?,Voip=?,Plugins=?,Comment=?,Email=? WHERE Name=?`,
		l.Password, l.Expiration, l.Users, l.WorldSize, l.VOIP, l.Plugins, l.Comment, l.Email, l.Name)
	if err != nil {
		return fmt.Errorf("sqlstore: change license: %w", err)
	}
	return nil
}

func (s *Store) LicenseDelete(ctx context.Context, name string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM awu_license WHERE Name=?`, name)
	if err != nil {
		return fmt.Errorf("sqlstore: delete license: %w", err)
	}
	return nil
}

// ---- contact ----

func (s *Store) ContactGet(ctx context.Context, citizenID, contactID uint32) (*store.ContactRow, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT Citizen,Contact,Options FROM awu_contact
		WHERE Citizen=? AND Contact=?`, citizenID, contactID)
	var c store.ContactRow
	if err := row.Scan(&c.CitizenID, &c.ContactID, &c.Options); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("sqlstore: get contact: %w", err)
	}
	return &c, nil
}

func (s *Store) ContactGetAll(ctx context.Context, citizenID uint32) ([]store.ContactRow, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT Citizen,Contact,Options FROM awu_contact WHERE Citizen=?`, citizenID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get all contacts: %w", err)
	}
	defer rows.Close()

	var out []store.ContactRow
	for rows.Next() {
		var c store.ContactRow
		if err := rows.Scan(&c.CitizenID, &c.ContactID, &c.Options); err != nil {
			return nil, fmt.Errorf("sqlstore: scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ContactSet inserts the contact pair if absent, otherwise updates its
// options, mirroring the original's check-then-insert-or-update shape.
func (s *Store) ContactSet(ctx context.Context, citizenID, contactID uint32, options uint32) error {
	_, err := s.ContactGet(ctx, citizenID, contactID)
	if err == store.ErrNotFound {
		_, err = s.DB.ExecContext(ctx, `INSERT INTO awu_contact (Citizen,Contact,Options) VALUES (?,?,?)`,
			citizenID, contactID, options)
		if err != nil {
			return fmt.Errorf("sqlstore: insert contact: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `UPDATE awu_contact SET Options=? WHERE Citizen=? AND Contact=?`,
		options, citizenID, contactID)
	if err != nil {
		return fmt.Errorf("sqlstore: update contact: %w", err)
	}
	return nil
}

func (s *Store) ContactDelete(ctx context.Context, citizenID, contactID uint32) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM awu_contact WHERE Citizen=? AND Contact=?`, citizenID, contactID)
	if err != nil {
		return fmt.Errorf("sqlstore: delete contact: %w", err)
	}
	return nil
}

// ---- telegram ----

func (s *Store) TelegramAdd(ctx context.Context, t store.TelegramRow) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO awu_telegram (Citizen,SenderName,Timestamp,Message,Delivered)
		VALUES (?,?,?,?,0)`, t.RecipientID, t.SenderName, t.Timestamp, t.Message)
	if err != nil {
		return fmt.Errorf("sqlstore: add telegram: %w", err)
	}
	return nil
}

func (s *Store) TelegramGetUndelivered(ctx context.Context, recipientID uint32) ([]store.TelegramRow, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT ID,Citizen,SenderName,Timestamp,Message,Delivered
		FROM awu_telegram WHERE Citizen=? AND Delivered=0 ORDER BY Timestamp`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get undelivered telegrams: %w", err)
	}
	defer rows.Close()

	var out []store.TelegramRow
	for rows.Next() {
		var t store.TelegramRow
		var delivered int
		if err := rows.Scan(&t.ID, &t.RecipientID, &t.SenderName, &t.Timestamp, &t.Message, &delivered); err != nil {
			return nil, fmt.Errorf("sqlstore: scan telegram: %w", err)
		}
		t.Delivered = delivered != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) TelegramMarkDelivered(ctx context.Context, telegramID uint32) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE awu_telegram SET Delivered=1 WHERE ID=?`, telegramID)
	if err != nil {
		return fmt.Errorf("sqlstore: mark telegram delivered: %w", err)
	}
	return nil
}

// ---- attribute ----

func (s *Store) AttribGet(ctx context.Context) (map[store.Attribute]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT ID,Value FROM awu_attrib`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get attributes: %w", err)
	}
	defer rows.Close()

	out := make(map[store.Attribute]string)
	for rows.Next() {
		var id uint32
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("sqlstore: scan attribute: %w", err)
		}
		out[store.Attribute(id)] = value
	}
	return out, rows.Err()
}

func (s *Store) AttribSet(ctx context.Context, a store.Attribute, value string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE awu_attrib SET Value=? WHERE ID=?`, value, uint32(a))
	if err != nil {
		return fmt.Errorf("sqlstore: set attribute: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	if _, err := s.DB.ExecContext(ctx, `INSERT INTO awu_attrib (ID,Value) VALUES (?,?)`, uint32(a), value); err != nil {
		return fmt.Errorf("sqlstore: set attribute: %w", err)
	}
	return nil
}

// ---- ejection ----

const ejectionColumns = `ID,CreditNumber,Address,Comment,Expiration`

func scanEjection(row *sql.Row) (*store.EjectionRow, error) {
	var e store.EjectionRow
	err := row.Scan(&e.ID, &e.CreditNumber, &e.Address, &e.Comment, &e.Expiration)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scan ejection: %w", err)
	}
	return &e, nil
}

func (s *Store) EjectionLookup(ctx context.Context, address string) (*store.EjectionRow, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+ejectionColumns+` FROM awu_eject WHERE Address=?`, address)
	return scanEjection(row)
}

func (s *Store) EjectionNext(ctx context.Context, id uint32) (*store.EjectionRow, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+ejectionColumns+` FROM awu_eject
		WHERE ID > ? ORDER BY ID ASC LIMIT 1`, id)
	return scanEjection(row)
}

func (s *Store) EjectionPrev(ctx context.Context, id uint32) (*store.EjectionRow, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+ejectionColumns+` FROM awu_eject
		WHERE ID < ? ORDER BY ID DESC LIMIT 1`, id)
	return scanEjection(row)
}

func (s *Store) EjectionSet(ctx context.Context, e store.EjectionRow) error {
	if e.ID == 0 {
		_, err := s.DB.ExecContext(ctx, `INSERT INTO awu_eject (CreditNumber,Address,Comment,Expiration)
			VALUES (?,?,?,?)`, e.CreditNumber, e.Address, e.Comment, e.Expiration)
		if err != nil {
			return fmt.Errorf("sqlstore: add ejection: %w", err)
		}
		return nil
	}
	_, err := s.DB.ExecContext(ctx, `UPDATE awu_eject SET CreditNumber=?,Address=?,Comment=?,Expiration=? WHERE ID=?`,
		e.CreditNumber, e.Address, e.Comment, e.Expiration, e.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: change ejection: %w", err)
	}
	return nil
}

func (s *Store) EjectionDelete(ctx context.Context, id uint32) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM awu_eject WHERE ID=?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: delete ejection: %w", err)
	}
	return nil
}

// ---- avatar customization ----

func (s *Store) CAVGet(ctx context.Context, citizenID uint32) (uint32, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT Template FROM awu_cav WHERE Citizen=? ORDER BY Template LIMIT 1`, citizenID)
	var template uint32
	if err := row.Scan(&template); err != nil {
		if err == sql.ErrNoRows {
			return 0, store.ErrNotFound
		}
		return 0, fmt.Errorf("sqlstore: get cav: %w", err)
	}
	return template, nil
}
