// Package config loads the universe server's TOML configuration file,
// running an interactive first-run configurator when none exists yet.
package config

import (
	"fmt"
	"net"
	"os"

	"github.com/BurntSushi/toml"
)

// DatabaseType selects which store backend a config points at.
type DatabaseType string

const (
	DatabaseInternal DatabaseType = "internal"
	DatabaseExternal DatabaseType = "external"
)

// UniverseConfig is the [universe] section: network binding and the
// universe-wide feature toggles spec.md's handlers gate on.
type UniverseConfig struct {
	BindIP              string `toml:"bind_ip"`
	LicenseIP           string `toml:"license_ip"`
	Port                uint16 `toml:"port"`
	MaxConnections      int    `toml:"max_connections"`
	UserListVisible     bool   `toml:"user_list_visible"`
	AllowCitizenChanges bool   `toml:"allow_citizen_changes"`
	AllowImmigration    bool   `toml:"allow_immigration"`
}

// SQLConfig is the [sql] section: which store backend to use and the
// connection details for each.
type SQLConfig struct {
	Type          DatabaseType `toml:"type"`
	SqlitePath    string       `toml:"sqlite_path"`
	MySQLHostname string       `toml:"mysql_hostname"`
	MySQLPort     uint16       `toml:"mysql_port"`
	MySQLUsername string       `toml:"mysql_username"`
	MySQLPassword string       `toml:"mysql_password"`
	MySQLDatabase string       `toml:"mysql_database"`
}

// LoggingConfig is the [logging] section: zap logger level/encoding.
type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Config is the full contents of the TOML configuration file.
type Config struct {
	Universe UniverseConfig `toml:"universe"`
	SQL      SQLConfig      `toml:"sql"`
	Logging  LoggingConfig  `toml:"logging"`
}

func defaultConfig() Config {
	return Config{
		Universe: UniverseConfig{
			BindIP:              "0.0.0.0",
			LicenseIP:           "127.0.0.1",
			Port:                6670,
			MaxConnections:      2000,
			UserListVisible:     true,
			AllowCitizenChanges: true,
			AllowImmigration:    true,
		},
		SQL: SQLConfig{
			Type:          DatabaseInternal,
			SqlitePath:    "universe.db",
			MySQLHostname: "127.0.0.1",
			MySQLPort:     3306,
			MySQLUsername: "root",
			MySQLDatabase: "aworld_universe",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Load reads the config file at path, creating it via the interactive
// configurator if it doesn't exist yet, and always rewrites it
// afterward so a config written by an older version picks up any new
// fields' defaults.
func Load(path string) (Config, error) {
	cfg, err := readOrConfigure(path)
	if err != nil {
		return Config{}, err
	}
	if err := save(cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readOrConfigure(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Printf("No config file was found at %s. Running configurator.\n", path)
		return runConfigurator(os.Stdin, os.Stdout), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaultConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func save(cfg Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// ValidIP reports whether s parses as an IPv4 address, the same check
// the interactive configurator applies before accepting an IP prompt.
func ValidIP(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}
