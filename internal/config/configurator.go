package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// runConfigurator walks an operator through every setting field by
// field, printing the current default and keeping it on a blank
// answer, mirroring configurator.rs's get_ip/get_port/get_string
// prompt loops.
func runConfigurator(in io.Reader, out io.Writer) Config {
	cfg := defaultConfig()
	r := bufio.NewReader(in)

	configureUniverse(r, out, &cfg)
	configureDatabase(r, out, &cfg)
	configureLogging(r, out, &cfg)

	return cfg
}

func configureUniverse(r *bufio.Reader, out io.Writer, cfg *Config) {
	promptIP(r, out,
		"Enter the IP address that the universe server will be bound to.",
		&cfg.Universe.BindIP)
	promptIP(r, out,
		"Enter the IP address to use for licensing. This must be the IP address that clients connect to. If it is incorrect, clients will report error 471.",
		&cfg.Universe.LicenseIP)
	promptPort(r, out,
		"Enter the port that the universe server will be bound to.",
		&cfg.Universe.Port)
}

func configureDatabase(r *bufio.Reader, out io.Writer, cfg *Config) {
	promptDatabaseType(r, out,
		`Enter "internal" or "external" database.`, &cfg.SQL.Type)

	switch cfg.SQL.Type {
	case DatabaseExternal:
		promptString(r, out, "Enter the hostname of the MySQL server.", &cfg.SQL.MySQLHostname)
		promptPort(r, out, "Enter the port of the MySQL server.", &cfg.SQL.MySQLPort)
		promptString(r, out, "Enter the username for the MySQL server.", &cfg.SQL.MySQLUsername)
		promptString(r, out, "Enter the password for the MySQL server.", &cfg.SQL.MySQLPassword)
		promptString(r, out, "Enter the database name to use on the MySQL server.", &cfg.SQL.MySQLDatabase)
	default:
		cfg.SQL.Type = DatabaseInternal
		promptString(r, out, "Enter path to the file to be created for the internal database.", &cfg.SQL.SqlitePath)
	}
}

func configureLogging(r *bufio.Reader, out io.Writer, cfg *Config) {
	promptString(r, out, `Enter the log level ("debug", "info", "warn", or "error").`, &cfg.Logging.Level)
}

func promptLine(r *bufio.Reader, out io.Writer, message, def string) string {
	fmt.Fprintf(out, "%s Default: %s\n", message, def)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptIP(r *bufio.Reader, out io.Writer, message string, field *string) {
	for {
		answer := promptLine(r, out, message, *field)
		if answer == "" {
			return
		}
		if ValidIP(answer) {
			*field = answer
			return
		}
		fmt.Fprintln(out, "Invalid IP address. Please try again.")
	}
}

func promptPort(r *bufio.Reader, out io.Writer, message string, field *uint16) {
	for {
		answer := promptLine(r, out, message, strconv.Itoa(int(*field)))
		if answer == "" {
			return
		}
		n, err := strconv.ParseUint(answer, 10, 16)
		if err != nil {
			fmt.Fprintln(out, "Invalid port number. Please try again.")
			continue
		}
		*field = uint16(n)
		return
	}
}

func promptString(r *bufio.Reader, out io.Writer, message string, field *string) {
	answer := promptLine(r, out, message, *field)
	if answer != "" {
		*field = answer
	}
}

func promptDatabaseType(r *bufio.Reader, out io.Writer, message string, field *DatabaseType) {
	for {
		answer := promptLine(r, out, message, string(*field))
		if answer == "" {
			return
		}
		switch strings.ToLower(answer) {
		case "internal":
			*field = DatabaseInternal
			return
		case "external":
			*field = DatabaseExternal
			return
		default:
			fmt.Fprintln(out, `Please enter "internal" or "external".`)
		}
	}
}
