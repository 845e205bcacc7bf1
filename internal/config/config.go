// Package config resolves the run settings of seekdemo from flags, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/microsoft/go-mssqldb/msdsn"
	"github.com/spf13/pflag"

	"github.com/roach88/seekdemo/internal/store"
)

// EnvConnection is the variable holding the connection string when no flag
// is given. It may also be set in the .env file.
const EnvConnection = "SEEKDEMO_CONNECTION"

// DefaultEnvFile is read when the connection string is in neither the flags
// nor the environment.
const DefaultEnvFile = ".env"

// ErrNoConnection is returned when no source provides a connection string.
var ErrNoConnection = errors.New("no connection string: set --connection or " + EnvConnection)

// Config holds the settings of one run.
type Config struct {
	ConnectionString string
	Driver           string // empty means infer from ConnectionString
	MappingsPath     string // empty means the built-in mappings
	EnvFile          string
	LogSQL           bool
	Metrics          bool

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// New returns a Config with defaults applied.
func New() *Config {
	return &Config{
		EnvFile:   DefaultEnvFile,
		LogSQL:    true,
		LookupEnv: os.LookupEnv,
	}
}

// RegisterFlags binds the run flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.ConnectionString, "connection", "c", c.ConnectionString,
		"connection string (default $"+EnvConnection+")")
	flags.StringVar(&c.Driver, "driver", c.Driver, "database driver (sqlserver|sqlite3); inferred when empty")
	flags.StringVarP(&c.MappingsPath, "mappings", "m", c.MappingsPath, "mapping file (.cue|.yaml); built-in mappings when empty")
	flags.StringVar(&c.EnvFile, "env-file", c.EnvFile, "dotenv file consulted for "+EnvConnection)
	flags.BoolVar(&c.LogSQL, "log-sql", c.LogSQL, "log each executed statement at info level")
	flags.BoolVar(&c.Metrics, "metrics", c.Metrics, "print query metrics after the run")
}

// Resolve fills ConnectionString and Driver. The flag value wins, then the
// environment, then the env file. A missing env file is not an error.
func (c *Config) Resolve() error {
	if c.ConnectionString == "" {
		conn, err := c.lookupConnection()
		if err != nil {
			return err
		}
		c.ConnectionString = conn
	}
	if c.ConnectionString == "" {
		return ErrNoConnection
	}

	if c.Driver == "" {
		c.Driver = InferDriver(c.ConnectionString)
	}
	if c.Driver != store.DriverSQLServer && c.Driver != store.DriverSQLite {
		return fmt.Errorf("unsupported driver %q (want %s or %s)", c.Driver, store.DriverSQLServer, store.DriverSQLite)
	}
	return nil
}

func (c *Config) lookupConnection() (string, error) {
	lookup := c.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvConnection); ok && v != "" {
		return v, nil
	}

	if c.EnvFile == "" {
		return "", nil
	}
	env, err := godotenv.Read(c.EnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", c.EnvFile, err)
	}
	return env[EnvConnection], nil
}

// InferDriver picks the driver for a connection string. Strings that
// go-mssqldb parses (URL, ADO or odbc: form) and that name a server select
// SQL Server; anything else is treated as a SQLite path or URI.
func InferDriver(conn string) string {
	if _, ok := parseSQLServer(conn); ok {
		return store.DriverSQLServer
	}
	return store.DriverSQLite
}

func parseSQLServer(conn string) (msdsn.Config, bool) {
	cfg, err := msdsn.Parse(strings.TrimSpace(conn))
	if err != nil {
		return msdsn.Config{}, false
	}
	if _, ok := cfg.Parameters[msdsn.Server]; !ok {
		return msdsn.Config{}, false
	}
	return cfg, true
}

// Redact renders a connection string for display without its secrets.
// SQL Server strings are rebuilt from the parsed settings, which never
// include the password. SQLite URIs lose their _auth_pass parameter.
func Redact(conn string) string {
	if cfg, ok := parseSQLServer(conn); ok {
		u := url.URL{Scheme: "sqlserver", Host: cfg.Host}
		if cfg.Port != 0 {
			u.Host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, "***")
		}
		if cfg.Instance != "" {
			u.Path = "/" + cfg.Instance
		}
		if cfg.Database != "" {
			u.RawQuery = url.Values{"database": {cfg.Database}}.Encode()
		}
		return u.String()
	}

	path, rawQuery, ok := strings.Cut(conn, "?")
	if !ok {
		return conn
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return path + "?***"
	}
	if _, ok := q["_auth_pass"]; !ok {
		return conn
	}
	q.Set("_auth_pass", "***")
	return path + "?" + q.Encode()
}
