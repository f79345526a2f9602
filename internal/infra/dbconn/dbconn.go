// Package dbconn provides the target-database connection factory for sqlpilot.
// The dialect decides which registered driver handles the DSN:
//   - "mysql"    — github.com/go-sql-driver/mysql
//   - "postgres" — github.com/lib/pq
//   - "sqlite"   — modernc.org/sqlite (pure Go, used for local and test databases)
package dbconn

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"

	// Register the postgres and sqlite drivers.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Config identifies a database endpoint. All fields come from configuration,
// never from literals in the calling code.
type Config struct {
	Dialect  string
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Path is the database file for the sqlite dialect (":memory:" allowed).
	Path string
}

// supportedDialects maps a dialect name to the registered driver name.
var supportedDialects = map[string]string{
	"mysql":    "mysql",
	"postgres": "postgres",
	"sqlite":   "sqlite",
}

// SupportedDialects returns the dialect names accepted by Open, sorted.
func SupportedDialects() []string {
	out := make([]string, 0, len(supportedDialects))
	for name := range supportedDialects {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open opens a *sql.DB for the configured endpoint, configures the pool, and
// verifies the connection with a ping. The caller owns the returned handle
// and must Close it.
func Open(cfg Config) (*sql.DB, error) {
	driver, ok := supportedDialects[cfg.Dialect]
	if !ok {
		return nil, fmt.Errorf("dbconn.Open: unsupported dialect %q (supported: %v)", cfg.Dialect, SupportedDialects())
	}

	dsn, err := cfg.dsn()
	if err != nil {
		return nil, fmt.Errorf("dbconn.Open: %w", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("dbconn.Open: open %s: %w", cfg.Redacted(), err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbconn.Open: ping %s: %w", cfg.Redacted(), err)
	}

	return db, nil
}

// dsn builds the driver-specific connection string.
func (c Config) dsn() (string, error) {
	switch c.Dialect {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
		mc.DBName = c.Database
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Database), nil
	case "sqlite":
		if c.Path == "" {
			return "", fmt.Errorf("sqlite dialect requires Path")
		}
		return c.Path, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
}

// Redacted returns a loggable endpoint description with the password masked.
func (c Config) Redacted() string {
	if c.Dialect == "sqlite" {
		return fmt.Sprintf("sqlite://%s", c.Path)
	}
	return fmt.Sprintf("%s://%s:****@%s:%d/%s", c.Dialect, c.User, c.Host, c.Port, c.Database)
}
