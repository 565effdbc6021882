package meditation

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openDatabaseFromEnv opens the analytics database from DATABASE_DSN /
// DATABASE_DRIVER. Returns (nil, nil) when no DSN is configured; analytics is
// optional.
func openDatabaseFromEnv() (*gorm.DB, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if dsn == "" {
		return nil, nil
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))
	if driver == "" {
		driver = inferDriverFromDSN(dsn)
	}

	return openDatabase(driver, dsn)
}

func openDatabase(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch driver {
	case "mysql":
		db, err := gorm.Open(mysql.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("meditation: open mysql: %w", err)
		}
		return db, nil
	case "postgres", "postgresql":
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("meditation: open postgres: %w", err)
		}
		return db, nil
	case "sqlite", "sqlite3":
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("meditation: open sqlite: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("meditation: unsupported database driver %q", driver)
	}
}

// inferDriverFromDSN guesses the driver from well-known DSN shapes; MySQL's
// user:pass@tcp(...)/db form, postgres URLs and key=value strings, and file
// paths for sqlite.
func inferDriverFromDSN(dsn string) string {
	lowered := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lowered, "postgres://"), strings.HasPrefix(lowered, "postgresql://"),
		strings.Contains(lowered, "host="):
		return "postgres"
	case strings.Contains(dsn, "@tcp("), strings.Contains(dsn, "@unix("):
		return "mysql"
	case strings.HasSuffix(lowered, ".db"), strings.HasSuffix(lowered, ".sqlite"),
		strings.HasPrefix(lowered, "file:"), dsn == ":memory:":
		return "sqlite"
	default:
		return "mysql"
	}
}
