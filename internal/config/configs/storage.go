package configs

import "fmt"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Storage selects the key-value backend holding saved tests. Key is the
// single key under which the whole collection is persisted.
type Storage struct {
	Driver     string `env:"DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./adtest.db"`
	Key        string `env:"KEY" envDefault:"display_tests"`
}

// Validate rejects unknown drivers and an empty key.
func (c Storage) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.Key == "" {
		return fmt.Errorf("storage key must not be empty")
	}
	return nil
}
