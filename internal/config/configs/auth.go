package configs

import "time"

// Auth holds the single set of credentials accepted by the session login
// and the lifetime of issued sessions.
type Auth struct {
	Username   string        `env:"USERNAME" envDefault:"admin"`
	Password   string        `env:"PASSWORD" envDefault:"admin123"`
	Role       string        `env:"ROLE" envDefault:"admin"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}
