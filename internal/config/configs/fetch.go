package configs

import "time"

// Fetch configures retrieval of creative payloads during packaging.
type Fetch struct {
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}
