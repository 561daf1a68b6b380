package configs

import (
	"fmt"
	"time"
)

// Render configures HTML generation.
type Render struct {
	// Timezone is the IANA zone used for the "Generated on" byline.
	Timezone string `env:"TIMEZONE" envDefault:"UTC"`
}

// Location resolves Timezone.
func (c Render) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("render timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
