package config

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Duration is a time.Duration written as a string such as "800ms" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", text)
	}

	d.Duration = duration
	return nil
}
