package extension

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the khata extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.khata" or "khata" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DisableSweep turns off the background recurrence sweep.
	DisableSweep bool `json:"disable_sweep" mapstructure:"disable_sweep" yaml:"disable_sweep"`

	// Currency is the single currency the ledger accepts (default: "inr").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// WeekStart names the first day of the statement week (default: "sunday").
	WeekStart string `json:"week_start" mapstructure:"week_start" yaml:"week_start"`

	// SweepInterval is how often recurring templates are expanded (default: 1h).
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// MaxOccurrences caps the entries one template expansion may post
	// (default: 366). A negative value removes the cap.
	MaxOccurrences int `json:"max_occurrences" mapstructure:"max_occurrences" yaml:"max_occurrences"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Currency:       "inr",
		WeekStart:      "sunday",
		SweepInterval:  time.Hour,
		MaxOccurrences: 366,
	}
}

// OccurrenceCap returns the cap handed to the ledger, where zero means none.
func (c Config) OccurrenceCap() int {
	if c.MaxOccurrences < 0 {
		return 0
	}
	return c.MaxOccurrences
}

// Weekday parses WeekStart. An empty value is Sunday.
func (c Config) Weekday() (time.Weekday, error) {
	if c.WeekStart == "" {
		return time.Sunday, nil
	}
	name := strings.ToLower(strings.TrimSpace(c.WeekStart))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("khata: unknown week_start %q", c.WeekStart)
}
