package extension

import (
	"testing"
	"time"
)

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{Currency: "usd"})

	if cfg.Currency != "usd" {
		t.Errorf("Currency = %q, want usd", cfg.Currency)
	}
	if cfg.WeekStart != "sunday" {
		t.Errorf("WeekStart = %q, want sunday", cfg.WeekStart)
	}
	if cfg.SweepInterval != time.Hour {
		t.Errorf("SweepInterval = %v, want 1h", cfg.SweepInterval)
	}
	if cfg.MaxOccurrences != 366 {
		t.Errorf("MaxOccurrences = %d, want 366", cfg.MaxOccurrences)
	}
}

func TestOccurrenceCap(t *testing.T) {
	tests := []struct {
		name string
		file Config
		want int
	}{
		{"default", Config{}, 366},
		{"explicit", Config{MaxOccurrences: 40}, 40},
		{"uncapped", Config{MaxOccurrences: -1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mergeConfigurations(tt.file, Config{})
			if got := cfg.OccurrenceCap(); got != tt.want {
				t.Errorf("OccurrenceCap = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMergeConfigurations(t *testing.T) {
	file := Config{Currency: "inr", SweepInterval: 10 * time.Minute}
	programmatic := Config{
		Currency:       "usd",
		WeekStart:      "monday",
		MaxOccurrences: 31,
		DisableSweep:   true,
	}

	cfg := mergeConfigurations(file, programmatic)

	if cfg.Currency != "inr" {
		t.Errorf("file currency should win, got %q", cfg.Currency)
	}
	if cfg.WeekStart != "monday" {
		t.Errorf("programmatic week start should fill the gap, got %q", cfg.WeekStart)
	}
	if cfg.SweepInterval != 10*time.Minute {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval)
	}
	if cfg.MaxOccurrences != 31 {
		t.Errorf("MaxOccurrences = %d", cfg.MaxOccurrences)
	}
	if !cfg.DisableSweep {
		t.Error("programmatic DisableSweep should carry over")
	}
}

func TestConfigWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{"", time.Sunday, false},
		{"sunday", time.Sunday, false},
		{"Monday", time.Monday, false},
		{" saturday ", time.Saturday, false},
		{"funday", time.Sunday, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Config{WeekStart: tt.in}.Weekday()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionsSetConfig(t *testing.T) {
	e := New(
		WithCurrency("eur"),
		WithWeekStart(time.Monday),
		WithSweepInterval(time.Minute),
		WithMaxOccurrences(12),
		WithDisableMigrate(),
	)

	cfg := e.Config()
	if cfg.Currency != "eur" || cfg.WeekStart != "Monday" || cfg.SweepInterval != time.Minute {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.MaxOccurrences != 12 || !cfg.DisableMigrate {
		t.Errorf("unexpected config %+v", cfg)
	}
	if day, err := cfg.Weekday(); err != nil || day != time.Monday {
		t.Errorf("Weekday() = %v, %v", day, err)
	}
}
