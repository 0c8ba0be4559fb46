package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ShiftTemplate names an ordered list of shift labels generated for each
// date, e.g. one 24-hour shift or a day/night pair.
type ShiftTemplate struct {
	Name   string   `yaml:"name" validate:"required"`
	Labels []string `yaml:"labels" validate:"required,min=1,dive,required"`
}

// TemplateOverride swaps the template on dates matching a recurrence rule,
// e.g. a reduced label set at weekends.
type TemplateOverride struct {
	RRule    string `yaml:"rrule" validate:"required"`
	Template string `yaml:"template" validate:"required"`
}

// PostgresConfig holds settings for the Postgres roster store.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// SheetsConfig holds settings for the Google Sheets roster store.
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID"`
}

// Config is the application configuration.
type Config struct {
	Storage  string         `yaml:"storage" validate:"required,oneof=postgres sheets"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
	Sheets   SheetsConfig   `yaml:"sheets,omitempty"`

	Templates       []ShiftTemplate    `yaml:"templates" validate:"required,min=1,dive"`
	DefaultTemplate string             `yaml:"defaultTemplate" validate:"required"`
	Overrides       []TemplateOverride `yaml:"overrides,omitempty" validate:"dive"`

	// ReservationPolicy: "override" honors claims past absence/cap,
	// "enforce" rejects blocked claims before conflict resolution.
	ReservationPolicy string `yaml:"reservationPolicy,omitempty" validate:"omitempty,oneof=override enforce"`

	// DefaultMonthlyCap replaces a missing or non-positive per-staff cap.
	DefaultMonthlyCap int `yaml:"defaultMonthlyCap,omitempty" validate:"omitempty,min=1"`

	// Seed fixes the random source for reproducible runs when set.
	Seed *int64 `yaml:"seed,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

const configFileName = "garda.yaml"

// LoadWithEnv loads garda.<env>.yaml, searching the current directory and
// then the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	name := configFileName
	if env != "" {
		name = fmt.Sprintf("garda.%s.yaml", env)
	}

	path, err := findConfigFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints, backend settings, rrule syntax and
// template references.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch cfg.Storage {
	case "postgres":
		if cfg.Postgres.URL == "" {
			return fmt.Errorf("storage is postgres but postgres.url is empty")
		}
	case "sheets":
		if cfg.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("storage is sheets but sheets.spreadsheetID is empty")
		}
	}

	if _, err := cfg.TemplateLabels(cfg.DefaultTemplate); err != nil {
		return fmt.Errorf("defaultTemplate: %w", err)
	}

	for i, override := range cfg.Overrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in overrides[%d]: %w", i, err)
		}
		if _, err := cfg.TemplateLabels(override.Template); err != nil {
			return fmt.Errorf("overrides[%d]: %w", i, err)
		}
	}

	return nil
}

// TemplateLabels returns the label list for a named template.
func (c *Config) TemplateLabels(name string) ([]string, error) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t.Labels, nil
		}
	}
	return nil, fmt.Errorf("unknown shift template %q", name)
}

// findConfigFile searches for the named file in the current directory and
// then in the home directory.
func findConfigFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current or home directory", name)
}
