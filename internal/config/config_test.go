package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
storage: postgres
postgres:
  url: postgres://localhost:5432/garda
templates:
  - name: single
    labels: ["Shift 1"]
  - name: day-night
    labels: ["Day", "Night"]
defaultTemplate: day-night
overrides:
  - rrule: "FREQ=WEEKLY;BYDAY=SA,SU"
    template: single
reservationPolicy: enforce
defaultMonthlyCap: 8
`

func TestLoadFromPath_Valid(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, "enforce", cfg.ReservationPolicy)
	assert.Equal(t, 8, cfg.DefaultMonthlyCap)

	labels, err := cfg.TemplateLabels(cfg.DefaultTemplate)
	require.NoError(t, err)
	assert.Equal(t, []string{"Day", "Night"}, labels)
}

func TestLoadFromPath_UnknownDefaultTemplate(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, `
storage: postgres
postgres:
  url: postgres://localhost:5432/garda
templates:
  - name: single
    labels: ["Shift 1"]
defaultTemplate: missing
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shift template")
}

func TestLoadFromPath_InvalidRRule(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, `
storage: postgres
postgres:
  url: postgres://localhost:5432/garda
templates:
  - name: single
    labels: ["Shift 1"]
defaultTemplate: single
overrides:
  - rrule: "NOT-A-RULE"
    template: single
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestLoadFromPath_MissingBackendSettings(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, `
storage: sheets
templates:
  - name: single
    labels: ["Shift 1"]
defaultTemplate: single
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheetID")
}

func TestLoadFromPath_InvalidStorage(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, `
storage: mysql
templates:
  - name: single
    labels: ["Shift 1"]
defaultTemplate: single
`))
	require.Error(t, err)
}

func TestLoadFromPath_EmptyTemplateLabels(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, `
storage: postgres
postgres:
  url: postgres://localhost:5432/garda
templates:
  - name: single
    labels: []
defaultTemplate: single
`))
	require.Error(t, err)
}
