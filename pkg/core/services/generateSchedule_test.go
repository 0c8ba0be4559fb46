package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cvoinescu/garda/internal/config"
	"github.com/cvoinescu/garda/pkg/core/engine"
	"github.com/cvoinescu/garda/pkg/db"
)

// mockRosterStore implements the service store interfaces for testing
type mockRosterStore struct {
	staff        []db.StaffRow
	absences     []db.AbsenceRow
	preferences  []db.PreferenceRow
	reservations []db.ReservationRow
	ledger       []db.PriorityRow

	replacedSchedule     []db.ScheduleRow
	replacedReservations []db.ReservationRow
	replacedLedger       []db.PriorityRow
	insertedAbsences     []db.AbsenceRow

	scheduleReplaced     bool
	reservationsReplaced bool
	ledgerReplaced       bool

	getStaffErr error
	replaceErr  error
}

func (m *mockRosterStore) GetStaff(ctx context.Context) ([]db.StaffRow, error) {
	if m.getStaffErr != nil {
		return nil, m.getStaffErr
	}
	return m.staff, nil
}

func (m *mockRosterStore) GetAbsences(ctx context.Context) ([]db.AbsenceRow, error) {
	return m.absences, nil
}

func (m *mockRosterStore) GetPreferences(ctx context.Context) ([]db.PreferenceRow, error) {
	return m.preferences, nil
}

func (m *mockRosterStore) GetReservations(ctx context.Context) ([]db.ReservationRow, error) {
	return m.reservations, nil
}

func (m *mockRosterStore) GetPriorityLedger(ctx context.Context) ([]db.PriorityRow, error) {
	return m.ledger, nil
}

func (m *mockRosterStore) ReplaceSchedule(ctx context.Context, rows []db.ScheduleRow) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.scheduleReplaced = true
	m.replacedSchedule = rows
	return nil
}

func (m *mockRosterStore) ReplaceReservations(ctx context.Context, rows []db.ReservationRow) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.reservationsReplaced = true
	m.replacedReservations = rows
	return nil
}

func (m *mockRosterStore) ReplacePriorityLedger(ctx context.Context, rows []db.PriorityRow) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.ledgerReplaced = true
	m.replacedLedger = rows
	return nil
}

func (m *mockRosterStore) InsertAbsence(ctx context.Context, row db.AbsenceRow) error {
	m.insertedAbsences = append(m.insertedAbsences, row)
	return nil
}

func testConfig() *config.Config {
	seed := int64(42)
	return &config.Config{
		Storage: "postgres",
		Templates: []config.ShiftTemplate{
			{Name: "single", Labels: []string{"Shift 1"}},
			{Name: "day-night", Labels: []string{"Day", "Night"}},
		},
		DefaultTemplate: "day-night",
		Seed:            &seed,
	}
}

func testStaff() []db.StaffRow {
	return []db.StaffRow{
		{ID: 1, Name: "Ana", Specialty: "cardio"},
		{ID: 2, Name: "Bogdan", Specialty: "cardio"},
		{ID: 3, Name: "Carmen", Specialty: "chirurgie"},
	}
}

func TestGenerateSchedule_PersistsAllTables(t *testing.T) {
	store := &mockRosterStore{staff: testStaff()}
	cfg := testConfig()

	result, err := GenerateSchedule(context.Background(), store, cfg, zap.NewNop(), GenerateOptions{
		Start: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, result.Persisted)
	assert.NotEmpty(t, result.RunID)

	// 5 days, two shifts each
	require.Len(t, result.Entries, 10)
	require.Len(t, store.replacedSchedule, 10)
	assert.Equal(t, "2025-06-02", store.replacedSchedule[0].Date)
	assert.Equal(t, "Day", store.replacedSchedule[0].ShiftLabel)

	assert.True(t, store.reservationsReplaced)
	assert.True(t, store.ledgerReplaced)
}

func TestGenerateSchedule_DryRun(t *testing.T) {
	store := &mockRosterStore{staff: testStaff()}

	result, err := GenerateSchedule(context.Background(), store, testConfig(), zap.NewNop(), GenerateOptions{
		Start:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		DryRun: true,
	})
	require.NoError(t, err)

	assert.False(t, result.Persisted)
	assert.Len(t, result.Entries, 10)
	assert.False(t, store.scheduleReplaced)
	assert.False(t, store.reservationsReplaced)
	assert.False(t, store.ledgerReplaced)
}

func TestGenerateSchedule_UnknownTemplate(t *testing.T) {
	store := &mockRosterStore{staff: testStaff()}

	_, err := GenerateSchedule(context.Background(), store, testConfig(), zap.NewNop(), GenerateOptions{
		Start:        time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		TemplateName: "missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shift template")
}

func TestGenerateSchedule_MalformedRowsBecomeWarnings(t *testing.T) {
	store := &mockRosterStore{
		staff: testStaff(),
		absences: []db.AbsenceRow{
			{StaffID: 1, Date: "2025-06-03"},
			{StaffID: 2, Date: "not-a-date"},
		},
		reservations: []db.ReservationRow{
			{ID: "r-bad", StaffID: 1, Date: "03/06/2025", ShiftLabel: "Day", Status: "pending"},
		},
	}

	result, err := GenerateSchedule(context.Background(), store, testConfig(), zap.NewNop(), GenerateOptions{
		Start: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	malformed := 0
	for _, w := range result.Warnings {
		if w.Reason == engine.ReasonMalformedRecord {
			malformed++
		}
	}
	assert.Equal(t, 2, malformed)

	// The unparseable reservation row survives the table rewrite untouched.
	require.Len(t, store.replacedReservations, 1)
	assert.Equal(t, "r-bad", store.replacedReservations[0].ID)
	assert.Equal(t, "03/06/2025", store.replacedReservations[0].Date)
	assert.Equal(t, "pending", store.replacedReservations[0].Status)
}

func TestGenerateSchedule_WeekendOverrideTemplate(t *testing.T) {
	cfg := testConfig()
	cfg.Overrides = []config.TemplateOverride{
		{RRule: "FREQ=WEEKLY;BYDAY=SA,SU", Template: "single"},
	}
	store := &mockRosterStore{staff: testStaff()}

	// Mon Jun 2 through Sun Jun 8: five weekdays with two shifts, two
	// weekend days reduced to one.
	result, err := GenerateSchedule(context.Background(), store, cfg, zap.NewNop(), GenerateOptions{
		Start: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 12)

	labelsByDate := make(map[string][]string)
	for _, entry := range result.Entries {
		key := entry.Date.Format("2006-01-02")
		labelsByDate[key] = append(labelsByDate[key], entry.ShiftLabel)
	}
	assert.Equal(t, []string{"Day", "Night"}, labelsByDate["2025-06-02"])
	assert.Equal(t, []string{"Shift 1"}, labelsByDate["2025-06-07"])
	assert.Equal(t, []string{"Shift 1"}, labelsByDate["2025-06-08"])
}

func TestGenerateSchedule_DefaultCapApplied(t *testing.T) {
	cfg := testConfig()
	cfg.Templates = []config.ShiftTemplate{{Name: "single", Labels: []string{"Shift 1"}}}
	cfg.DefaultTemplate = "single"
	cfg.DefaultMonthlyCap = 1

	store := &mockRosterStore{staff: []db.StaffRow{
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Bogdan"},
	}}

	// Three slots, two staff, one shift each: the third day has nobody
	// under the cap and gets a forced assignment.
	result, err := GenerateSchedule(context.Background(), store, cfg, zap.NewNop(), GenerateOptions{
		Start: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)

	exhausted := 0
	for _, w := range result.Warnings {
		if w.Reason == engine.ReasonConstraintExhausted {
			exhausted++
		}
	}
	assert.Equal(t, 1, exhausted)
}

func TestGenerateSchedule_FixedSeedIsDeterministic(t *testing.T) {
	seed := int64(7)
	opts := GenerateOptions{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Seed:  &seed,
	}

	first, err := GenerateSchedule(context.Background(), &mockRosterStore{staff: testStaff()}, testConfig(), zap.NewNop(), opts)
	require.NoError(t, err)
	second, err := GenerateSchedule(context.Background(), &mockRosterStore{staff: testStaff()}, testConfig(), zap.NewNop(), opts)
	require.NoError(t, err)

	assert.Equal(t, first.Entries, second.Entries)
}
