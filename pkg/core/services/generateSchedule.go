package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/cvoinescu/garda/internal/config"
	"github.com/cvoinescu/garda/pkg/core/engine"
	"github.com/cvoinescu/garda/pkg/db"
)

// GenerateOptions parameterizes one schedule run.
type GenerateOptions struct {
	// Start and End bound the run, inclusive.
	Start time.Time
	End   time.Time

	// TemplateName picks a shift template; empty uses the configured default.
	TemplateName string

	// Specialty restricts the eligible pool to one specialty tag when set.
	Specialty string

	// DryRun computes the schedule without persisting anything.
	DryRun bool

	// Seed overrides the configured random seed when set.
	Seed *int64
}

// GenerateResult is what a run produced and whether it was written back.
type GenerateResult struct {
	RunID     string
	Entries   []engine.ScheduleEntry
	Warnings  []engine.Warning
	Persisted bool
}

// GenerateScheduleStore defines the storage operations needed
type GenerateScheduleStore interface {
	GetStaff(ctx context.Context) ([]db.StaffRow, error)
	GetAbsences(ctx context.Context) ([]db.AbsenceRow, error)
	GetPreferences(ctx context.Context) ([]db.PreferenceRow, error)
	GetReservations(ctx context.Context) ([]db.ReservationRow, error)
	GetPriorityLedger(ctx context.Context) ([]db.PriorityRow, error)

	ReplaceSchedule(ctx context.Context, rows []db.ScheduleRow) error
	ReplaceReservations(ctx context.Context, rows []db.ReservationRow) error
	ReplacePriorityLedger(ctx context.Context, rows []db.PriorityRow) error
}

// GenerateSchedule loads the roster tables, runs the allocation engine over
// the requested date range and writes the schedule, updated reservations and
// priority ledger back, replacing the stored tables wholesale.
func GenerateSchedule(
	ctx context.Context,
	store GenerateScheduleStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts GenerateOptions,
) (*GenerateResult, error) {
	logger.Debug("Starting schedule generation",
		zap.Time("start", opts.Start),
		zap.Time("end", opts.End),
		zap.String("template", opts.TemplateName),
		zap.String("specialty", opts.Specialty),
		zap.Bool("dry_run", opts.DryRun))

	templateName := opts.TemplateName
	if templateName == "" {
		templateName = cfg.DefaultTemplate
	}
	labels, err := cfg.TemplateLabels(templateName)
	if err != nil {
		return nil, err
	}

	start := dateOnly(opts.Start)
	end := dateOnly(opts.End)

	overrides, err := expandOverrides(cfg, start, end)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetching roster tables")
	staffRows, err := store.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	absenceRows, err := store.GetAbsences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch absences: %w", err)
	}
	preferenceRows, err := store.GetPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}
	reservationRows, err := store.GetReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	ledgerRows, err := store.GetPriorityLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch priority ledger: %w", err)
	}

	logger.Debug("Roster tables fetched",
		zap.Int("staff", len(staffRows)),
		zap.Int("absences", len(absenceRows)),
		zap.Int("preferences", len(preferenceRows)),
		zap.Int("reservations", len(reservationRows)),
		zap.Int("ledger_entries", len(ledgerRows)))

	var warnings []engine.Warning

	absences, absenceWarnings := absencesFromRows(absenceRows)
	warnings = append(warnings, absenceWarnings...)

	preferences, preferenceWarnings := preferencesFromRows(preferenceRows)
	warnings = append(warnings, preferenceWarnings...)

	reservations, passthroughRows, reservationWarnings := reservationsFromRows(reservationRows)
	warnings = append(warnings, reservationWarnings...)

	input := engine.Input{
		Staff:          staffFromRows(staffRows, cfg.DefaultMonthlyCap),
		Absences:       absences,
		Preferences:    preferences,
		Reservations:   reservations,
		Ledger:         ledgerFromRows(ledgerRows),
		Start:          start,
		End:            end,
		Labels:         labels,
		LabelOverrides: overrides,
		Specialty:      opts.Specialty,
		Policy:         engine.ReservationPolicy(cfg.ReservationPolicy),
		Rand:           randFromSeed(opts.Seed, cfg.Seed),
	}

	run, err := engine.Generate(input)
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}
	warnings = append(warnings, run.Warnings...)

	for _, w := range warnings {
		logger.Warn("Generation warning",
			zap.Time("date", w.Date),
			zap.String("shift", w.ShiftLabel),
			zap.String("reason", w.Reason),
			zap.String("detail", w.Detail))
	}

	result := &GenerateResult{
		RunID:    run.RunID,
		Entries:  run.Entries,
		Warnings: warnings,
	}

	if opts.DryRun {
		logger.Info("Dry run, skipping persistence",
			zap.String("run_id", run.RunID),
			zap.Int("entries", len(run.Entries)),
			zap.Int("warnings", len(warnings)))
		return result, nil
	}

	logger.Debug("Persisting run output", zap.String("run_id", run.RunID))
	if err := store.ReplaceSchedule(ctx, scheduleToRows(run.Entries)); err != nil {
		return nil, fmt.Errorf("failed to persist schedule: %w", err)
	}
	// Rows the engine could not adjudicate ride along so the table rewrite
	// never loses them.
	reservationOut := append(reservationsToRows(run.Reservations), passthroughRows...)
	if err := store.ReplaceReservations(ctx, reservationOut); err != nil {
		return nil, fmt.Errorf("failed to persist reservations: %w", err)
	}
	if err := store.ReplacePriorityLedger(ctx, ledgerToRows(run.Ledger)); err != nil {
		return nil, fmt.Errorf("failed to persist priority ledger: %w", err)
	}

	result.Persisted = true
	logger.Info("Schedule generated",
		zap.String("run_id", run.RunID),
		zap.Int("entries", len(run.Entries)),
		zap.Int("warnings", len(warnings)))
	return result, nil
}

// expandOverrides materializes the configured recurrence overrides into a
// per-date label map over the run window. Later overrides win on a date
// matched by more than one rule.
func expandOverrides(cfg *config.Config, start, end time.Time) (map[string][]string, error) {
	if len(cfg.Overrides) == 0 {
		return nil, nil
	}

	out := make(map[string][]string)
	for i, override := range cfg.Overrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule in overrides[%d]: %w", i, err)
		}
		rule.DTStart(start)

		labels, err := cfg.TemplateLabels(override.Template)
		if err != nil {
			return nil, fmt.Errorf("overrides[%d]: %w", i, err)
		}

		for _, date := range rule.Between(start, end, true) {
			out[date.Format(engine.DateLayout)] = labels
		}
	}
	return out, nil
}

// randFromSeed builds the run's random source: explicit seed first, then the
// configured one, otherwise nil so the engine self-seeds from the clock.
func randFromSeed(override, configured *int64) engine.Rand {
	if override != nil {
		return engine.NewRand(*override)
	}
	if configured != nil {
		return engine.NewRand(*configured)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
