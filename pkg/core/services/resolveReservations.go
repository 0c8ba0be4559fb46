package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cvoinescu/garda/internal/config"
	"github.com/cvoinescu/garda/pkg/core/engine"
	"github.com/cvoinescu/garda/pkg/db"
)

// ResolveResult summarizes a standalone reservation resolution pass.
type ResolveResult struct {
	Approved  int
	Rejected  int
	Warnings  []engine.Warning
	Persisted bool
}

// ResolveReservationsStore defines the storage operations needed
type ResolveReservationsStore interface {
	GetStaff(ctx context.Context) ([]db.StaffRow, error)
	GetReservations(ctx context.Context) ([]db.ReservationRow, error)
	GetPriorityLedger(ctx context.Context) ([]db.PriorityRow, error)

	ReplaceReservations(ctx context.Context, rows []db.ReservationRow) error
	ReplacePriorityLedger(ctx context.Context, rows []db.PriorityRow) error
}

// ResolveReservations adjudicates every pending claim outside a generation
// run, so conflicts are settled before the roster is drawn up. There is no
// run window here, so no availability check applies; claims stand or fall on
// priority alone.
func ResolveReservations(
	ctx context.Context,
	store ResolveReservationsStore,
	cfg *config.Config,
	logger *zap.Logger,
	dryRun bool,
) (*ResolveResult, error) {
	logger.Debug("Starting reservation resolution", zap.Bool("dry_run", dryRun))

	staffRows, err := store.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	reservationRows, err := store.GetReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	ledgerRows, err := store.GetPriorityLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch priority ledger: %w", err)
	}

	reservations, passthroughRows, warnings := reservationsFromRows(reservationRows)

	// Claims by staff outside the roster cannot be adjudicated. They stay
	// pending and ride through the table rewrite untouched.
	known := make(map[int]struct{}, len(staffRows))
	for _, row := range staffRows {
		known[row.ID] = struct{}{}
	}
	claims := reservations[:0:0]
	for _, r := range reservations {
		if _, ok := known[r.StaffID]; !ok {
			warnings = append(warnings, engine.Warning{
				Date:       r.Date,
				ShiftLabel: r.ShiftLabel,
				Reason:     engine.ReasonUnknownStaff,
				Detail:     fmt.Sprintf("reservation %s for unknown staff %d left pending", r.ID, r.StaffID),
			})
			passthroughRows = append(passthroughRows, reservationsToRows([]engine.Reservation{r})...)
			continue
		}
		claims = append(claims, r)
	}

	pendingBefore := countPending(claims)
	outcome := engine.ResolveReservations(claims, ledgerFromRows(ledgerRows), nil, nil, resolveRand(cfg))
	warnings = append(warnings, outcome.Warnings...)

	result := &ResolveResult{
		Approved: len(outcome.Approved),
		Rejected: pendingBefore - len(outcome.Approved),
		Warnings: warnings,
	}

	for _, w := range warnings {
		logger.Warn("Resolution warning",
			zap.Time("date", w.Date),
			zap.String("shift", w.ShiftLabel),
			zap.String("reason", w.Reason),
			zap.String("detail", w.Detail))
	}

	if dryRun {
		logger.Info("Dry run, skipping persistence",
			zap.Int("approved", result.Approved),
			zap.Int("rejected", result.Rejected))
		return result, nil
	}

	reservationOut := append(reservationsToRows(outcome.Reservations), passthroughRows...)
	if err := store.ReplaceReservations(ctx, reservationOut); err != nil {
		return nil, fmt.Errorf("failed to persist reservations: %w", err)
	}
	if err := store.ReplacePriorityLedger(ctx, ledgerToRows(outcome.Ledger)); err != nil {
		return nil, fmt.Errorf("failed to persist priority ledger: %w", err)
	}

	result.Persisted = true
	logger.Info("Reservations resolved",
		zap.Int("approved", result.Approved),
		zap.Int("rejected", result.Rejected))
	return result, nil
}

func countPending(reservations []engine.Reservation) int {
	count := 0
	for _, r := range reservations {
		if r.Status == engine.ReservationPending {
			count++
		}
	}
	return count
}

func resolveRand(cfg *config.Config) engine.Rand {
	if cfg.Seed != nil {
		return engine.NewRand(*cfg.Seed)
	}
	return engine.NewRand(time.Now().UnixNano())
}
