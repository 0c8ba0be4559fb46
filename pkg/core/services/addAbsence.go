package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cvoinescu/garda/pkg/core/engine"
	"github.com/cvoinescu/garda/pkg/db"
)

// AddAbsenceStore defines the storage operations needed
type AddAbsenceStore interface {
	GetStaff(ctx context.Context) ([]db.StaffRow, error)
	InsertAbsence(ctx context.Context, row db.AbsenceRow) error
}

// AddAbsence records one unavailable date for a staff member. The date is
// validated and the staff member must exist; duplicate entries are a no-op
// in both backends.
func AddAbsence(ctx context.Context, store AddAbsenceStore, logger *zap.Logger, staffID int, date string) error {
	if _, err := time.Parse(engine.DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)
	}

	staff, err := store.GetStaff(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch staff: %w", err)
	}

	found := false
	for _, row := range staff {
		if row.ID == staffID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("staff %d not found", staffID)
	}

	logger.Debug("Recording absence", zap.Int("staff_id", staffID), zap.String("date", date))
	if err := store.InsertAbsence(ctx, db.AbsenceRow{StaffID: staffID, Date: date}); err != nil {
		return fmt.Errorf("failed to insert absence: %w", err)
	}

	logger.Info("Absence recorded", zap.Int("staff_id", staffID), zap.String("date", date))
	return nil
}
