package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cvoinescu/garda/pkg/db"
)

// ListStaffStore defines the storage operations needed
type ListStaffStore interface {
	GetStaff(ctx context.Context) ([]db.StaffRow, error)
}

// ListStaff returns the roster sorted by id, optionally filtered to one
// specialty tag.
func ListStaff(ctx context.Context, store ListStaffStore, logger *zap.Logger, specialty string) ([]db.StaffRow, error) {
	logger.Debug("Listing staff", zap.String("specialty", specialty))

	rows, err := store.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}

	staff := make([]db.StaffRow, 0, len(rows))
	for _, row := range rows {
		if specialty != "" && row.Specialty != specialty {
			continue
		}
		staff = append(staff, row)
	}

	sort.Slice(staff, func(i, j int) bool {
		return staff[i].ID < staff[j].ID
	})

	logger.Debug("Staff listed", zap.Int("count", len(staff)))
	return staff, nil
}
