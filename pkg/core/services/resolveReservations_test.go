package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cvoinescu/garda/pkg/db"
)

func reservationStatuses(rows []db.ReservationRow) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Status
	}
	return out
}

func TestResolveReservations_SingleClaimApproved(t *testing.T) {
	store := &mockRosterStore{
		staff: testStaff(),
		reservations: []db.ReservationRow{
			{ID: "r1", StaffID: 1, Date: "2025-06-10", ShiftLabel: "Day", Status: "pending", SubmittedAt: "2025-05-01T10:00:00Z"},
		},
	}

	result, err := ResolveReservations(context.Background(), store, testConfig(), zap.NewNop(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Approved)
	assert.Equal(t, 0, result.Rejected)
	assert.True(t, result.Persisted)

	statuses := reservationStatuses(store.replacedReservations)
	assert.Equal(t, "approved", statuses["r1"])
}

func TestResolveReservations_ContestedSlotEscalatesLoser(t *testing.T) {
	store := &mockRosterStore{
		staff: testStaff(),
		reservations: []db.ReservationRow{
			{ID: "r1", StaffID: 1, Date: "2025-06-10", ShiftLabel: "Day", Status: "pending", SubmittedAt: "2025-05-01T10:00:00Z"},
			{ID: "r2", StaffID: 2, Date: "2025-06-10", ShiftLabel: "Day", Status: "pending", SubmittedAt: "2025-05-02T10:00:00Z"},
		},
		ledger: []db.PriorityRow{
			{StaffID: 2, Month: "2025-06", Score: 3},
		},
	}

	result, err := ResolveReservations(context.Background(), store, testConfig(), zap.NewNop(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Approved)
	assert.Equal(t, 1, result.Rejected)

	statuses := reservationStatuses(store.replacedReservations)
	assert.Equal(t, "rejected", statuses["r1"])
	assert.Equal(t, "approved", statuses["r2"])

	// The loser's priority escalates into the following month; the winner's
	// standing score is untouched.
	assert.Contains(t, store.replacedLedger, db.PriorityRow{StaffID: 1, Month: "2025-07", Score: 1})
	assert.Contains(t, store.replacedLedger, db.PriorityRow{StaffID: 2, Month: "2025-06", Score: 3})
}

func TestResolveReservations_UnknownStaffStaysPending(t *testing.T) {
	store := &mockRosterStore{
		staff: testStaff(),
		reservations: []db.ReservationRow{
			{ID: "r1", StaffID: 99, Date: "2025-06-10", ShiftLabel: "Day", Status: "pending", SubmittedAt: "2025-05-01T10:00:00Z"},
		},
	}

	result, err := ResolveReservations(context.Background(), store, testConfig(), zap.NewNop(), false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Approved)
	require.Len(t, result.Warnings, 1)

	statuses := reservationStatuses(store.replacedReservations)
	assert.Equal(t, "pending", statuses["r1"])
}

func TestResolveReservations_DryRun(t *testing.T) {
	store := &mockRosterStore{
		staff: testStaff(),
		reservations: []db.ReservationRow{
			{ID: "r1", StaffID: 1, Date: "2025-06-10", ShiftLabel: "Day", Status: "pending", SubmittedAt: "2025-05-01T10:00:00Z"},
		},
	}

	result, err := ResolveReservations(context.Background(), store, testConfig(), zap.NewNop(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Approved)
	assert.False(t, result.Persisted)
	assert.False(t, store.reservationsReplaced)
	assert.False(t, store.ledgerReplaced)
}

func TestResolveReservations_SettledClaimsUntouched(t *testing.T) {
	store := &mockRosterStore{
		staff: testStaff(),
		reservations: []db.ReservationRow{
			{ID: "r1", StaffID: 1, Date: "2025-06-10", ShiftLabel: "Day", Status: "approved", SubmittedAt: "2025-05-01T10:00:00Z"},
			{ID: "r2", StaffID: 2, Date: "2025-06-11", ShiftLabel: "Day", Status: "rejected", SubmittedAt: "2025-05-01T10:00:00Z"},
		},
	}

	result, err := ResolveReservations(context.Background(), store, testConfig(), zap.NewNop(), false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Approved)
	assert.Equal(t, 0, result.Rejected)

	statuses := reservationStatuses(store.replacedReservations)
	assert.Equal(t, "approved", statuses["r1"])
	assert.Equal(t, "rejected", statuses["r2"])
}
