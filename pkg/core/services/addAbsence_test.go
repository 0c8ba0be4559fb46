package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cvoinescu/garda/pkg/db"
)

func TestAddAbsence_Success(t *testing.T) {
	store := &mockRosterStore{staff: testStaff()}

	err := AddAbsence(context.Background(), store, zap.NewNop(), 1, "2025-06-10")
	require.NoError(t, err)

	require.Len(t, store.insertedAbsences, 1)
	assert.Equal(t, db.AbsenceRow{StaffID: 1, Date: "2025-06-10"}, store.insertedAbsences[0])
}

func TestAddAbsence_InvalidDate(t *testing.T) {
	store := &mockRosterStore{staff: testStaff()}

	err := AddAbsence(context.Background(), store, zap.NewNop(), 1, "10/06/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
	assert.Empty(t, store.insertedAbsences)
}

func TestAddAbsence_UnknownStaff(t *testing.T) {
	store := &mockRosterStore{staff: testStaff()}

	err := AddAbsence(context.Background(), store, zap.NewNop(), 99, "2025-06-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Empty(t, store.insertedAbsences)
}
