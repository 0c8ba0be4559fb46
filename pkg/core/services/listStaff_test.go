package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cvoinescu/garda/pkg/db"
)

func TestListStaff_SortedByID(t *testing.T) {
	store := &mockRosterStore{staff: []db.StaffRow{
		{ID: 3, Name: "Carmen"},
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Bogdan"},
	}}

	staff, err := ListStaff(context.Background(), store, zap.NewNop(), "")
	require.NoError(t, err)

	require.Len(t, staff, 3)
	assert.Equal(t, 1, staff[0].ID)
	assert.Equal(t, 2, staff[1].ID)
	assert.Equal(t, 3, staff[2].ID)
}

func TestListStaff_SpecialtyFilter(t *testing.T) {
	store := &mockRosterStore{staff: testStaff()}

	staff, err := ListStaff(context.Background(), store, zap.NewNop(), "cardio")
	require.NoError(t, err)

	require.Len(t, staff, 2)
	for _, s := range staff {
		assert.Equal(t, "cardio", s.Specialty)
	}
}
