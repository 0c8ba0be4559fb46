package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycler_RotationWraps(t *testing.T) {
	c := NewCycler([]Staff{{ID: 1}, {ID: 2}, {ID: 3}})

	assert.Equal(t, []int{1, 2, 3}, c.Rotation())
	assert.Equal(t, 1, c.Current())

	c.Advance(2)
	assert.Equal(t, []int{3, 1, 2}, c.Rotation())
	assert.Equal(t, 3, c.Current())

	c.Advance(4)
	assert.Equal(t, []int{1, 2, 3}, c.Rotation())
}

func TestCycler_NoStaffAlwaysExaminedFirst(t *testing.T) {
	c := NewCycler([]Staff{{ID: 1}, {ID: 2}, {ID: 3}})

	firsts := make(map[int]int)
	for i := 0; i < 6; i++ {
		firsts[c.Rotation()[0]]++
		c.Advance(1)
	}

	// Over two full cycles every staff member led the rotation twice.
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 2}, firsts)
}
