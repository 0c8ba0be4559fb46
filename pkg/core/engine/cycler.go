package engine

// Cycler maintains the rotating pointer over the staff list. It serves two
// purposes: rotation order is the candidate enumeration order (and thus the
// tie-break among equal scores), and the staff member at the pointer is the
// forced-fallback pick when nobody is eligible for a slot.
type Cycler struct {
	ids []int
	pos int
}

// NewCycler builds a cycler over the staff ids in roster order.
func NewCycler(staff []Staff) *Cycler {
	ids := make([]int, len(staff))
	for i, s := range staff {
		ids[i] = s.ID
	}
	return &Cycler{ids: ids}
}

// Rotation returns the staff ids starting at the current pointer and
// wrapping around the full list.
func (c *Cycler) Rotation() []int {
	out := make([]int, len(c.ids))
	for i := range c.ids {
		out[i] = c.ids[(c.pos+i)%len(c.ids)]
	}
	return out
}

// Current returns the staff id at the pointer, the forced-fallback pick.
func (c *Cycler) Current() int {
	return c.ids[c.pos]
}

// Advance moves the pointer forward n positions. After a normal assignment
// the builder advances one past the winner's rotation offset, so no staff
// member is always examined first; a forced pick advances by one.
func (c *Cycler) Advance(n int) {
	c.pos = (c.pos + n) % len(c.ids)
}
