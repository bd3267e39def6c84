package life

// Cell holds the state of one grid position for the current generation and
// the transition it is scheduled to make at the next commit.
type Cell struct {
	alive        bool
	pendingDeath bool
	pendingBirth bool
}

// NewCell returns a cell with the given state and no pending transition.
func NewCell(alive bool) Cell {
	return Cell{alive: alive}
}

func (c *Cell) Alive() bool        { return c.alive }
func (c *Cell) PendingDeath() bool { return c.pendingDeath }
func (c *Cell) PendingBirth() bool { return c.pendingBirth }

// Toggle flips the cell for a manual edit and drops any pending transition.
func (c *Cell) Toggle() {
	c.alive = !c.alive
	c.pendingDeath = false
	c.pendingBirth = false
}

// MarkForDeath schedules the cell to be dead after the next commit.
func (c *Cell) MarkForDeath() { c.pendingDeath = true }

// MarkForBirth schedules the cell to be alive after the next commit.
func (c *Cell) MarkForBirth() { c.pendingBirth = true }

func (c *Cell) clearPending() {
	c.pendingDeath = false
	c.pendingBirth = false
}

// Commit applies the pending transition. Birth is applied first and death
// overrides it.
func (c *Cell) Commit() {
	c.alive = c.alive || c.pendingBirth
	if c.pendingDeath {
		c.alive = false
	}
	c.clearPending()
}

// Reset kills the cell unconditionally. Used for a hard clear, not for
// rule-based death.
func (c *Cell) Reset() {
	c.clearPending()
	c.alive = false
}
