package clips

// Cursor tracks the highlighted entry of a List.
type Cursor struct {
	list *List
	sel  Selection
}

// NewCursor returns an unset cursor over list.
func NewCursor(list *List) *Cursor {
	return &Cursor{list: list}
}

// Selection returns the current selection.
func (c *Cursor) Selection() Selection { return c.sel }

// Select highlights index i.
func (c *Cursor) Select(i int) error {
	if i < 0 || i >= c.list.Len() {
		return indexError(i, c.list.Len())
	}
	c.sel = At(i)
	return nil
}

// StepForward moves one entry down the list, stopping at the last entry.
func (c *Cursor) StepForward() {
	if i, ok := c.sel.Index(); ok && i < c.list.Len()-1 {
		c.sel = At(i + 1)
	}
}

// StepBackward moves one entry up the list. It does nothing when unset or
// already at the title.
func (c *Cursor) StepBackward() {
	if i, ok := c.sel.Index(); ok && i > 0 {
		c.sel = At(i - 1)
	}
}

// NextPair moves to the same role in the next term/definition pair.
func (c *Cursor) NextPair() {
	c.StepForward()
	c.StepForward()
}

// PrevPair moves to the same role in the previous pair.
func (c *Cursor) PrevPair() {
	c.StepBackward()
	c.StepBackward()
}

// set adopts a selection produced by a List mutation.
func (c *Cursor) set(s Selection) { c.sel = s }
