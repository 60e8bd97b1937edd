package candleline

import (
	"context"
)

// PointerMove moves the crosshair and the drawing preview
func (c *Chart) PointerMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine.PointerMove(x, y)
	if c.frame != nil {
		c.crosshair.Move(c.frame, x, y)
	}
}

// PointerLeave hides the crosshair and the drawing guides
func (c *Chart) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine.PointerLeave()
	c.crosshair.Leave()
}

// StartDrawing enters drawing mode
func (c *Chart) StartDrawing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.StartDrawing()
}

// Cancel leaves drawing mode without saving
func (c *Chart) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Cancel()
}

// Select marks a trend line as selected
func (c *Chart) Select(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncLines(ctx); err != nil {
		return err
	}
	return c.engine.Select(id)
}

// Click captures a drawing point, presses the delete button or selects a line
func (c *Chart) Click(ctx context.Context, x, y float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncLines(ctx); err != nil {
		return err
	}

	if err := c.engine.Click(ctx, x, y); err != nil {
		return err
	}
	return c.syncLines(ctx)
}

// DoubleClick commits a flat line at the pointer price while drawing
func (c *Chart) DoubleClick(ctx context.Context, x, y float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncLines(ctx); err != nil {
		return err
	}

	if err := c.engine.DoubleClick(ctx, x, y); err != nil {
		return err
	}
	return c.syncLines(ctx)
}

// ConfirmDelete deletes the selected trend line
func (c *Chart) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.engine.ConfirmDelete(ctx); err != nil {
		return err
	}
	return c.syncLines(ctx)
}
