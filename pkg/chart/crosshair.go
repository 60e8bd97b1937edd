package chart

import (
	"math"
)

// HoverFunc is told the hovered bar index and whether the pointer is over the chart
type HoverFunc func(index int, visible bool)

// Crosshair tracks the pointer over the price pane and snaps it to the nearest bar
type Crosshair struct {
	index   int
	y       float64
	visible bool
	onHover HoverFunc
}

// CrosshairView is the geometry of the crosshair for one frame
type CrosshairView struct {
	Index      int     `json:"index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	LineEndX   float64 `json:"lineEndX"`
	Height     float64 `json:"height"`
	Price      string  `json:"price"`
	PriceX     float64 `json:"priceX"`
	Time       string  `json:"time"`
	MarkerSize float64 `json:"markerSize"`
}

// NewCrosshair returns a hidden crosshair. onHover may be nil.
func NewCrosshair(onHover HoverFunc) *Crosshair {
	return &Crosshair{index: -1, onHover: onHover}
}

// Index is the hovered bar, the last bar of f while nothing was hovered yet
func (c *Crosshair) Index(f *Frame) int {
	n := len(f.Bars)
	if n == 0 {
		return -1
	}
	if c.index < 0 || c.index >= n {
		return n - 1
	}
	return c.index
}

func (c *Crosshair) Visible() bool {
	return c.visible
}

// Move snaps the pointer to the nearest bar of f and reports index changes
func (c *Crosshair) Move(f *Frame, x, y float64) {
	c.y = y
	c.visible = true

	index := f.NearestIndex(x)
	if index != c.index {
		c.index = index
		c.hover(index, true)
	}
}

// Leave hides the crosshair and keeps the last hovered index
func (c *Crosshair) Leave() {
	c.visible = false
	c.hover(c.index, false)
}

// Reset forgets the hovered bar, used when the bar window is replaced
func (c *Crosshair) Reset() {
	c.index = -1
}

func (c *Crosshair) hover(index int, visible bool) {
	if c.onHover != nil {
		c.onHover(index, visible)
	}
}

// View returns the crosshair guides for f, false while hidden. The horizontal
// guide is clamped to the pixel band of the visible price range.
func (c *Crosshair) View(f *Frame) (CrosshairView, bool) {
	index := c.Index(f)
	if !c.visible || index < 0 {
		return CrosshairView{}, false
	}

	top, bottom := f.PriceToY(f.Range.Max), f.PriceToY(f.Range.Min)
	y := math.Max(top, math.Min(c.y, bottom))

	return CrosshairView{
		Index:      index,
		X:          f.CoordinateX[index],
		Y:          y,
		LineEndX:   f.Viewport.PlotWidth(),
		Height:     f.Viewport.Height,
		Price:      FormatPrice(f.YToPrice(c.y)),
		PriceX:     f.Viewport.PlotWidth(),
		Time:       FormatBarTime(f.Bars[index].Time),
		MarkerSize: 4,
	}, true
}
