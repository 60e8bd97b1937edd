package annotation

import (
	"math"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
)

const (
	ColorLine      = "#9c27b0"
	ColorSelected  = "#ff9800"
	ColorPreview   = "#2196F3"
	ColorGuide     = "gray"
	ColorPriceText = "#EA6A2C"

	ActionDraw   = "画趋势线"
	ActionCancel = "取消"
	ActionDelete = "删除"

	deleteButtonWidth  = 40
	deleteButtonHeight = 20
)

// LineShape is an existing trend line extended across the viewport
type LineShape struct {
	ID       int64         `json:"id"`
	Segment  chart.Segment `json:"segment"`
	Color    string        `json:"color"`
	Width    float64       `json:"width"`
	Opacity  float64       `json:"opacity"`
	Selected bool          `json:"selected"`
}

// Button is a clickable rectangle
type Button struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
}

// Contains reports whether p is inside the button
func (b Button) Contains(p chart.Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Guides is the dashed drawing crosshair and the price under the pointer
type Guides struct {
	Vertical   chart.Segment `json:"vertical"`
	Horizontal chart.Segment `json:"horizontal"`
	Price      string        `json:"price"`
	PriceAt    chart.Point   `json:"priceAt"`
}

// Scene is everything the annotation layer draws for one state
type Scene struct {
	Lines        []LineShape    `json:"lines"`
	DeleteButton *Button        `json:"deleteButton,omitempty"`
	Guides       *Guides        `json:"guides,omitempty"`
	Preview      *chart.Segment `json:"preview,omitempty"`
	Marker       *chart.Point   `json:"marker,omitempty"`
	Notice       string         `json:"notice,omitempty"`
	Action       string         `json:"action,omitempty"`
	Mode         string         `json:"mode"`
}

// Render derives the annotation geometry of state over frame. It is pure and
// recomputed on every pass since its output depends on the viewport.
func Render(state State, f *chart.Frame, lines []*core.TrendLine) Scene {
	scene := Scene{Lines: []LineShape{}, Mode: state.Mode.String(), Notice: state.Notice}
	if f == nil {
		return scene
	}

	for _, line := range lines {
		segment, ok := Project(f, line)
		if !ok {
			continue
		}

		selected := state.Mode == Selected && state.Selected == line.ID
		shape := LineShape{ID: line.ID, Segment: segment, Color: ColorLine, Width: 1.5, Opacity: 0.85}
		if selected {
			shape.Color, shape.Width, shape.Opacity, shape.Selected = ColorSelected, 2.5, 1, true
			button := placeDeleteButton(f, segment)
			scene.DeleteButton = &button
		}
		scene.Lines = append(scene.Lines, shape)
	}

	if f.Degenerate() {
		scene.Notice = NoticeDegenerate
		return scene
	}

	if state.Mode != Drawing {
		scene.Action = ActionDraw
		return scene
	}
	scene.Action = ActionCancel

	if state.Pointer == nil {
		return scene
	}
	pointer := *state.Pointer

	if index := f.NearestIndex(pointer.X); index >= 0 {
		x := f.CoordinateX[index]
		scene.Guides = &Guides{
			Vertical:   chart.Segment{From: chart.Point{X: x, Y: 0}, To: chart.Point{X: x, Y: f.Viewport.Height}},
			Horizontal: chart.Segment{From: chart.Point{X: 0, Y: pointer.Y}, To: chart.Point{X: f.Viewport.Width, Y: pointer.Y}},
			Price:      chart.FormatPrice(f.YToPrice(pointer.Y)),
			PriceAt:    chart.Point{X: 10, Y: pointer.Y - 5},
		}
	}

	if len(state.Points) == 1 {
		start := AnchorPixel(f, state.Points[0])
		scene.Marker = &start
		scene.Preview = &chart.Segment{From: start, To: pointer}
	}

	return scene
}

// AnchorPixel maps a captured anchor back onto the frame
func AnchorPixel(f *chart.Frame, a Anchor) chart.Point {
	return chart.Point{X: f.TimeToX(a.Time), Y: f.PriceToY(a.Price)}
}

// Project returns the line extended edge to edge across the viewport of f.
// Horizontal lines and segments with equal prices span the full width. Lines
// that do not cross the viewport are not projected, so they are neither drawn
// nor hit.
func Project(f *chart.Frame, line *core.TrendLine) (chart.Segment, bool) {
	if f == nil || line == nil {
		return chart.Segment{}, false
	}

	width, height := f.Viewport.Width, f.Viewport.Height

	var p1, p2 chart.Point
	switch line.Kind {
	case core.LineHorizontal:
		y := f.PriceToY(line.Price)
		p1, p2 = chart.Point{X: 0, Y: y}, chart.Point{X: width, Y: y}
	case core.LineSegment:
		p1 = chart.Point{X: f.TimeToX(line.StartTime), Y: f.PriceToY(line.StartPrice)}
		p2 = chart.Point{X: f.TimeToX(line.EndTime), Y: f.PriceToY(line.EndPrice)}
	default:
		return chart.Segment{}, false
	}

	for _, v := range []float64{p1.X, p1.Y, p2.X, p2.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return chart.Segment{}, false
		}
	}

	return chart.ExtendToViewport(p1, p2, width, height)
}

// placeDeleteButton centres the button on the segment midpoint, kept inside the viewport
func placeDeleteButton(f *chart.Frame, segment chart.Segment) Button {
	mid := segment.Midpoint()
	width, height := f.Viewport.Width, f.Viewport.Height

	return Button{
		X:      math.Max(20, math.Min(mid.X-deleteButtonWidth/2, width-60)),
		Y:      math.Max(10, math.Min(mid.Y-deleteButtonHeight/2, height-30)),
		Width:  deleteButtonWidth,
		Height: deleteButtonHeight,
		Label:  ActionDelete,
	}
}

func deleteButton(f *chart.Frame, line *core.TrendLine) (Button, bool) {
	segment, ok := Project(f, line)
	if !ok {
		return Button{}, false
	}
	return placeDeleteButton(f, segment), true
}
