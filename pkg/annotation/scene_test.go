package annotation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
)

func TestRender_WithoutFrame(t *testing.T) {
	scene := Render(State{Mode: Drawing}, nil, []*core.TrendLine{core.NewHorizontal("A", "day", 1)})
	assert.Empty(t, scene.Lines)
	assert.Equal(t, "drawing", scene.Mode)
}

func TestRender_Idle(t *testing.T) {
	line := core.NewSegment("A", "day", 100, 10, 200, 20)
	line.ID = 4

	scene := Render(State{}, rangeFrame(t), []*core.TrendLine{line})
	assert.Equal(t, ActionDraw, scene.Action)
	assert.Nil(t, scene.DeleteButton)
	assert.Nil(t, scene.Guides)

	require.Len(t, scene.Lines, 1)
	shape := scene.Lines[0]
	assert.Equal(t, ColorLine, shape.Color)
	assert.Equal(t, 1.5, shape.Width)
	assert.False(t, shape.Selected)

	// (3,280)-(11,20) extended hits the top and bottom edges
	assert.InDelta(t, 2.3846, shape.Segment.From.X, 1e-3)
	assert.InDelta(t, 300, shape.Segment.From.Y, 1e-9)
	assert.InDelta(t, 11.6154, shape.Segment.To.X, 1e-3)
	assert.InDelta(t, 0, shape.Segment.To.Y, 1e-9)
}

func TestRender_Drawing(t *testing.T) {
	f := rangeFrame(t)
	state := State{
		Mode:    Drawing,
		Points:  []Anchor{{Time: 100, Price: 10}},
		Pointer: &chart.Point{X: 12, Y: 150},
	}

	scene := Render(state, f, nil)
	assert.Equal(t, ActionCancel, scene.Action)

	require.NotNil(t, scene.Guides)
	assert.Equal(t, chart.Segment{From: chart.Point{X: 11, Y: 0}, To: chart.Point{X: 11, Y: 300}}, scene.Guides.Vertical)
	assert.Equal(t, chart.Segment{From: chart.Point{X: 0, Y: 150}, To: chart.Point{X: 460, Y: 150}}, scene.Guides.Horizontal)
	assert.Equal(t, "15.00", scene.Guides.Price)
	assert.Equal(t, chart.Point{X: 10, Y: 145}, scene.Guides.PriceAt)

	require.NotNil(t, scene.Marker)
	assert.Equal(t, chart.Point{X: 3, Y: 280}, *scene.Marker)
	require.NotNil(t, scene.Preview)
	assert.Equal(t, chart.Segment{From: chart.Point{X: 3, Y: 280}, To: chart.Point{X: 12, Y: 150}}, *scene.Preview)

	state.Points = nil
	scene = Render(state, f, nil)
	assert.Nil(t, scene.Preview)
	assert.NotNil(t, scene.Guides)
}

func TestProject(t *testing.T) {
	f := rangeFrame(t)

	flat := core.NewSegment("A", "day", 100, 15, 100, 15)
	segment, ok := Project(f, flat)
	require.True(t, ok)
	assert.Equal(t, chart.Segment{From: chart.Point{X: 0, Y: 150}, To: chart.Point{X: 460, Y: 150}}, segment)

	_, ok = Project(f, &core.TrendLine{Kind: "ray"})
	assert.False(t, ok)

	_, ok = Project(nil, flat)
	assert.False(t, ok)

	for name, line := range map[string]*core.TrendLine{
		"segment above the range": core.NewSegment("A", "day", 100, 100, 200, 110),
		"segment below the range": core.NewSegment("A", "day", 100, 2, 200, 1),
		"horizontal above":        core.NewHorizontal("A", "day", 25),
		"horizontal below":        core.NewHorizontal("A", "day", 5),
	} {
		_, ok = Project(f, line)
		assert.False(t, ok, name)
	}
}

// Every projected line runs through the pixels of both of its anchors,
// whether or not the anchors are inside the price range
func TestProject_CollinearWithAnchors(t *testing.T) {
	f := rangeFrame(t)
	rng := rand.New(rand.NewSource(11))
	w, h := f.Viewport.Width, f.Viewport.Height

	for i := 0; i < 2000; i++ {
		line := core.NewSegment("A", "day", 100, 5+rng.Float64()*20, 200, 5+rng.Float64()*20)
		p1 := chart.Point{X: f.TimeToX(line.StartTime), Y: f.PriceToY(line.StartPrice)}
		p2 := chart.Point{X: f.TimeToX(line.EndTime), Y: f.PriceToY(line.EndPrice)}

		segment, ok := Project(f, line)
		if !ok {
			continue
		}

		for _, q := range []chart.Point{segment.From, segment.To} {
			assert.True(t, q.X >= -1e-6 && q.X <= w+1e-6 && q.Y >= -1e-6 && q.Y <= h+1e-6, "%v outside the viewport", q)

			dx, dy := p2.X-p1.X, p2.Y-p1.Y
			cross := dx*(q.Y-p1.Y) - dy*(q.X-p1.X)
			assert.Less(t, math.Abs(cross)/math.Hypot(dx, dy), 1e-6, "%v off the line %v-%v", q, p1, p2)
		}
	}
}

func TestPlaceDeleteButton(t *testing.T) {
	f := rangeFrame(t)

	corner := placeDeleteButton(f, chart.Segment{From: chart.Point{X: 0, Y: 0}, To: chart.Point{X: 0, Y: 0}})
	assert.Equal(t, 20.0, corner.X)
	assert.Equal(t, 10.0, corner.Y)

	far := placeDeleteButton(f, chart.Segment{From: chart.Point{X: 460, Y: 300}, To: chart.Point{X: 460, Y: 300}})
	assert.Equal(t, 400.0, far.X)
	assert.Equal(t, 270.0, far.Y)
	assert.True(t, far.Contains(chart.Point{X: 420, Y: 280}))
	assert.False(t, far.Contains(chart.Point{X: 399, Y: 280}))
}
