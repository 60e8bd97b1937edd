package chart

import (
	"math"
	"sort"
)

const (
	parallelEpsilon = 1e-5
	boundsEpsilon   = 1e-9
)

// Point is a pixel position
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a pixel line segment
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Midpoint returns the centre of the segment
func (s Segment) Midpoint() Point {
	return Point{X: (s.From.X + s.To.X) / 2, Y: (s.From.Y + s.To.Y) / 2}
}

// ExtendToViewport returns where the infinite line through p1 and p2 crosses
// the border of the [0,width]x[0,height] box, ordered by x. Coincident points
// are drawn as a horizontal line through them.
//
// ok is false when the line misses the box or only touches a corner. The
// segment is then the box diagonal and must not be drawn.
func ExtendToViewport(p1, p2 Point, width, height float64) (segment Segment, ok bool) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	diagonal := Segment{From: Point{X: 0, Y: 0}, To: Point{X: width, Y: height}}

	if math.Abs(dy) < parallelEpsilon {
		if !inRange(p1.Y, height) {
			return diagonal, false
		}
		return Segment{From: Point{X: 0, Y: p1.Y}, To: Point{X: width, Y: p1.Y}}, true
	}

	if math.Abs(dx) < parallelEpsilon {
		if !inRange(p1.X, width) {
			return diagonal, false
		}
		return Segment{From: Point{X: p1.X, Y: 0}, To: Point{X: p1.X, Y: height}}, true
	}

	m := dy / dx
	b := p1.Y - m*p1.X

	yLeft, yRight := b, m*width+b
	if inRange(yLeft, height) && inRange(yRight, height) {
		return Segment{From: Point{X: 0, Y: yLeft}, To: Point{X: width, Y: yRight}}, true
	}

	candidates := []Point{
		{X: 0, Y: yLeft},
		{X: width, Y: yRight},
		{X: -b / m, Y: 0},
		{X: (height - b) / m, Y: height},
	}

	hits := make([]Point, 0, len(candidates))
	for _, c := range candidates {
		if !inRange(c.X, width) || !inRange(c.Y, height) {
			continue
		}
		if containsPoint(hits, c) {
			continue
		}
		hits = append(hits, c)
	}

	if len(hits) < 2 {
		return diagonal, false
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].X < hits[j].X })
	return Segment{From: hits[0], To: hits[len(hits)-1]}, true
}

func inRange(v, max float64) bool {
	return v >= -boundsEpsilon && v <= max+boundsEpsilon
}

func containsPoint(points []Point, p Point) bool {
	for _, q := range points {
		if math.Abs(q.X-p.X) < parallelEpsilon && math.Abs(q.Y-p.Y) < parallelEpsilon {
			return true
		}
	}
	return false
}

// DistanceToSegment returns the distance from p to the closest point of s
func DistanceToSegment(p Point, s Segment) float64 {
	dx, dy := s.To.X-s.From.X, s.To.Y-s.From.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(p.X-s.From.X, p.Y-s.From.Y)
	}

	t := ((p.X-s.From.X)*dx + (p.Y-s.From.Y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(s.From.X+t*dx), p.Y-(s.From.Y+t*dy))
}
