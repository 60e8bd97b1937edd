package chart

import (
	"bytes"
	"html"
	"strconv"
	"strings"
)

// Stroke describes how a shape outline is painted
type Stroke struct {
	Color   string
	Width   float64
	Dash    string
	Opacity float64
}

// Canvas accumulates SVG elements into a document
type Canvas struct {
	buf    bytes.Buffer
	width  float64
	height float64
}

// NewCanvas opens an SVG document of the given size
func NewCanvas(width, height float64) *Canvas {
	c := &Canvas{width: width, height: height}
	c.buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + fmtFloat(width) + `" height="` + fmtFloat(height) +
		`" viewBox="0 0 ` + fmtFloat(width) + ` ` + fmtFloat(height) + `" font-family="ui-monospace, Menlo, Monaco, Consolas, monospace">` + "\n")
	return c
}

// Group opens a translated group; it must be closed with EndGroup
func (c *Canvas) Group(id string, dx, dy float64) {
	c.buf.WriteString(`<g id="` + html.EscapeString(id) + `" transform="translate(` + fmtFloat(dx) + ` ` + fmtFloat(dy) + `)">` + "\n")
}

func (c *Canvas) EndGroup() {
	c.buf.WriteString("</g>\n")
}

func (c *Canvas) Rect(x, y, w, h float64, fill string, stroke Stroke) {
	c.buf.WriteString(`<rect x="` + fmtFloat(x) + `" y="` + fmtFloat(y) + `" width="` + fmtFloat(w) + `" height="` + fmtFloat(h) +
		`" fill="` + fill + `"` + stroke.attrs() + `/>` + "\n")
}

func (c *Canvas) Line(s Segment, stroke Stroke, attrs ...string) {
	c.buf.WriteString(`<line x1="` + fmtFloat(s.From.X) + `" y1="` + fmtFloat(s.From.Y) + `" x2="` + fmtFloat(s.To.X) + `" y2="` + fmtFloat(s.To.Y) +
		`"` + stroke.attrs() + extraAttrs(attrs) + `/>` + "\n")
}

// Polyline draws points joined by straight segments; fewer than two points draw nothing
func (c *Canvas) Polyline(points []Point, stroke Stroke) {
	if len(points) < 2 {
		return
	}

	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmtFloat(p.X) + "," + fmtFloat(p.Y)
	}
	c.buf.WriteString(`<polyline points="` + strings.Join(coords, " ") + `" fill="none"` + stroke.attrs() + `/>` + "\n")
}

func (c *Canvas) Circle(center Point, r float64, fill string) {
	c.buf.WriteString(`<circle cx="` + fmtFloat(center.X) + `" cy="` + fmtFloat(center.Y) + `" r="` + fmtFloat(r) + `" fill="` + fill + `"/>` + "\n")
}

// Text writes an escaped label; anchor is start, middle or end
func (c *Canvas) Text(x, y float64, text, fill string, size float64, anchor string) {
	if anchor == "" {
		anchor = "start"
	}
	c.buf.WriteString(`<text x="` + fmtFloat(x) + `" y="` + fmtFloat(y) + `" fill="` + fill + `" font-size="` + fmtFloat(size) +
		`" text-anchor="` + anchor + `" dominant-baseline="middle">` + html.EscapeString(text) + `</text>` + "\n")
}

// Bytes closes the document and returns it
func (c *Canvas) Bytes() []byte {
	c.buf.WriteString("</svg>\n")
	return c.buf.Bytes()
}

func (s Stroke) attrs() string {
	if s.Color == "" {
		return ""
	}

	out := ` stroke="` + s.Color + `"`
	if s.Width > 0 {
		out += ` stroke-width="` + fmtFloat(s.Width) + `"`
	}
	if s.Dash != "" {
		out += ` stroke-dasharray="` + s.Dash + `"`
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		out += ` stroke-opacity="` + fmtFloat(s.Opacity) + `"`
	}
	return out
}

func extraAttrs(attrs []string) string {
	var b strings.Builder
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteString(` ` + attrs[i] + `="` + html.EscapeString(attrs[i+1]) + `"`)
	}
	return b.String()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
