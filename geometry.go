package studio

import (
	"math"

	"github.com/gogpu/gg"
)

// Rect is an axis-aligned rectangle with its origin at the top-left.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p gg.Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Center returns the midpoint of r.
func (r Rect) Center() gg.Point {
	return gg.Pt(r.X+r.W/2, r.Y+r.H/2)
}

// Union returns the smallest rectangle containing both r and s.
// Empty rectangles are ignored.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	x0 := math.Min(r.X, s.X)
	y0 := math.Min(r.Y, s.Y)
	x1 := math.Max(r.X+r.W, s.X+s.W)
	y1 := math.Max(r.Y+r.H, s.Y+s.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Scale returns r resized by f about its center.
func (r Rect) Scale(f float64) Rect {
	c := r.Center()
	w, h := r.W*f, r.H*f
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// StageToContent converts a stage (viewport) point to content coordinates
// for the given pan offset and zoom scale.
func StageToContent(p, pan gg.Point, zoom float64) gg.Point {
	return gg.Pt((p.X-pan.X)/zoom, (p.Y-pan.Y)/zoom)
}

// ContentToStage converts a content point to stage coordinates.
func ContentToStage(p, pan gg.Point, zoom float64) gg.Point {
	return gg.Pt(p.X*zoom+pan.X, p.Y*zoom+pan.Y)
}

// TransformBounds returns the axis-aligned bounds of r after transformation by m.
func TransformBounds(m gg.Matrix, r Rect) Rect {
	corners := [4]gg.Point{
		m.TransformPoint(gg.Pt(r.X, r.Y)),
		m.TransformPoint(gg.Pt(r.X+r.W, r.Y)),
		m.TransformPoint(gg.Pt(r.X+r.W, r.Y+r.H)),
		m.TransformPoint(gg.Pt(r.X, r.Y+r.H)),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// viewMatrix maps content coordinates to stage coordinates.
func viewMatrix(pan gg.Point, zoom float64) gg.Matrix {
	return gg.Translate(pan.X, pan.Y).Multiply(gg.Scale(zoom, zoom))
}

// invertible reports whether m has a usable inverse.
func invertible(m gg.Matrix) bool {
	return math.Abs(m.A*m.E-m.B*m.D) >= 1e-10
}
