package studio

import (
	"math"

	"github.com/gogpu/gg"
)

// Modifiers is a bitmask of keyboard modifiers held during an input event.
type Modifiers uint8

// Modifier keys.
const (
	ModShift Modifiers = 1 << iota
	ModCtrl
)

// WheelEvent is a single mouse wheel or trackpad scroll step.
type WheelEvent struct {
	// Pointer is the pointer position in stage coordinates.
	Pointer gg.Point
	// DeltaX and DeltaY follow the DOM convention: negative DeltaY scrolls up.
	DeltaX, DeltaY float64
	Modifiers      Modifiers
}

// Viewport is the pannable, zoomable window onto content coordinates.
// A content point c appears at stage point c*Zoom + Pan.
//
// Viewport is not safe for concurrent use; Editor serialises access.
type Viewport struct {
	Pan  gg.Point
	Zoom float64

	width, height    float64
	minZoom, maxZoom float64
	step             float64
	defaultPan       gg.Point
	defaultZoom      float64

	dragging bool
	dragLast gg.Point
}

// NewViewport creates a viewport at the configured default view.
func NewViewport(opts ...Option) *Viewport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newViewport(&o)
}

func newViewport(o *options) *Viewport {
	v := &Viewport{
		width:       o.stageW,
		height:      o.stageH,
		minZoom:     o.minZoom,
		maxZoom:     o.maxZoom,
		step:        o.zoomStep,
		defaultPan:  o.defaultPan,
		defaultZoom: o.defaultZoom,
	}
	v.Reset()
	return v
}

// Size returns the stage size.
func (v Viewport) Size() (w, h float64) { return v.width, v.height }

// SetSize changes the stage size. Pan and zoom are unchanged.
func (v *Viewport) SetSize(w, h float64) {
	if w > 0 && h > 0 {
		v.width, v.height = w, h
	}
}

// Matrix maps content coordinates to stage coordinates.
func (v Viewport) Matrix() gg.Matrix {
	return viewMatrix(v.Pan, v.Zoom)
}

// ToContent converts a stage point to content coordinates.
func (v Viewport) ToContent(p gg.Point) gg.Point {
	return StageToContent(p, v.Pan, v.Zoom)
}

// ToStage converts a content point to stage coordinates.
func (v Viewport) ToStage(p gg.Point) gg.Point {
	return ContentToStage(p, v.Pan, v.Zoom)
}

func (v *Viewport) clamp(z float64) float64 {
	return math.Min(math.Max(z, v.minZoom), v.maxZoom)
}

// ZoomAt multiplies the zoom by factor, clamps it, and adjusts the pan so
// the content point under p stays under p.
func (v *Viewport) ZoomAt(p gg.Point, factor float64) {
	if factor <= 0 {
		return
	}
	anchor := v.ToContent(p)
	v.Zoom = v.clamp(v.Zoom * factor)
	v.Pan = gg.Pt(p.X-anchor.X*v.Zoom, p.Y-anchor.Y*v.Zoom)
}

// ZoomIn zooms one step about the stage center.
func (v *Viewport) ZoomIn() {
	v.ZoomAt(gg.Pt(v.width/2, v.height/2), v.step)
}

// ZoomOut zooms out one step about the stage center.
func (v *Viewport) ZoomOut() {
	v.ZoomAt(gg.Pt(v.width/2, v.height/2), 1/v.step)
}

// Reset restores the default pan and zoom.
func (v *Viewport) Reset() {
	v.Pan = v.defaultPan
	v.Zoom = v.clamp(v.defaultZoom)
	v.dragging = false
}

// PanBy moves the view by (dx, dy) stage pixels.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Pan = gg.Pt(v.Pan.X+dx, v.Pan.Y+dy)
}

// Wheel applies exactly one action for a wheel event:
//   - Ctrl: vertical pan by -DeltaY
//   - Shift: horizontal pan by -DeltaY (or -DeltaX when DeltaY is zero)
//   - otherwise: one zoom step anchored at the pointer, in for DeltaY < 0
//
// Ctrl wins when both modifiers are held.
func (v *Viewport) Wheel(ev WheelEvent) {
	switch {
	case ev.Modifiers&ModCtrl != 0:
		v.PanBy(0, -ev.DeltaY)
	case ev.Modifiers&ModShift != 0:
		d := ev.DeltaY
		if d == 0 {
			d = ev.DeltaX
		}
		v.PanBy(-d, 0)
	case ev.DeltaY < 0:
		v.ZoomAt(ev.Pointer, v.step)
	case ev.DeltaY > 0:
		v.ZoomAt(ev.Pointer, 1/v.step)
	}
}

// BeginDrag starts a drag-pan at stage point p.
func (v *Viewport) BeginDrag(p gg.Point) {
	v.dragging = true
	v.dragLast = p
}

// DragTo pans by the pointer movement since the last drag point.
func (v *Viewport) DragTo(p gg.Point) {
	if !v.dragging {
		return
	}
	v.PanBy(p.X-v.dragLast.X, p.Y-v.dragLast.Y)
	v.dragLast = p
}

// EndDrag finishes a drag-pan.
func (v *Viewport) EndDrag() {
	v.dragging = false
}

// Dragging reports whether a drag-pan is in progress.
func (v Viewport) Dragging() bool { return v.dragging }
