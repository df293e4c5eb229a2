package studio

import "github.com/gogpu/gg"

type dragKind uint8

const (
	dragNone dragKind = iota
	dragLayer
	dragPan
	dragCrop
)

type dragState struct {
	kind  dragKind
	layer string
	// start is the pointer position in stage coordinates at PointerDown.
	start gg.Point
	// origin is the dragged layer position or crop rectangle origin, in
	// content coordinates, at PointerDown.
	origin gg.Point
	// pos is the live layer position during a layer drag.
	pos gg.Point
}

// PointerDown starts a pointer interaction at stage point p:
//   - with a crop proposed, a press inside the crop rectangle starts
//     moving it; other presses are ignored
//   - while transforming, presses are ignored
//   - otherwise a press on a layer selects it and, unless it is locked,
//     starts dragging it; a press on empty stage clears the selection and
//     starts a drag-pan
func (e *Editor) PointerDown(p gg.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drag = dragState{}
	switch e.tool.state {
	case ToolCropProposed:
		if e.cropStage().Contains(p) {
			e.drag = dragState{kind: dragCrop, start: p, origin: gg.Pt(e.tool.crop.X, e.tool.crop.Y)}
		}
		return
	case ToolTransforming:
		return
	}

	id, ok := e.hitTest(p)
	if !ok {
		e.selected = ""
		e.view.BeginDrag(p)
		e.drag = dragState{kind: dragPan, start: p}
		return
	}

	e.selectLayer(id)
	l, _ := e.find(id)
	if b := l.Common(); !b.Locked {
		origin := gg.Pt(b.X, b.Y)
		e.drag = dragState{kind: dragLayer, layer: id, start: p, origin: origin, pos: origin}
	}
}

// PointerMove continues the interaction started by PointerDown.
func (e *Editor) PointerMove(p gg.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := gg.Pt((p.X-e.drag.start.X)/e.view.Zoom, (p.Y-e.drag.start.Y)/e.view.Zoom)
	switch e.drag.kind {
	case dragLayer:
		e.drag.pos = e.drag.origin.Add(d)
	case dragPan:
		e.view.DragTo(p)
	case dragCrop:
		if e.tool.state != ToolCropProposed {
			e.drag = dragState{}
			return
		}
		e.tool.crop.X = e.drag.origin.X + d.X
		e.tool.crop.Y = e.drag.origin.Y + d.Y
	}
}

// PointerUp ends the interaction. A layer drag commits the new position
// with UpdatePosition semantics, so a layer deleted or locked during the
// drag is left alone.
func (e *Editor) PointerUp(p gg.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	drag := e.drag
	e.drag = dragState{}
	switch drag.kind {
	case dragLayer:
		d := gg.Pt((p.X-drag.start.X)/e.view.Zoom, (p.Y-drag.start.Y)/e.view.Zoom)
		if d.X != 0 || d.Y != 0 {
			pos := drag.origin.Add(d)
			e.updatePosition(drag.layer, pos.X, pos.Y)
		}
	case dragPan:
		e.view.DragTo(p)
		e.view.EndDrag()
	}
}

// Key is a keyboard shortcut understood by the editor.
type Key uint8

// Editor shortcuts.
const (
	// KeyDelete deletes the selected layer.
	KeyDelete Key = iota + 1
	// KeyEscape cancels the active tool, or clears the selection when idle.
	KeyEscape
	// KeyPlus zooms in.
	KeyPlus
	// KeyMinus zooms out.
	KeyMinus
	// KeyZero resets the view.
	KeyZero
)

// KeyDown handles a shortcut key press.
func (e *Editor) KeyDown(k Key) {
	switch k {
	case KeyDelete:
		e.mu.Lock()
		id := e.selected
		e.mu.Unlock()
		if id != "" {
			e.Delete(id)
		}
	case KeyEscape:
		e.mu.Lock()
		if e.tool.state != ToolIdle {
			e.tool.reset()
		} else {
			e.selected = ""
		}
		e.drag = dragState{}
		e.view.EndDrag()
		e.mu.Unlock()
	case KeyPlus:
		e.ZoomIn()
	case KeyMinus:
		e.ZoomOut()
	case KeyZero:
		e.ResetView()
	}
}
