package studio

import (
	"math"
	"slices"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/studio/internal/rastercache"
	"github.com/gogpu/studio/internal/workpool"
)

// cascade offsets successive new layers so they do not stack exactly.
const (
	cascadeOrigin = 40
	cascadeStep   = 30
	cascadeSlots  = 10
)

// Editor owns the layer model, selection, viewport and tool state of one
// design session.
//
// Every exported method is safe for concurrent use; a single mutex
// serialises input handlers and decode completions.
type Editor struct {
	mu sync.Mutex

	opts     options
	layers   []Layer // paint order, last on top
	selected string
	view     *Viewport
	tool     toolState
	drag     dragState

	cache      *rastercache.Cache
	decodePool *workpool.Pool
	filterPool *workpool.Pool

	added  int
	epoch  uint64
	closed bool
}

// New creates an empty editor.
func New(opts ...Option) *Editor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Editor{
		opts:       o,
		view:       newViewport(&o),
		cache:      rastercache.New(o.cacheBudgetMB),
		decodePool: workpool.New(o.decodeWorkers),
		filterPool: workpool.New(0),
	}
}

// Close discards pending decodes and stops the worker pools.
// Decodes still in flight complete but insert no layer and send no notice.
// Close is safe to call multiple times.
func (e *Editor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.epoch++
	e.mu.Unlock()

	e.decodePool.Close()
	e.filterPool.Close()
	e.cache.InvalidateAll()
	return nil
}

func (e *Editor) nextOrigin() (float64, float64) {
	off := float64(cascadeOrigin + cascadeStep*(e.added%cascadeSlots))
	e.added++
	return off, off
}

// AddFrame appends a frame for the named preset, scaled down to fit the
// configured frame box.
func (e *Editor) AddFrame(preset string) (*FrameLayer, error) {
	p, ok := LookupPreset(preset)
	if !ok {
		return nil, ErrUnknownPreset
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	w, h := p.fit(e.opts.frameBoxW, e.opts.frameBoxH)
	x, y := e.nextOrigin()
	f := &FrameLayer{
		LayerBase: newLayerBase(p.Name, x, y),
		Width:     w,
		Height:    h,
		Preset:    p.Name,
	}
	e.layers = append(e.layers, f)

	Logger().Debug("studio: frame added", "id", f.ID, "preset", p.Name, "w", w, "h", h)
	return f.clone().(*FrameLayer), nil
}

// live reports whether work started at epoch may still affect the editor.
func (e *Editor) live(epoch uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed && epoch == e.epoch
}

// insertImage appends a decoded image as a new layer unless the editor
// was closed since the decode started.
func (e *Editor) insertImage(epoch uint64, name string, pm *gg.Pixmap) (*ImageLayer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || epoch != e.epoch {
		return nil, false
	}
	x, y := e.nextOrigin()
	l := newImageLayer(name, pm, x, y, e.opts.previewCap)
	e.layers = append(e.layers, l)

	Logger().Debug("studio: image added", "id", l.ID, "name", name, "w", l.Width, "h", l.Height)
	return l.clone().(*ImageLayer), true
}

// index returns the paint-order position of id, or -1.
// Must be called with e.mu held.
func (e *Editor) index(id string) int {
	return slices.IndexFunc(e.layers, func(l Layer) bool { return l.Common().ID == id })
}

// find must be called with e.mu held.
func (e *Editor) find(id string) (Layer, bool) {
	if i := e.index(id); i >= 0 {
		return e.layers[i], true
	}
	return nil, false
}

// image must be called with e.mu held.
func (e *Editor) image(id string) (*ImageLayer, bool) {
	l, ok := e.find(id)
	if !ok {
		return nil, false
	}
	img, ok := l.(*ImageLayer)
	return img, ok
}

// Layers returns snapshot copies of all layers in paint order.
func (e *Editor) Layers() []Layer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Layer, len(e.layers))
	for i, l := range e.layers {
		out[i] = l.clone()
	}
	return out
}

// Layer returns a snapshot copy of the layer with the given id.
func (e *Editor) Layer(id string) (Layer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.find(id)
	if !ok {
		return nil, false
	}
	return l.clone(), true
}

// Len returns the number of layers.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.layers)
}

// ToggleVisible flips the visibility of id.
func (e *Editor) ToggleVisible(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.find(id); ok {
		b := l.Common()
		b.Visible = !b.Visible
		Logger().Debug("studio: visibility toggled", "id", id, "visible", b.Visible)
	}
}

// ToggleLock flips the lock state of id.
func (e *Editor) ToggleLock(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.find(id); ok {
		b := l.Common()
		b.Locked = !b.Locked
		Logger().Debug("studio: lock toggled", "id", id, "locked", b.Locked)
	}
}

// Delete removes id from the editor. Deleting the selected layer clears
// the selection; the relative order of the remaining layers is unchanged.
func (e *Editor) Delete(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.index(id)
	if i < 0 {
		return
	}
	e.layers = slices.Delete(e.layers, i, i+1)
	if e.selected == id {
		e.selected = ""
	}
	if e.tool.target == id {
		e.tool.reset()
	}
	if e.drag.layer == id {
		e.drag = dragState{}
	}
	e.cache.Invalidate(id)
	Logger().Debug("studio: layer deleted", "id", id)
}

// UpdatePosition moves id so its box's top-left is at (x, y).
// Locked layers are not moved.
func (e *Editor) UpdatePosition(id string, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updatePosition(id, x, y)
}

// updatePosition must be called with e.mu held.
func (e *Editor) updatePosition(id string, x, y float64) {
	l, ok := e.find(id)
	if !ok || l.Common().Locked {
		return
	}
	b := l.Common()
	b.X, b.Y = x, y
	Logger().Debug("studio: position updated", "id", id, "x", x, "y", y)
}

// UpdateTransform sets the scale and rotation of image layer id.
// Locked layers, frames and zero scales are ignored.
func (e *Editor) UpdateTransform(id string, t Transform) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updateTransform(id, t)
}

// updateTransform must be called with e.mu held.
func (e *Editor) updateTransform(id string, t Transform) {
	l, ok := e.image(id)
	if !ok || l.Locked || t.ScaleX == 0 || t.ScaleY == 0 {
		return
	}
	l.ScaleX, l.ScaleY = t.ScaleX, t.ScaleY
	l.Rotation = normalizeDegrees(t.Rotation)
	Logger().Debug("studio: transform updated", "id", id,
		"sx", l.ScaleX, "sy", l.ScaleY, "rotation", l.Rotation)
}

// SetFilters replaces the filter parameters of image layer id.
// Values are clamped to their bounds. The filtered raster is marked stale
// only if the clamped parameters differ from the current ones.
func (e *Editor) SetFilters(id string, p FilterParams) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.image(id)
	if !ok {
		return
	}
	p = p.Clamp()
	if p == l.Filters {
		return
	}
	l.Filters = p
	l.touch()
	Logger().Debug("studio: filters updated", "id", id, "filters", p)
}

// SetOpacity sets the opacity of image layer id, clamped to [0, 1].
func (e *Editor) SetOpacity(id string, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.image(id); ok {
		l.Opacity = math.Min(math.Max(v, 0), 1)
	}
}

// Rename sets the display name of id.
func (e *Editor) Rename(id, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.find(id); ok {
		l.Common().Name = name
	}
}

// Select makes id the selection and moves it to the top of the paint
// order, preserving the relative order of the other layers.
// Unknown ids are ignored.
func (e *Editor) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectLayer(id)
}

// selectLayer must be called with e.mu held.
func (e *Editor) selectLayer(id string) {
	i := e.index(id)
	if i < 0 {
		return
	}
	l := e.layers[i]
	e.layers = append(slices.Delete(e.layers, i, i+1), l)
	e.selected = id
	Logger().Debug("studio: layer selected", "id", id)
}

// ClearSelection unsets the selection without reordering.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
}

// Selected returns a snapshot of the selected layer.
func (e *Editor) Selected() (Layer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.find(e.selected)
	if !ok {
		return nil, false
	}
	return l.clone(), true
}

// HandleTarget says what the transform handle is attached to.
type HandleTarget uint8

// Handle targets.
const (
	HandleDetached HandleTarget = iota
	HandleLayer
	HandleCrop
)

// Handle is the interactive resize/rotate affordance. It refers to its
// layer by id only.
type Handle struct {
	Target HandleTarget
	// LayerID is the layer the handle manipulates, empty when detached.
	LayerID string
	// Bounds is the handle rectangle in stage coordinates.
	Bounds Rect
}

// Attached reports whether the handle is shown.
func (h Handle) Attached() bool { return h.Target != HandleDetached }

// Handle returns the current transform handle.
func (e *Editor) Handle() Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.tool.state {
	case ToolCropProposed:
		return Handle{Target: HandleCrop, LayerID: e.tool.target, Bounds: e.cropStage()}
	case ToolTransforming:
		if l, ok := e.image(e.tool.target); ok {
			m := e.view.Matrix().Multiply(imageMatrix(l.X, l.Y, float64(l.Width), float64(l.Height), e.tool.proposal))
			return Handle{Target: HandleLayer, LayerID: l.ID, Bounds: TransformBounds(m, Rect{W: float64(l.Width), H: float64(l.Height)})}
		}
	}
	if l, ok := e.find(e.selected); ok {
		return Handle{Target: HandleLayer, LayerID: l.Common().ID, Bounds: e.stageBounds(l)}
	}
	return Handle{}
}

// layerMatrix returns l's matrix, honouring a drag in progress.
// Must be called with e.mu held.
func (e *Editor) layerMatrix(l Layer) gg.Matrix {
	m := l.Matrix()
	if e.drag.kind == dragLayer && e.drag.layer == l.Common().ID {
		b := l.Common()
		m = gg.Translate(e.drag.pos.X-b.X, e.drag.pos.Y-b.Y).Multiply(m)
	}
	return m
}

// stageBounds must be called with e.mu held.
func (e *Editor) stageBounds(l Layer) Rect {
	w, h := l.Size()
	return TransformBounds(e.view.Matrix().Multiply(e.layerMatrix(l)), Rect{W: w, H: h})
}

// StageBounds returns the stage-space bounds of id.
func (e *Editor) StageBounds(id string) (Rect, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.find(id)
	if !ok {
		return Rect{}, false
	}
	return e.stageBounds(l), true
}

// HitTest returns the top-most visible layer under stage point p.
func (e *Editor) HitTest(p gg.Point) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hitTest(p)
}

// hitTest must be called with e.mu held.
func (e *Editor) hitTest(p gg.Point) (string, bool) {
	for i := len(e.layers) - 1; i >= 0; i-- {
		l := e.layers[i]
		if !l.Common().Visible {
			continue
		}
		m := e.view.Matrix().Multiply(e.layerMatrix(l))
		if !invertible(m) {
			continue
		}
		q := m.Invert().TransformPoint(p)
		w, h := l.Size()
		if (Rect{W: w, H: h}).Contains(q) {
			return l.Common().ID, true
		}
	}
	return "", false
}

// View returns a copy of the viewport state.
func (e *Editor) View() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.view
}

// Wheel applies a wheel event to the viewport.
func (e *Editor) Wheel(ev WheelEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Wheel(ev)
}

// ZoomIn zooms one step about the stage center.
func (e *Editor) ZoomIn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ZoomIn()
}

// ZoomOut zooms out one step about the stage center.
func (e *Editor) ZoomOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ZoomOut()
}

// ResetView restores the default pan and zoom.
func (e *Editor) ResetView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Reset()
}

// PanBy moves the view by (dx, dy) stage pixels.
func (e *Editor) PanBy(dx, dy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.PanBy(dx, dy)
}

// SetStageSize resizes the stage.
func (e *Editor) SetStageSize(w, h float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetSize(w, h)
}

// notify delivers n to the notice handler. It must be called without
// e.mu held.
func (e *Editor) notify(n Notice) {
	e.opts.notice(n)
}

// normalizeDegrees maps a into [0, 360).
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
