package studio

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/studio/internal/blit"
)

// ToolState is the interactive manipulation currently live.
type ToolState uint8

// Tool states. At most one of crop and transform is active.
const (
	ToolIdle ToolState = iota
	ToolCropProposed
	ToolTransforming
)

// String returns a string representation of the tool state.
func (s ToolState) String() string {
	switch s {
	case ToolIdle:
		return "Idle"
	case ToolCropProposed:
		return "CropProposed"
	case ToolTransforming:
		return "Transforming"
	default:
		return "Unknown"
	}
}

// cropFraction is the initial crop rectangle size relative to the
// displayed image bounds.
const cropFraction = 0.8

type toolState struct {
	state  ToolState
	target string
	// crop is the proposed crop rectangle in content coordinates, so it
	// follows the image through pan and zoom.
	crop     Rect
	proposal Transform
}

func (t *toolState) reset() {
	*t = toolState{}
}

// Tool returns the current tool state.
func (e *Editor) Tool() ToolState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool.state
}

// cropTarget returns the selected image layer if it is visible, else the
// top-most visible image layer. Must be called with e.mu held.
func (e *Editor) cropTarget() (*ImageLayer, bool) {
	if l, ok := e.image(e.selected); ok && l.Visible {
		return l, true
	}
	for i := len(e.layers) - 1; i >= 0; i-- {
		if l, ok := e.layers[i].(*ImageLayer); ok && l.Visible {
			return l, true
		}
	}
	return nil, false
}

// BeginCrop proposes a crop of the selected image layer, or the top-most
// visible image when the selection is not an image. The proposal starts
// at 80% of the image's displayed bounds, centered. An active transform
// proposal is discarded first.
//
// With no image available BeginCrop returns ErrNoImage; a locked target
// returns ErrLayerLocked. Both are also reported as notices and leave the
// editor idle.
func (e *Editor) BeginCrop() error {
	e.mu.Lock()
	l, ok := e.cropTarget()
	var err error
	switch {
	case !ok:
		err = ErrNoImage
	case l.Locked:
		err = ErrLayerLocked
	}
	if err != nil {
		if e.tool.state == ToolCropProposed {
			e.tool.reset()
		}
		e.mu.Unlock()
		e.notify(Notice{Kind: NoticePrecondition, Source: "crop", Err: err})
		return err
	}

	e.tool.reset()
	e.tool.state = ToolCropProposed
	e.tool.target = l.ID
	e.tool.crop = l.Bounds().Scale(cropFraction)
	Logger().Debug("studio: crop proposed", "id", l.ID, "rect", e.tool.crop)
	e.mu.Unlock()
	return nil
}

// cropStage returns the crop rectangle in stage coordinates.
// Must be called with e.mu held.
func (e *Editor) cropStage() Rect {
	return TransformBounds(e.view.Matrix(), e.tool.crop)
}

// CropRect returns the proposed crop rectangle in stage coordinates.
func (e *Editor) CropRect() (Rect, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tool.state != ToolCropProposed {
		return Rect{}, false
	}
	return e.cropStage(), true
}

// SetCropRect replaces the proposed crop rectangle, given in stage
// coordinates. It returns false, keeping the previous rectangle, when no
// crop is proposed or either side is below the minimum size in content
// units.
func (e *Editor) SetCropRect(r Rect) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tool.state != ToolCropProposed {
		return false
	}
	c := TransformBounds(e.view.Matrix().Invert(), r)
	if c.W < e.opts.minSize || c.H < e.opts.minSize {
		return false
	}
	e.tool.crop = c
	return true
}

// CommitCrop applies the proposed crop. The rectangle is mapped into the
// image's intrinsic pixel space, clamped to the source, and the covered
// pixels become the layer's effective source. The layer keeps its scale
// and rotation and is moved so the kept pixels stay where they were
// displayed.
//
// CommitCrop returns false when no crop is proposed, the target was
// deleted or locked meanwhile, or the rectangle misses the image. The
// editor is idle afterwards in every case.
func (e *Editor) CommitCrop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tool.state != ToolCropProposed {
		return false
	}
	crop := e.tool.crop
	target := e.tool.target
	e.tool.reset()

	l, ok := e.image(target)
	if !ok || l.Locked {
		return false
	}

	lm := l.Matrix()
	if !invertible(lm) {
		return false
	}
	src := TransformBounds(lm.Invert(), crop)
	x0 := clampInt(int(math.Round(src.X)), 0, l.Width)
	y0 := clampInt(int(math.Round(src.Y)), 0, l.Height)
	x1 := clampInt(int(math.Round(src.X+src.W)), 0, l.Width)
	y1 := clampInt(int(math.Round(src.Y+src.H)), 0, l.Height)

	sub := blit.SubPixmap(l.source, image.Rect(x0, y0, x1, y1))
	if sub == nil {
		return false
	}

	// Where the center of the kept region is displayed now.
	center := lm.TransformPoint(gg.Pt(float64(x0+x1)/2, float64(y0+y1)/2))

	l.source = sub
	l.Width, l.Height = sub.Width(), sub.Height()
	dw, dh := l.DisplaySize()
	l.X = center.X - dw/2
	l.Y = center.Y - dh/2
	l.touch()

	Logger().Debug("studio: crop committed", "id", l.ID,
		"rect", image.Rect(x0, y0, x1, y1), "w", l.Width, "h", l.Height)
	return true
}

// CancelCrop discards a proposed crop.
func (e *Editor) CancelCrop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tool.state == ToolCropProposed {
		e.tool.reset()
	}
}

// BeginTransform starts a live transform proposal on image layer id.
// A proposed crop is discarded first. Unknown ids are ignored.
func (e *Editor) BeginTransform(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.find(id)
	if !ok {
		return nil
	}
	img, ok := l.(*ImageLayer)
	if !ok {
		return ErrNotImage
	}
	if img.Locked {
		return ErrLayerLocked
	}

	e.tool.reset()
	e.tool.state = ToolTransforming
	e.tool.target = id
	e.tool.proposal = img.Transform()
	return nil
}

// ProposeTransform replaces the live transform proposal. Proposals with
// a zero scale or a displayed side below the minimum size are rejected
// and the previous proposal is kept.
func (e *Editor) ProposeTransform(t Transform) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tool.state != ToolTransforming {
		return false
	}
	l, ok := e.image(e.tool.target)
	if !ok {
		e.tool.reset()
		return false
	}
	if t.ScaleX == 0 || t.ScaleY == 0 {
		return false
	}
	if float64(l.Width)*math.Abs(t.ScaleX) < e.opts.minSize ||
		float64(l.Height)*math.Abs(t.ScaleY) < e.opts.minSize {
		return false
	}
	t.Rotation = normalizeDegrees(t.Rotation)
	e.tool.proposal = t
	return true
}

// Proposal returns the live transform proposal.
func (e *Editor) Proposal() (Transform, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tool.state != ToolTransforming {
		return Transform{}, false
	}
	return e.tool.proposal, true
}

// EndTransform commits the live proposal with UpdateTransform semantics.
func (e *Editor) EndTransform() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tool.state != ToolTransforming {
		return
	}
	id, t := e.tool.target, e.tool.proposal
	e.tool.reset()
	e.updateTransform(id, t)
}

// CancelTransform discards the live proposal.
func (e *Editor) CancelTransform() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tool.state == ToolTransforming {
		e.tool.reset()
	}
}

// mutateTransform applies fn to the transform of unlocked image layer id
// and keeps a live proposal for the same layer in step.
func (e *Editor) mutateTransform(id string, fn func(*ImageLayer)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.image(id)
	if !ok || l.Locked {
		return
	}
	fn(l)
	if e.tool.state == ToolTransforming && e.tool.target == id {
		e.tool.proposal = l.Transform()
	}
	Logger().Debug("studio: transform updated", "id", id,
		"sx", l.ScaleX, "sy", l.ScaleY, "rotation", l.Rotation)
}

// Rotate90 rotates image layer id by +90 degrees, wrapping at 360.
func (e *Editor) Rotate90(id string) {
	e.mutateTransform(id, func(l *ImageLayer) {
		l.Rotation = normalizeDegrees(l.Rotation + 90)
	})
}

// FlipHorizontal negates the horizontal scale of image layer id.
func (e *Editor) FlipHorizontal(id string) {
	e.mutateTransform(id, func(l *ImageLayer) { l.ScaleX = -l.ScaleX })
}

// FlipVertical negates the vertical scale of image layer id.
func (e *Editor) FlipVertical(id string) {
	e.mutateTransform(id, func(l *ImageLayer) { l.ScaleY = -l.ScaleY })
}

// ResetImage restores image layer id to its decoded state: original
// pixels, initial fit scale and position, no rotation or flip, neutral
// filters. Opacity, name, visibility and lock are kept. Resetting twice
// is the same as resetting once.
func (e *Editor) ResetImage(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.image(id)
	if !ok || l.Locked {
		return
	}
	stale := l.source != l.original || !l.Filters.IsNeutral()

	l.source = l.original
	l.Width, l.Height = l.original.Width(), l.original.Height()
	l.ScaleX, l.ScaleY = l.initScale, l.initScale
	l.Rotation = 0
	l.X, l.Y = l.initX, l.initY
	l.Filters = FilterParams{}
	if stale {
		l.touch()
	}
	if e.tool.target == id {
		e.tool.reset()
	}
	Logger().Debug("studio: image reset", "id", id)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
