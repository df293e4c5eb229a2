package studio

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/oklog/ulid/v2"
)

// LayerKind distinguishes the layer variants.
type LayerKind uint8

const (
	// KindFrame is a passive placeholder rectangle sized from a preset.
	KindFrame LayerKind = iota
	// KindImage is a decoded bitmap with transform and filters.
	KindImage
)

// String returns a string representation of the layer kind.
func (k LayerKind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Layer is one addressable element of the editor's paint order.
// It is implemented by *FrameLayer and *ImageLayer.
type Layer interface {
	// Common returns the fields shared by all layers.
	Common() *LayerBase
	Kind() LayerKind
	// Size returns the intrinsic width and height.
	Size() (w, h float64)
	// Matrix maps intrinsic coordinates to content coordinates.
	Matrix() gg.Matrix
	// Bounds returns the axis-aligned content-space bounds.
	Bounds() Rect

	clone() Layer
}

// LayerBase holds the fields shared by every layer.
type LayerBase struct {
	ID   string
	Name string
	// X and Y anchor the top-left of the unrotated layer box in content
	// coordinates.
	X, Y    float64
	Visible bool
	Locked  bool
}

// Common implements Layer.
func (b *LayerBase) Common() *LayerBase { return b }

func newLayerBase(name string, x, y float64) LayerBase {
	return LayerBase{
		ID:      ulid.Make().String(),
		Name:    name,
		X:       x,
		Y:       y,
		Visible: true,
	}
}

// FrameLayer is a drawn rectangle and label marking a target canvas size.
// It has no pixels and no filters.
type FrameLayer struct {
	LayerBase
	Width, Height float64
	Preset        string
}

// Kind implements Layer.
func (f *FrameLayer) Kind() LayerKind { return KindFrame }

// Size implements Layer.
func (f *FrameLayer) Size() (float64, float64) { return f.Width, f.Height }

// Matrix implements Layer.
func (f *FrameLayer) Matrix() gg.Matrix { return gg.Translate(f.X, f.Y) }

// Bounds implements Layer.
func (f *FrameLayer) Bounds() Rect { return Rect{X: f.X, Y: f.Y, W: f.Width, H: f.Height} }

func (f *FrameLayer) clone() Layer {
	c := *f
	return &c
}

// Transform is the scale and rotation part of an image layer's placement.
// Negative scales flip the image.
type Transform struct {
	ScaleX, ScaleY float64
	// Rotation is in degrees, clockwise on screen.
	Rotation float64
}

// ImageLayer is a decoded bitmap placed on the canvas.
//
// Width and Height are the intrinsic size of the effective source (after
// crops) at scale 1. The layer owns its pixels; snapshots returned by the
// editor share nothing mutable with the model.
type ImageLayer struct {
	LayerBase
	Width, Height  int
	ScaleX, ScaleY float64
	Rotation       float64
	Opacity        float64
	Filters        FilterParams

	original *gg.Pixmap
	source   *gg.Pixmap

	initScale float64
	initX     float64
	initY     float64

	// version identifies the current source and filter combination.
	// dirty is set whenever version changes and cleared once the
	// filtered raster for that version has been produced.
	version uint64
	dirty   bool
}

func newImageLayer(name string, pm *gg.Pixmap, x, y, previewCap float64) *ImageLayer {
	w, h := pm.Width(), pm.Height()
	scale := min(previewCap/float64(max(w, h)), 1)
	return &ImageLayer{
		LayerBase: newLayerBase(name, x, y),
		Width:     w,
		Height:    h,
		ScaleX:    scale,
		ScaleY:    scale,
		Opacity:   1,
		original:  pm,
		source:    pm,
		initScale: scale,
		initX:     x,
		initY:     y,
		version:   1,
		dirty:     true,
	}
}

// Kind implements Layer.
func (l *ImageLayer) Kind() LayerKind { return KindImage }

// Size implements Layer.
func (l *ImageLayer) Size() (float64, float64) { return float64(l.Width), float64(l.Height) }

// DisplaySize returns the unrotated displayed size in content units.
func (l *ImageLayer) DisplaySize() (float64, float64) {
	return float64(l.Width) * math.Abs(l.ScaleX), float64(l.Height) * math.Abs(l.ScaleY)
}

// Transform returns the current scale and rotation.
func (l *ImageLayer) Transform() Transform {
	return Transform{ScaleX: l.ScaleX, ScaleY: l.ScaleY, Rotation: l.Rotation}
}

// Matrix implements Layer. The image is scaled and flipped about its
// center, rotated about its center, then placed with the unrotated box's
// top-left at (X, Y).
func (l *ImageLayer) Matrix() gg.Matrix {
	return imageMatrix(l.X, l.Y, float64(l.Width), float64(l.Height), l.Transform())
}

// Bounds implements Layer.
func (l *ImageLayer) Bounds() Rect {
	return TransformBounds(l.Matrix(), Rect{W: float64(l.Width), H: float64(l.Height)})
}

// Source returns a copy of the effective source pixels.
func (l *ImageLayer) Source() *gg.Pixmap {
	return clonePixmap(l.source)
}

// Cropped reports whether the effective source differs from the original.
func (l *ImageLayer) Cropped() bool {
	return l.source != l.original
}

func (l *ImageLayer) clone() Layer {
	c := *l
	return &c
}

// touch marks the filtered raster stale.
func (l *ImageLayer) touch() {
	l.version++
	l.dirty = true
}

func imageMatrix(x, y, w, h float64, t Transform) gg.Matrix {
	dw, dh := w*math.Abs(t.ScaleX), h*math.Abs(t.ScaleY)
	return gg.Translate(x+dw/2, y+dh/2).
		Multiply(gg.Rotate(t.Rotation * math.Pi / 180)).
		Multiply(gg.Scale(t.ScaleX, t.ScaleY)).
		Multiply(gg.Translate(-w/2, -h/2))
}

func clonePixmap(p *gg.Pixmap) *gg.Pixmap {
	if p == nil {
		return nil
	}
	c := gg.NewPixmap(p.Width(), p.Height())
	copy(c.Data(), p.Data())
	return c
}

// FilterParams is the declarative filter set of an image layer.
// The zero value is neutral.
type FilterParams struct {
	// Brightness in [-100, 100].
	Brightness int
	// Contrast in [-100, 100].
	Contrast int
	// Blur radius in pixels, [0, 20].
	Blur      int
	Grayscale bool
	Sepia     bool
}

// Filter parameter bounds.
const (
	MinBrightness = -100
	MaxBrightness = 100
	MinContrast   = -100
	MaxContrast   = 100
	MinBlur       = 0
	MaxBlur       = 20
)

// Clamp returns p with every numeric field forced into its bounds.
func (p FilterParams) Clamp() FilterParams {
	p.Brightness = min(max(p.Brightness, MinBrightness), MaxBrightness)
	p.Contrast = min(max(p.Contrast, MinContrast), MaxContrast)
	p.Blur = min(max(p.Blur, MinBlur), MaxBlur)
	return p
}

// IsNeutral reports whether p leaves pixels unchanged.
func (p FilterParams) IsNeutral() bool {
	return p == FilterParams{}
}
