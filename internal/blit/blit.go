// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package blit composites premultiplied RGBA pixmaps under an affine
// transform. It backs layer rendering and crop extraction in studio.
package blit

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Interp selects how source pixels are sampled.
type Interp uint8

const (
	// Nearest selects the closest source pixel.
	Nearest Interp = iota

	// Bilinear interpolates between the 4 neighboring source pixels.
	Bilinear
)

// String returns a string representation of the interpolation mode.
func (m Interp) String() string {
	switch m {
	case Nearest:
		return "Nearest"
	case Bilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Params controls a single Draw call.
type Params struct {
	// Transform maps source pixel space to destination pixel space.
	Transform gg.Matrix

	// Opacity multiplies the source alpha. Values are clamped to [0, 1].
	Opacity float64

	// Interp is the sampling mode.
	Interp Interp
}

// Draw composites src onto dst using source-over blending.
// Only destination pixels whose centers map inside src are touched.
func Draw(dst, src *gg.Pixmap, p Params) {
	if dst == nil || src == nil || src.Width() == 0 || src.Height() == 0 {
		return
	}
	opacity := clampFloat(p.Opacity, 0, 1)
	if opacity == 0 {
		return
	}

	inv, ok := invert(p.Transform)
	if !ok {
		return
	}

	bounds := TransformedBounds(p.Transform, float64(src.Width()), float64(src.Height())).
		Intersect(image.Rect(0, 0, dst.Width(), dst.Height()))
	if bounds.Empty() {
		return
	}

	sw, sh := float64(src.Width()), float64(src.Height())
	dstData := dst.Data()
	dstWidth := dst.Width()

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sp := inv.TransformPoint(gg.Pt(float64(x)+0.5, float64(y)+0.5))
			if sp.X < 0 || sp.Y < 0 || sp.X >= sw || sp.Y >= sh {
				continue
			}

			var r, g, b, a float64
			if p.Interp == Nearest {
				r, g, b, a = sampleNearest(src, sp.X, sp.Y)
			} else {
				r, g, b, a = sampleBilinear(src, sp.X, sp.Y)
			}
			if opacity < 1 {
				r *= opacity
				g *= opacity
				b *= opacity
				a *= opacity
			}
			if a <= 0 {
				continue
			}

			i := (y*dstWidth + x) * 4
			inva := 1 - a/255
			dstData[i+0] = clampUint8(r + float64(dstData[i+0])*inva)
			dstData[i+1] = clampUint8(g + float64(dstData[i+1])*inva)
			dstData[i+2] = clampUint8(b + float64(dstData[i+2])*inva)
			dstData[i+3] = clampUint8(a + float64(dstData[i+3])*inva)
		}
	}
}

// TransformedBounds returns the integer pixel rectangle covering the
// w x h source rectangle after transformation by m.
func TransformedBounds(m gg.Matrix, w, h float64) image.Rectangle {
	corners := [4]gg.Point{
		m.TransformPoint(gg.Pt(0, 0)),
		m.TransformPoint(gg.Pt(w, 0)),
		m.TransformPoint(gg.Pt(w, h)),
		m.TransformPoint(gg.Pt(0, h)),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

// SubPixmap copies the region r of src into a new pixmap.
// r is clipped to the bounds of src; nil is returned if nothing remains.
func SubPixmap(src *gg.Pixmap, r image.Rectangle) *gg.Pixmap {
	r = r.Intersect(image.Rect(0, 0, src.Width(), src.Height()))
	if r.Empty() {
		return nil
	}
	out := gg.NewPixmap(r.Dx(), r.Dy())
	srcData, outData := src.Data(), out.Data()
	rowBytes := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		s := ((r.Min.Y+y)*src.Width() + r.Min.X) * 4
		copy(outData[y*rowBytes:(y+1)*rowBytes], srcData[s:s+rowBytes])
	}
	return out
}

// invert is gg.Matrix.Invert with singularity reported instead of
// silently replaced by identity.
func invert(m gg.Matrix) (gg.Matrix, bool) {
	if math.Abs(m.A*m.E-m.B*m.D) < 1e-10 {
		return gg.Matrix{}, false
	}
	return m.Invert(), true
}

// sampleNearest returns the premultiplied pixel containing (fx, fy).
func sampleNearest(src *gg.Pixmap, fx, fy float64) (r, g, b, a float64) {
	x := clamp(int(fx), 0, src.Width()-1)
	y := clamp(int(fy), 0, src.Height()-1)
	i := (y*src.Width() + x) * 4
	d := src.Data()
	return float64(d[i]), float64(d[i+1]), float64(d[i+2]), float64(d[i+3])
}

// sampleBilinear interpolates premultiplied channels at continuous pixel
// coordinates (fx, fy). Out-of-bounds neighbors are clamped to the edge.
func sampleBilinear(src *gg.Pixmap, fx, fy float64) (r, g, b, a float64) {
	w, h := src.Width(), src.Height()
	fx -= 0.5
	fy -= 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clamp(x0+1, 0, w-1)
	y1 := clamp(y0+1, 0, h-1)
	x0 = clamp(x0, 0, w-1)
	y0 = clamp(y0, 0, h-1)

	d := src.Data()
	i00 := (y0*w + x0) * 4
	i10 := (y0*w + x1) * 4
	i01 := (y1*w + x0) * 4
	i11 := (y1*w + x1) * 4

	ch := func(c int) float64 {
		return lerp2D(float64(d[i00+c]), float64(d[i10+c]), float64(d[i01+c]), float64(d[i11+c]), tx, ty)
	}
	return ch(0), ch(1), ch(2), ch(3)
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func clampFloat(val, minVal, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func clampUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty)
}
