package filter

import "github.com/gogpu/gg"

// ColorMatrixFilter applies a 4x5 color transformation matrix to an image.
// The transformation is:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// The fifth column provides bias/offset values.
// Color values are in [0, 255] range during transformation,
// then clamped back to valid range.
type ColorMatrixFilter struct {
	// Matrix is the 4x5 transformation matrix in row-major order.
	// [0-4] = row 0 (R), [5-9] = row 1 (G), [10-14] = row 2 (B), [15-19] = row 3 (A)
	Matrix [20]float32

	name string
}

// NewIdentityColorMatrix creates a color matrix filter that passes through unchanged.
func NewIdentityColorMatrix() *ColorMatrixFilter {
	return &ColorMatrixFilter{
		name: "identity",
		Matrix: [20]float32{
			1, 0, 0, 0, 0, // R
			0, 1, 0, 0, 0, // G
			0, 0, 1, 0, 0, // B
			0, 0, 0, 1, 0, // A
		},
	}
}

// NewBrightenFilter creates a filter that adds a constant to every color
// channel. amount is normalized: -1 maps every channel to black,
// 0 is unchanged and 1 maps every channel to white.
func NewBrightenFilter(amount float32) *ColorMatrixFilter {
	bias := 255 * amount
	return &ColorMatrixFilter{
		name: "brighten",
		Matrix: [20]float32{
			1, 0, 0, 0, bias,
			0, 1, 0, 0, bias,
			0, 0, 1, 0, bias,
			0, 0, 0, 1, 0,
		},
	}
}

// NewContrastFilter creates a filter that adjusts contrast.
// factor: 0.0 = gray, 1.0 = unchanged, 2.0 = high contrast
func NewContrastFilter(factor float32) *ColorMatrixFilter {
	// Contrast adjustment: (color - 0.5) * factor + 0.5
	// In matrix form with 0-255 range: (color - 128) * factor + 128
	offset := 128 * (1 - factor)
	return &ColorMatrixFilter{
		name: "contrast",
		Matrix: [20]float32{
			factor, 0, 0, 0, offset,
			0, factor, 0, 0, offset,
			0, 0, factor, 0, offset,
			0, 0, 0, 1, 0,
		},
	}
}

// NewGrayscaleFilter creates a filter that converts to grayscale.
// Uses Rec. 709 luminance weights.
func NewGrayscaleFilter() *ColorMatrixFilter {
	const (
		lumR = 0.2126
		lumG = 0.7152
		lumB = 0.0722
	)
	return &ColorMatrixFilter{
		name: "grayscale",
		Matrix: [20]float32{
			lumR, lumG, lumB, 0, 0,
			lumR, lumG, lumB, 0, 0,
			lumR, lumG, lumB, 0, 0,
			0, 0, 0, 1, 0,
		},
	}
}

// NewSepiaFilter creates a filter that applies sepia tone effect.
func NewSepiaFilter() *ColorMatrixFilter {
	return &ColorMatrixFilter{
		name: "sepia",
		Matrix: [20]float32{
			0.393, 0.769, 0.189, 0, 0,
			0.349, 0.686, 0.168, 0, 0,
			0.272, 0.534, 0.131, 0, 0,
			0, 0, 0, 1, 0,
		},
	}
}

// Name implements Stage.
func (f *ColorMatrixFilter) Name() string {
	if f.name == "" {
		return "colormatrix"
	}
	return f.name
}

// Apply applies the color matrix transformation to the image.
func (f *ColorMatrixFilter) Apply(src, dst *gg.Pixmap) {
	if src == nil || dst == nil {
		return
	}

	maxX := min(src.Width(), dst.Width())
	maxY := min(src.Height(), dst.Height())

	srcData := src.Data()
	dstData := dst.Data()
	srcWidth := src.Width()
	dstWidth := dst.Width()

	m := &f.Matrix

	for y := 0; y < maxY; y++ {
		for x := 0; x < maxX; x++ {
			srcIdx := (y*srcWidth + x) * 4
			dstIdx := (y*dstWidth + x) * 4

			// Read premultiplied RGBA bytes
			pr := float32(srcData[srcIdx+0])
			pg := float32(srcData[srcIdx+1])
			pb := float32(srcData[srcIdx+2])
			a := float32(srcData[srcIdx+3])

			// Un-premultiply RGB to straight-alpha [0-255] for matrix transform.
			var r, g, b float32
			if a > 0 {
				r = pr * 255 / a
				g = pg * 255 / a
				b = pb * 255 / a
			}

			newR := clampChannel(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
			newG := clampChannel(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
			newB := clampChannel(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
			newA := clampChannel(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])

			// Re-premultiply for storage
			if newA > 0 {
				factor := newA / 255
				newR *= factor
				newG *= factor
				newB *= factor
			} else {
				newR, newG, newB = 0, 0, 0
			}

			dstData[dstIdx+0] = clampUint8(newR)
			dstData[dstIdx+1] = clampUint8(newG)
			dstData[dstIdx+2] = clampUint8(newB)
			dstData[dstIdx+3] = clampUint8(newA)
		}
	}
}

// clampChannel clamps a straight-alpha channel value to [0, 255].
func clampChannel(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
