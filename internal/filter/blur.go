package filter

import (
	"sync"

	"github.com/gogpu/gg"
)

// BlurFilter applies separable Gaussian blur to an image.
// The separable algorithm processes horizontal and vertical passes
// independently, achieving O(w*h*(rx+ry)) complexity instead of O(w*h*rx*ry).
type BlurFilter struct {
	// Radius is the blur radius (Gaussian sigma) in pixels.
	Radius float64
}

// NewBlurFilter creates a new blur filter with equal radius in both directions.
func NewBlurFilter(radius float64) *BlurFilter {
	return &BlurFilter{Radius: radius}
}

// Name implements Stage.
func (f *BlurFilter) Name() string { return "blur" }

// Apply applies the Gaussian blur to src and writes the result to dst.
// The operation uses a two-pass separable algorithm:
//  1. Horizontal pass: convolve each row with 1D kernel
//  2. Vertical pass: convolve each column with 1D kernel
//
// Pixels outside the image are treated as copies of the nearest edge pixel.
func (f *BlurFilter) Apply(src, dst *gg.Pixmap) {
	if src == nil || dst == nil {
		return
	}

	width := min(src.Width(), dst.Width())
	height := min(src.Height(), dst.Height())
	if width <= 0 || height <= 0 {
		return
	}

	if f.Radius <= 0 {
		copyPixmap(src, dst)
		return
	}

	temp := getTempBuffer(width, height)
	defer putTempBuffer(temp)

	kernel := CachedGaussianKernel(f.Radius)

	blurHorizontal(src, temp, width, height, kernel)
	blurVertical(temp, dst, width, height, kernel)
}

// blurHorizontal applies 1D horizontal convolution.
// Reads from src, writes to temp buffer.
func blurHorizontal(src *gg.Pixmap, temp []float32, width, height int, kernel []float32) {
	kernelSize := len(kernel)
	halfKernel := kernelSize / 2
	srcWidth := src.Width()
	srcData := src.Data()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k := 0; k < kernelSize; k++ {
				kx := x + k - halfKernel

				// Clamp to source bounds (edge extension)
				if kx < 0 {
					kx = 0
				} else if kx >= width {
					kx = width - 1
				}

				srcIdx := (y*srcWidth + kx) * 4
				weight := kernel[k]

				r += float32(srcData[srcIdx+0]) * weight
				g += float32(srcData[srcIdx+1]) * weight
				b += float32(srcData[srcIdx+2]) * weight
				a += float32(srcData[srcIdx+3]) * weight
			}

			tempIdx := (y*width + x) * 4
			temp[tempIdx+0] = r
			temp[tempIdx+1] = g
			temp[tempIdx+2] = b
			temp[tempIdx+3] = a
		}
	}
}

// blurVertical applies 1D vertical convolution.
// Reads from temp buffer, writes to dst.
func blurVertical(temp []float32, dst *gg.Pixmap, width, height int, kernel []float32) {
	kernelSize := len(kernel)
	halfKernel := kernelSize / 2
	dstData := dst.Data()
	dstWidth := dst.Width()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k := 0; k < kernelSize; k++ {
				ky := y + k - halfKernel

				if ky < 0 {
					ky = 0
				} else if ky >= height {
					ky = height - 1
				}

				tempIdx := (ky*width + x) * 4
				weight := kernel[k]

				r += temp[tempIdx+0] * weight
				g += temp[tempIdx+1] * weight
				b += temp[tempIdx+2] * weight
				a += temp[tempIdx+3] * weight
			}

			dstIdx := (y*dstWidth + x) * 4
			dstData[dstIdx+0] = clampUint8(r)
			dstData[dstIdx+1] = clampUint8(g)
			dstData[dstIdx+2] = clampUint8(b)
			dstData[dstIdx+3] = clampUint8(a)
		}
	}
}

// copyPixmap copies the overlapping region of src into dst.
func copyPixmap(src, dst *gg.Pixmap) {
	if src.Width() == dst.Width() && src.Height() == dst.Height() {
		copy(dst.Data(), src.Data())
		return
	}
	width := min(src.Width(), dst.Width())
	height := min(src.Height(), dst.Height())
	srcData, dstData := src.Data(), dst.Data()
	for y := 0; y < height; y++ {
		s := y * src.Width() * 4
		d := y * dst.Width() * 4
		copy(dstData[d:d+width*4], srcData[s:s+width*4])
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

// Temporary buffer pool for blur operations.
var tempBufferPool = sync.Pool{
	New: func() interface{} {
		return &floatBuffer{data: make([]float32, 512*512*4)}
	},
}

// getTempBuffer retrieves a temporary buffer from the pool.
// The buffer is guaranteed to have at least width*height*4 elements.
func getTempBuffer(width, height int) []float32 {
	size := width * height * 4
	wrapper := tempBufferPool.Get().(*floatBuffer)

	if len(wrapper.data) < size {
		// Need larger buffer - return old one and allocate new
		tempBufferPool.Put(wrapper)
		return make([]float32, size)
	}

	clear(wrapper.data[:size])
	return wrapper.data[:size]
}

// putTempBuffer returns a temporary buffer to the pool.
func putTempBuffer(buf []float32) {
	// Only pool reasonably-sized buffers
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}

// clampUint8 clamps a float32 to [0, 255] and converts to uint8.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5) // Round to nearest
}
