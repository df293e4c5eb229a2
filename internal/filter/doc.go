// Package filter provides the pixel filters behind image layer adjustments.
//
// Filters operate on premultiplied RGBA [gg.Pixmap] buffers of equal size:
//   - Color matrix transformations (brightness, contrast, grayscale, sepia)
//   - Gaussian blur (separable, two passes)
//
// A [Chain] applies a fixed sequence of stages, ping-ponging between two
// scratch pixmaps so that the source buffer is never written.
package filter
