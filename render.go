package studio

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/studio/internal/blit"
	"golang.org/x/image/font/gofont/goregular"
)

// Frame placeholder styling, in stage pixels at zoom 1.
const (
	frameLabelSize   = 12
	frameLabelOffset = 6
	frameStrokeWidth = 1
)

var labelFont = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// Render paints every visible layer in paint order into dst.
// m maps stage coordinates to dst pixels; use gg.Identity() for a
// stage-sized target.
func (e *Editor) Render(dst *gg.Pixmap, m gg.Matrix) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.render(dst, m.Multiply(e.view.Matrix()), "")
}

// render paints the visible layers, or only layer only when it is not
// empty. full maps content coordinates to dst pixels. Must be called with
// e.mu held.
func (e *Editor) render(dst *gg.Pixmap, full gg.Matrix, only string) error {
	var ls []Layer
	var imgs []*ImageLayer
	for _, l := range e.layers {
		if !l.Common().Visible || (only != "" && l.Common().ID != only) {
			continue
		}
		ls = append(ls, l)
		if img, ok := l.(*ImageLayer); ok {
			imgs = append(imgs, img)
		}
	}
	e.refreshRasters(imgs)

	var dc *gg.Context
	defer func() {
		if dc != nil {
			_ = dc.Close()
		}
	}()

	for _, l := range ls {
		lm := full.Multiply(e.layerMatrix(l))
		switch l := l.(type) {
		case *FrameLayer:
			if dc == nil {
				dc = gg.NewContext(dst.Width(), dst.Height(), gg.WithPixmap(dst))
			}
			if err := drawFrame(dc, lm, l); err != nil {
				return fmt.Errorf("frame %s: %w", l.ID, err)
			}
		case *ImageLayer:
			blit.Draw(dst, e.raster(l), blit.Params{
				Transform: lm,
				Opacity:   l.Opacity,
				Interp:    blit.Bilinear,
			})
		}
	}
	return nil
}

// drawFrame draws a frame placeholder: a white box with a grey outline
// and a "Name WxH" label above it.
func drawFrame(dc *gg.Context, m gg.Matrix, f *FrameLayer) error {
	r := TransformBounds(m, Rect{W: f.Width, H: f.Height})
	scale := math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))

	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	if err := dc.Fill(); err != nil {
		return err
	}

	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(frameStrokeWidth * scale)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	if err := dc.Stroke(); err != nil {
		return err
	}

	src, err := labelFont()
	if err != nil {
		Logger().Warn("studio: label font unavailable", "err", err)
		return nil
	}
	p, ok := LookupPreset(f.Preset)
	label := f.Name
	if ok {
		label = fmt.Sprintf("%s %dx%d", f.Name, p.Width, p.Height)
	}
	dc.SetFont(src.Face(frameLabelSize * scale))
	dc.SetRGB(0.35, 0.35, 0.35)
	dc.DrawString(label, r.X, r.Y-frameLabelOffset*scale)
	return nil
}
