package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gogpu/gg"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Source is one image input to AddImages.
type Source struct {
	// Name labels the resulting layer and any notice about the source.
	Name string
	open func() (io.ReadCloser, error)
}

// FileSource reads the image at path. The layer is named after the
// file's base name.
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		open: func() (io.ReadCloser, error) { return os.Open(path) }, //nolint:gosec // path is user-provided intentionally
	}
}

// BytesSource decodes an in-memory encoded image.
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// ReaderSource decodes an image read from r. r is consumed on a decode
// worker.
func ReaderSource(name string, r io.Reader) Source {
	return Source{
		Name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// errEmptyImage is returned for images with a zero dimension.
var errEmptyImage = errors.New("empty image")

// ImageResult is the outcome of decoding one source.
type ImageResult struct {
	Source string
	// Layer is a snapshot of the inserted layer, nil on failure.
	Layer *ImageLayer
	Err   error
}

// Batch tracks the decodes started by one AddImages call.
type Batch struct {
	results []ImageResult
	wg      sync.WaitGroup
	done    chan struct{}
}

// Done is closed once every source in the batch has resolved.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Wait blocks until every source has resolved and returns the results in
// source order.
func (b *Batch) Wait() []ImageResult {
	<-b.done
	out := make([]ImageResult, len(b.results))
	copy(out, b.results)
	return out
}

// AddImages decodes sources concurrently. Each successful decode inserts
// its own layer as soon as it finishes, independent of the others, so
// layer order follows completion order. A failing source is reported as
// a decode notice and in its ImageResult and never affects its siblings.
//
// Sources not yet started when ctx ends fail with ctx.Err(). Decodes that
// start or finish after Close are dropped without a notice and report
// ErrClosed.
func (e *Editor) AddImages(ctx context.Context, sources ...Source) *Batch {
	e.mu.Lock()
	closed, epoch := e.closed, e.epoch
	e.mu.Unlock()

	b := &Batch{
		results: make([]ImageResult, len(sources)),
		done:    make(chan struct{}),
	}
	b.wg.Add(len(sources))

	for i, src := range sources {
		if closed {
			b.results[i] = ImageResult{Source: src.Name, Err: ErrClosed}
			b.wg.Done()
			continue
		}
		err := e.decodePool.Submit(ctx, func() {
			defer b.wg.Done()
			b.results[i] = e.decodeOne(ctx, epoch, src)
		})
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				err = ErrClosed
			}
			b.results[i] = ImageResult{Source: src.Name, Err: err}
			b.wg.Done()
		}
	}

	go func() {
		b.wg.Wait()
		close(b.done)
	}()
	return b
}

func (e *Editor) decodeOne(ctx context.Context, epoch uint64, src Source) ImageResult {
	res := ImageResult{Source: src.Name}
	if !e.live(epoch) {
		res.Err = ErrClosed
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	pm, err := decodeSource(src, e.opts.maxPixels)
	if err != nil {
		if !e.live(epoch) {
			res.Err = ErrClosed
			return res
		}
		res.Err = fmt.Errorf("decode %s: %w", src.Name, err)
		e.notify(Notice{Kind: NoticeDecode, Source: src.Name, Err: res.Err})
		return res
	}

	l, ok := e.insertImage(epoch, src.Name, pm)
	if !ok {
		res.Err = ErrClosed
		return res
	}
	res.Layer = l
	Logger().Info("studio: image decoded", "name", src.Name, "w", l.Width, "h", l.Height)
	return res
}

// decodeSource reads and decodes src into a premultiplied pixmap.
// The size limit is checked from the header before pixels are decoded.
func decodeSource(src Source, maxPixels int) (*gg.Pixmap, error) {
	if src.open == nil {
		return nil, errors.New("source has no data")
	}
	rc, err := src.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errEmptyImage
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return pixmapFromImage(img), nil
}

// pixmapFromImage converts img to a pixmap. image.RGBA is premultiplied
// like gg.Pixmap, so rows are copied directly.
func pixmapFromImage(img image.Image) *gg.Pixmap {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	pm := gg.NewPixmap(b.Dx(), b.Dy())
	data := pm.Data()
	rowBytes := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		copy(data[y*rowBytes:(y+1)*rowBytes], rgba.Pix[y*rgba.Stride:y*rgba.Stride+rowBytes])
	}
	return pm
}
