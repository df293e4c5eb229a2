package studio

import "github.com/gogpu/gg"

// Option configures an Editor during creation.
//
// Example:
//
//	// Defaults: 960x640 stage, zoom in [0.1, 5], 2x export
//	e := studio.New()
//
//	// Single-image editing view with a larger crop minimum
//	e := studio.New(
//	    studio.WithStageSize(1280, 800),
//	    studio.WithDefaultView(gg.Pt(40, 40), 0.8),
//	    studio.WithMinSize(50),
//	)
type Option func(*options)

// options holds the editor configuration.
type options struct {
	stageW, stageH   float64
	minZoom, maxZoom float64
	zoomStep         float64
	defaultPan       gg.Point
	defaultZoom      float64
	minSize          float64
	previewCap       float64
	frameBoxW        float64
	frameBoxH        float64
	exportScale      float64
	cacheBudgetMB    int
	decodeWorkers    int
	maxPixels        int
	notice           func(Notice)
}

// Default configuration values.
const (
	DefaultStageWidth  = 960
	DefaultStageHeight = 640
	DefaultMinZoom     = 0.1
	DefaultMaxZoom     = 5.0
	DefaultZoomStep    = 1.1
	DefaultMinSize     = 20
	DefaultPreviewCap  = 300
	DefaultFrameBox    = 400
	DefaultExportScale = 2
	DefaultMaxPixels   = 64 << 20
)

func defaultOptions() options {
	return options{
		stageW:      DefaultStageWidth,
		stageH:      DefaultStageHeight,
		minZoom:     DefaultMinZoom,
		maxZoom:     DefaultMaxZoom,
		zoomStep:    DefaultZoomStep,
		defaultZoom: 1,
		minSize:     DefaultMinSize,
		previewCap:  DefaultPreviewCap,
		frameBoxW:   DefaultFrameBox,
		frameBoxH:   DefaultFrameBox,
		exportScale: DefaultExportScale,
		maxPixels:   DefaultMaxPixels,
		notice:      logNotice,
	}
}

// WithStageSize sets the viewport size in stage pixels.
// Whole-canvas export covers exactly this area.
func WithStageSize(w, h float64) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.stageW, o.stageH = w, h
		}
	}
}

// WithZoomBounds sets the zoom clamp range.
func WithZoomBounds(minZoom, maxZoom float64) Option {
	return func(o *options) {
		if minZoom > 0 && maxZoom >= minZoom {
			o.minZoom, o.maxZoom = minZoom, maxZoom
		}
	}
}

// WithZoomStep sets the multiplicative zoom factor per wheel notch or
// zoom control press.
func WithZoomStep(step float64) Option {
	return func(o *options) {
		if step > 1 {
			o.zoomStep = step
		}
	}
}

// WithDefaultView sets the pan/zoom pair restored by ResetView.
// It is also the initial view.
func WithDefaultView(pan gg.Point, zoom float64) Option {
	return func(o *options) {
		if zoom > 0 {
			o.defaultPan, o.defaultZoom = pan, zoom
		}
	}
}

// WithMinSize sets the minimum displayed side, in content units, of a crop
// rectangle or transform proposal.
func WithMinSize(n float64) Option {
	return func(o *options) {
		if n > 0 {
			o.minSize = n
		}
	}
}

// WithPreviewCap sets the longest displayed side of a newly added image.
// Images are never upscaled to reach it.
func WithPreviewCap(n float64) Option {
	return func(o *options) {
		if n > 0 {
			o.previewCap = n
		}
	}
}

// WithFrameBox sets the box new frames are scaled down to fit.
func WithFrameBox(w, h float64) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.frameBoxW, o.frameBoxH = w, h
		}
	}
}

// WithExportScale sets the export pixel-density multiplier.
func WithExportScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.exportScale = s
		}
	}
}

// WithCacheBudget sets the filtered raster cache budget in megabytes.
func WithCacheBudget(mb int) Option {
	return func(o *options) {
		o.cacheBudgetMB = mb
	}
}

// WithDecodeWorkers sets the number of concurrent image decoders.
// Zero uses GOMAXPROCS.
func WithDecodeWorkers(n int) Option {
	return func(o *options) {
		o.decodeWorkers = n
	}
}

// WithMaxPixels rejects images whose width*height exceeds n before their
// pixels are decoded. Zero disables the check.
func WithMaxPixels(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxPixels = n
		}
	}
}

// WithNoticeHandler routes user-facing notices to fn instead of the logger.
// fn is called without editor locks held and may call back into the editor.
func WithNoticeHandler(fn func(Notice)) Option {
	return func(o *options) {
		if fn != nil {
			o.notice = fn
		}
	}
}
