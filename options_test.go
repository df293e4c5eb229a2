package studio

import (
	"testing"

	"github.com/gogpu/gg"
)

func applyOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.stageW != 960 || o.stageH != 640 {
		t.Errorf("stage = %vx%v, want 960x640", o.stageW, o.stageH)
	}
	if o.minZoom != 0.1 || o.maxZoom != 5 || o.zoomStep != 1.1 {
		t.Errorf("zoom = [%v, %v] step %v", o.minZoom, o.maxZoom, o.zoomStep)
	}
	if o.exportScale != 2 {
		t.Errorf("exportScale = %v, want 2", o.exportScale)
	}
	if o.minSize != 20 || o.previewCap != 300 {
		t.Errorf("minSize = %v previewCap = %v", o.minSize, o.previewCap)
	}
	if o.notice == nil {
		t.Error("notice handler is nil")
	}
}

func TestOptionsValid(t *testing.T) {
	o := applyOptions(
		WithStageSize(1280, 720),
		WithZoomBounds(0.25, 8),
		WithZoomStep(1.25),
		WithDefaultView(gg.Pt(5, 6), 0.5),
		WithMinSize(40),
		WithPreviewCap(512),
		WithFrameBox(600, 500),
		WithExportScale(3),
		WithCacheBudget(16),
		WithDecodeWorkers(2),
		WithMaxPixels(1000),
	)
	if o.stageW != 1280 || o.stageH != 720 {
		t.Errorf("stage = %vx%v", o.stageW, o.stageH)
	}
	if o.minZoom != 0.25 || o.maxZoom != 8 || o.zoomStep != 1.25 {
		t.Errorf("zoom = [%v, %v] step %v", o.minZoom, o.maxZoom, o.zoomStep)
	}
	if o.defaultPan != gg.Pt(5, 6) || o.defaultZoom != 0.5 {
		t.Errorf("default view = %v @ %v", o.defaultZoom, o.defaultPan)
	}
	if o.minSize != 40 || o.previewCap != 512 || o.frameBoxW != 600 || o.frameBoxH != 500 {
		t.Errorf("sizes = %+v", o)
	}
	if o.exportScale != 3 || o.cacheBudgetMB != 16 || o.decodeWorkers != 2 || o.maxPixels != 1000 {
		t.Errorf("misc = %+v", o)
	}
}

func TestOptionsInvalidIgnored(t *testing.T) {
	o := applyOptions(
		WithStageSize(0, 720),
		WithZoomBounds(2, 1),
		WithZoomBounds(-1, 3),
		WithZoomStep(0.9),
		WithDefaultView(gg.Pt(1, 1), 0),
		WithMinSize(-5),
		WithPreviewCap(0),
		WithFrameBox(10, -1),
		WithExportScale(0),
		WithMaxPixels(-1),
		WithNoticeHandler(nil),
	)
	d := defaultOptions()
	if o.stageW != d.stageW || o.minZoom != d.minZoom || o.maxZoom != d.maxZoom ||
		o.zoomStep != d.zoomStep || o.defaultZoom != d.defaultZoom || o.defaultPan != d.defaultPan ||
		o.minSize != d.minSize || o.previewCap != d.previewCap || o.frameBoxH != d.frameBoxH ||
		o.exportScale != d.exportScale || o.maxPixels != d.maxPixels || o.notice == nil {
		t.Errorf("invalid options changed defaults: %+v", o)
	}
}

func TestDefaultViewClampedToBounds(t *testing.T) {
	v := NewViewport(WithZoomBounds(0.5, 2), WithDefaultView(gg.Point{}, 10))
	if v.Zoom != 2 {
		t.Errorf("Zoom = %v, want clamped 2", v.Zoom)
	}
}
