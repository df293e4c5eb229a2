package studio

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/gogpu/gg"
)

func TestToolStateString(t *testing.T) {
	tests := []struct {
		s    ToolState
		want string
	}{
		{ToolIdle, "Idle"},
		{ToolCropProposed, "CropProposed"},
		{ToolTransforming, "Transforming"},
		{ToolState(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("ToolState(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestBeginCropNoImage(t *testing.T) {
	var notices []Notice
	e := newTestEditor(t, WithNoticeHandler(func(n Notice) { notices = append(notices, n) }))
	addFrame(t, e, "iPad")

	if err := e.BeginCrop(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("BeginCrop() error = %v, want ErrNoImage", err)
	}
	if e.Tool() != ToolIdle {
		t.Errorf("Tool() = %v, want Idle", e.Tool())
	}
	if len(notices) != 1 || notices[0].Kind != NoticePrecondition || !errors.Is(notices[0].Err, ErrNoImage) {
		t.Errorf("notices = %v, want one precondition notice", notices)
	}
	if _, ok := e.CropRect(); ok {
		t.Error("CropRect() reported a proposal")
	}
}

func TestBeginCropHiddenImageOnly(t *testing.T) {
	e := newTestEditor(t, WithNoticeHandler(func(Notice) {}))
	img := addImage(t, e, "a.png", 50, 50)
	e.ToggleVisible(img.ID)
	if err := e.BeginCrop(); !errors.Is(err, ErrNoImage) {
		t.Errorf("BeginCrop() error = %v, want ErrNoImage", err)
	}
}

func TestBeginCropLocked(t *testing.T) {
	e := newTestEditor(t, WithNoticeHandler(func(Notice) {}))
	img := addImage(t, e, "a.png", 50, 50)
	e.ToggleLock(img.ID)
	if err := e.BeginCrop(); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("BeginCrop() error = %v, want ErrLayerLocked", err)
	}
	if e.Tool() != ToolIdle {
		t.Errorf("Tool() = %v, want Idle", e.Tool())
	}
}

func TestBeginCropInitialRect(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 80)

	if err := e.BeginCrop(); err != nil {
		t.Fatalf("BeginCrop() error = %v", err)
	}
	r, ok := e.CropRect()
	if !ok {
		t.Fatal("CropRect() = false after BeginCrop")
	}
	want := Rect{X: 50, Y: 48, W: 80, H: 64}
	if !rectNear(r, want) {
		t.Errorf("CropRect() = %+v, want %+v", r, want)
	}

	h := e.Handle()
	if h.Target != HandleCrop || h.LayerID != img.ID || !rectNear(h.Bounds, want) {
		t.Errorf("Handle() = %+v, want crop handle on %s", h, img.ID)
	}
}

func TestBeginCropPrefersSelectedImage(t *testing.T) {
	e := newTestEditor(t)
	a := addImage(t, e, "a.png", 40, 40)
	addImage(t, e, "b.png", 40, 40)

	e.Select(a.ID)
	if err := e.BeginCrop(); err != nil {
		t.Fatalf("BeginCrop() error = %v", err)
	}
	if h := e.Handle(); h.LayerID != a.ID {
		t.Errorf("crop target = %s, want selected %s", h.LayerID, a.ID)
	}
}

func TestCropRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 80)
	if img.X != 40 || img.Y != 40 || img.ScaleX != 1 {
		t.Fatalf("image placed at (%v,%v) scale %v, want (40,40) scale 1", img.X, img.Y, img.ScaleX)
	}

	if err := e.BeginCrop(); err != nil {
		t.Fatalf("BeginCrop() error = %v", err)
	}
	if !e.SetCropRect(Rect{X: 60, Y: 50, W: 40, H: 30}) {
		t.Fatal("SetCropRect() rejected a valid rectangle")
	}
	if !e.CommitCrop() {
		t.Fatal("CommitCrop() = false")
	}
	if e.Tool() != ToolIdle {
		t.Errorf("Tool() = %v after commit, want Idle", e.Tool())
	}

	l, _ := e.Layer(img.ID)
	got := l.(*ImageLayer)
	if got.Width != 40 || got.Height != 30 {
		t.Errorf("size = %dx%d, want 40x30", got.Width, got.Height)
	}
	if math.Abs(got.X-60) > 1e-9 || math.Abs(got.Y-50) > 1e-9 {
		t.Errorf("position = (%v,%v), want (60,50)", got.X, got.Y)
	}
	if !got.Cropped() {
		t.Error("Cropped() = false")
	}
	d := got.Source().Data()
	if d[0] != 20 || d[1] != 10 {
		t.Errorf("pixel (0,0) = (%d,%d), want original (20,10)", d[0], d[1])
	}
	if b, _ := e.StageBounds(img.ID); !rectNear(b, Rect{X: 60, Y: 50, W: 40, H: 30}) {
		t.Errorf("StageBounds() = %+v", b)
	}
}

func TestCropFollowsView(t *testing.T) {
	e := newTestEditor(t)
	addImage(t, e, "a.png", 100, 80)
	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	before, _ := e.CropRect()
	e.PanBy(25, -10)
	after, _ := e.CropRect()
	if !rectNear(after, before.Translate(25, -10)) {
		t.Errorf("crop after pan = %+v, want %+v", after, before.Translate(25, -10))
	}
}

func TestCropZoomedView(t *testing.T) {
	e := newTestEditor(t, WithDefaultView(gg.Pt(10, 20), 2))
	img := addImage(t, e, "a.png", 100, 80)
	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	// Content (60,50) 40x30 in stage coordinates.
	if !e.SetCropRect(Rect{X: 130, Y: 120, W: 80, H: 60}) {
		t.Fatal("SetCropRect() rejected")
	}
	if !e.CommitCrop() {
		t.Fatal("CommitCrop() = false")
	}
	l, _ := e.Layer(img.ID)
	got := l.(*ImageLayer)
	if got.Width != 40 || got.Height != 30 {
		t.Errorf("size = %dx%d, want 40x30", got.Width, got.Height)
	}
}

func TestSetCropRectMinSize(t *testing.T) {
	e := newTestEditor(t)
	addImage(t, e, "a.png", 100, 80)

	if e.SetCropRect(Rect{X: 0, Y: 0, W: 50, H: 50}) {
		t.Error("SetCropRect() accepted with no crop proposed")
	}
	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	before, _ := e.CropRect()

	tests := []struct {
		r    Rect
		want bool
	}{
		{Rect{X: 50, Y: 50, W: 19, H: 40}, false},
		{Rect{X: 50, Y: 50, W: 40, H: 10}, false},
		{Rect{X: 50, Y: 50, W: 20, H: 20}, true},
	}
	for _, tt := range tests {
		if got := e.SetCropRect(tt.r); got != tt.want {
			t.Errorf("SetCropRect(%+v) = %v, want %v", tt.r, got, tt.want)
		}
		if !tt.want {
			if r, _ := e.CropRect(); !rectNear(r, before) {
				t.Errorf("rejected rect replaced crop: %+v", r)
			}
		}
	}
}

func TestCommitCropOutsideImage(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 80)
	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	e.SetCropRect(Rect{X: 500, Y: 500, W: 50, H: 50})
	if e.CommitCrop() {
		t.Error("CommitCrop() = true for a rect off the image")
	}
	if e.Tool() != ToolIdle {
		t.Errorf("Tool() = %v, want Idle", e.Tool())
	}
	l, _ := e.Layer(img.ID)
	if l.(*ImageLayer).Cropped() {
		t.Error("image cropped")
	}
}

func TestCommitCropAfterDelete(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 80)
	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	e.Delete(img.ID)
	if e.Tool() != ToolIdle {
		t.Errorf("Tool() = %v after deleting target, want Idle", e.Tool())
	}
	if e.CommitCrop() {
		t.Error("CommitCrop() = true after delete")
	}
}

func TestCropAndTransformExclusive(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 80)

	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	if err := e.BeginTransform(img.ID); err != nil {
		t.Fatal(err)
	}
	if e.Tool() != ToolTransforming {
		t.Fatalf("Tool() = %v, want Transforming", e.Tool())
	}
	if _, ok := e.CropRect(); ok {
		t.Error("crop survived BeginTransform")
	}

	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	if e.Tool() != ToolCropProposed {
		t.Fatalf("Tool() = %v, want CropProposed", e.Tool())
	}
	if _, ok := e.Proposal(); ok {
		t.Error("transform proposal survived BeginCrop")
	}
}

func TestBeginTransformErrors(t *testing.T) {
	e := newTestEditor(t)
	f := addFrame(t, e, "iPad")
	img := addImage(t, e, "a.png", 40, 40)
	e.ToggleLock(img.ID)

	if err := e.BeginTransform(f.ID); !errors.Is(err, ErrNotImage) {
		t.Errorf("BeginTransform(frame) error = %v, want ErrNotImage", err)
	}
	if err := e.BeginTransform(img.ID); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("BeginTransform(locked) error = %v, want ErrLayerLocked", err)
	}
	if err := e.BeginTransform("missing"); err != nil {
		t.Errorf("BeginTransform(missing) error = %v, want nil", err)
	}
	if e.Tool() != ToolIdle {
		t.Errorf("Tool() = %v, want Idle", e.Tool())
	}
}

func TestTransformProposal(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 100)
	if err := e.BeginTransform(img.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		t    Transform
		want bool
	}{
		{"zero scale", Transform{ScaleX: 0, ScaleY: 1}, false},
		{"too small", Transform{ScaleX: 0.1, ScaleY: 1}, false},
		{"min size", Transform{ScaleX: 0.2, ScaleY: 0.2}, true},
		{"flipped", Transform{ScaleX: -1.5, ScaleY: 1, Rotation: 450}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ProposeTransform(tt.t); got != tt.want {
				t.Errorf("ProposeTransform(%+v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}

	p, ok := e.Proposal()
	if !ok || p != (Transform{ScaleX: -1.5, ScaleY: 1, Rotation: 90}) {
		t.Errorf("Proposal() = %+v, %v", p, ok)
	}

	// The model is unchanged until the proposal is committed.
	l, _ := e.Layer(img.ID)
	if l.(*ImageLayer).ScaleX != 1 {
		t.Error("proposal applied before EndTransform")
	}
	h := e.Handle()
	if h.Target != HandleLayer || !rectNear(h.Bounds, Rect{X: 65, Y: 15, W: 100, H: 150}) {
		t.Errorf("Handle() = %+v", h)
	}

	e.EndTransform()
	if e.Tool() != ToolIdle {
		t.Errorf("Tool() = %v, want Idle", e.Tool())
	}
	l, _ = e.Layer(img.ID)
	if got := l.(*ImageLayer).Transform(); got != p {
		t.Errorf("Transform() = %+v, want %+v", got, p)
	}
}

func TestCancelTransform(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 100)
	if err := e.BeginTransform(img.ID); err != nil {
		t.Fatal(err)
	}
	e.ProposeTransform(Transform{ScaleX: 2, ScaleY: 2})
	e.CancelTransform()
	l, _ := e.Layer(img.ID)
	if l.(*ImageLayer).ScaleX != 1 {
		t.Error("cancelled proposal was applied")
	}
	if e.ProposeTransform(Transform{ScaleX: 2, ScaleY: 2}) {
		t.Error("ProposeTransform() accepted while idle")
	}
}

func TestRotate90Wraps(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 60, 40)

	for i, want := range []float64{90, 180, 270, 0, 90} {
		e.Rotate90(img.ID)
		l, _ := e.Layer(img.ID)
		if got := l.(*ImageLayer).Rotation; got != want {
			t.Errorf("after %d rotations Rotation = %v, want %v", i+1, got, want)
		}
	}

	// A quarter turn swaps the displayed extent about the same center.
	b, _ := e.StageBounds(img.ID)
	if !rectNear(b, Rect{X: 40 + 10, Y: 40 - 10, W: 40, H: 60}) {
		t.Errorf("StageBounds() = %+v", b)
	}
}

func TestFlipsAreInvolutions(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 60, 40)

	e.FlipHorizontal(img.ID)
	l, _ := e.Layer(img.ID)
	if got := l.(*ImageLayer).Transform(); got.ScaleX != -1 || got.ScaleY != 1 {
		t.Errorf("after FlipHorizontal Transform() = %+v", got)
	}
	e.FlipVertical(img.ID)
	e.FlipHorizontal(img.ID)
	e.FlipVertical(img.ID)
	l, _ = e.Layer(img.ID)
	if got := l.(*ImageLayer).Transform(); got != img.Transform() {
		t.Errorf("double flips Transform() = %+v, want %+v", got, img.Transform())
	}
	if b, _ := e.StageBounds(img.ID); !rectNear(b, Rect{X: 40, Y: 40, W: 60, H: 40}) {
		t.Errorf("flip moved the layer: %+v", b)
	}
}

func TestFlipKeepsProposalInStep(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 60, 40)
	if err := e.BeginTransform(img.ID); err != nil {
		t.Fatal(err)
	}
	e.FlipHorizontal(img.ID)
	if p, _ := e.Proposal(); p.ScaleX != -1 {
		t.Errorf("Proposal().ScaleX = %v, want -1", p.ScaleX)
	}
}

func TestResetImage(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 600, 400)

	e.SetOpacity(img.ID, 0.5)
	e.SetFilters(img.ID, FilterParams{Sepia: true, Blur: 2})
	e.UpdatePosition(img.ID, 300, 10)
	e.Rotate90(img.ID)
	e.FlipVertical(img.ID)
	if err := e.BeginCrop(); err != nil {
		t.Fatal(err)
	}
	e.CommitCrop()

	e.ResetImage(img.ID)
	l, _ := e.Layer(img.ID)
	once := l.(*ImageLayer)

	if once.Width != 600 || once.Height != 400 || once.Cropped() {
		t.Errorf("source not restored: %dx%d cropped=%v", once.Width, once.Height, once.Cropped())
	}
	if once.Transform() != (Transform{ScaleX: 0.5, ScaleY: 0.5}) {
		t.Errorf("Transform() = %+v, want initial fit", once.Transform())
	}
	if once.X != img.X || once.Y != img.Y {
		t.Errorf("position = (%v,%v), want (%v,%v)", once.X, once.Y, img.X, img.Y)
	}
	if !once.Filters.IsNeutral() {
		t.Errorf("Filters = %+v, want neutral", once.Filters)
	}
	if once.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want kept 0.5", once.Opacity)
	}

	e.ResetImage(img.ID)
	l, _ = e.Layer(img.ID)
	twice := l.(*ImageLayer)
	if twice.version != once.version || twice.Transform() != once.Transform() || twice.X != once.X {
		t.Errorf("second ResetImage changed the layer: %+v vs %+v", twice, once)
	}
}

func TestToolConcurrentAccess(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 80)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				switch i % 4 {
				case 0:
					_ = e.BeginCrop()
					e.SetCropRect(Rect{X: 50, Y: 50, W: 40, H: 40})
					e.CancelCrop()
				case 1:
					_ = e.BeginTransform(img.ID)
					e.ProposeTransform(Transform{ScaleX: 1, ScaleY: 1, Rotation: 30})
					e.CancelTransform()
				case 2:
					e.Rotate90(img.ID)
				case 3:
					_ = e.Handle()
					_ = e.Tool()
				}
			}
		}()
	}
	wg.Wait()
}
