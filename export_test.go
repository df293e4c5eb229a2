package studio

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestExportName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo_jpg.png"},
		{"Instagram Post", "instagram_post.png"},
		{"Crème Brûlée", "creme_brulee.png"},
		{"Ärger-2024", "arger_2024.png"},
		{"日本", "__.png"},
		{"", "layer.png"},
		{"ALLCAPS99", "allcaps99.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExportName(tt.in); got != tt.want {
				t.Errorf("ExportName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExportAllSize(t *testing.T) {
	e := newTestEditor(t, WithStageSize(300, 200))
	addFrame(t, e, "Twitter Post")

	x, err := e.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if x.Name != DefaultExportName {
		t.Errorf("Name = %q, want %q", x.Name, DefaultExportName)
	}
	img, err := png.Decode(bytes.NewReader(x.Data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 400 || x.Width != 600 || x.Height != 400 {
		t.Errorf("export size = %v (%dx%d), want 600x400", b, x.Width, x.Height)
	}
}

func TestExportAllIgnoresView(t *testing.T) {
	e := newTestEditor(t, WithStageSize(300, 200))
	addImage(t, e, "a.png", 50, 50)

	before, err := e.ExportAll()
	if err != nil {
		t.Fatal(err)
	}
	e.ZoomIn()
	e.ResetView()
	after, err := e.ExportAll()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before.Data, after.Data) {
		t.Error("exports of the same state differ")
	}
}

func TestExportSelection(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "Crème Brûlée.png", 100, 80)
	e.Select(img.ID)

	x, err := e.ExportSelection()
	if err != nil {
		t.Fatalf("ExportSelection() error = %v", err)
	}
	if x.Name != "creme_brulee_png.png" {
		t.Errorf("Name = %q", x.Name)
	}
	if x.Width != 200 || x.Height != 160 {
		t.Errorf("size = %dx%d, want 200x160", x.Width, x.Height)
	}

	dec, err := png.Decode(bytes.NewReader(x.Data))
	if err != nil {
		t.Fatal(err)
	}
	// The bottom-right source pixel (99,79) covers export pixels (198..199, 158..159).
	r, g, b, a := dec.At(199, 159).RGBA()
	if a>>8 != 255 || r>>8 < 95 || g>>8 < 75 || b>>8 < 195 {
		t.Errorf("corner pixel = (%d,%d,%d,%d)", r>>8, g>>8, b>>8, a>>8)
	}

	// Deterministic across calls.
	again, err := e.ExportSelection()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(x.Data, again.Data) {
		t.Error("repeated ExportSelection() differs")
	}
}

func TestExportSelectionIndependentOfZoom(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 60, 40)
	e.Select(img.ID)

	want, err := e.ExportSelection()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		move func()
	}{
		{"zoom in", func() { e.ZoomIn(); e.ZoomIn() }},
		{"pan", func() { e.PanBy(13, 7) }},
		{"zoom out", func() { e.ZoomOut(); e.ZoomOut(); e.ZoomOut() }},
	}
	for _, tt := range tests {
		tt.move()
		x, err := e.ExportSelection()
		if err != nil {
			t.Fatalf("%s: ExportSelection() error = %v", tt.name, err)
		}
		if x.Width != 120 || x.Height != 80 {
			t.Errorf("%s: size = %dx%d, want 120x80", tt.name, x.Width, x.Height)
		}
		if !bytes.Equal(x.Data, want.Data) {
			t.Errorf("%s: export differs from the unzoomed export", tt.name)
		}
	}
}

func TestExportSelectionOnlySelectedLayer(t *testing.T) {
	e := newTestEditor(t)
	img := addImage(t, e, "a.png", 100, 80)
	over := addImage(t, e, "b.png", 100, 80)
	e.SetFilters(over.ID, FilterParams{Grayscale: true})
	e.Select(img.ID)

	x, err := e.ExportSelection()
	if err != nil {
		t.Fatal(err)
	}

	solo := newTestEditor(t)
	only := addImage(t, solo, "a.png", 100, 80)
	solo.Select(only.ID)
	want, err := solo.ExportSelection()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(x.Data, want.Data) {
		t.Error("selection export includes other layers")
	}
}

func TestExportSelectionFrame(t *testing.T) {
	e := newTestEditor(t)
	f := addFrame(t, e, "Twitter Post")
	e.Select(f.ID)
	x, err := e.ExportSelection()
	if err != nil {
		t.Fatalf("ExportSelection() error = %v", err)
	}
	if x.Width != 800 || x.Height != 450 || x.Name != "twitter_post.png" {
		t.Errorf("export = %s %dx%d", x.Name, x.Width, x.Height)
	}
}

func TestExportErrors(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.ExportSelection(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("ExportSelection() error = %v, want ErrNoSelection", err)
	}

	img := addImage(t, e, "a.png", 10, 10)
	e.Select(img.ID)
	e.ToggleVisible(img.ID)
	if _, err := e.ExportSelection(); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("ExportSelection() error = %v, want ErrNothingToExport", err)
	}
	if _, err := e.Export(); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Export() error = %v, want ErrNothingToExport", err)
	}
}

func TestExportFallsBackToAll(t *testing.T) {
	e := newTestEditor(t, WithStageSize(100, 100), WithExportScale(1))
	x, err := e.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if x.Name != DefaultExportName || x.Width != 100 {
		t.Errorf("Export() = %s %dx%d, want whole stage", x.Name, x.Width, x.Height)
	}
}

func TestExportSave(t *testing.T) {
	e := newTestEditor(t, WithStageSize(40, 30))
	x, err := e.ExportAll()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	path, err := x.Save(dir)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(dir, DefaultExportName) {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, x.Data) {
		t.Error("saved bytes differ")
	}

	if _, err := x.Save(filepath.Join(dir, "missing", "dir")); err == nil {
		t.Error("Save() into a missing directory succeeded")
	}
}
