package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/studio"
	"github.com/spf13/cobra"
)

// composeFlags describes a composition built from flags. Image edits apply
// to every image layer.
type composeFlags struct {
	frames  []string
	images  []string
	filters studio.FilterParams
	opacity float64
	rotate  int
	flipH   bool
	flipV   bool
	crop    string
	selName string
	hide    []string
}

func (f *composeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringArrayVar(&f.frames, "frame", nil, "Add a frame for the named preset (repeatable)")
	fs.StringArrayVar(&f.images, "image", nil, "Add an image file (repeatable)")
	fs.IntVar(&f.filters.Brightness, "brightness", 0, "Brightness in [-100, 100]")
	fs.IntVar(&f.filters.Contrast, "contrast", 0, "Contrast in [-100, 100]")
	fs.IntVar(&f.filters.Blur, "blur", 0, "Blur radius in [0, 20]")
	fs.BoolVar(&f.filters.Grayscale, "grayscale", false, "Convert images to grayscale")
	fs.BoolVar(&f.filters.Sepia, "sepia", false, "Apply a sepia tone")
	fs.Float64Var(&f.opacity, "opacity", 1, "Image opacity in [0, 1]")
	fs.IntVar(&f.rotate, "rotate", 0, "Quarter turns clockwise")
	fs.BoolVar(&f.flipH, "flip-h", false, "Flip images horizontally")
	fs.BoolVar(&f.flipV, "flip-v", false, "Flip images vertically")
	fs.StringVar(&f.crop, "crop", "", "Crop the top image to a stage rectangle x,y,w,h")
	fs.StringVar(&f.selName, "select", "", "Select the layer with this name; compose exports only it")
	fs.StringArrayVar(&f.hide, "hide", nil, "Hide layers with this name (repeatable)")
}

// build creates an editor holding the composition.
func (f *composeFlags) build(ctx context.Context, cfg Config) (*studio.Editor, error) {
	e := studio.New(cfg.Options()...)

	for _, name := range f.frames {
		if _, err := e.AddFrame(name); err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("frame %q: %w", name, err)
		}
	}

	sources := make([]studio.Source, len(f.images))
	for i, path := range f.images {
		sources[i] = studio.FileSource(path)
	}
	var errs []error
	for _, r := range e.AddImages(ctx, sources...).Wait() {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		_ = e.Close()
		return nil, err
	}

	for _, l := range e.Layers() {
		if l.Kind() != studio.KindImage {
			continue
		}
		id := l.Common().ID
		e.SetFilters(id, f.filters)
		e.SetOpacity(id, f.opacity)
		for range ((f.rotate % 4) + 4) % 4 {
			e.Rotate90(id)
		}
		if f.flipH {
			e.FlipHorizontal(id)
		}
		if f.flipV {
			e.FlipVertical(id)
		}
	}

	if f.crop != "" {
		r, err := parseRect(f.crop)
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		if err := e.BeginCrop(); err != nil {
			_ = e.Close()
			return nil, err
		}
		if !e.SetCropRect(r) || !e.CommitCrop() {
			_ = e.Close()
			return nil, fmt.Errorf("crop %s: rectangle rejected", f.crop)
		}
	}

	for _, l := range e.Layers() {
		b := l.Common()
		for _, name := range f.hide {
			if strings.EqualFold(b.Name, name) {
				e.ToggleVisible(b.ID)
			}
		}
		if f.selName != "" && strings.EqualFold(b.Name, f.selName) {
			e.Select(b.ID)
		}
	}
	if f.selName != "" {
		if _, ok := e.Selected(); !ok {
			_ = e.Close()
			return nil, fmt.Errorf("select %q: no such layer", f.selName)
		}
	}
	return e, nil
}

func parseRect(s string) (studio.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return studio.Rect{}, fmt.Errorf("rectangle %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return studio.Rect{}, fmt.Errorf("rectangle %q: %w", s, err)
		}
		v[i] = f
	}
	return studio.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

func buildComposeCmd(cfg *Config) *cobra.Command {
	var (
		flags composeFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose layers and export a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.build(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			x, err := e.Export()
			if err != nil {
				return err
			}
			path, err := x.Save(out)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d)\n", path, x.Width, x.Height)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", ".", "Output directory")
	return cmd
}
