package main

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/studio"
	"github.com/spf13/cobra"
)

func buildPreviewCmd(cfg *Config) *cobra.Command {
	var flags composeFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show a composition in a window",
		Long:  "Opens a window showing the composition. Space selects the next layer.\nDelete removes it, Escape clears the selection, + and - zoom, 0 resets the view.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.build(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()
			return runPreview(e)
		},
	}
	flags.register(cmd)
	return cmd
}

func runPreview(e *studio.Editor) error {
	sw, sh := e.View().Size()
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle("studio").
		WithSize(int(sw), int(sh)))

	var canvas *ggcanvas.Canvas
	var frame *gg.Pixmap

	app.OnDraw(func(dc *gogpu.Context) {
		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}
		if canvas == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			c, err := ggcanvas.New(provider, w, h)
			if err != nil {
				slog.Error("preview: create canvas", "error", err)
				return
			}
			canvas = c
		}
		if cw, ch := canvas.Size(); cw != w || ch != h {
			if err := canvas.Resize(w, h); err != nil {
				slog.Warn("preview: resize", "error", err)
			}
		}
		if frame == nil || frame.Width() != w || frame.Height() != h {
			frame = gg.NewPixmap(w, h)
			e.SetStageSize(float64(w), float64(h))
		}

		frame.Clear(gg.RGBA{R: 0.93, G: 0.93, B: 0.94, A: 1})
		if err := e.Render(frame, gg.Identity()); err != nil {
			slog.Warn("preview: render", "error", err)
		}
		h0 := e.Handle()

		err := canvas.Draw(func(cc *gg.Context) {
			cc.DrawImage(gg.ImageBufFromImage(frame.ToImage()), 0, 0)
			if h0.Attached() {
				b := h0.Bounds
				cc.SetRGBA(0.1, 0.45, 0.95, 1)
				cc.SetLineWidth(1.5)
				cc.DrawRectangle(b.X, b.Y, b.W, b.H)
				_ = cc.Stroke()
			}
		})
		if err != nil {
			slog.Warn("preview: draw", "error", err)
			return
		}
		if err := canvas.RenderTo(dc.AsTextureDrawer()); err != nil {
			slog.Warn("preview: present", "error", err)
		}
	})

	app.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key == gpucontext.KeySpace {
			selectNext(e)
			return
		}
		if k, ok := editorKey(key); ok {
			e.KeyDown(k)
		}
	})

	app.OnClose(func() {
		if canvas != nil {
			_ = canvas.Close()
		}
	})

	if err := app.Run(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

// editorKey maps a window key to an editor shortcut.
func editorKey(key gpucontext.Key) (studio.Key, bool) {
	switch key {
	case gpucontext.KeyDelete, gpucontext.KeyBackspace:
		return studio.KeyDelete, true
	case gpucontext.KeyEscape:
		return studio.KeyEscape, true
	case gpucontext.KeyEqual, gpucontext.KeyNumpadAdd:
		return studio.KeyPlus, true
	case gpucontext.KeyMinus, gpucontext.KeyNumpadSubtract:
		return studio.KeyMinus, true
	case gpucontext.Key0, gpucontext.KeyNumpad0:
		return studio.KeyZero, true
	}
	return 0, false
}

// selectNext selects the bottom-most layer other than the current
// selection. Selecting moves a layer to the top, so repeated calls cycle
// through every layer.
func selectNext(e *studio.Editor) {
	ls := e.Layers()
	if len(ls) == 0 {
		return
	}
	cur, ok := e.Selected()
	for _, l := range ls {
		if !ok || l.Common().ID != cur.Common().ID {
			e.Select(l.Common().ID)
			return
		}
	}
}
