package studio

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gogpu/gg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultExportName is the file name of a whole-canvas export.
const DefaultExportName = "design.png"

// Export is an encoded PNG produced by one of the Editor export methods.
type Export struct {
	Name          string
	Width, Height int
	Data          []byte
}

// Save writes the export into dir under its Name and returns the path.
func (x *Export) Save(dir string) (string, error) {
	path := filepath.Join(dir, x.Name)
	if err := os.WriteFile(path, x.Data, 0o644); err != nil { //nolint:gosec // exports are meant to be readable
		return "", err
	}
	Logger().Info("studio: export saved", "path", path, "bytes", len(x.Data))
	return path, nil
}

// ExportSelection rasterizes the selected layer's content bounds at the
// export scale. The current pan and zoom do not affect the result.
// Frames export as their placeholder.
//
// Returns ErrNoSelection with nothing selected and ErrNothingToExport
// when the selection is hidden or has no area.
func (e *Editor) ExportSelection() (*Export, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.find(e.selected)
	if !ok {
		return nil, ErrNoSelection
	}
	if !l.Common().Visible {
		return nil, ErrNothingToExport
	}
	w0, h0 := l.Size()
	b := TransformBounds(e.layerMatrix(l), Rect{W: w0, H: h0})
	s := e.opts.exportScale
	w, h := int(math.Ceil(b.W*s)), int(math.Ceil(b.H*s))
	if w <= 0 || h <= 0 {
		return nil, ErrNothingToExport
	}

	m := gg.Scale(s, s).Multiply(gg.Translate(-b.X, -b.Y))
	return e.encode(ExportName(l.Common().Name), w, h, m, l.Common().ID)
}

// ExportAll rasterizes the whole stage, all visible layers in paint order,
// at the export scale.
func (e *Editor) ExportAll() (*Export, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.opts.exportScale
	sw, sh := e.view.Size()
	w, h := int(math.Ceil(sw*s)), int(math.Ceil(sh*s))
	return e.encode(DefaultExportName, w, h, gg.Scale(s, s).Multiply(e.view.Matrix()), "")
}

// Export exports the selection if there is one, otherwise the whole stage.
func (e *Editor) Export() (*Export, error) {
	x, err := e.ExportSelection()
	if errors.Is(err, ErrNoSelection) {
		return e.ExportAll()
	}
	return x, err
}

// encode renders with m mapping content coordinates to output pixels.
// Must be called with e.mu held.
func (e *Editor) encode(name string, w, h int, m gg.Matrix, only string) (*Export, error) {
	pm := gg.NewPixmap(w, h)
	if err := e.render(pm, m, only); err != nil {
		return nil, fmt.Errorf("export %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, pm.ToImage()); err != nil {
		return nil, fmt.Errorf("export %s: %w", name, err)
	}

	Logger().Info("studio: exported", "name", name, "w", w, "h", h, "bytes", buf.Len())
	return &Export{Name: name, Width: w, Height: h, Data: buf.Bytes()}, nil
}

// ExportName derives a PNG file name from a layer name: diacritics are
// folded, the result is lower-cased, and every character other than an
// ASCII letter or digit becomes an underscore.
func ExportName(layerName string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(fold, layerName)
	if err != nil {
		s = layerName
	}
	s = cases.Lower(language.Und).String(s)

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "layer.png"
	}
	return b.String() + ".png"
}
