package studio

import "errors"

// Sentinel errors returned by Editor operations.
var (
	// ErrNoImage is returned when a tool needs an image layer and none
	// is selected or visible.
	ErrNoImage = errors.New("studio: no image layer to operate on")

	// ErrUnknownPreset is returned by AddFrame for an unrecognised preset name.
	ErrUnknownPreset = errors.New("studio: unknown frame preset")

	// ErrNoSelection is returned by ExportSelection with nothing selected.
	ErrNoSelection = errors.New("studio: no layer selected")

	// ErrNothingToExport is returned when the export target is invisible
	// or has an empty displayed area.
	ErrNothingToExport = errors.New("studio: nothing to export")

	// ErrLayerLocked is returned when an interactive tool targets a locked layer.
	ErrLayerLocked = errors.New("studio: layer is locked")

	// ErrNotImage is returned when an image-only tool targets a frame.
	ErrNotImage = errors.New("studio: layer is not an image")

	// ErrImageTooLarge is returned when a decoded image exceeds the
	// configured pixel limit.
	ErrImageTooLarge = errors.New("studio: image exceeds pixel limit")

	// ErrClosed is returned for work started on or completed after a
	// closed editor.
	ErrClosed = errors.New("studio: editor closed")
)
