// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package studio is the core of a layered design editor built on gogpu/gg.
//
// # Overview
//
// An [Editor] owns an ordered list of layers (frame placeholders sized from
// device and social media presets, and decoded images), a single
// selection, a pannable and zoomable [Viewport], and an interactive tool
// state for cropping and transforming images. Rendering and export derive
// the picture from that state on every call; nothing else holds a copy.
//
// # Quick Start
//
//	e := studio.New()
//	defer e.Close()
//
//	frame, _ := e.AddFrame("Instagram Post")
//	res := e.AddImages(ctx, studio.FileSource("photo.jpg")).Wait()
//	img := res[0].Layer
//
//	e.Select(img.ID)
//	e.SetFilters(img.ID, studio.FilterParams{Brightness: 20, Sepia: true})
//	e.Rotate90(img.ID)
//
//	x, _ := e.ExportAll() // whole stage at 2x
//	x.Save(".")
//
// # Coordinates
//
// Layers live in content coordinates. The viewport maps a content point c
// to the stage point c*Zoom + Pan; pointer and wheel events, crop
// rectangles and handle bounds are in stage coordinates. An image layer's
// X and Y anchor the top-left of its unrotated box; scale, flips and
// rotation apply about the box center.
//
// # Filters
//
// Each image layer carries declarative [FilterParams]. The filtered raster
// is produced lazily on the next render after a change and cached, so
// repaints caused by pan, zoom or other layers reuse it.
//
// # Concurrency
//
// Editor methods are safe for concurrent use. Images decode on a worker
// pool and each successful decode inserts its layer as soon as it
// finishes. After [Editor.Close] late decodes are dropped.
//
// # Logging
//
// studio is silent by default. Use [SetLogger] to route its slog output.
package studio
