// Package tilerender manages render surfaces and caches tile batches for a
// 2D game runtime.
//
// # Overview
//
// Many small logical render targets are packed into a few large atlas pages
// (internal/atlas). A [surface.Surface] sits on top of that allocator and
// switches lazily between an immutable static image, a mutable atlas-backed
// render target and a deferred draw list. The tiles package turns the
// thousands of tile draws of a map layer into one merged vertex batch per
// grid cell, built lazily the first time the cell becomes visible.
//
// # Quick Start
//
//	ctx := surface.NewContext()
//	defer ctx.Close()
//
//	dst := ctx.NewSurface(320, 240)
//	dst.FillWithColor(tilerender.Black)
//
//	sprite, err := ctx.Load("sprites/hero.png")
//	if err != nil {
//		return err
//	}
//	sprite.Draw(dst, tilerender.Pt(16, 16))
//
// # Architecture
//
// The module is organized into:
//   - Root: value types shared by all packages (Point, Rect, Color, BlendMode)
//     and the package-wide logger
//   - vertex: vertex batches and quad views used by tile patterns
//   - surface: the Surface type and its backings
//   - tiles: the per-layer tile region cache
//   - gpu: optional GPU mirrors of atlas pages (wgpu HAL or gpucontext)
//   - metrics: Prometheus collectors for atlas and tile cache statistics
//
// # Threading
//
// Everything is single-threaded: one render goroutine owns the allocator,
// all surfaces and all tile caches. Only SetLogger and Logger are safe for
// concurrent use.
package tilerender
