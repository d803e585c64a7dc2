// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides drawable surfaces packed into atlas pages.
//
// A [Surface] is the user-facing drawable. It always owns exactly one
// backing, one of:
//
//   - Static: an immutable image, optionally mirrored into a GPU texture.
//     Surfaces loaded from files start out static.
//   - Dynamic: a render target occupying one rectangle of an atlas page.
//     Surfaces created with [Context.NewSurface] start out dynamic.
//   - Deferred: an ordered list of recorded draw operations, replayed
//     when the surface is read or promoted.
//
// The first mutating call on a static surface promotes it to a dynamic
// one, copying its pixels into a fresh atlas rectangle. [Surface.Seal]
// goes the other way: it snapshots the current pixels into a new static
// surface so the old render target can be released.
//
// # Context
//
// A [Context] owns the atlas allocator shared by all surfaces it creates,
// the decoded-image cache used by [Context.Load], and a registry of live
// surfaces by [ID]. There is no global state; pass the context to
// whatever creates surfaces.
//
//	ctx := surface.NewContext(surface.WithImageSource(surface.FSSource{FS: assets}))
//	defer ctx.Close()
//
//	tiles, err := ctx.Load("tilesets/forest.png")
//	if err != nil {
//	    return err
//	}
//	screen := ctx.NewSurface(320, 240)
//	screen.FillWithColor(tilerender.Black)
//	tiles.DrawRegion(tilerender.R(0, 0, 16, 16), screen, tilerender.Pt(8, 8))
//
// # Pixel Access
//
// Pixel reads ([Surface.Pixels], [Surface.Pixel],
// [Surface.IsPixelTransparent]) come from a CPU snapshot that is taken on
// the first read after a mutation and reused until the next one.
//
// # Thread Safety
//
// Surfaces and contexts are not safe for concurrent use. A single render
// goroutine owns a context and every surface created from it.
package surface
