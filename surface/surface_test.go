// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/vertex"
)

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	c := NewContext(append([]Option{WithPageSize(256)}, opts...)...)
	t.Cleanup(c.Close)
	return c
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

// solidPixels returns w*h pixels of color c.
func solidPixels(w, h int, c tilerender.Color) []byte {
	return bytes.Repeat([]byte{c.R, c.G, c.B, c.A}, w*h)
}

// TestNewSurface tests creation of a transparent dynamic surface.
func TestNewSurface(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(16, 8)

	if s.Width() != 16 || s.Height() != 8 {
		t.Errorf("size = %v, want 16x8", s.Size())
	}
	if s.Kind() != KindDynamic {
		t.Errorf("Kind() = %v, want Dynamic", s.Kind())
	}
	if s.Opacity() != 255 || s.BlendMode() != tilerender.BlendAlpha {
		t.Errorf("defaults: opacity %d, blend %v", s.Opacity(), s.BlendMode())
	}
	for i := range 16 * 8 {
		if !s.IsPixelTransparent(i) {
			t.Fatalf("pixel %d not transparent", i)
		}
	}
	expectPanic(t, "empty size", func() { c.NewSurface(0, 4) })
	expectPanic(t, "larger than page", func() { c.NewSurface(257, 4) })
}

// TestSetPixelsRoundTrip tests that written pixels are visible without an
// explicit flush.
func TestSetPixelsRoundTrip(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(3, 2)

	data := make([]byte, 3*2*4)
	for i := range data {
		data[i] = byte(i * 7)
	}
	if err := s.SetPixels(data); err != nil {
		t.Fatalf("SetPixels() error = %v", err)
	}
	for i := range 6 {
		want := tilerender.RGBA(data[i*4], data[i*4+1], data[i*4+2], data[i*4+3])
		if got := s.Pixel(i); got != want {
			t.Errorf("Pixel(%d) = %v, want %v", i, got, want)
		}
	}
	if !bytes.Equal(s.Pixels(), data) {
		t.Error("Pixels() differs from SetPixels() input")
	}

	if err := s.SetPixels(data[:5]); !errors.Is(err, ErrPixelBufferSize) {
		t.Errorf("short SetPixels() error = %v, want ErrPixelBufferSize", err)
	}
	expectPanic(t, "index out of range", func() { s.Pixel(6) })
}

// TestPixelCache tests that reads reuse one snapshot between mutations.
func TestPixelCache(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(4, 4)
	s.FillWithColor(tilerender.Red)

	first := s.snapshot()
	if s.snapshot() != first {
		t.Error("second read without mutation took a new snapshot")
	}
	flushes := c.AtlasStats().Flushes

	s.FillRect(tilerender.R(0, 0, 1, 1), tilerender.Blue)
	if got := s.Pixel(0); got != tilerender.Blue {
		t.Errorf("Pixel(0) after mutation = %v, want blue", got)
	}
	if s.snapshot() == first {
		t.Error("mutation did not invalidate the snapshot")
	}
	if c.AtlasStats().Flushes != flushes+1 {
		t.Errorf("flushes = %d, want %d", c.AtlasStats().Flushes, flushes+1)
	}
}

// TestFillWithColorBlends tests alpha blending of translucent fills.
func TestFillWithColorBlends(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(2, 2)
	s.FillWithColor(tilerender.White)
	s.FillWithColor(tilerender.RGBA(0, 0, 0, 128))

	got := s.Pixel(0)
	if got.A != 255 || got.R < 120 || got.R > 135 {
		t.Errorf("blended pixel = %v, want opaque mid grey", got)
	}
}

// TestClear tests that clearing overwrites rather than blends.
func TestClear(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(4, 1)
	s.FillWithColor(tilerender.Green)
	s.ClearRect(tilerender.R(2, 0, 5, 5))

	if s.IsPixelTransparent(1) || !s.IsPixelTransparent(2) || !s.IsPixelTransparent(3) {
		t.Errorf("after ClearRect: %v", s.Pixels())
	}
	s.Clear()
	for i := range 4 {
		if s.Pixel(i) != tilerender.Transparent {
			t.Errorf("Pixel(%d) = %v after Clear", i, s.Pixel(i))
		}
	}
}

// TestDrawOpacityAndBlend tests that the source opacity and blend mode
// apply when drawing.
func TestDrawOpacityAndBlend(t *testing.T) {
	c := newTestContext(t)
	src := c.NewSurface(2, 2)
	src.FillWithColor(tilerender.Red)
	dst := c.NewSurface(4, 4)

	src.SetOpacity(0)
	src.Draw(dst, tilerender.Pt(0, 0))
	if !dst.IsPixelTransparent(0) {
		t.Errorf("opacity 0 draw changed pixel: %v", dst.Pixel(0))
	}

	src.SetOpacity(255)
	src.Draw(dst, tilerender.Pt(2, 2))
	if got := dst.Pixel(2*4 + 2); got != tilerender.Red {
		t.Errorf("drawn pixel = %v, want red", got)
	}

	tint := c.NewSurface(2, 2)
	tint.FillWithColor(tilerender.RGB(0, 255, 255))
	tint.SetBlendMode(tilerender.BlendMultiply)
	tint.Draw(dst, tilerender.Pt(2, 2))
	if got := dst.Pixel(2*4 + 2); got.R != 0 || got.A != 255 {
		t.Errorf("multiplied pixel = %v, want black", got)
	}
}

// TestDrawRegion tests drawing a clipped sub-rectangle.
func TestDrawRegion(t *testing.T) {
	c := newTestContext(t)
	src := c.NewSurface(4, 4)
	src.FillRect(tilerender.R(2, 2, 2, 2), tilerender.Blue)

	dst := c.NewSurface(4, 4)
	src.DrawRegion(tilerender.R(2, 2, 4, 4), dst, tilerender.Pt(0, 0))

	if got := dst.Pixel(0); got != tilerender.Blue {
		t.Errorf("Pixel(0) = %v, want blue", got)
	}
	if got := dst.Pixel(2); got != tilerender.Transparent {
		t.Errorf("Pixel(2) = %v, want transparent (outside source)", got)
	}
}

// TestDrawOntoSelf tests compositing a surface onto itself.
func TestDrawOntoSelf(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(4, 2)
	s.FillRect(tilerender.R(0, 0, 2, 2), tilerender.Red)
	s.DrawRegion(tilerender.R(0, 0, 2, 2), s, tilerender.Pt(2, 0))

	for i := range 8 {
		if got := s.Pixel(i); got != tilerender.Red {
			t.Errorf("Pixel(%d) = %v, want red", i, got)
		}
	}
}

// TestDrawBatch tests drawing a textured vertex batch.
func TestDrawBatch(t *testing.T) {
	c := newTestContext(t)
	tiles := c.NewSurface(4, 2)
	tiles.FillRect(tilerender.R(0, 0, 2, 2), tilerender.Red)
	tiles.FillRect(tilerender.R(2, 0, 2, 2), tilerender.Green)

	b := vertex.NewBatch(12)
	b.AddQuad(tilerender.R(0, 0, 2, 2), tilerender.R(2, 0, 2, 2), tilerender.White)
	b.AddQuad(tilerender.R(2, 0, 2, 2), tilerender.R(0, 0, 2, 2), tilerender.White)

	dst := c.NewSurface(8, 8)
	dst.DrawBatch(b, tilerender.Pt(4, 4), tiles)

	if got := dst.Pixel(4*8 + 4); got != tilerender.Green {
		t.Errorf("first quad = %v, want green", got)
	}
	if got := dst.Pixel(4*8 + 6); got != tilerender.Red {
		t.Errorf("second quad = %v, want red", got)
	}
	if got := dst.Pixel(0); got != tilerender.Transparent {
		t.Errorf("outside batch = %v", got)
	}
}

// TestSeal tests that sealing snapshots pixels into a new static surface.
func TestSeal(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(5, 3)
	s.FillRect(tilerender.R(1, 1, 3, 1), tilerender.RGBA(10, 20, 30, 200))
	s.SetOpacity(99)
	s.SetBlendMode(tilerender.BlendAdd)

	sealed := s.Seal()
	if sealed.Kind() != KindStatic {
		t.Errorf("sealed Kind() = %v, want Static", sealed.Kind())
	}
	if s.Kind() != KindDynamic {
		t.Errorf("original Kind() = %v, want Dynamic", s.Kind())
	}
	if !bytes.Equal(sealed.Pixels(), s.Pixels()) {
		t.Error("sealed pixels differ from original")
	}
	if sealed.Opacity() != 99 || sealed.BlendMode() != tilerender.BlendAdd {
		t.Errorf("sealed opacity %d blend %v", sealed.Opacity(), sealed.BlendMode())
	}

	want := s.Pixel(1*5 + 1)
	live := c.AtlasStats().LiveBins
	s.Release()
	if c.AtlasStats().LiveBins != live-1 {
		t.Errorf("LiveBins after releasing original = %d, want %d", c.AtlasStats().LiveBins, live-1)
	}
	if got := sealed.Pixel(1*5 + 1); got != want || got.A != 200 {
		t.Errorf("sealed pixel = %v, want %v", got, want)
	}
}

// TestStaticPromotion tests that the first mutation of a static surface
// moves its pixels into the atlas.
func TestStaticPromotion(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(2, 2)
	s.FillWithColor(tilerender.Blue)
	sealed := s.Seal()
	s.Release()

	if c.AtlasStats().LiveBins != 0 {
		t.Fatalf("LiveBins = %d before promotion", c.AtlasStats().LiveBins)
	}
	sealed.FillRect(tilerender.R(0, 0, 1, 1), tilerender.Red)

	if sealed.Kind() != KindDynamic {
		t.Errorf("Kind() after mutation = %v, want Dynamic", sealed.Kind())
	}
	if c.AtlasStats().LiveBins != 1 {
		t.Errorf("LiveBins = %d after promotion, want 1", c.AtlasStats().LiveBins)
	}
	if sealed.Pixel(0) != tilerender.Red || sealed.Pixel(3) != tilerender.Blue {
		t.Errorf("promoted pixels = %v %v", sealed.Pixel(0), sealed.Pixel(3))
	}
}

// TestDrawFromStaticKeepsSource tests that drawing from a static surface
// promotes only the destination.
func TestDrawFromStaticKeepsSource(t *testing.T) {
	c := newTestContext(t)
	tmp := c.NewSurface(2, 2)
	tmp.FillWithColor(tilerender.Green)
	src := tmp.Seal()
	tmp.Release()

	dstTmp := c.NewSurface(2, 2)
	dst := dstTmp.Seal()
	dstTmp.Release()

	src.Draw(dst, tilerender.Pt(0, 0))
	if src.Kind() != KindStatic {
		t.Errorf("source Kind() = %v, want Static", src.Kind())
	}
	if dst.Kind() != KindDynamic {
		t.Errorf("destination Kind() = %v, want Dynamic", dst.Kind())
	}
	if dst.Pixel(3) != tilerender.Green {
		t.Errorf("destination pixel = %v", dst.Pixel(3))
	}
}

// TestRelease tests idempotent release and use-after-release.
func TestRelease(t *testing.T) {
	c := newTestContext(t)
	s := c.NewSurface(4, 4)
	id := s.ID()
	if got, ok := c.Lookup(id); !ok || got != s {
		t.Fatal("Lookup() did not find live surface")
	}

	s.Release()
	s.Release()
	if _, ok := c.Lookup(id); ok {
		t.Error("Lookup() found released surface")
	}
	if c.AtlasStats().LiveBins != 0 {
		t.Errorf("LiveBins = %d, want 0", c.AtlasStats().LiveBins)
	}
	expectPanic(t, "fill after release", func() { s.FillWithColor(tilerender.Red) })
	expectPanic(t, "draw from released", func() { s.Draw(c.NewSurface(1, 1), tilerender.Pt(0, 0)) })
}
