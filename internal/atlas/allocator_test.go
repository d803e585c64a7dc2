package atlas

import (
	"errors"
	"testing"

	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/image"
)

type recordingTexture struct {
	w, h      int
	uploads   int
	destroyed bool
	err       error
}

func (r *recordingTexture) Width() int  { return r.w }
func (r *recordingTexture) Height() int { return r.h }
func (r *recordingTexture) Destroy()    { r.destroyed = true }

func (r *recordingTexture) UpdateRegion(_, _, _, _ int, _ []byte) error {
	r.uploads++
	return r.err
}

type recordingDevice struct {
	textures []*recordingTexture
	err      error
}

func (d *recordingDevice) NewTexture(_ string, w, h int) (gpu.Texture, error) {
	if d.err != nil {
		return nil, d.err
	}
	tex := &recordingTexture{w: w, h: h}
	d.textures = append(d.textures, tex)
	return tex, nil
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

func TestAllocatorPlacement(t *testing.T) {
	a := New()

	v1 := a.NewView(300, 200)
	v2 := a.NewView(300, 200)
	if len(a.Pages()) != 1 {
		t.Fatalf("Pages() = %d after two small views, want 1", len(a.Pages()))
	}
	if v1.Page() != v2.Page() {
		t.Error("both 300x200 views should share the first page")
	}
	if v1.Rect().Overlaps(v2.Rect()) {
		t.Errorf("views overlap: %v %v", v1.Rect(), v2.Rect())
	}

	v3 := a.NewView(800, 800)
	if len(a.Pages()) != 2 {
		t.Fatalf("Pages() = %d after 800x800 view, want 2", len(a.Pages()))
	}
	if v3.Page().Index() != 1 {
		t.Errorf("800x800 view on page %d, want 1", v3.Page().Index())
	}

	s := a.Stats()
	if s.LiveBins != 3 || s.Pages != 2 {
		t.Errorf("Stats() = %+v", s)
	}
	if want := 2*300*200 + 800*800; s.UsedArea != want {
		t.Errorf("UsedArea = %d, want %d", s.UsedArea, want)
	}
	if s.Utilization() <= 0 || s.Utilization() > 1 {
		t.Errorf("Utilization() = %v", s.Utilization())
	}
}

func TestAllocatorFatal(t *testing.T) {
	a := New(WithPageSize(64))
	expectPanic(t, "oversize", func() { a.Allocate(65, 1) })
	expectPanic(t, "zero", func() { a.Allocate(0, 10) })

	failing := New(WithDevice(&recordingDevice{err: errors.New("out of memory")}))
	expectPanic(t, "texture failure", func() { failing.Allocate(10, 10) })

	a.Close()
	expectPanic(t, "closed", func() { a.Allocate(1, 1) })
}

func TestAllocatorReleaseEmptyPages(t *testing.T) {
	dev := &recordingDevice{}
	pool := image.NewPool(4)
	a := New(WithPageSize(128), WithDevice(dev), WithPool(pool))

	v1 := a.NewView(128, 128)
	v2 := a.NewView(128, 128)
	v3 := a.NewView(64, 64)
	if len(a.Pages()) != 3 {
		t.Fatalf("Pages() = %d, want 3", len(a.Pages()))
	}

	v2.Release()
	v2.Release()
	if n := a.ReleaseEmptyPages(); n != 1 {
		t.Fatalf("ReleaseEmptyPages() = %d, want 1", n)
	}
	if !dev.textures[1].destroyed {
		t.Error("released page texture not destroyed")
	}
	if pool.Len(128, 128) != 2 {
		t.Errorf("pool holds %d buffers, want 2", pool.Len(128, 128))
	}
	if v3.Page().Index() != 1 {
		t.Errorf("remaining page index = %d, want 1", v3.Page().Index())
	}
	if v1.Page().Index() != 0 {
		t.Errorf("first page index = %d, want 0", v1.Page().Index())
	}

	// Reuse of pooled buffers must start from transparent pixels.
	v4 := a.NewView(128, 128)
	if got := v4.Image().Pixel(5, 5); got.A != 0 {
		t.Errorf("new view pixel = %v, want transparent", got)
	}
}

func TestAllocatorClose(t *testing.T) {
	dev := &recordingDevice{}
	a := New(WithDevice(dev))
	v := a.NewView(10, 10)
	a.Close()
	a.Close()

	v.Release()
	if !dev.textures[0].destroyed {
		t.Error("Close() did not destroy page texture")
	}
	if len(a.Pages()) != 0 {
		t.Errorf("Pages() = %d after Close, want 0", len(a.Pages()))
	}
}
