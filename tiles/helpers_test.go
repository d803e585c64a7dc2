package tiles

import (
	"testing"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/surface"
	"github.com/gogpu/tilerender/vertex"
)

type testTileset struct {
	img *surface.Surface
}

func (t testTileset) TilesImage() *surface.Surface { return t.img }

type testMap struct {
	size    tilerender.Size
	camera  Camera
	surface *surface.Surface
	tileset Tileset
}

func (m *testMap) Size() tilerender.Size { return m.size }
func (m *testMap) Camera() Camera { return m.camera }
func (m *testMap) CameraSurface() *surface.Surface { return m.surface }
func (m *testMap) Tileset() Tileset { return m.tileset }

// newTestMap creates a map of the given size whose camera renders into a
// view-sized surface and whose tileset is a 4×1 strip of red, green, blue
// and white.
func newTestMap(t *testing.T, size tilerender.Size, view tilerender.Rect) (*testMap, *FixedCamera) {
	t.Helper()
	ctx := surface.NewContext()
	t.Cleanup(ctx.Close)

	tiles := ctx.NewSurface(4, 1)
	var px []byte
	for _, c := range []tilerender.Color{tilerender.Red, tilerender.Green, tilerender.Blue, tilerender.White} {
		px = append(px, c.R, c.G, c.B, c.A)
	}
	if err := tiles.SetPixels(px); err != nil {
		t.Fatalf("SetPixels() error = %v", err)
	}

	cam := &FixedCamera{Box: view}
	return &testMap{
		size:    size,
		camera:  cam,
		surface: ctx.NewSurface(view.Width, view.Height),
		tileset: testTileset{img: tiles},
	}, cam
}

// countingPattern records how often its geometry is built and how often
// its updater runs.
type countingPattern struct {
	inner   Pattern
	fills   int
	updates int
}

func (p *countingPattern) DrawnAtItsPosition() bool { return p.inner.DrawnAtItsPosition() }

func (p *countingPattern) FillBatch(b *vertex.Batch, dst tilerender.Rect, ts Tileset, clip tilerender.Rect) Updater {
	p.fills++
	u := p.inner.FillBatch(b, dst, ts, clip)
	if u == nil {
		return nil
	}
	return UpdaterFunc(func(viewport tilerender.Point, clip tilerender.Rect) {
		p.updates++
		u.Update(viewport, clip)
	})
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
