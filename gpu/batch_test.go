package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/vertex"
)

func newBatchDevice(t *testing.T) *HALDevice {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	dev, err := NewHALDevice(device, queue)
	if err != nil {
		t.Fatalf("NewHALDevice() error = %v", err)
	}
	t.Cleanup(dev.Close)
	if _, _, err := dev.Pipeline(); err != nil {
		t.Skipf("Skipping: batch shader did not compile with this naga version: %v", err)
	}
	return dev
}

func TestHALDevice_DrawBatch(t *testing.T) {
	dev := newBatchDevice(t)

	target, _ := dev.NewTexture("target", 32, 32)
	source, _ := dev.NewTexture("source", 16, 16)
	defer target.Destroy()
	defer source.Destroy()

	b := vertex.NewBatch(2 * vertex.QuadVertices)
	b.AddQuad(tilerender.R(0, 0, 16, 16), tilerender.R(0, 0, 16, 16), tilerender.White)
	b.AddQuad(tilerender.R(16, 16, 8, 8), tilerender.R(8, 8, 8, 8), tilerender.Red)

	if err := dev.DrawBatch(target, source, b.Vertices(), tilerender.BlendAlpha); err != nil {
		t.Fatalf("DrawBatch() error = %v", err)
	}
	if err := dev.DrawBatch(target, source, b.Vertices(), tilerender.BlendAlpha); err != nil {
		t.Fatalf("second DrawBatch() error = %v", err)
	}
	if n := len(dev.batch.pipelines); n != 1 {
		t.Errorf("pipelines = %d after two alpha draws, want 1", n)
	}
	if err := dev.DrawBatch(target, source, b.Vertices(), tilerender.BlendAdd); err != nil {
		t.Fatalf("additive DrawBatch() error = %v", err)
	}
	if n := len(dev.batch.pipelines); n != 2 {
		t.Errorf("pipelines = %d after an additive draw, want 2", n)
	}

	dev.Close()
	if len(dev.batch.pipelines) != 0 {
		t.Error("Close() left pipelines behind")
	}
	if dev.batch.layout != nil || dev.shader != nil {
		t.Error("Close() left the layout or shader behind")
	}
}

func TestHALDevice_DrawBatchEmpty(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev, _ := NewHALDevice(device, queue)
	defer dev.Close()

	if err := dev.DrawBatch(nil, nil, nil, tilerender.BlendAlpha); err != nil {
		t.Errorf("DrawBatch() with no vertices error = %v", err)
	}
	if dev.shader != nil {
		t.Error("an empty batch should not create the pipeline")
	}
}

func TestHALDevice_DrawBatchForeignTexture(t *testing.T) {
	dev := newBatchDevice(t)
	other := newBatchDevice(t)

	target, _ := dev.NewTexture("target", 8, 8)
	mine, _ := dev.NewTexture("mine", 8, 8)
	theirs, _ := other.NewTexture("theirs", 8, 8)

	b := vertex.NewBatch(vertex.QuadVertices)
	b.AddQuad(tilerender.R(0, 0, 8, 8), tilerender.R(0, 0, 8, 8), tilerender.White)

	if err := dev.DrawBatch(target, theirs, b.Vertices(), tilerender.BlendNone); !errors.Is(err, ErrForeignTexture) {
		t.Errorf("foreign source error = %v, want ErrForeignTexture", err)
	}
	if err := dev.DrawBatch(theirs, mine, b.Vertices(), tilerender.BlendNone); !errors.Is(err, ErrForeignTexture) {
		t.Errorf("foreign target error = %v, want ErrForeignTexture", err)
	}

	mine.Destroy()
	if err := dev.DrawBatch(target, mine, b.Vertices(), tilerender.BlendNone); !errors.Is(err, ErrDestroyed) {
		t.Errorf("destroyed source error = %v, want ErrDestroyed", err)
	}
}

func TestEncodeVertices(t *testing.T) {
	verts := []vertex.Vertex{
		{Position: vertex.Vec2{X: 1, Y: 2}, TexCoords: vertex.Vec2{X: 3, Y: 4}, Color: tilerender.RGBA(255, 0, 51, 255)},
		{Position: vertex.Vec2{X: 5, Y: 6}},
	}
	buf := encodeVertices(verts)
	if len(buf) != 2*batchVertexStride {
		t.Fatalf("len = %d, want %d", len(buf), 2*batchVertexStride)
	}
	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])) }

	want := []float32{1, 2, 3, 4, 1, 0, 0.2, 1, 5, 6}
	for i, w := range want {
		if got := f(i); math.Abs(float64(got-w)) > 1e-6 {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}
