package tiles

import (
	"testing"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/vertex"
)

func TestWrap(t *testing.T) {
	tests := []struct{ v, n, want int }{
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 0},
		{9, 4, 1},
		{-1, 4, 3},
		{-8, 4, 0},
	}
	for _, tt := range tests {
		if got := wrap(tt.v, tt.n); got != tt.want {
			t.Errorf("wrap(%d, %d) = %d, want %d", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestSimplePatternRepeats(t *testing.T) {
	tests := []struct {
		name  string
		dst   tilerender.Rect
		clip  tilerender.Rect
		quads int
	}{
		{"exact", tilerender.R(0, 0, 8, 8), tilerender.R(0, 0, 64, 64), 4},
		{"partial repetition", tilerender.R(0, 0, 6, 4), tilerender.R(0, 0, 64, 64), 2},
		{"clipped", tilerender.R(-4, 0, 8, 4), tilerender.R(0, 0, 64, 64), 1},
		{"outside clip", tilerender.R(100, 0, 8, 4), tilerender.R(0, 0, 64, 64), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := vertex.NewBatch(0)
			p := SimplePattern{Source: tilerender.R(0, 0, 4, 4)}
			if u := p.FillBatch(b, tt.dst, nil, tt.clip); u != nil {
				t.Error("FillBatch() returned an updater")
			}
			if got := b.Len() / vertex.QuadVertices; got != tt.quads {
				t.Errorf("quads = %d, want %d", got, tt.quads)
			}
		})
	}
}

func TestSimplePatternClipsTexture(t *testing.T) {
	b := vertex.NewBatch(0)
	SimplePattern{Source: tilerender.R(10, 20, 4, 4)}.FillBatch(b, tilerender.R(-1, -2, 4, 4), nil, tilerender.R(0, 0, 64, 64))

	q := b.View(0, vertex.QuadVertices)
	tl, br := q.Vertex(0), q.Vertex(2)
	if tl.Position != (vertex.Vec2{X: 0, Y: 0}) || br.Position != (vertex.Vec2{X: 3, Y: 2}) {
		t.Errorf("positions = %v..%v", tl.Position, br.Position)
	}
	if tl.TexCoords != (vertex.Vec2{X: 11, Y: 22}) || br.TexCoords != (vertex.Vec2{X: 14, Y: 24}) {
		t.Errorf("uvs = %v..%v", tl.TexCoords, br.TexCoords)
	}
}

func TestSelfScrollingPatternUpdaters(t *testing.T) {
	b := vertex.NewBatch(0)
	p := SelfScrollingPattern{Source: tilerender.R(0, 0, 4, 4)}

	u := p.FillBatch(b, tilerender.R(0, 0, 8, 4), nil, tilerender.R(0, 0, 64, 64))
	ups, ok := u.(MultiUpdater)
	if !ok || len(ups) != 2 {
		t.Fatalf("FillBatch() updater = %#v, want two repetitions", u)
	}
	if got := b.Len(); got != 8*vertex.QuadVertices {
		t.Errorf("vertices = %d, want four quads per repetition", got)
	}

	single := p.FillBatch(vertex.NewBatch(0), tilerender.R(0, 0, 4, 4), nil, tilerender.R(0, 0, 64, 64))
	if _, ok := single.(*scrollUpdater); !ok {
		t.Errorf("single repetition updater = %T", single)
	}
	if none := p.FillBatch(vertex.NewBatch(0), tilerender.R(100, 0, 4, 4), nil, tilerender.R(0, 0, 64, 64)); none != nil {
		t.Errorf("repetition outside clip returned %T", none)
	}
}

func TestScrollUpdaterOffsets(t *testing.T) {
	b := vertex.NewBatch(0)
	u := SelfScrollingPattern{Source: tilerender.R(0, 0, 4, 4), Ratio: 2}.
		FillBatch(b, tilerender.R(0, 0, 4, 4), nil, tilerender.R(0, 0, 64, 64)).(*scrollUpdater)

	// A camera at -2 scrolls the texture by -1, which wraps to 3.
	u.Update(tilerender.Pt(-2, 0), tilerender.Rect{})
	q0 := b.View(0, vertex.QuadVertices)
	if got := q0.Vertex(0).Position; got != (vertex.Vec2{X: 3, Y: 0}) {
		t.Errorf("first quad origin = %v, want (3,0)", got)
	}
	q3 := b.View(3*vertex.QuadVertices, vertex.QuadVertices)
	if tl, br := q3.Vertex(0), q3.Vertex(2); tl.Position.X != 0 || br.Position.X != 3 || tl.TexCoords.X != 1 {
		t.Errorf("wrapped quad = %v..%v uv %v", tl.Position, br.Position, tl.TexCoords)
	}

	// Clipping keeps only the part inside the cell.
	u.Update(tilerender.Pt(-2, 0), tilerender.R(0, 0, 2, 4))
	if tl, br := q3.Vertex(0), q3.Vertex(2); br.Position.X != 2 || br.TexCoords.X != 3 || tl.TexCoords.X != 1 {
		t.Errorf("clipped quad = %v..%v uv %v..%v", tl.Position, br.Position, tl.TexCoords, br.TexCoords)
	}
	if tl, br := q0.Vertex(0), q0.Vertex(2); tl.Position != br.Position {
		t.Errorf("quad outside the clip was kept: %v..%v", tl.Position, br.Position)
	}
}

// The last repetition is cut by the pattern box but still wraps around the
// whole source.
func TestScrollUpdaterPartialRepetition(t *testing.T) {
	b := vertex.NewBatch(0)
	ups := SelfScrollingPattern{Source: tilerender.R(0, 0, 4, 4), Ratio: 1}.
		FillBatch(b, tilerender.R(0, 0, 6, 4), nil, tilerender.R(0, 0, 64, 64)).(MultiUpdater)
	last := ups[1].(*scrollUpdater)

	last.Update(tilerender.Pt(3, 0), tilerender.Rect{})

	first := b.View(4*vertex.QuadVertices, vertex.QuadVertices)
	if tl, br := first.Vertex(0), first.Vertex(2); tl.Position != br.Position {
		t.Errorf("quad past the pattern box was kept: %v..%v", tl.Position, br.Position)
	}
	wrapped := b.View(7*vertex.QuadVertices, vertex.QuadVertices)
	tl, br := wrapped.Vertex(0), wrapped.Vertex(2)
	if tl.Position != (vertex.Vec2{X: 4, Y: 0}) || br.Position != (vertex.Vec2{X: 6, Y: 4}) {
		t.Errorf("wrapped quad = %v..%v, want (4,0)..(6,4)", tl.Position, br.Position)
	}
	if tl.TexCoords != (vertex.Vec2{X: 1, Y: 0}) || br.TexCoords != (vertex.Vec2{X: 3, Y: 4}) {
		t.Errorf("wrapped uvs = %v..%v, want (1,0)..(3,4)", tl.TexCoords, br.TexCoords)
	}
}

func TestParallaxPattern(t *testing.T) {
	p := ParallaxPattern{Source: tilerender.R(0, 0, 4, 4)}
	if p.DrawnAtItsPosition() {
		t.Error("ParallaxPattern is drawn at its position")
	}
	b := vertex.NewBatch(0)
	if u := p.FillBatch(b, tilerender.R(0, 0, 8, 4), nil, tilerender.R(0, 0, 64, 64)); u != nil {
		t.Error("FillBatch() returned an updater")
	}
	if got := b.Len() / vertex.QuadVertices; got != 2 {
		t.Errorf("quads = %d, want 2", got)
	}
}

func TestMultiUpdater(t *testing.T) {
	var calls []tilerender.Point
	rec := UpdaterFunc(func(p tilerender.Point, _ tilerender.Rect) { calls = append(calls, p) })
	MultiUpdater{rec, rec}.Update(tilerender.Pt(1, 2), tilerender.Rect{})
	if len(calls) != 2 || calls[0] != tilerender.Pt(1, 2) {
		t.Errorf("calls = %v", calls)
	}
}
