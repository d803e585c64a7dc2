package vertex

import (
	"testing"

	"github.com/gogpu/tilerender"
)

func TestBatch_AddQuad(t *testing.T) {
	b := NewBatch(0)
	q := b.AddQuad(tilerender.R(10, 20, 8, 4), tilerender.R(0, 16, 8, 4), tilerender.White)

	if b.Len() != QuadVertices {
		t.Fatalf("Len() = %d, want %d", b.Len(), QuadVertices)
	}
	if q.Len() != QuadVertices {
		t.Errorf("view Len() = %d, want %d", q.Len(), QuadVertices)
	}

	wantPos := []Vec2{{10, 20}, {10, 24}, {18, 24}, {18, 24}, {18, 20}, {10, 20}}
	wantUV := []Vec2{{0, 16}, {0, 20}, {8, 20}, {8, 20}, {8, 16}, {0, 16}}
	for i, v := range b.Vertices() {
		if v.Position != wantPos[i] {
			t.Errorf("vertex %d position = %v, want %v", i, v.Position, wantPos[i])
		}
		if v.TexCoords != wantUV[i] {
			t.Errorf("vertex %d uv = %v, want %v", i, v.TexCoords, wantUV[i])
		}
		if v.Color != tilerender.White {
			t.Errorf("vertex %d color = %v", i, v.Color)
		}
	}
}

func TestBatch_ViewSurvivesGrowth(t *testing.T) {
	b := NewBatch(6)
	first := b.AddQuad(tilerender.R(0, 0, 1, 1), tilerender.R(0, 0, 1, 1), tilerender.White)
	for range 100 {
		b.AddQuad(tilerender.R(5, 5, 1, 1), tilerender.R(0, 0, 1, 1), tilerender.White)
	}

	first.MoveTo(tilerender.Pt(40, 50))
	if got := b.Vertices()[0].Position; got != (Vec2{40, 50}) {
		t.Errorf("moved position = %v, want (40,50)", got)
	}
	if got := b.Vertices()[2].Position; got != (Vec2{41, 51}) {
		t.Errorf("bottom-right = %v, want (41,51)", got)
	}
	if got := b.Vertices()[6].Position; got != (Vec2{5, 5}) {
		t.Errorf("second quad moved to %v", got)
	}
}

func TestBatch_Reset(t *testing.T) {
	b := NewBatch(0)
	b.AddQuad(tilerender.R(0, 0, 1, 1), tilerender.R(0, 0, 1, 1), tilerender.White)
	b.Reset()
	if !b.Empty() {
		t.Errorf("Len() after Reset = %d", b.Len())
	}
}

func TestBatch_ViewOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an out of range view")
		}
	}()
	NewBatch(0).View(0, 6)
}
