package blend

import (
	"testing"

	"github.com/gogpu/gputypes"
)

type px [4]byte

func apply(fn Func, s, d px) px {
	r, g, b, a := fn(s[0], s[1], s[2], s[3], d[0], d[1], d[2], d[3])
	return px{r, g, b, a}
}

func TestReplace(t *testing.T) {
	got := apply(Replace, px{1, 2, 3, 0}, px{200, 200, 200, 255})
	if got != (px{1, 2, 3, 0}) {
		t.Errorf("Replace = %v", got)
	}
}

func TestSourceOver(t *testing.T) {
	tests := []struct {
		name string
		s, d px
		want px
	}{
		{"opaque source", px{10, 20, 30, 255}, px{200, 200, 200, 255}, px{10, 20, 30, 255}},
		{"transparent source", px{10, 20, 30, 0}, px{200, 100, 50, 128}, px{200, 100, 50, 128}},
		{"onto transparent", px{255, 0, 0, 255}, px{0, 0, 0, 0}, px{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apply(SourceOver, tt.s, tt.d); got != tt.want {
				t.Errorf("SourceOver = %v, want %v", got, tt.want)
			}
		})
	}

	half := apply(SourceOver, px{255, 255, 255, 128}, px{0, 0, 0, 255})
	if half[0] < 127 || half[0] > 129 || half[3] != 255 {
		t.Errorf("half white over black = %v", half)
	}
}

func TestAdd(t *testing.T) {
	got := apply(Add, px{100, 200, 10, 255}, px{100, 100, 10, 255})
	if got != (px{200, 255, 20, 255}) {
		t.Errorf("Add = %v", got)
	}
	if got := apply(Add, px{100, 100, 100, 0}, px{5, 5, 5, 10}); got != (px{5, 5, 5, 10}) {
		t.Errorf("Add with transparent source = %v", got)
	}
}

func TestMultiply(t *testing.T) {
	got := apply(Multiply, px{255, 0, 128, 255}, px{200, 200, 200, 255})
	if got[0] != 200 || got[1] != 0 || got[3] != 255 {
		t.Errorf("Multiply = %v", got)
	}
}

// The fast paths must agree with the factor-by-factor evaluation.
func TestFastPathsMatchGeneric(t *testing.T) {
	states := []struct {
		name  string
		state gputypes.BlendState
		fast  Func
	}{
		{"replace", stateReplace, Replace},
		{"add", stateAdd, Add},
		{"multiply", stateMultiply, Multiply},
	}
	samples := []byte{0, 1, 64, 127, 128, 200, 254, 255}
	for _, st := range states {
		t.Run(st.name, func(t *testing.T) {
			gen := Generic(st.state)
			for _, sv := range samples {
				for _, sa := range samples {
					for _, dv := range samples {
						s := px{sv, sv / 2, 255 - sv, sa}
						d := px{dv, 255 - dv, dv / 3, 255 - sa}
						if f, g := apply(st.fast, s, d), apply(gen, s, d); f != g {
							t.Fatalf("src %v dst %v: fast %v, generic %v", s, d, f, g)
						}
					}
				}
			}
		})
	}
}

func TestForState(t *testing.T) {
	s, d := px{255, 0, 0, 128}, px{0, 0, 255, 255}
	if apply(ForState(gputypes.BlendStateAlpha()), s, d) != apply(SourceOver, s, d) {
		t.Error("ForState(alpha) should select SourceOver")
	}
	if apply(ForState(gputypes.BlendStateReplace()), s, d) != s {
		t.Error("ForState(replace) should select Replace")
	}
}

func TestGenericMinMax(t *testing.T) {
	st := gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationMax},
		Alpha: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationMin},
	}
	got := apply(Generic(st), px{10, 200, 30, 100}, px{50, 50, 50, 200})
	if got != (px{50, 200, 50, 100}) {
		t.Errorf("Generic min/max = %v", got)
	}
}

func TestForStateNonStock(t *testing.T) {
	st := gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationReverseSubtract},
		Alpha: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationReverseSubtract},
	}
	got := apply(ForState(st), px{10, 20, 30, 40}, px{100, 100, 100, 100})
	if got != (px{90, 80, 70, 60}) {
		t.Errorf("ForState(reverse subtract) = %v, want {90 80 70 60}", got)
	}

	pre := gputypes.BlendStatePremultiplied()
	s, d := px{100, 50, 0, 128}, px{0, 200, 200, 255}
	if f, g := apply(ForState(pre), s, d), apply(Generic(pre), s, d); f != g {
		t.Errorf("ForState(premultiplied) = %v, Generic = %v", f, g)
	}
}
