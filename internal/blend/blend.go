// Package blend combines straight-alpha RGBA8 pixels the way a
// fixed-function GPU blend stage would.
//
// A blend is described by a [gputypes.BlendState]. The four states used by
// surfaces (replace, alpha, additive, modulate) get hand-written fast paths;
// any other state is evaluated factor by factor.
package blend

import "github.com/gogpu/gputypes"

// Func blends one source pixel onto one destination pixel.
// All values are straight (non-premultiplied) alpha, 0-255.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

var (
	stateReplace = gputypes.BlendStateReplace()
	stateAlpha   = gputypes.BlendStateAlpha()
	stateAdd     = gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorSrcAlpha, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationAdd},
		Alpha: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationAdd},
	}
	stateMultiply = gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorDst, DstFactor: gputypes.BlendFactorZero, Operation: gputypes.BlendOperationAdd},
		Alpha: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorDst, DstFactor: gputypes.BlendFactorZero, Operation: gputypes.BlendOperationAdd},
	}
)

// ForState returns the blend function implementing s.
func ForState(s gputypes.BlendState) Func {
	switch s {
	case stateReplace:
		return Replace
	case stateAlpha:
		return SourceOver
	case stateAdd:
		return Add
	case stateMultiply:
		return Multiply
	default:
		return Generic(s)
	}
}

// Replace writes the source unchanged.
func Replace(sr, sg, sb, sa, _, _, _, _ byte) (r, g, b, a byte) {
	return sr, sg, sb, sa
}

// SourceOver is regular alpha blending: S*Sa + D*(1-Sa), alpha Sa + Da*(1-Sa).
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
	switch sa {
	case 255:
		return sr, sg, sb, 255
	case 0:
		return dr, dg, db, da
	}
	inv := inv255(sa)
	r = addClamp(mulDiv255(sr, sa), mulDiv255(dr, inv))
	g = addClamp(mulDiv255(sg, sa), mulDiv255(dg, inv))
	b = addClamp(mulDiv255(sb, sa), mulDiv255(db, inv))
	a = addClamp(sa, mulDiv255(da, inv))
	return r, g, b, a
}

// Add adds the alpha-weighted source: D + S*Sa, alpha Da + Sa.
func Add(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
	r = addClamp(dr, mulDiv255(sr, sa))
	g = addClamp(dg, mulDiv255(sg, sa))
	b = addClamp(db, mulDiv255(sb, sa))
	a = addClamp(da, sa)
	return r, g, b, a
}

// Multiply modulates the destination by the source: S*D for every channel.
func Multiply(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
	return mulDiv255(sr, dr), mulDiv255(sg, dg), mulDiv255(sb, db), mulDiv255(sa, da)
}

// Generic returns a function evaluating s factor by factor.
// Constant factors use an opaque white blend constant.
func Generic(s gputypes.BlendState) Func {
	c, al := s.Color, s.Alpha
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
		r = component(c, sr, dr, sa, da, false)
		g = component(c, sg, dg, sa, da, false)
		b = component(c, sb, db, sa, da, false)
		a = component(al, sa, da, sa, da, true)
		return r, g, b, a
	}
}

func component(bc gputypes.BlendComponent, s, d, sa, da byte, alpha bool) byte {
	switch bc.Operation {
	case gputypes.BlendOperationMin:
		return min(s, d)
	case gputypes.BlendOperationMax:
		return max(s, d)
	}
	sf := mulDiv255(s, factor(bc.SrcFactor, s, d, sa, da, alpha))
	df := mulDiv255(d, factor(bc.DstFactor, s, d, sa, da, alpha))
	switch bc.Operation {
	case gputypes.BlendOperationSubtract:
		return subClamp(sf, df)
	case gputypes.BlendOperationReverseSubtract:
		return subClamp(df, sf)
	default:
		return addClamp(sf, df)
	}
}

func factor(f gputypes.BlendFactor, s, d, sa, da byte, alpha bool) byte {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrc:
		return s
	case gputypes.BlendFactorOneMinusSrc:
		return inv255(s)
	case gputypes.BlendFactorSrcAlpha:
		return sa
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return inv255(sa)
	case gputypes.BlendFactorDst:
		return d
	case gputypes.BlendFactorOneMinusDst:
		return inv255(d)
	case gputypes.BlendFactorDstAlpha:
		return da
	case gputypes.BlendFactorOneMinusDstAlpha:
		return inv255(da)
	case gputypes.BlendFactorSrcAlphaSaturated:
		if alpha {
			return 255
		}
		return min(sa, inv255(da))
	case gputypes.BlendFactorOneMinusConstant:
		return 0
	default:
		// One, Constant (white) and Undefined.
		return 255
	}
}
