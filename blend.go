package tilerender

import "github.com/gogpu/gputypes"

// BlendMode selects how a source is combined with what is already drawn.
type BlendMode uint8

const (
	// BlendAlpha is regular straight-alpha "source over" blending.
	// It is the zero value so new surfaces blend by default.
	BlendAlpha BlendMode = iota

	// BlendNone copies the source, alpha channel included.
	BlendNone

	// BlendAdd adds the alpha-weighted source to the destination.
	BlendAdd

	// BlendMultiply multiplies destination colors by source colors.
	BlendMultiply
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendAlpha:
		return "blend"
	case BlendNone:
		return "none"
	case BlendAdd:
		return "add"
	case BlendMultiply:
		return "multiply"
	default:
		return "unknown"
	}
}

// State returns the fixed-function blend state implementing m.
// Unknown modes fall back to alpha blending.
func (m BlendMode) State() gputypes.BlendState {
	switch m {
	case BlendNone:
		return gputypes.BlendStateReplace()
	case BlendAdd:
		return gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	case BlendMultiply:
		return gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorDst,
				DstFactor: gputypes.BlendFactorZero,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorDst,
				DstFactor: gputypes.BlendFactorZero,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	default:
		return gputypes.BlendStateAlpha()
	}
}
