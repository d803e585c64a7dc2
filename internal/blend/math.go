package blend

// div255 divides x by 255 using the shift approximation (x + 255) >> 8.
//
// The result can be 1 too high for some inputs, but x*255/255 and 0 come
// out exact, which keeps opaque and fully transparent pixels stable.
func div255(x uint16) uint16 {
	return (x + 255) >> 8
}

// div255Exact divides x by 255 exactly (Alvy Ray Smith's formula).
func div255Exact(x uint16) uint16 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// mulDiv255 returns a*b/255 using div255.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint16(a) * uint16(b)))
}

// mulDiv255Exact returns a*b/255 exactly.
func mulDiv255Exact(a, b byte) byte {
	return byte(div255Exact(uint16(a) * uint16(b)))
}

// MulDiv255 scales a channel by an 8-bit factor, for callers that modulate
// colors before blending.
func MulDiv255(a, b byte) byte {
	return mulDiv255(a, b)
}

func inv255(x byte) byte {
	return 255 - x
}

func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

func subClamp(a, b byte) byte {
	if b >= a {
		return 0
	}
	return a - b
}
