package sysex

// SplitNibbles returns two bytes per input byte, high nibble first.
//
//	SplitNibbles([]byte{0x7A}) == []byte{0x07, 0x0A}
func SplitNibbles(src []byte) []byte {
	out := make([]byte, len(src)*2)
	for i, b := range src {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0F
	}
	return out
}

// JoinNibbles reverses SplitNibbles. Bits above the low nibble of each input
// byte are ignored.
func JoinNibbles(src []byte) ([]byte, error) {
	if len(src)%2 != 0 {
		return nil, ErrInvalidNibbleLength
	}

	out := make([]byte, len(src)/2)
	for i := range out {
		out[i] = (src[2*i]&0x0F)<<4 | src[2*i+1]&0x0F
	}
	return out, nil
}

func splitUint32(v uint32) [8]byte {
	var out [8]byte
	copy(out[:], SplitNibbles([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}))
	return out
}

func joinUint32(nibbles [8]byte) uint32 {
	b, _ := JoinNibbles(nibbles[:])
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
