package sysex

// sevenBitMask clears the high bit reserved for MIDI status bytes.
const sevenBitMask byte = 0x7F

// PackedLen returns the number of 7-bit bytes Pack produces for n input bytes.
func PackedLen(n int) int {
	if n <= 0 {
		return 0
	}
	return (n*8 + 6) / 7
}

// Pack encodes src as an MSB-first stream of 7-bit bytes. Every output byte
// has its high bit clear. A 32-byte chunk always packs to 37 bytes.
func Pack(src []byte) []byte {
	return PackCarry(src, 0)
}

// PackCarry is Pack with an explicit previous byte for the first position.
//
// The carry only feeds the masked term of position zero, whose shift width
// is seven, so it never reaches the output. It is accepted so callers that
// thread state between chunks keep a single code path.
func PackCarry(src []byte, carry byte) []byte {
	if len(src) == 0 {
		return nil
	}

	out := make([]byte, 0, PackedLen(len(src)))
	prev := carry
	var pos uint

	for i, cur := range src {
		pos = uint(i % 7)
		shifted := cur >> (pos + 1)

		// Every seventh byte the previous input has exactly seven bits left,
		// which fill a whole output byte on their own.
		if i > 0 && pos == 0 {
			out = append(out, prev&sevenBitMask, shifted)
		} else {
			masked := (prev << (7 - pos)) & sevenBitMask
			out = append(out, shifted^masked)
		}
		prev = cur
	}

	// The last byte still holds pos+1 unsent low bits; left align them.
	out = append(out, (prev<<(6-pos))&sevenBitMask)

	return out
}

// Unpack reverses Pack. Input is consumed in groups of eight bytes which
// yield seven bytes each; a trailing partial group of r bytes yields r-1.
func Unpack(src []byte) []byte {
	out := make([]byte, 0, len(src)-(len(src)+7)/8)

	for start := 0; start < len(src)-1; start += 8 {
		for pos := uint(0); pos < 7; pos++ {
			i := start + int(pos)
			if i+1 >= len(src) {
				break
			}

			shifted := src[i] << (pos + 1)
			masked := (src[i+1] >> (6 - pos)) & (sevenBitMask >> (6 - pos))
			out = append(out, shifted|masked)
		}
	}

	return out
}
