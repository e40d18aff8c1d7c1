package sysex

import "hash"

// CRC parameters used by the Metadata message. This is the MSB-first
// CRC-32 with no reflection and no final XOR (CRC-32/MPEG-2), so the
// reflected tables in hash/crc32 do not apply.
const (
	// CRC32Polynomial is the full 33-bit generator; the top bit falls out of
	// the 32-bit register on every shift.
	CRC32Polynomial = 0x104C11DB7

	// CRC32InitialValue is the register value before the first byte
	CRC32InitialValue = 0xFFFFFFFF

	crc32HighBit = 0x80000000
	crc32Size    = 4
	bitsPerByte  = 8
)

// Checksum returns the CRC of data.
func Checksum(data []byte) uint32 {
	return updateCRC(CRC32InitialValue, data)
}

func updateCRC(crc uint32, data []byte) uint32 {
	const poly = uint32(CRC32Polynomial & 0xFFFFFFFF)

	for _, b := range data {
		crc ^= uint32(b) << 24
		for i := 0; i < bitsPerByte; i++ {
			if crc&crc32HighBit != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

type digest struct {
	crc uint32
}

// NewChecksum returns a hash.Hash32 computing the same CRC as Checksum, for
// callers that stream firmware through io.Copy.
func NewChecksum() hash.Hash32 {
	return &digest{crc: CRC32InitialValue}
}

func (d *digest) Write(p []byte) (int, error) {
	d.crc = updateCRC(d.crc, p)
	return len(p), nil
}

func (d *digest) Sum32() uint32 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.crc
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

func (d *digest) Reset()         { d.crc = CRC32InitialValue }
func (d *digest) Size() int      { return crc32Size }
func (d *digest) BlockSize() int { return 1 }
