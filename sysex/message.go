package sysex

import (
	"bytes"
	"fmt"
	"strconv"
)

// MessageType is the two-byte identifier following the manufacturer ID.
type MessageType uint16

const (
	TypeStart    MessageType = 0x0071
	TypeData     MessageType = 0x0072
	TypeEnd      MessageType = 0x0073
	TypeMetadata MessageType = 0x007C
)

func (t MessageType) String() string {
	switch t {
	case TypeStart:
		return "START"
	case TypeMetadata:
		return "METADATA"
	case TypeData:
		return "DATA"
	case TypeEnd:
		return "END"
	default:
		return fmt.Sprintf("0x%04X", uint16(t))
	}
}

// Frame layout.
const (
	// HeaderSize covers SOX, the zero byte, manufacturer ID and message type.
	HeaderSize = 6

	// MinFrameSize is the smallest buffer Unframe will look at.
	MinFrameSize = 8

	BuildSize        = 6
	ChunkSize        = 32
	EncodedChunkSize = 37
	nibbleFieldSize  = 8
)

// Body field offsets, per message type.
const (
	startManufacturerOffset = 0
	startModelOffset        = 1
	startBuildOffset        = 2
	startBodySize           = startBuildOffset + BuildSize

	metadataReservedOffset = 0
	metadataBuildOffset    = 1
	metadataSizeOffset     = metadataBuildOffset + BuildSize
	metadataCRCOffset      = metadataSizeOffset + nibbleFieldSize
	metadataBodySize       = metadataCRCOffset + nibbleFieldSize

	chunkBodySize = EncodedChunkSize
)

var bodySizes = map[MessageType]int{
	TypeStart:    startBodySize,
	TypeMetadata: metadataBodySize,
	TypeData:     chunkBodySize,
	TypeEnd:      chunkBodySize,
}

// BodySize returns the fixed body length for t.
func BodySize(t MessageType) (int, bool) {
	n, ok := bodySizes[t]
	return n, ok
}

// Build is a zero-padded, six digit ASCII build number.
type Build [BuildSize]byte

// NewBuild formats n as a Build.
func NewBuild(n int) (Build, error) {
	var b Build
	if n < 0 || n > 999999 {
		return b, fmt.Errorf("%w: %d is outside 0-999999", ErrInvalidBuild, n)
	}
	copy(b[:], fmt.Sprintf("%06d", n))
	return b, nil
}

// Number parses the build back into an integer.
func (b Build) Number() (int, error) {
	n, err := strconv.Atoi(string(b[:]))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBuild, b.String())
	}
	return n, nil
}

func (b Build) String() string {
	return string(bytes.TrimRight(b[:], "\x00"))
}

// Message is one of *Start, *Metadata, *Data or *End.
type Message interface {
	Type() MessageType
	appendBody(dst []byte) []byte
}

// Start opens a firmware stream.
type Start struct {
	Manufacturer byte
	Model        byte
	Build        Build
}

// Metadata carries the size and CRC of the decoded firmware. Both are sent
// big-endian, one nibble per byte.
type Metadata struct {
	Reserved byte
	Build    Build
	Size     uint32
	CRC      uint32
}

// Data carries one packed firmware chunk, in file order starting at chunk 1.
type Data struct {
	Chunk [EncodedChunkSize]byte
}

// End carries the packed first chunk of the file and closes the stream.
type End struct {
	Chunk [EncodedChunkSize]byte
}

func (*Start) Type() MessageType    { return TypeStart }
func (*Metadata) Type() MessageType { return TypeMetadata }
func (*Data) Type() MessageType     { return TypeData }
func (*End) Type() MessageType      { return TypeEnd }

func (m *Start) appendBody(dst []byte) []byte {
	dst = append(dst, m.Manufacturer, m.Model)
	return append(dst, m.Build[:]...)
}

func (m *Metadata) appendBody(dst []byte) []byte {
	size := splitUint32(m.Size)
	crc := splitUint32(m.CRC)
	dst = append(dst, m.Reserved)
	dst = append(dst, m.Build[:]...)
	dst = append(dst, size[:]...)
	return append(dst, crc[:]...)
}

func (m *Data) appendBody(dst []byte) []byte { return append(dst, m.Chunk[:]...) }
func (m *End) appendBody(dst []byte) []byte  { return append(dst, m.Chunk[:]...) }

// Payload returns the unpacked 32-byte chunk.
func (m *Data) Payload() []byte { return Unpack(m.Chunk[:]) }

// Payload returns the unpacked 32-byte chunk.
func (m *End) Payload() []byte { return Unpack(m.Chunk[:]) }

// Frame returns m wrapped in a complete SysEx envelope.
func Frame(m Message) []byte {
	size, _ := BodySize(m.Type())
	return AppendFrame(make([]byte, 0, HeaderSize+size+1), m)
}

// AppendFrame appends the framed message to dst.
func AppendFrame(dst []byte, m Message) []byte {
	t := m.Type()
	dst = append(dst, SOX, 0x00, ManufacturerIDHigh, ManufacturerIDLow, byte(t>>8), byte(t))
	dst = m.appendBody(dst)
	return append(dst, EOX)
}

// Unframe validates a single framed message and parses its body.
func Unframe(frame []byte) (Message, error) {
	if len(frame) < MinFrameSize {
		return nil, fmt.Errorf("%w: frame is %d bytes, need at least %d", ErrTruncatedInput, len(frame), MinFrameSize)
	}

	t, size, err := parseHeader(frame[:HeaderSize])
	if err != nil {
		return nil, err
	}

	end := HeaderSize + size
	if len(frame) <= end {
		return nil, fmt.Errorf("%w: %s body needs %d bytes, have %d", ErrTruncatedInput, t, size, len(frame)-HeaderSize)
	}
	if frame[end] != EOX {
		return nil, fmt.Errorf("%w: got 0x%02X after %s body", ErrMissingTerminator, frame[end], t)
	}
	if len(frame) > end+1 {
		return nil, fmt.Errorf("%w: %d bytes after end of exclusive", ErrMalformedHeader, len(frame)-end-1)
	}

	return parseBody(t, frame[HeaderSize:end]), nil
}

// parseHeader checks the envelope prefix and returns the message type and
// its body size.
func parseHeader(h []byte) (MessageType, int, error) {
	if h[0] != SOX {
		return 0, 0, fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrMalformedHeader, SOX, h[0])
	}
	if h[1] != 0x00 {
		return 0, 0, fmt.Errorf("%w: expected extended manufacturer prefix 0x00, got 0x%02X", ErrMalformedHeader, h[1])
	}
	if h[2] != ManufacturerIDHigh || h[3] != ManufacturerIDLow {
		return 0, 0, fmt.Errorf("%w: 0x%02X 0x%02X", ErrUnknownManufacturer, h[2], h[3])
	}

	t := MessageType(uint16(h[4])<<8 | uint16(h[5]))
	size, ok := BodySize(t)
	if !ok {
		return 0, 0, fmt.Errorf("%w: 0x%02X 0x%02X", ErrUnknownMessageType, h[4], h[5])
	}
	return t, size, nil
}

// parseBody expects body to be exactly BodySize(t) bytes.
func parseBody(t MessageType, body []byte) Message {
	switch t {
	case TypeStart:
		m := &Start{
			Manufacturer: body[startManufacturerOffset],
			Model:        body[startModelOffset],
		}
		copy(m.Build[:], body[startBuildOffset:startBodySize])
		return m

	case TypeMetadata:
		m := &Metadata{Reserved: body[metadataReservedOffset]}
		copy(m.Build[:], body[metadataBuildOffset:metadataSizeOffset])

		var size, crc [nibbleFieldSize]byte
		copy(size[:], body[metadataSizeOffset:metadataCRCOffset])
		copy(crc[:], body[metadataCRCOffset:metadataBodySize])
		m.Size = joinUint32(size)
		m.CRC = joinUint32(crc)
		return m

	case TypeData:
		m := &Data{}
		copy(m.Chunk[:], body)
		return m

	default:
		m := &End{}
		copy(m.Chunk[:], body)
		return m
	}
}
