package sysex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
)

// Firmware is the result of decoding a SysEx stream.
type Firmware struct {
	// Manufacturer and ModelID are taken from the Start message
	Manufacturer byte
	ModelID      byte

	// Model is the known model for ModelID, or the zero Model
	Model Model

	// Build comes from Metadata, or Start when Metadata is absent
	Build Build

	// Size and CRC are as declared by the Metadata message
	Size uint32
	CRC  uint32

	// HasMetadata reports whether the stream carried a Metadata message.
	// Without it Data is not truncated and ChecksumValid is false.
	HasMetadata bool

	ChecksumValid bool

	Data []byte
}

// chunkOrder is the two-slot view of a chunked firmware image: file chunk 0,
// which travels last in an End message, and chunks 1..N-1 in file order.
type chunkOrder struct {
	first []byte
	rest  [][]byte
}

// splitChunks cuts firmware into ChunkSize pieces, zero padding the last.
func splitChunks(firmware []byte) chunkOrder {
	var order chunkOrder
	for off := 0; off < len(firmware); off += ChunkSize {
		chunk := make([]byte, ChunkSize)
		copy(chunk, firmware[off:])
		if off == 0 {
			order.first = chunk
		} else {
			order.rest = append(order.rest, chunk)
		}
	}
	return order
}

// join restores file order.
func (o chunkOrder) join() []byte {
	out := make([]byte, 0, len(o.first)+len(o.rest)*ChunkSize)
	out = append(out, o.first...)
	for _, chunk := range o.rest {
		out = append(out, chunk...)
	}
	return out
}

func packChunk(chunk []byte) [EncodedChunkSize]byte {
	var out [EncodedChunkSize]byte
	copy(out[:], Pack(chunk))
	return out
}

// EncodeMessages builds the message sequence for firmware in transmission
// order: Start, Metadata, Data for chunks 1..N-1, then End for chunk 0.
func EncodeMessages(firmware []byte, model string, build int) ([]Message, error) {
	m, err := LookupModel(model)
	if err != nil {
		return nil, err
	}
	b, err := NewBuild(build)
	if err != nil {
		return nil, err
	}
	if len(firmware) == 0 {
		return nil, ErrEmptyFirmware
	}
	if uint64(len(firmware)) > math.MaxUint32 {
		return nil, fmt.Errorf("firmware is %d bytes, larger than the 32-bit size field", len(firmware))
	}

	order := splitChunks(firmware)

	msgs := make([]Message, 0, len(order.rest)+3)
	msgs = append(msgs,
		&Start{Manufacturer: ManufacturerNovation, Model: m.ID, Build: b},
		&Metadata{Build: b, Size: uint32(len(firmware)), CRC: Checksum(firmware)},
	)
	for _, chunk := range order.rest {
		msgs = append(msgs, &Data{Chunk: packChunk(chunk)})
	}
	msgs = append(msgs, &End{Chunk: packChunk(order.first)})

	return msgs, nil
}

// Encode converts a raw firmware image into a SysEx stream for model.
// A firmware length that is not a multiple of ChunkSize is zero padded on
// the wire; the Metadata size keeps the true length.
func Encode(firmware []byte, model string, build int) ([]byte, error) {
	msgs, err := EncodeMessages(firmware, model, build)
	if err != nil {
		return nil, err
	}

	var out []byte
	for _, m := range msgs {
		out = AppendFrame(out, m)
	}
	return out, nil
}

// Decode converts a SysEx stream back into firmware.
func Decode(stream []byte, opts ...DecodeOption) (*Firmware, error) {
	return DecodeReader(bytes.NewReader(stream), opts...)
}

// DecodeReader is Decode over an io.Reader. On error no firmware is
// returned; there is no partial result.
func DecodeReader(rd io.Reader, opts ...DecodeOption) (*Firmware, error) {
	cfg := defaultDecodeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.Logger

	var (
		fw        Firmware
		order     chunkOrder
		haveStart bool
		haveEnd   bool
	)

	r := NewReader(rd)
	for {
		offset := r.Offset()
		msg, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		log.Debug("found message", "type", msg.Type(), "offset", offset)

		unexpected := func(why string) error {
			return &StreamError{Offset: offset, Err: fmt.Errorf("%w: %s %s", ErrUnexpectedMessage, msg.Type(), why)}
		}
		if haveEnd {
			return nil, unexpected("after END")
		}

		switch m := msg.(type) {
		case *Start:
			if haveStart {
				return nil, unexpected("repeated")
			}
			haveStart = true
			fw.Manufacturer = m.Manufacturer
			fw.ModelID = m.Model
			if !fw.HasMetadata {
				fw.Build = m.Build
			}
			if model, ok := ModelByID(m.Model); ok {
				fw.Model = model
				log.Info("firmware start", "model", model.Name, "build", m.Build.String())
			} else {
				log.Debug("firmware start for unknown model", "id", m.Model, "build", m.Build.String())
			}

		case *Metadata:
			if fw.HasMetadata {
				return nil, unexpected("repeated")
			}
			fw.HasMetadata = true
			fw.Size = m.Size
			fw.CRC = m.CRC
			if haveStart && fw.Build != m.Build {
				log.Warn("build differs between START and METADATA", "start", fw.Build.String(), "metadata", m.Build.String())
			}
			fw.Build = m.Build
			log.Debug("firmware metadata", "size", m.Size, "crc", fmt.Sprintf("0x%08X", m.CRC))

		case *Data:
			order.rest = append(order.rest, m.Payload())

		case *End:
			haveEnd = true
			order.first = m.Payload()
		}
	}

	if !haveEnd {
		return nil, fmt.Errorf("%w: stream has no END message", ErrTruncatedInput)
	}

	data := order.join()
	if !fw.HasMetadata {
		log.Warn("stream has no METADATA message; output is not truncated or verified", "bytes", len(data))
		fw.Data = data
		return &fw, nil
	}

	if uint64(fw.Size) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: metadata declares %d bytes, stream carries %d", ErrTruncatedInput, fw.Size, len(data))
	}
	fw.Data = data[:fw.Size]

	actual := Checksum(fw.Data)
	fw.ChecksumValid = actual == fw.CRC
	if !fw.ChecksumValid {
		mismatch := &ChecksumMismatchError{Expected: fw.CRC, Actual: actual}
		if cfg.StrictChecksum {
			return nil, mismatch
		}
		log.Warn(mismatch.Error())
	}

	return &fw, nil
}
