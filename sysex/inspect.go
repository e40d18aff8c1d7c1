package sysex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Entry describes one message of a stream.
type Entry struct {
	Offset int64  `json:"offset" yaml:"offset"`
	Type   string `json:"type" yaml:"type"`

	Manufacturer *byte  `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	ModelID      *byte  `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	Build        string `json:"build,omitempty" yaml:"build,omitempty"`
	Size         uint32 `json:"size,omitempty" yaml:"size,omitempty"`
	CRC          string `json:"crc,omitempty" yaml:"crc,omitempty"`

	// Chunk is the file chunk index carried by DATA and END messages
	Chunk *int `json:"chunk,omitempty" yaml:"chunk,omitempty"`
}

// Inspect lists the messages of stream without reassembling firmware.
func Inspect(stream []byte) ([]Entry, error) {
	r := NewReader(bytes.NewReader(stream))

	var entries []Entry
	next := 1
	for {
		offset := r.Offset()
		msg, err := r.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}

		e := Entry{Offset: offset, Type: msg.Type().String()}
		switch m := msg.(type) {
		case *Start:
			manufacturer, modelID := m.Manufacturer, m.Model
			e.Manufacturer = &manufacturer
			e.ModelID = &modelID
			if model, ok := ModelByID(m.Model); ok {
				e.Model = model.Name
			}
			e.Build = m.Build.String()
		case *Metadata:
			e.Build = m.Build.String()
			e.Size = m.Size
			e.CRC = fmt.Sprintf("0x%08X", m.CRC)
		case *Data:
			chunk := next
			next++
			e.Chunk = &chunk
		case *End:
			chunk := 0
			e.Chunk = &chunk
		}
		entries = append(entries, e)
	}
}
