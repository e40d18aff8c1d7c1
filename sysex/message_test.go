package sysex

import (
	"bytes"
	"errors"
	"testing"
)

func mustBuild(t *testing.T, n int) Build {
	t.Helper()
	b, err := NewBuild(n)
	if err != nil {
		t.Fatalf("NewBuild(%d) error = %v", n, err)
	}
	return b
}

func TestFrameStart(t *testing.T) {
	msg := &Start{Manufacturer: ManufacturerNovation, Model: 0x11, Build: mustBuild(t, 52)}

	expected := []byte{
		0xF0, 0x00, 0x20, 0x29, 0x00, 0x71,
		0x02, 0x11, '0', '0', '0', '0', '5', '2',
		0xF7,
	}
	if got := Frame(msg); !bytes.Equal(got, expected) {
		t.Errorf("Frame() = % X, want % X", got, expected)
	}
}

func TestFrameMetadata(t *testing.T) {
	msg := &Metadata{Build: mustBuild(t, 123456), Size: 0x00012345, CRC: 0xCAFEBABE}

	expected := []byte{
		0xF0, 0x00, 0x20, 0x29, 0x00, 0x7C,
		0x00,
		'1', '2', '3', '4', '5', '6',
		0x0, 0x0, 0x0, 0x1, 0x2, 0x3, 0x4, 0x5,
		0xC, 0xA, 0xF, 0xE, 0xB, 0xA, 0xB, 0xE,
		0xF7,
	}
	if got := Frame(msg); !bytes.Equal(got, expected) {
		t.Errorf("Frame() = % X, want % X", got, expected)
	}
}

func TestFrameSizes(t *testing.T) {
	tests := []struct {
		msg      Message
		expected int
	}{
		{&Start{}, 15},
		{&Metadata{}, 30},
		{&Data{}, 44},
		{&End{}, 44},
	}

	for _, tt := range tests {
		t.Run(tt.msg.Type().String(), func(t *testing.T) {
			if got := len(Frame(tt.msg)); got != tt.expected {
				t.Errorf("len(Frame()) = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestUnframeRoundTrip(t *testing.T) {
	var chunk [EncodedChunkSize]byte
	for i := range chunk {
		chunk[i] = byte(i)
	}

	msgs := []Message{
		&Start{Manufacturer: ManufacturerNovation, Model: 0x0F, Build: mustBuild(t, 7)},
		&Metadata{Reserved: 0x01, Build: mustBuild(t, 999999), Size: 0xFFFFFFFF, CRC: 0x01020304},
		&Data{Chunk: chunk},
		&End{Chunk: chunk},
	}

	for _, msg := range msgs {
		t.Run(msg.Type().String(), func(t *testing.T) {
			parsed, err := Unframe(Frame(msg))
			if err != nil {
				t.Fatalf("Unframe() error = %v", err)
			}
			if parsed.Type() != msg.Type() {
				t.Fatalf("Unframe() type = %s, want %s", parsed.Type(), msg.Type())
			}
			if !bytes.Equal(Frame(parsed), Frame(msg)) {
				t.Errorf("re-framed message differs: % X vs % X", Frame(parsed), Frame(msg))
			}
		})
	}
}

func TestUnframeMetadataFields(t *testing.T) {
	msg := &Metadata{Build: mustBuild(t, 52), Size: 131072, CRC: 0x89ABCDEF}

	parsed, err := Unframe(Frame(msg))
	if err != nil {
		t.Fatalf("Unframe() error = %v", err)
	}
	meta, ok := parsed.(*Metadata)
	if !ok {
		t.Fatalf("Unframe() returned %T, want *Metadata", parsed)
	}
	if meta.Size != 131072 {
		t.Errorf("Size = %d, want 131072", meta.Size)
	}
	if meta.CRC != 0x89ABCDEF {
		t.Errorf("CRC = 0x%08X, want 0x89ABCDEF", meta.CRC)
	}
	if meta.Build.String() != "000052" {
		t.Errorf("Build = %q, want %q", meta.Build.String(), "000052")
	}
}

func TestUnframeErrors(t *testing.T) {
	valid := Frame(&Start{Manufacturer: ManufacturerNovation, Model: 0x11, Build: mustBuild(t, 1)})

	corrupt := func(i int, b byte) []byte {
		out := append([]byte(nil), valid...)
		out[i] = b
		return out
	}

	tests := []struct {
		name     string
		frame    []byte
		expected error
	}{
		{
			name:     "too short",
			frame:    []byte{0xF0, 0x00, 0x20, 0x29},
			expected: ErrTruncatedInput,
		},
		{
			name:     "missing SOX",
			frame:    corrupt(0, 0x90),
			expected: ErrMalformedHeader,
		},
		{
			name:     "non-extended manufacturer",
			frame:    corrupt(1, 0x41),
			expected: ErrMalformedHeader,
		},
		{
			name:     "wrong manufacturer",
			frame:    corrupt(3, 0x30),
			expected: ErrUnknownManufacturer,
		},
		{
			name:     "unknown message type",
			frame:    corrupt(5, 0x70),
			expected: ErrUnknownMessageType,
		},
		{
			name:     "body cut short",
			frame:    valid[:len(valid)-3],
			expected: ErrTruncatedInput,
		},
		{
			name:     "missing EOX",
			frame:    corrupt(len(valid)-1, 0x00),
			expected: ErrMissingTerminator,
		},
		{
			name:     "trailing bytes",
			frame:    append(append([]byte(nil), valid...), 0x00),
			expected: ErrMalformedHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Unframe(tt.frame)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Unframe() error = %v, want %v", err, tt.expected)
			}
			if msg != nil {
				t.Errorf("Unframe() returned %T on error", msg)
			}
		})
	}
}

func TestMissingTerminatorIsMalformedHeader(t *testing.T) {
	if !errors.Is(ErrMissingTerminator, ErrMalformedHeader) {
		t.Error("ErrMissingTerminator should wrap ErrMalformedHeader")
	}
	if !errors.Is(ErrUnknownManufacturer, ErrMalformedHeader) {
		t.Error("ErrUnknownManufacturer should wrap ErrMalformedHeader")
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		want    string
		wantErr bool
	}{
		{name: "zero", n: 0, want: "000000"},
		{name: "padded", n: 52, want: "000052"},
		{name: "max", n: 999999, want: "999999"},
		{name: "negative", n: -1, wantErr: true},
		{name: "too large", n: 1000000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuild(tt.n)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBuild) {
					t.Errorf("NewBuild(%d) error = %v, want ErrInvalidBuild", tt.n, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBuild(%d) error = %v", tt.n, err)
			}
			if b.String() != tt.want {
				t.Errorf("NewBuild(%d) = %q, want %q", tt.n, b.String(), tt.want)
			}
			n, err := b.Number()
			if err != nil || n != tt.n {
				t.Errorf("Number() = %d, %v, want %d", n, err, tt.n)
			}
		})
	}
}

func TestBuildNumberInvalid(t *testing.T) {
	b := Build{'1', '2', 'x', '4', '5', '6'}
	if _, err := b.Number(); !errors.Is(err, ErrInvalidBuild) {
		t.Errorf("Number() error = %v, want ErrInvalidBuild", err)
	}
}
