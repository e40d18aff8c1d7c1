package sysex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Reader reads framed messages from a SysEx stream.
type Reader struct {
	r      *bufio.Reader
	offset int64
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Offset is the byte offset of the next message.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next returns the next message, or io.EOF at a clean end of stream.
// Any other error is a *StreamError; the stream cannot be resumed after it.
func (r *Reader) Next() (Message, error) {
	start := r.offset

	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r.r, header)
	r.offset += int64(n)
	if n == 0 && errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if n > 0 && header[0] != SOX {
		return nil, &StreamError{Offset: start, Err: fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrMalformedHeader, SOX, header[0])}
	}
	if err != nil {
		return nil, &StreamError{Offset: start, Err: readError(err, "header")}
	}

	t, size, err := parseHeader(header)
	if err != nil {
		return nil, &StreamError{Offset: start, Err: err}
	}

	frame := make([]byte, HeaderSize+size+1)
	copy(frame, header)
	n, err = io.ReadFull(r.r, frame[HeaderSize:])
	r.offset += int64(n)
	if err != nil {
		return nil, &StreamError{Offset: start, Err: readError(err, t.String()+" body")}
	}

	msg, err := Unframe(frame)
	if err != nil {
		return nil, &StreamError{Offset: start, Err: err}
	}
	return msg, nil
}

func readError(err error, what string) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: stream ended inside %s", ErrTruncatedInput, what)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}
