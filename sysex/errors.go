package sysex

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when a message envelope is invalid.
	ErrMalformedHeader = errors.New("malformed sysex header")

	// ErrUnknownManufacturer is returned when the envelope carries a
	// manufacturer ID other than Novation's.
	ErrUnknownManufacturer = fmt.Errorf("%w: unknown manufacturer", ErrMalformedHeader)

	// ErrMissingTerminator is returned when a message does not end with EOX.
	ErrMissingTerminator = fmt.Errorf("%w: missing end of exclusive", ErrMalformedHeader)

	// ErrUnknownMessageType is returned for message type identifiers outside
	// the supported set.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrTruncatedInput is returned when fewer bytes are available than a
	// message or the declared firmware size requires.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrUnexpectedMessage is returned when a message arrives out of order.
	ErrUnexpectedMessage = errors.New("unexpected message")

	ErrUnknownModel        = errors.New("unknown model")
	ErrInvalidNibbleLength = errors.New("nibble buffer must have even length")
	ErrInvalidBuild        = errors.New("invalid build number")
	ErrEmptyFirmware       = errors.New("firmware is empty")
)

// ChecksumMismatchError indicates that the recovered firmware does not match
// the CRC declared in the Metadata message.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: metadata declares 0x%08X, firmware has 0x%08X",
		e.Expected, e.Actual)
}

// StreamError reports where in a SysEx stream decoding failed.
type StreamError struct {
	// Offset is the byte offset of the message that failed
	Offset int64

	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("message at offset %d: %v", e.Offset, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
