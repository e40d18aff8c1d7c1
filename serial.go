package main

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// Serial MIDI bridges (Arduino style DIN adapters, Hairless MIDI) run the
// UART at a standard rate rather than 31250.
const defaultSerialBaud = 115200

// SerialPort writes raw SysEx bytes to a UART.
type SerialPort struct {
	port io.WriteCloser
	name string
}

func OpenSerial(device string, baud int) (*SerialPort, error) {
	if device == "" {
		return nil, fmt.Errorf("serial device cannot be empty")
	}

	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	return &SerialPort{port: port, name: device}, nil
}

func (p *SerialPort) SendSysEx(frame []byte) error {
	n, err := p.port.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return fmt.Errorf("short write to %s: %d of %d bytes", p.name, n, len(frame))
	}
	return nil
}

func (p *SerialPort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

func (p *SerialPort) String() string {
	return "serial port " + p.name
}
