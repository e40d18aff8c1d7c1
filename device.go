package main

import (
	"fmt"
	"log"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Device is an open MIDI output connected to a controller.
type Device struct {
	out drivers.Out
}

func OpenDevice(portIndex int) (*Device, error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, err
	}

	if portIndex < 0 || portIndex >= len(outs) {
		return nil, fmt.Errorf("output port index %d out of range", portIndex)
	}

	out := outs[portIndex]
	if err := out.Open(); err != nil {
		return nil, err
	}

	log.Println("Opened MIDI output port", out.String())
	return &Device{out: out}, nil
}

// Send transmits a MIDI message to the output port.
func (d *Device) Send(msg midi.Message) error {
	if !d.out.IsOpen() {
		if err := d.out.Open(); err != nil {
			return err
		}
	}
	return d.out.Send(msg.Bytes())
}

// SendSysEx transmits one complete F0 ... F7 frame.
func (d *Device) SendSysEx(frame []byte) error {
	var body []byte
	msg := midi.Message(frame)
	if !msg.GetSysEx(&body) {
		return fmt.Errorf("refusing to send a frame that is not SysEx (%d bytes)", len(frame))
	}
	return d.Send(msg)
}

func (d *Device) Close() error {
	err := d.out.Close()
	drivers.Close()
	return err
}

func (d *Device) String() string {
	return "MIDI port " + d.out.String()
}
