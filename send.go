package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"xkey/sysex"
)

// Sender delivers complete SysEx frames to a device.
type Sender interface {
	SendSysEx(frame []byte) error
	Close() error
}

// Controllers drop messages that arrive faster than they can write flash.
const defaultSendDelay = 20 * time.Millisecond

func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	port := fs.String("port", "", "MIDI output port name fragment")
	device := fs.String("serial", "", "Serial device path (e.g. /dev/ttyUSB0)")
	baud := fs.Int("baud", defaultSerialBaud, "Serial baud rate")
	delay := fs.Duration("delay", defaultSendDelay, "Pause between messages")
	model := fs.String("model", "", "Model, when sending a raw binary")
	build := fs.Int("build", 0, "Build number, when sending a raw binary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one input path")
	}
	if (*port == "") == (*device == "") {
		return errors.New("exactly one of --port or --serial is required")
	}

	frames, err := loadFrames(fs.Arg(0), *model, *build)
	if err != nil {
		return err
	}

	var dst Sender
	if *port != "" {
		idx, err := findOutPort(*port)
		if err != nil {
			return err
		}
		dst, err = OpenDevice(idx)
		if err != nil {
			return err
		}
	} else {
		dst, err = OpenSerial(*device, *baud)
		if err != nil {
			return err
		}
	}
	defer func() { _ = dst.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Sending %d messages to %v", len(frames), dst)
	if err := transmit(ctx, dst, frames, *delay, progressFunc(os.Stderr)); err != nil {
		return err
	}
	log.Println("Firmware sent")
	return nil
}

// loadFrames returns the framed messages to send for path. SysEx files are
// validated message by message; anything else is encoded for model first.
func loadFrames(path, model string, build int) ([][]byte, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	var msgs []sysex.Message
	if isSysExFile(path) {
		r := sysex.NewReader(bytes.NewReader(data))
		for {
			msg, err := r.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("invalid SysEx in %s: %w", path, err)
			}
			msgs = append(msgs, msg)
		}
		if len(msgs) == 0 {
			return nil, fmt.Errorf("%s contains no messages", path)
		}
	} else {
		msgs, err = sysex.EncodeMessages(data, model, build)
		if err != nil {
			return nil, fmt.Errorf("unable to encode %s: %w", path, err)
		}
	}

	frames := make([][]byte, len(msgs))
	for i, msg := range msgs {
		frames[i] = sysex.Frame(msg)
	}
	return frames, nil
}

// transmit sends frames in order, pausing delay between them. Cancelling ctx
// stops before the next frame.
func transmit(ctx context.Context, dst Sender, frames [][]byte, delay time.Duration, progress func(sent, total int)) error {
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("aborted after %d of %d messages: %w", i, len(frames), err)
		}

		if err := dst.SendSysEx(frame); err != nil {
			return fmt.Errorf("failed to send message %d of %d: %w", i+1, len(frames), err)
		}
		debugf("sent message %d of %d (%d bytes)", i+1, len(frames), len(frame))
		if progress != nil {
			progress(i+1, len(frames))
		}

		if delay > 0 && i < len(frames)-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("aborted after %d of %d messages: %w", i+1, len(frames), ctx.Err())
			case <-timer.C:
			}
		}
	}
	return nil
}

// progressFunc draws a live counter on a terminal and logs every tenth of
// the transfer otherwise.
func progressFunc(f *os.File) func(sent, total int) {
	if term.IsTerminal(int(f.Fd())) {
		return func(sent, total int) {
			fmt.Fprintf(f, "\rSent %d/%d messages (%.0f%%)", sent, total, 100*float64(sent)/float64(total))
			if sent == total {
				fmt.Fprintln(f)
			}
		}
	}

	return func(sent, total int) {
		step := total / 10
		if step == 0 {
			step = 1
		}
		if sent%step == 0 || sent == total {
			log.Printf("Sent %d/%d messages", sent, total)
		}
	}
}
