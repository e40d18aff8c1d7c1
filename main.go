package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gitlab.com/gomidi/midi/v2"

	"xkey/sysex"
)

const version = "1.0.0"

var debug bool

func main() {
	flags := flag.NewFlagSet("xkey", flag.ExitOnError)
	flags.BoolVar(&debug, "debug", false, "Enables debug level logging")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `xKey %s - Novation FLkey and Launchkey SysEx firmware utilities.

Usage:
  xkey [--debug] encode --model <name> --build <int> [--output <path>] <path>
  xkey [--debug] decode [--strict] [--output <path>] <path>
  xkey [--debug] inspect <path>
  xkey [--debug] ports
  xkey [--debug] send (--port <name> | --serial <device>) [options] <path>
  xkey [--debug] mcp

Models: %s
`, version, strings.Join(modelNames(), ", "))
	}
	_ = flags.Parse(os.Args[1:])

	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(1)
	}

	command, args := flags.Arg(0), flags.Args()[1:]

	var err error
	switch command {
	case "encode":
		err = runEncode(args)
	case "decode":
		err = runDecode(args)
	case "inspect":
		err = runInspect(os.Stdout, args)
	case "ports":
		err = listPorts()
	case "send":
		err = runSend(args)
	case "mcp":
		err = runMCP()
	default:
		log.Fatalf("unknown command %q", command)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func debugf(format string, v ...interface{}) {
	if debug {
		log.Printf("[debug] "+format, v...)
	}
}

// stdLogger adapts the log package to sysex.Logger.
type stdLogger struct{}

func (stdLogger) Debug(msg string, kv ...interface{}) {
	if debug {
		log.Println(append([]interface{}{"[debug]", msg}, kv...)...)
	}
}

func (stdLogger) Info(msg string, kv ...interface{}) {
	log.Println(append([]interface{}{msg}, kv...)...)
}

func (stdLogger) Warn(msg string, kv ...interface{}) {
	log.Println(append([]interface{}{"[warn]", msg}, kv...)...)
}

func modelNames() []string {
	var names []string
	for _, m := range sysex.Models() {
		names = append(names, m.Name)
	}
	return names
}

func listPorts() error {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return fmt.Errorf("no MIDI outputs available")
	}

	log.Println("Available MIDI outputs:")
	fmt.Print(outs.String())
	return nil
}

func findOutPort(nameFragment string) (int, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return -1, fmt.Errorf("no MIDI outputs available")
	}

	lower := strings.ToLower(nameFragment)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out.Number(), nil
		}
	}

	return -1, fmt.Errorf("no MIDI output contains %q", nameFragment)
}
