package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"xkey/sysex"
)

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	model := fs.String("model", "", "Target model ("+strings.Join(modelNames(), ", ")+")")
	build := fs.Int("build", 0, "Firmware build number (0-999999)")
	output := fs.String("output", "", "Output path (default: <input>.syx)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one input path")
	}
	if _, err := sysex.LookupModel(*model); err != nil {
		return err
	}

	in := fs.Arg(0)
	out := *output
	if out == "" {
		out = outputPath(in, sysexSuffix)
	}

	log.Printf("Reading binary from '%s'", in)
	firmware, err := readInput(in)
	if err != nil {
		return err
	}

	stream, err := sysex.Encode(firmware, *model, *build)
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", in, err)
	}
	debugf("encoded %d bytes of firmware into %d bytes of SysEx", len(firmware), len(stream))

	log.Printf("Writing SysEx to '%s'", out)
	return writeFileAtomic(out, stream)
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "Fail when the recovered firmware does not match the metadata CRC")
	output := fs.String("output", "", "Output path (default: <input>.bin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one input path")
	}

	in := fs.Arg(0)
	out := *output
	if out == "" {
		out = outputPath(in, binarySuffix)
	}

	log.Printf("Reading SysEx from '%s'", in)
	stream, err := readInput(in)
	if err != nil {
		return err
	}

	fw, err := sysex.Decode(stream, sysex.WithStrictChecksum(*strict), sysex.WithLogger(stdLogger{}))
	if err != nil {
		return fmt.Errorf("unable to decode %s: %w", in, err)
	}
	if fw.HasMetadata {
		log.Printf("Decoded build %s: %d bytes, CRC 0x%08X (valid: %t)", fw.Build, len(fw.Data), fw.CRC, fw.ChecksumValid)
	}

	log.Printf("Writing decoded SysEx to '%s'", out)
	return writeFileAtomic(out, fw.Data)
}
