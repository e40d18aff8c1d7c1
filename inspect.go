package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"xkey/sysex"
)

type inspection struct {
	File     string        `yaml:"file"`
	Messages int           `yaml:"messages"`
	Entries  []sysex.Entry `yaml:"entries"`
}

func runInspect(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one input path")
	}

	in := fs.Arg(0)
	stream, err := readInput(in)
	if err != nil {
		return err
	}

	entries, err := sysex.Inspect(stream)
	if err != nil {
		return fmt.Errorf("unable to inspect %s: %w", in, err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(inspection{File: in, Messages: len(entries), Entries: entries}); err != nil {
		return err
	}
	return enc.Close()
}
