package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"xkey/sysex"
)

func TestRunInspect(t *testing.T) {
	stream, err := sysex.Encode(make([]byte, 96), "launchkey-mk3", 7)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "fw.syx")
	if err := os.WriteFile(path, stream, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runInspect(&out, []string{path}); err != nil {
		t.Fatalf("runInspect() error = %v", err)
	}

	for _, want := range []string{"type: START", "model: launchkey-mk3", "type: METADATA", "size: 96", "type: END"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("inspect output missing %q:\n%s", want, out.String())
		}
	}

	var parsed struct {
		Messages int `yaml:"messages"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if parsed.Messages != 5 {
		t.Errorf("messages = %d, want 5", parsed.Messages)
	}
}
