package sysex

import (
	"fmt"
	"sort"
)

// Envelope constants per Table VII of the MIDI 1.0 Detailed Specification,
// plus Novation's extended manufacturer ID.
const (
	SOX = 0xF0
	EOX = 0xF7

	ManufacturerIDHigh = 0x20
	ManufacturerIDLow  = 0x29

	// ManufacturerNovation is the manufacturer byte inside Start bodies.
	ManufacturerNovation = 0x02
)

// Model is a supported controller family.
type Model struct {
	Name string
	ID   byte
}

func (m Model) String() string {
	return fmt.Sprintf("%s (0x%02X)", m.Name, m.ID)
}

// Model IDs come from firmware analysis and cover the families seen so far.
var models = []Model{
	{Name: "flkey", ID: 0x11},
	{Name: "launchkey-mk3", ID: 0x0F},
}

func init() {
	names := make(map[string]bool, len(models))
	ids := make(map[byte]bool, len(models))
	for _, m := range models {
		if names[m.Name] || ids[m.ID] || m.ID&^sevenBitMask != 0 {
			panic(fmt.Sprintf("sysex: invalid model table entry %v", m))
		}
		names[m.Name] = true
		ids[m.ID] = true
	}
}

// Models returns the supported models sorted by name.
func Models() []Model {
	out := append([]Model(nil), models...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupModel returns the model with the given name.
func LookupModel(name string) (Model, error) {
	for _, m := range models {
		if m.Name == name {
			return m, nil
		}
	}
	return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// ModelByID returns the model with the given wire ID.
func ModelByID(id byte) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
