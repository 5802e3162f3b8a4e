package tester

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MachineSummary is the shape of compiled-machine structure a fixture
// checks. It mirrors the fields driver.Describe prints, plus the terminal
// count (which Describe does not print), as plain data so a fixture file can
// state the expected values directly.
type MachineSummary struct {
	Name          string `yaml:"name"`
	Kind          string `yaml:"kind"` // "finite_automaton" or "ll_parser"
	K             int    `yaml:"k,omitempty"`
	TerminalCount int    `yaml:"terminal_count"`
	StateCount    int    `yaml:"state_count,omitempty"`
	DecisionCount int    `yaml:"decision_count,omitempty"`
}

// Fixture names a grammar source file and the machine structure a
// successful compile of it must produce.
type Fixture struct {
	Path     string           `yaml:"-"`
	Grammar  string           `yaml:"grammar"`
	Machines []MachineSummary `yaml:"machines"`
}

// LoadFixture decodes a single fixture file. The grammar path inside it is
// resolved relative to the fixture file's own directory.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	f.Path = path
	return &f, nil
}
